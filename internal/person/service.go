package person

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

var ErrInvalidEmailFormat = errors.New("invalid email format")

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

type PersonService interface {
	Register(ctx context.Context, in RegisterInput) (*Person, error)
	ReadPersonByID(ctx context.Context, id uint) (*Person, error)
	UpdateAccountDetails(ctx context.Context, id uint, fullName, email string) (*Person, error)
	DeletePerson(ctx context.Context, id uint) error
}

type personService struct {
	repo      PersonRepository
	hasher    Hasher
	passwords PasswordPolicy
	logger    *zap.Logger
}

func NewPersonService(repo PersonRepository, hasher Hasher, passwords PasswordPolicy, logger *zap.Logger) PersonService {
	return &personService{
		repo:      repo,
		hasher:    hasher,
		passwords: passwords,
		logger:    logger,
	}
}

/** CREATE */
func (s *personService) Register(ctx context.Context, in RegisterInput) (*Person, error) {
	if err := s.validate(in); err != nil {
		s.logger.Warn("registration rejected", zap.String("username", in.Username), zap.Error(err))
		return nil, err
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		s.logger.Error("failed to check existing person", zap.Error(err))
		return nil, utils.Internal("could not register user", err)
	}
	if exists {
		return nil, utils.Conflict("user with this username or email already exists")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, utils.Internal("could not register user", err)
	}

	person := NewPerson(in.Username, in.Email, in.FullName, hashed)
	if err := s.repo.Create(ctx, person); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrUsernameAlreadyExists) {
			return nil, utils.Conflict("user with this username or email already exists").WithCause(err)
		}
		s.logger.Error("failed to create person in repository", zap.Error(err))
		return nil, utils.Internal("could not register user", err)
	}
	s.logger.Info("person registered", zap.Uint("id", person.ID), zap.String("username", person.Username))
	return person, nil
}

func (s *personService) validate(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.FullName) == "" {
		return utils.BadRequest("all fields are required")
	}
	if err := validateEmail(in.Email); err != nil {
		return utils.BadRequest("invalid email format").WithCause(err)
	}
	if err := s.passwords.Check(in.Password); err != nil {
		return utils.BadRequest(err.Error()).WithCause(err)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

/** READ */
func (s *personService) ReadPersonByID(ctx context.Context, id uint) (*Person, error) {
	person, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		return nil, s.translate("failed to get person by ID", id, err)
	}
	return person, nil
}

/** UPDATE */
func (s *personService) UpdateAccountDetails(ctx context.Context, id uint, fullName, email string) (*Person, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, utils.BadRequest("all fields are required")
	}
	if err := validateEmail(email); err != nil {
		return nil, utils.BadRequest("invalid email format").WithCause(err)
	}

	if err := s.repo.UpdateDetails(ctx, id, strings.TrimSpace(fullName), email); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, utils.Conflict("email already registered").WithCause(err)
		}
		return nil, s.translate("failed to update account details", id, err)
	}
	return s.ReadPersonByID(ctx, id)
}

/** DELETE */
func (s *personService) DeletePerson(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate("failed to delete person", id, err)
	}
	return nil
}

func (s *personService) translate(msg string, id uint, err error) error {
	if errors.Is(err, ErrPersonNotFound) {
		return utils.NotFound("user does not exist").WithCause(err)
	}
	s.logger.Error(msg, zap.Uint("id", id), zap.Error(err))
	return utils.Internal("could not access user", err)
}
