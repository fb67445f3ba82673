package person

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrPersonNotFound        = errors.New("person not found")
	ErrPersonNotCreated      = errors.New("person not created")
	ErrPersonNotUpdated      = errors.New("person not updated")
	ErrPersonNotDeleted      = errors.New("person not deleted")
	ErrRefreshTokenMismatch  = errors.New("stored refresh token does not match")
	ErrUnresponsiveDatabase  = errors.New("error occurred during access to persons table")
)

// PersonRepository is the credential store. Every write touches a single row
// and RotateRefreshToken is a compare-and-set, so concurrent rotations of the
// same token have exactly one winner.
type PersonRepository interface {
	Create(ctx context.Context, person *Person) error
	ReadByID(ctx context.Context, id uint) (*Person, error)
	ReadByIdentifier(ctx context.Context, identifier string) (*Person, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateDetails(ctx context.Context, id uint, fullName, email string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateRefreshToken(ctx context.Context, id uint, digest string) error
	RotateRefreshToken(ctx context.Context, id uint, oldDigest, newDigest string) error
	ClearRefreshToken(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (p *personRepository) Create(ctx context.Context, person *Person) error {
	err := p.db.WithContext(ctx).Create(person).Error
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("%w: %w", ErrPersonNotCreated, err)
	}
	return nil
}

func (p *personRepository) ReadByID(ctx context.Context, id uint) (*Person, error) {
	var person Person
	err := p.db.WithContext(ctx).First(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return &person, nil
}

// ReadByIdentifier matches either the username or the email column.
func (p *personRepository) ReadByIdentifier(ctx context.Context, identifier string) (*Person, error) {
	identifier = NormalizeIdentifier(identifier)
	var person Person
	err := p.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&person).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return &person, nil
}

func (p *personRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&Person{}).
		Where("username = ? OR email = ?", NormalizeIdentifier(username), NormalizeIdentifier(email)).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return count > 0, nil
}

func (p *personRepository) UpdateDetails(ctx context.Context, id uint, fullName, email string) error {
	res := p.db.WithContext(ctx).
		Model(&Person{}).
		Where("id = ?", id).
		Updates(map[string]any{"full_name": fullName, "email": NormalizeIdentifier(email)})
	if res.Error != nil {
		if dup := duplicateError(res.Error); dup != nil {
			return dup
		}
		return fmt.Errorf("%w: %w", ErrPersonNotUpdated, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func (p *personRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return p.updateColumn(ctx, id, "password", passwordHash)
}

func (p *personRepository) UpdateRefreshToken(ctx context.Context, id uint, digest string) error {
	return p.updateColumn(ctx, id, "refresh_token", digest)
}

// ClearRefreshToken is idempotent: clearing an absent token or an unknown id
// is not an error.
func (p *personRepository) ClearRefreshToken(ctx context.Context, id uint) error {
	err := p.db.WithContext(ctx).
		Model(&Person{}).
		Where("id = ?", id).
		Update("refresh_token", nil).
		Error
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return nil
}

func (p *personRepository) RotateRefreshToken(ctx context.Context, id uint, oldDigest, newDigest string) error {
	res := p.db.WithContext(ctx).
		Model(&Person{}).
		Where("id = ? AND refresh_token = ?", id, oldDigest).
		Update("refresh_token", newDigest)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRefreshTokenMismatch
	}
	return nil
}

func (p *personRepository) Delete(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Delete(&Person{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrPersonNotDeleted, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func (p *personRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := p.db.WithContext(ctx).
		Model(&Person{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrPersonNotUpdated, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailAlreadyExists
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrUsernameAlreadyExists
	}
	return nil
}
