package authentication

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token is expired or used")
)

// CredentialStore is the part of the person repository sessions depend on.
type CredentialStore interface {
	ReadByIdentifier(ctx context.Context, identifier string) (*person.Person, error)
	ReadByID(ctx context.Context, id uint) (*person.Person, error)
	UpdateRefreshToken(ctx context.Context, id uint, digest string) error
	RotateRefreshToken(ctx context.Context, id uint, oldDigest, newDigest string) error
	ClearRefreshToken(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

type TokenIssuer interface {
	IssuePair(subject string) (*utils.TokenPair, error)
	ParseRefreshToken(tokenString string) (*utils.RefreshClaims, error)
}

// LoginResult is the token pair plus the public view of the account.
type LoginResult struct {
	User *person.Person `json:"user"`
	utils.TokenPair
}

// AuthenticationService owns the session lifecycle. At most one refresh
// token per user is valid at any time: login overwrites it, refresh rotates
// it, logout clears it.
type AuthenticationService interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
}

type authenticationService struct {
	store                  CredentialStore
	hasher                 person.Hasher
	passwords              person.PasswordPolicy
	issuer                 TokenIssuer
	logger                 *zap.Logger
	revokeOnPasswordChange bool
}

func NewAuthenticationService(
	store CredentialStore,
	hasher person.Hasher,
	passwords person.PasswordPolicy,
	issuer TokenIssuer,
	logger *zap.Logger,
	revokeOnPasswordChange bool,
) AuthenticationService {
	return &authenticationService{
		store:                  store,
		hasher:                 hasher,
		passwords:              passwords,
		issuer:                 issuer,
		logger:                 logger,
		revokeOnPasswordChange: revokeOnPasswordChange,
	}
}

func (a *authenticationService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, utils.BadRequest("username or email is required")
	}

	user, err := a.store.ReadByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return nil, utils.NotFound("user does not exist").WithCause(err)
		}
		return nil, utils.Internal("could not login", err)
	}
	if !a.hasher.Verify(password, user.Password) {
		a.logger.Warn("login with wrong password", zap.Uint("id", user.ID))
		return nil, utils.Unauthorized("invalid user credentials").WithCause(ErrInvalidCredentials)
	}

	pair, err := a.issuer.IssuePair(subjectOf(user.ID))
	if err != nil {
		return nil, utils.Internal("could not generate tokens", err)
	}
	if err := a.store.UpdateRefreshToken(ctx, user.ID, digest(pair.RefreshToken)); err != nil {
		return nil, utils.Internal("could not generate tokens", err)
	}

	a.logger.Info("user logged in", zap.Uint("id", user.ID))
	return &LoginResult{User: user, TokenPair: *pair}, nil
}

func (a *authenticationService) Logout(ctx context.Context, userID uint) error {
	if err := a.store.ClearRefreshToken(ctx, userID); err != nil {
		return utils.Internal("could not logout", err)
	}
	a.logger.Info("user logged out", zap.Uint("id", userID))
	return nil
}

func (a *authenticationService) RefreshAccessToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	if refreshToken == "" {
		return nil, utils.Unauthorized("unauthorized request")
	}

	claims, err := a.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, utils.Unauthorized("invalid refresh token").WithCause(err)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, strconv.IntSize)
	if err != nil {
		return nil, utils.Unauthorized("invalid refresh token").WithCause(ErrInvalidRefreshToken)
	}

	user, err := a.store.ReadByID(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return nil, utils.Unauthorized("invalid refresh token").WithCause(err)
		}
		return nil, utils.Internal("could not refresh token", err)
	}

	presented := digest(refreshToken)
	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		a.logger.Warn("stale refresh token presented", zap.Uint("id", user.ID))
		return nil, utils.Unauthorized("refresh token is expired or used").WithCause(ErrRefreshTokenReused)
	}

	pair, err := a.issuer.IssuePair(subjectOf(user.ID))
	if err != nil {
		return nil, utils.Internal("could not generate tokens", err)
	}
	// The conditional write is what serialises concurrent refreshes: only the
	// first caller still finds the presented digest in the row.
	if err := a.store.RotateRefreshToken(ctx, user.ID, presented, digest(pair.RefreshToken)); err != nil {
		if errors.Is(err, person.ErrRefreshTokenMismatch) {
			return nil, utils.Unauthorized("refresh token is expired or used").WithCause(ErrRefreshTokenReused)
		}
		return nil, utils.Internal("could not refresh token", err)
	}
	return pair, nil
}

func (a *authenticationService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := a.store.ReadByID(ctx, userID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return utils.NotFound("user does not exist").WithCause(err)
		}
		return utils.Internal("could not change password", err)
	}
	if !a.hasher.Verify(oldPassword, user.Password) {
		return utils.Unauthorized("invalid old password").WithCause(ErrInvalidCredentials)
	}
	if err := a.passwords.Check(newPassword); err != nil {
		return utils.BadRequest(err.Error()).WithCause(err)
	}

	hashed, err := a.hasher.Hash(newPassword)
	if err != nil {
		return utils.Internal("could not change password", err)
	}
	if err := a.store.UpdatePassword(ctx, userID, hashed); err != nil {
		return utils.Internal("could not change password", err)
	}
	if a.revokeOnPasswordChange {
		if err := a.store.ClearRefreshToken(ctx, userID); err != nil {
			return utils.Internal("password changed but sessions were not revoked", err)
		}
	}
	a.logger.Info("password changed", zap.Uint("id", userID))
	return nil
}

func subjectOf(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// digest is what the store keeps instead of the raw refresh token.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
