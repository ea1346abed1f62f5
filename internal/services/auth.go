package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/metrics"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=services

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user *models.User) error
}

// TokenManager issues and parses access tokens.
type TokenManager interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
	GetClaims(ctx context.Context, token string) (*jwt.Claims, error)
}

// RevocationList remembers logged-out tokens until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService handles registration, login and token checks.
type AuthService struct {
	reader       UserReader
	writer       UserWriter
	tokens       TokenManager
	revocations  RevocationList
	bcryptCost   int
	retryBackoff time.Duration
	dummyHash    []byte
	now          func() time.Time
}

// NewAuthService creates a new AuthService instance. revocations may be nil,
// in which case Logout is a no-op and tokens are only checked statelessly.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	tokens TokenManager,
	revocations RevocationList,
	bcryptCost int,
	retryBackoff time.Duration,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the identifier is unknown so both login failures cost the same.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password-1"), bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to prepare dummy hash", "error", err)
	}

	return &AuthService{
		reader:       reader,
		writer:       writer,
		tokens:       tokens,
		revocations:  revocations,
		bcryptCost:   bcryptCost,
		retryBackoff: retryBackoff,
		dummyHash:    dummyHash,
		now:          time.Now,
	}
}

// Register creates a user with a hashed password and returns it with a fresh token.
func (svc *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)
	if err := validateRegistration(username, email, password); err != nil {
		return nil, "", err
	}

	err := withRetry(ctx, svc.retryBackoff, "get user", func(ctx context.Context) error {
		_, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
		return err
	})
	switch {
	case err == nil:
		logger.Log.Infow("user already exists", "username", username)
		return nil, "", models.ErrDuplicateIdentity
	case !errors.Is(err, models.ErrNotFound):
		logger.Log.Errorw("failed to check user exists", "username", username, "error", err)
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), svc.bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		return nil, "", fmt.Errorf("%w: hash password: %v", models.ErrInternal, err)
	}

	now := svc.now().UTC().Truncate(time.Microsecond)
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = withRetry(ctx, svc.retryBackoff, "save user", func(ctx context.Context) error {
		return svc.writer.Save(ctx, user)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateIdentity) {
			logger.Log.Infow("user already exists", "username", username)
		} else {
			logger.Log.Errorw("failed to save user", "username", username, "error", err)
		}
		return nil, "", err
	}
	metrics.UsersRegistered.Inc()

	token, err := svc.tokens.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "user_id", user.ID, "error", err)
		return nil, "", fmt.Errorf("%w: %v", models.ErrInternal, err)
	}

	return user, token, nil
}

// Login authenticates by username or email and returns a JWT token. Unknown
// identifiers and wrong passwords are indistinguishable to the caller.
func (svc *AuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", models.NewValidationError(map[string]string{"credentials": "identifier and password are required"})
	}

	var username, email *string
	if strings.Contains(identifier, "@") {
		normalized := models.NormalizeEmail(identifier)
		email = &normalized
	} else {
		username = &identifier
	}

	var user *models.User
	err := withRetry(ctx, svc.retryBackoff, "get user", func(ctx context.Context) error {
		var err error
		user, err = svc.reader.GetByUsernameOrEmail(ctx, username, email)
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(svc.dummyHash, []byte(password))
		logger.Log.Infow("login failed", "reason", "unknown identifier")
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		logger.Log.Errorw("failed to get user", "error", err)
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("login failed", "reason", "wrong password", "user_id", user.ID)
		return "", models.ErrInvalidCredentials
	}

	token, err := svc.tokens.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("%w: %v", models.ErrInternal, err)
	}

	return token, nil
}

// VerifyToken checks signature and expiry, then the revocation list, and
// returns the authenticated user id.
func (svc *AuthService) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := svc.tokens.GetClaims(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	if svc.revocations != nil && claims.ID != "" {
		revoked, err := svc.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Log.Errorw("failed to check token revocation", "error", err)
			return uuid.Nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		if revoked {
			return uuid.Nil, models.ErrTokenRevoked
		}
	}

	return claims.UserID, nil
}

// Logout revokes the token until its own expiry.
func (svc *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := svc.tokens.GetClaims(ctx, token)
	if err != nil {
		return err
	}
	if svc.revocations == nil || claims.ID == "" {
		return nil
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(svc.now())
	}
	if err := svc.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		logger.Log.Errorw("failed to revoke token", "user_id", claims.UserID, "error", err)
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}
