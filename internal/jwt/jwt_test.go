package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func claimsErr(_ *Claims, err error) error { return err }

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	userID := uuid.New()
	ctx := context.Background()

	token, err := j.Generate(ctx, userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	err = claimsErr(j.GetClaims(ctx, token))
	assert.NoError(t, err)

	claims, err := j.GetClaims(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_UniqueTokenIDs(t *testing.T) {
	j := New(WithSecretKey("test-secret"))
	ctx := context.Background()
	userID := uuid.New()

	first, err := j.Generate(ctx, userID)
	require.NoError(t, err)
	second, err := j.Generate(ctx, userID)
	require.NoError(t, err)

	c1, err := j.GetClaims(ctx, first)
	require.NoError(t, err)
	c2, err := j.GetClaims(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWT_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	token, err := j.Generate(ctx, uuid.New())
	require.NoError(t, err)

	clock.now = issuedAt.Add(59 * time.Minute)
	assert.NoError(t, claimsErr(j.GetClaims(ctx, token)))

	clock.now = issuedAt.Add(61 * time.Minute)
	err = claimsErr(j.GetClaims(ctx, token))
	assert.ErrorIs(t, err, models.ErrTokenExpired)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(-time.Minute)) // already expired
	ctx := context.Background()

	token, err := j.Generate(ctx, uuid.New())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	err = claimsErr(j.GetClaims(ctx, token))
	assert.ErrorIs(t, err, models.ErrTokenExpired)

	claims, err := j.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	err := claimsErr(j.GetClaims(ctx, "invalid.token.string"))
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	claims, err := j.GetClaims(ctx, "invalid.token.string")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: uuid.New(),
	}
	unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, claimsErr(j.GetClaims(ctx, unsigned)), models.ErrTokenInvalid)
}

func TestJWT_RequiresExpiry(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{UserID: uuid.New()}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.ErrorIs(t, claimsErr(j.GetClaims(ctx, token)), models.ErrTokenInvalid)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New()
	ctx := context.Background()

	tests := []struct {
		name          string
		header        string
		expectedToken string
		expectError   bool
	}{
		{"ValidBearer", "Bearer mytoken123", "mytoken123", false},
		{"LowercaseBearer", "bearer mytoken123", "mytoken123", false},
		{"NoHeader", "", "", true},
		{"InvalidFormat", "Token mytoken123", "", true},
		{"TooManyParts", "Bearer a b c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	j1 := New(WithSecretKey("secret1"))
	j2 := New(WithSecretKey("secret2"))
	ctx := context.Background()

	token, err := j1.Generate(ctx, uuid.New())
	assert.NoError(t, err)

	err = claimsErr(j2.GetClaims(ctx, token))
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}
