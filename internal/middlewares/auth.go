package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=middlewares

// TokenExtractor pulls the raw bearer token out of a request.
type TokenExtractor interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// TokenVerifier resolves a token to the authenticated user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}

type authContextKey int

const (
	userIDKey authContextKey = iota
	tokenKey
)

// AuthMiddleware rejects requests without a valid, unrevoked token before the
// protected handler runs, and stores the user id in the request context.
func AuthMiddleware(extractor TokenExtractor, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := extractor.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeJSON(w, http.StatusUnauthorized, errorBody{Status: statusFail, Message: "Unauthorized"})
				return
			}

			userID, err := verifier.VerifyToken(ctx, tokenString)
			if err != nil {
				if errors.Is(err, models.ErrStoreUnavailable) {
					logger.Log.Errorw("authorization unavailable", "err", err)
					writeJSON(w, http.StatusServiceUnavailable, errorBody{Status: statusError, Message: "Service unavailable"})
					return
				}
				logger.Log.Infow("authorization failed", "err", err)
				writeJSON(w, http.StatusUnauthorized, errorBody{Status: statusFail, Message: "Unauthorized"})
				return
			}

			ctx = context.WithValue(ctx, userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user authenticated by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// TokenFromContext returns the raw token accepted by AuthMiddleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}

// WithUserID stores a user id the way AuthMiddleware does. Handlers' tests use it.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithToken stores a raw token the way AuthMiddleware does.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}
