package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

//go:generate mockgen -source=logout.go -destination=mock_logout.go -package=handlers

// Logouter defines the interface that the service must implement.
type Logouter interface {
	Logout(ctx context.Context, token string) error
}

// NewLogoutHandler returns an HTTP handler that revokes the caller's token.
// @Summary Logout
// @Description Revokes the presented token until it expires.
// @Tags users
// @Success 204 "Token revoked"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /users/logout [post]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := middlewares.TokenFromContext(r.Context())
		if !ok {
			writeError(w, r, models.ErrUnauthorized)
			return
		}

		if err := svc.Logout(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
