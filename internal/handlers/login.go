package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=login.go -destination=mock_login.go -package=handlers

// Authenticator defines the interface that the service must implement.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username or email
	// required: true
	// default: alice
	Identifier string `json:"identifier"`

	// Accepted when identifier is empty
	Username string `json:"username,omitempty"`

	// Accepted when identifier and username are empty
	Email string `json:"email,omitempty"`

	// Password
	// required: true
	// default: Secret123!
	Password string `json:"password"`
}

func (req LoginRequest) identifier() string {
	switch {
	case req.Identifier != "":
		return req.Identifier
	case req.Username != "":
		return req.Username
	default:
		return req.Email
	}
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// JWT token
	// default: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	Token string `json:"token"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary Login a user
// @Description Authenticates by username or email and returns a JWT token.
// @Tags users
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} handlers.LoginResponse "Login successful"
// @Failure 400 {object} handlers.ErrorResponse "Malformed request"
// @Failure 401 {object} handlers.ErrorResponse "Invalid credentials"
// @Router /users/login [post]
func NewLoginHandler(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		token, err := svc.Login(r.Context(), req.identifier(), req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}
