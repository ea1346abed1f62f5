package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

var exposeErrorDetail atomic.Bool

// SetDevelopment controls whether 5xx responses carry the underlying error text.
func SetDevelopment(development bool) {
	exposeErrorDetail.Store(development)
}

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// "fail" for client errors, "error" for server errors
	// default: fail
	Status string `json:"status"`

	// Human readable message
	// default: Invalid input
	Message string `json:"message"`

	// Rejected fields and the reason for each
	Fields map[string]string `json:"fields,omitempty"`

	// Error text, development only
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a service error onto a status code and an ErrorResponse.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		maxBytesErr   *http.MaxBytesError
		validationErr *models.ValidationError
	)

	code, resp := http.StatusInternalServerError, ErrorResponse{Status: StatusError, Message: "Internal server error"}
	switch {
	case errors.As(err, &maxBytesErr):
		code, resp = http.StatusRequestEntityTooLarge, ErrorResponse{Status: StatusFail, Message: "Request body too large"}
	case errors.As(err, &validationErr):
		code, resp = http.StatusBadRequest, ErrorResponse{Status: StatusFail, Message: "Invalid input", Fields: validationErr.Fields}
	case errors.Is(err, models.ErrInvalidAmount):
		code, resp = http.StatusBadRequest, ErrorResponse{Status: StatusFail, Message: "Invalid amount"}
	case errors.Is(err, models.ErrInvalidInput):
		code, resp = http.StatusBadRequest, ErrorResponse{Status: StatusFail, Message: "Invalid input"}
	case errors.Is(err, models.ErrDuplicateIdentity):
		code, resp = http.StatusConflict, ErrorResponse{Status: StatusFail, Message: "Username or email already exists"}
	case errors.Is(err, models.ErrInvalidCredentials):
		code, resp = http.StatusUnauthorized, ErrorResponse{Status: StatusFail, Message: "Invalid credentials"}
	case errors.Is(err, models.ErrUnauthorized):
		code, resp = http.StatusUnauthorized, ErrorResponse{Status: StatusFail, Message: "Unauthorized"}
	case errors.Is(err, models.ErrInvalidOwner):
		code, resp = http.StatusNotFound, ErrorResponse{Status: StatusFail, Message: "User not found"}
	case errors.Is(err, models.ErrStoreUnavailable):
		code, resp = http.StatusServiceUnavailable, ErrorResponse{Status: StatusError, Message: "Service unavailable"}
	}

	if code >= http.StatusInternalServerError {
		logger.Log.Errorw("request failed",
			"request_id", middlewares.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", code,
			"error", err,
		)
		if exposeErrorDetail.Load() {
			resp.Detail = err.Error()
		}
	}
	writeJSON(w, code, resp)
}

// decodeJSON decodes a request body into dst. Malformed bodies become a
// ValidationError; an oversized body keeps its *http.MaxBytesError.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return models.NewValidationError(map[string]string{"body": "request body is empty"})
		}
		return models.NewValidationError(map[string]string{"body": fmt.Sprintf("malformed JSON: %v", err)})
	}
	return nil
}
