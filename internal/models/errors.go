package models

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Error taxonomy shared by stores, services and handlers.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidOwner       = errors.New("owner does not exist")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInternal           = errors.New("internal error")

	// ErrNotFound is returned by stores for missing rows; services translate it.
	ErrNotFound = errors.New("not found")
)

// Token failures. All of them are reported to clients as ErrUnauthorized.
var (
	ErrTokenInvalid = &tokenError{msg: "token is invalid"}
	ErrTokenExpired = &tokenError{msg: "token is expired"}
	ErrTokenRevoked = &tokenError{msg: "token is revoked"}
)

type tokenError struct {
	msg string
}

func (e *tokenError) Error() string { return e.msg }

func (e *tokenError) Unwrap() error { return ErrUnauthorized }

// ValidationError describes which request fields were rejected.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
