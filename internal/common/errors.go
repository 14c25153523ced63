// Package common defines sentinel errors, shared constants and small random
// helpers used across the gophauth server and client. Callers should use
// errors.Is to match the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInvalidCredential = errors.New("invalid or expired code")
	ErrorUnauthorized      = errors.New("invalid email or password")
	ErrorDependencyFailure = errors.New("dependency failure")
	ErrorTooManyRequests   = errors.New("too many requests")
	ErrorInternal          = errors.New("internal error")

	// Request validation.
	ErrorValidation = errors.New("validation error")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
