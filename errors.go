package keygate

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailTaken       = "EMAIL_ALREADY_REGISTERED"
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeInvalidToken     = "INVALID_TOKEN"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeMissingToken     = "MISSING_TOKEN"
	TextCodeForbidden        = "INSUFFICIENT_ROLE"
	TextCodeUserNotFound     = "USER_NOT_FOUND"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeRefreshMismatch  = "REFRESH_TOKEN_SUPERSEDED"
	TextCodeTooManyAttempts  = "TOO_MANY_ATTEMPTS"
	TextCodeValidationFailed = "VALIDATION_FAILED"
)

// ErrEmailTaken is returned when a signup email is already registered.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials covers both unknown-email and bad-password login
// failures. Callers get the same error either way so the response cannot be
// used as a username oracle.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken is the single externally visible token failure. It stands in
// for bad signatures, malformed tokens, and wrong key classes alike.
var ErrInvalidToken = errors.New("invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired marks a token past its validity window. It maps to the same
// status and message as ErrInvalidToken at the HTTP boundary.
var ErrTokenExpired = errors.New("invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when a request carries no usable credential.
var ErrMissingToken = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshSuperseded is returned when a refresh token verifies
// cryptographically but no longer matches the stored copy, meaning it was
// overwritten by a later login or cleared by logout.
var ErrRefreshSuperseded = errors.New("invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when an authenticated user lacks the required role.
var ErrForbidden = errors.New("forbidden", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrUserNotFound is returned when a referenced user record is absent.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrTooManyAttempts is returned by the limiter on auth-mutating routes.
var ErrTooManyAttempts = errors.New("Too many attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(429)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
