package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Operational errors surfaced to clients. Anything not in this taxonomy is
// treated as a downstream/internal failure and reported generically.
var (
	ErrUnauthenticated       = errors.New("you are not logged in, please log in to get access")
	ErrInvalidToken          = errors.New("invalid token, please log in again")
	ErrExpiredToken          = errors.New("your token has expired, please log in again")
	ErrUnknownSubject        = errors.New("the user belonging to this token no longer exists")
	ErrStalePassword         = errors.New("password was recently changed, please log in again")
	ErrForbidden             = errors.New("you do not have permission to perform this action")
	ErrAccountFrozen         = errors.New("maximum login attempts reached, your account has been frozen")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
	ErrInvalidOrExpiredToken = errors.New("token is invalid or has expired")
	ErrNotFound              = errors.New("no document found with that ID")
	ErrDownstream            = errors.New("something went very wrong")
)

// ValidationError carries a schema-level rejection message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Status maps a taxonomy error to its HTTP status code.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrUnknownSubject),
		errors.Is(err, ErrStalePassword),
		errors.Is(err, ErrAccountFrozen),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidOrExpiredToken), errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether the error is an expected, user-facing one.
func Operational(err error) bool { return Status(err) != http.StatusInternalServerError }
