package dto

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrDuplicateVote      = errors.New("already voted for this submission")
	ErrQuotaExhausted     = errors.New("vote quota exhausted")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrInternalFailure    = errors.New("internal failure")
)

// StatusCode maps an error produced by the service layer onto an HTTP status.
// Unknown errors are treated as internal failures.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrDuplicateVote),
		errors.Is(err, ErrQuotaExhausted),
		errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
