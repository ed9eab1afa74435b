package apperrors

import "errors"

var (
	ErrGuestNotFound       = errors.New("guest not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorage             = errors.New("storage error")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInternalServerError = errors.New("internal server error")
)
