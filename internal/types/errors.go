package types

import "errors"

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrInvalidToken = errors.New("token invalid")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotRegistered = errors.New("user is not registered")
var ErrInvalidInput = errors.New("invalid input")

// ValidationError carries a message that is safe to return to the client.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
