package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingCredentials is returned when username or password is absent.
	ErrMissingCredentials = errors.New("User should provide username and password.")
	// ErrMissingPassword is returned when a password update carries no password.
	ErrMissingPassword = errors.New("User should provide password.")
	// ErrMissingToken is returned when a protected route is called without a bearer token.
	ErrMissingToken = errors.New("User should provide token.")
	// ErrInvalidToken is returned for malformed, tampered or expired tokens.
	ErrInvalidToken = errors.New("Token is not valid.")
	// ErrPasswordMismatch is returned when the password does not match the stored hash.
	ErrPasswordMismatch = errors.New("Username and password mismatch.")
	// ErrUserNotFound is returned when a user id or username does not resolve.
	ErrUserNotFound = errors.New("User not found.")
	// ErrUserExists is returned when signing up with a taken username.
	ErrUserExists = errors.New("User with that username already exists.")
)

// InternalMessage is the only message clients see for uncategorized failures.
const InternalMessage = "Something went wrong."

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message}
}

// MapErrorToHTTP maps domain errors, wrapped or not, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusBadRequest, ErrMissingCredentials.Error())
	case errors.Is(err, ErrMissingPassword):
		return NewHTTPError(http.StatusBadRequest, ErrMissingPassword.Error())
	case errors.Is(err, ErrMissingToken):
		return NewHTTPError(http.StatusUnauthorized, ErrMissingToken.Error())
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusUnauthorized, ErrPasswordMismatch.Error())
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error())
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, ErrUserExists.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, InternalMessage)
	}
}
