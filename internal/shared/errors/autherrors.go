package errors

import "net/http"

const (
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
)

// NewInvalidCredentialsError does not say which of email or password was wrong.
func NewInvalidCredentialsError() *AppError {
	return newAppError(ErrorTypeInvalidCredentials, http.StatusUnauthorized, "Invalid email or password", nil)
}

func NewTokenExpiredError() *AppError {
	return newAppError(ErrorTypeTokenExpired, http.StatusUnauthorized, "Access token has expired", []string{"Please login again"})
}

func NewTokenInvalidError() *AppError {
	return newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, "Invalid access token", nil)
}
