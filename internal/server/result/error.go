// Package result holds the error catalogue and the Result type returned by
// the authentication service to its transports.
package result

import "net/http"

// Error is a catalogue entry: a stable machine code, a human description and
// the HTTP status a transport should answer with. Errors are comparable, so
// errors.Is matches catalogue values directly.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	HTTPStatus  int    `json:"-"`
}

func (e Error) Error() string {
	return e.Code + ": " + e.Description
}

var (
	UserNotFound         = Error{"UserNotFound", "User not found", http.StatusNotFound}
	PasswordDoesNotMatch = Error{"PasswordDoesNotMatch", "Password doesn't match", http.StatusUnauthorized}
	InvalidRefreshToken  = Error{"InvalidRefreshToken", "Invalid refresh token", http.StatusUnauthorized}
	RefreshTokenNotFound = Error{"RefreshTokenNotFound", "Refresh token not found", http.StatusUnauthorized}
	UnauthorizedAccess   = Error{"UnauthorizedAccess", "Unauthorized access to the resource", http.StatusUnauthorized}
	BadRequest           = Error{"BadRequest", "Bad request - invalid or missing data", http.StatusBadRequest}
	Timeout              = Error{"Timeout", "Operation timed out", http.StatusRequestTimeout}
	ServerError          = Error{"ServerError", "Internal server error occurred", http.StatusInternalServerError}
)
