package apperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a service error into an echo HTTPError carrying the
// machine-readable reason. Internal details are never exposed to clients.
func ToHTTP(err error) *echo.HTTPError {
	return echo.NewHTTPError(StatusCode(err), Reason(err))
}
