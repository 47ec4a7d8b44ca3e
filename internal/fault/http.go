package fault

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error from the taxonomy to an HTTP status code.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var insufficient *InsufficientFundsError
	var mismatch *BiometricMismatchError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSelfTransfer):
		return http.StatusUnprocessableEntity
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStaleState):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
