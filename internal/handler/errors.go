package handler

import (
	"errors"
	"net/http"

	"franchiseos-backend/internal/service"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/pkg/response"
)

// writeServiceError maps service-layer errors onto HTTP statuses. Anything
// unrecognized becomes a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	var mismatch *service.OTPMismatchError
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(w, err.Error())
	case errors.Is(err, store.ErrStoreBusy):
		response.ServiceUnavailable(w, "Server busy, please retry")
	case errors.Is(err, service.ErrInvalidPhone):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrOTPNotFound),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPExhausted):
		response.Unauthorized(w, err.Error())
	case errors.As(err, &mismatch):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrDispatchFailed):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.InternalError(w, "Internal server error")
	}
}
