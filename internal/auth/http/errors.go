package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeRequest reads and validates a JSON body, writing invalid_request on
// failure. It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	log := slogx.FromContext(r.Context())

	if err := httpx.DecodeJSON(w, r, v); err != nil {
		log.Debug("malformed request body", slog.Any("error", err))
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	if err := validate.Struct(v); err != nil {
		log.Debug("request validation failed", slog.Any("error", err))
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

// writeServiceError renders a service error kind. Anything outside the
// closed set is logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		authsdk.ErrConflict.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		authsdk.ErrInvalidCode.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		authsdk.ErrServerError.WriteError(w)
	}
}
