package service

import (
	"errors"

	"github.com/samber/oops"
)

// Error kinds returned by the service. Callers compare with errors.Is; any
// other error is an internal failure.
var (
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrConfiguration      = errors.New("configuration_error")
)

// Codes attached to internal failures.
const (
	CodeStoreFailed  = "AUTH_STORE_FAILED"
	CodeHashFailed   = "AUTH_HASH_FAILED"
	CodeTokenFailed  = "AUTH_TOKEN_FAILED"
	CodeNotifyFailed = "AUTH_NOTIFY_FAILED"
)

func internalError(code, operation string, err error) error {
	return oops.Code(code).With("operation", operation).Wrap(err)
}

// Outcome names the error kind of err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	default:
		return "error"
	}
}
