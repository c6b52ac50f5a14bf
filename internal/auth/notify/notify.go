// Package notify delivers email confirmation links and two-factor codes.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// LogNotifier records dispatches in the log without the secret itself. It
// is meant for development and for deployments that deliver out of band.
type LogNotifier struct{}

func (LogNotifier) SendEmailConfirmation(ctx context.Context, email, _ string) error {
	slogx.FromContext(ctx).Info("email confirmation dispatched", slog.String("email", email))
	return nil
}

func (LogNotifier) SendTwoFactorCode(ctx context.Context, email, _ string, expiresAt time.Time) error {
	slogx.FromContext(ctx).Info("two-factor code dispatched",
		slog.String("email", email), slog.Time("expires_at", expiresAt))
	return nil
}
