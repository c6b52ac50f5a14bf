package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aussiebroadwan/accounts/internal/auth/service")

// begin opens a span for operation. The returned func records the outcome
// of *errp on the span and in m, then ends the span.
func begin(ctx context.Context, m *metrics.Metrics, operation string) (context.Context, func(errp *error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "auth."+operation,
		trace.WithAttributes(attribute.String("auth.operation", operation)),
	)

	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		outcome := Outcome(err)

		span.SetAttributes(attribute.String("auth.outcome", outcome))
		if outcome == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		m.Observe(operation, outcome, time.Since(start))
	}
}
