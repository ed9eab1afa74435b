package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.GetTracerProvider().Tracer("wedding-guest-list/internal/repository")

func startSpan(ctx context.Context, backend, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "GuestRepository."+op,
		trace.WithAttributes(attribute.String("db.system", backend)),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
