package investec

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	clientTracer       = otel.Tracer("investecpb/investec")
	clientMeter        = otel.Meter("investecpb/investec")
	requestDuration, _ = clientMeter.Float64Histogram("investec.client.request.duration",
		metric.WithDescription("Investec API request duration in seconds"),
		metric.WithUnit("s"),
	)
	requestTotal, _ = clientMeter.Int64Counter("investec.client.request.total",
		metric.WithDescription("Total Investec API requests"),
	)
)

// instrument starts a client span for op and returns a func that ends it and
// records request metrics
func (c *Client) instrument(ctx context.Context, op, method string) (context.Context, func(status int, err error)) {
	ctx, span := clientTracer.Start(ctx, "investec."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("investec.operation", op),
			attribute.String("http.method", method),
		),
	)
	start := time.Now()

	return ctx, func(status int, err error) {
		defer span.End()

		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status != http.StatusOK:
			outcome = "error"
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if status != 0 {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}

		attrs := metric.WithAttributes(
			attribute.String("investec.operation", op),
			attribute.Int("http.status_code", status),
			attribute.String("outcome", outcome),
		)
		requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		requestTotal.Add(ctx, 1, attrs)
	}
}
