package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records credential vault operations.
type BusinessMetrics interface {
	// RecordOperation counts an operation, e.g. ("credentials", "credential_save", "success").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordStoreTier counts which credential store tier ("primary" or "fallback") served a request.
	RecordStoreTier(ctx context.Context, tier string)

	// RecordKeyCheck counts provider key checks by credential kind and result
	// ("valid", "rejected", "error").
	RecordKeyCheck(ctx context.Context, kind, result string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	storeTierCounter metric.Int64Counter
	keyCheckCounter  metric.Int64Counter
}

// NewBusinessMetrics creates BusinessMetrics backed by meterProvider.
// Metric names are prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	storeTierCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_store_selections_total", namespace),
		metric.WithDescription("Credential store tier chosen per request"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store tier counter: %w", err)
	}

	keyCheckCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_key_checks_total", namespace),
		metric.WithDescription("Provider key checks by result"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key check counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		storeTierCounter: storeTierCounter,
		keyCheckCounter:  keyCheckCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordStoreTier(ctx context.Context, tier string) {
	b.storeTierCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

func (b *businessMetrics) RecordKeyCheck(ctx context.Context, kind, result string) {
	b.keyCheckCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("result", result),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordStoreTier does nothing.
func (n *NoOpBusinessMetrics) RecordStoreTier(ctx context.Context, tier string) {}

// RecordKeyCheck does nothing.
func (n *NoOpBusinessMetrics) RecordKeyCheck(ctx context.Context, kind, result string) {}
