package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments exported over OTLP
// alongside the Prometheus registry
type OTelMetrics struct {
	reconciliationDuration metric.Float64Histogram
	usageQuantity          metric.Int64Counter
	verificationDuration   metric.Float64Histogram
}

// NewOTelMetrics creates the instruments on the global meter provider
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/roamjs/gateway")

	m := &OTelMetrics{}
	var err error

	m.reconciliationDuration, err = meter.Float64Histogram(
		"roamjs.usage.reconciliation.duration",
		metric.WithDescription("Usage reconciliation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciliation duration histogram: %w", err)
	}

	m.usageQuantity, err = meter.Int64Counter(
		"roamjs.usage.quantity",
		metric.WithDescription("Usage quantity applied to subscriptions"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage quantity counter: %w", err)
	}

	m.verificationDuration, err = meter.Float64Histogram(
		"roamjs.auth.verification.duration",
		metric.WithDescription("Credential verification duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification duration histogram: %w", err)
	}

	return m, nil
}

// RecordReconciliation records one reconciliation attempt. quantity is only
// counted for successful attempts.
func (m *OTelMetrics) RecordReconciliation(ctx context.Context, env, extension, kind string, quantity int64, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("environment", env),
		attribute.String("extension", extension),
		attribute.String("kind", kind),
		attribute.Int("status", status),
	)
	m.reconciliationDuration.Record(ctx, duration.Seconds(), attrs)
	if status < 300 {
		m.usageQuantity.Add(ctx, quantity, attrs)
	}
}

// RecordVerification records the duration of one credential verification
func (m *OTelMetrics) RecordVerification(ctx context.Context, guard, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.verificationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("guard", guard),
		attribute.String("outcome", outcome),
	))
}
