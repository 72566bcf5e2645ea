package discount

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the discount engine instruments. A nil *Metrics records nothing.
type Metrics struct {
	calculations metric.Int64Counter
	fallbacks    metric.Int64Counter
	applied      metric.Int64Counter
	discounted   metric.Int64Counter
	cache        metric.Int64Counter
	duration     metric.Float64Histogram
}

// NewMetrics registers the discount instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.calculations, err = meter.Int64Counter("discount.calculations",
		metric.WithDescription("Discount calculations performed"),
	); err != nil {
		return nil, errors.Wrap(err, "calculations counter")
	}
	if m.fallbacks, err = meter.Int64Counter("discount.fallbacks",
		metric.WithDescription("Calculations that fell back to no discount"),
	); err != nil {
		return nil, errors.Wrap(err, "fallbacks counter")
	}
	if m.applied, err = meter.Int64Counter("discount.rules_applied",
		metric.WithDescription("Rule applications"),
	); err != nil {
		return nil, errors.Wrap(err, "rules applied counter")
	}
	if m.discounted, err = meter.Int64Counter("discount.amount",
		metric.WithDescription("Discount granted"),
		metric.WithUnit("{minor_unit}"),
	); err != nil {
		return nil, errors.Wrap(err, "amount counter")
	}
	if m.cache, err = meter.Int64Counter("discount.rule_cache",
		metric.WithDescription("Active rule cache lookups"),
	); err != nil {
		return nil, errors.Wrap(err, "cache counter")
	}
	if m.duration, err = meter.Float64Histogram("discount.calculation.duration",
		metric.WithDescription("Calculation latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Wrap(err, "duration histogram")
	}
	return &m, nil
}

// Hook returns an AppliedHook that counts rule applications.
func (m *Metrics) Hook() AppliedHook {
	return func(ctx context.Context, a Applied, _ int64) {
		if m == nil {
			return
		}
		attrs := metric.WithAttributes(attribute.String("rule_id", strconv.FormatInt(a.Rule.ID, 10)))
		m.applied.Add(ctx, 1, attrs)
		m.discounted.Add(ctx, a.Amount, attrs)
	}
}

func (m *Metrics) recordCalculation(ctx context.Context, res Result, took time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", string(res.Outcome)))
	m.calculations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, took.Seconds(), attrs)
	if res.Failed() {
		m.fallbacks.Add(ctx, 1)
	}
}

func (m *Metrics) recordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
