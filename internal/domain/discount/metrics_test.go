package discount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestMetrics(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	e := NewEngine(
		&mockSource{rules: []Rule{percentRule(1, 1, "0.10")}},
		WithMetrics(m),
		WithAppliedHook(m.Hook()),
	)
	res := e.Calculate(context.Background(), singleLine(1_000), CustomerNormal)
	assert.Equal(t, int64(900), res.FinalTotal)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Hook()(ctx, Applied{Amount: 1}, 0)
		m.recordCalculation(ctx, Result{}, 0)
		m.recordCache(ctx, true)
	})
}
