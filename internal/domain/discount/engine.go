package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-discounts/internal/domain/cart"
)

// FailureMessage is exposed in Result.Error when a calculation falls back.
const FailureMessage = "discount calculation failed"

// Source provides the ordered active rule set for a calculation.
type Source interface {
	ActiveRules(ctx context.Context) ([]Rule, error)
	ClearCache(ctx context.Context)
}

// AppliedHook observes each rule application as it happens.
type AppliedHook func(ctx context.Context, a Applied, remaining int64)

// Option configures an Engine.
type Option func(*Engine)

// WithMinorUnitExponent sets the currency minor-unit exponent used to
// convert fixed amounts.
func WithMinorUnitExponent(exp int32) Option {
	return func(e *Engine) { e.exponent = exp }
}

// WithAppliedHook registers a hook invoked after each application.
func WithAppliedHook(h AppliedHook) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, h) }
}

// WithMetrics records calculation metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine applies active discount rules to carts in cascade.
type Engine struct {
	rules    Source
	exponent int32
	hooks    []AppliedHook
	metrics  *Metrics
	now      func() time.Time
}

// NewEngine creates an Engine reading rules from src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		rules:    src,
		exponent: DefaultMinorUnitExponent,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ClearCache drops the cached active rule set. Callers that change rule
// records must invoke it synchronously after the change.
func (e *Engine) ClearCache(ctx context.Context) {
	e.rules.ClearCache(ctx)
}

// Calculate applies every qualifying rule in priority order, each against
// the total left by the rules before it.
//
// Calculate never fails: when rules cannot be fetched or the loop panics
// the result carries the undiscounted subtotal and a non-empty Error.
// An empty customer type is treated as CustomerNormal.
func (e *Engine) Calculate(ctx context.Context, lines []cart.Line, customer CustomerType) (res Result) {
	lg := zctx.From(ctx)
	if customer == "" {
		customer = CustomerNormal
	}

	subtotal := cart.Subtotal(lines)
	start := e.now()
	defer func() {
		if r := recover(); r != nil {
			lg.Error("Discount calculation failed",
				zap.Any("panic", r),
				zap.Stack("stack"),
				zap.Int("lines", len(lines)),
				zap.String("customer_type", string(customer)),
			)
			res = fallbackResult(subtotal, FailureMessage)
		}
		e.metrics.recordCalculation(ctx, res, e.now().Sub(start))
	}()

	if len(lines) == 0 {
		return buildResult(0, nil, OutcomeExhausted)
	}

	rules, err := e.rules.ActiveRules(ctx)
	if err != nil {
		lg.Error("Discount calculation failed", zap.Error(errors.Wrap(err, "load active rules")))
		return fallbackResult(subtotal, FailureMessage)
	}

	applied, running, outcome := e.cascade(ctx, rules, subtotal, customer, cart.SelectedOptions(lines))

	lg.Info("Discount calculation completed",
		zap.Int64("subtotal", subtotal),
		zap.Int64("final_total", running),
		zap.Int("rules_applied", len(applied)),
		zap.String("outcome", string(outcome)),
	)
	return buildResult(subtotal, applied, outcome)
}

// cascade runs the rule loop with the running total held locally.
func (e *Engine) cascade(
	ctx context.Context,
	rules []Rule,
	subtotal int64,
	customer CustomerType,
	selected cart.OptionSet,
) ([]Applied, int64, Outcome) {
	lg := zctx.From(ctx)
	running := subtotal
	var applied []Applied

	for _, rule := range rules {
		if running <= 0 {
			return applied, running, OutcomeZeroed
		}
		if !qualifies(ctx, rule, running, customer, selected) {
			continue
		}

		amount, err := Amount(rule, running, e.exponent)
		if err != nil {
			lg.Warn("Skipping misconfigured discount rule", zap.Int64("rule_id", rule.ID), zap.Error(err))
			continue
		}
		if amount <= 0 {
			lg.Warn("Discount rule produced zero amount",
				zap.Int64("rule_id", rule.ID),
				zap.String("rule_name", rule.Name),
				zap.Int64("running_total", running),
				zap.String("value_type", string(rule.ValueType)),
				zap.Stringer("value", rule.Value),
			)
			continue
		}
		amount = min(amount, running)

		a := Applied{Rule: rule, Amount: amount, AppliedTo: running}
		applied = append(applied, a)
		running -= amount

		for _, h := range e.hooks {
			h(ctx, a, running)
		}

		if rule.StopFurther {
			lg.Info("Discount processing stopped by rule",
				zap.Int64("rule_id", rule.ID),
				zap.String("rule_name", rule.Name),
			)
			return applied, running, OutcomeStopped
		}
	}

	return applied, running, OutcomeExhausted
}
