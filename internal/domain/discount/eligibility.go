package discount

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-discounts/internal/domain/cart"
)

// Qualifies reports whether rule applies to the current cart state.
// Conditions are checked in order attribute, threshold, customer type and
// the first failing one short-circuits. runningTotal is the total after the
// discounts already applied in this calculation.
func Qualifies(rule Rule, runningTotal int64, customer CustomerType, selected cart.OptionSet) bool {
	return qualifies(context.Background(), rule, runningTotal, customer, selected)
}

func qualifies(ctx context.Context, rule Rule, runningTotal int64, customer CustomerType, selected cart.OptionSet) bool {
	lg := zctx.From(ctx)

	if rule.RequiredOptionID != nil && !selected.Has(*rule.RequiredOptionID) {
		lg.Debug("Rule disqualified: required option not selected",
			zap.Int64("rule_id", rule.ID),
			zap.Int64("required_option_id", *rule.RequiredOptionID),
		)
		return false
	}

	if rule.HasThreshold() && !rule.Comparator.Evaluate(runningTotal, *rule.Threshold) {
		lg.Debug("Rule disqualified: threshold not met",
			zap.Int64("rule_id", rule.ID),
			zap.Int64("running_total", runningTotal),
			zap.String("comparator", string(rule.Comparator)),
			zap.Int64("threshold", *rule.Threshold),
		)
		return false
	}

	if rule.RequiredCustomerType != "" && rule.RequiredCustomerType != customer {
		lg.Debug("Rule disqualified: customer type mismatch",
			zap.Int64("rule_id", rule.ID),
			zap.String("required", string(rule.RequiredCustomerType)),
			zap.String("actual", string(customer)),
		)
		return false
	}

	return true
}
