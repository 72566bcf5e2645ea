package discount

import "fmt"

// Outcome records how the cascade loop terminated.
type Outcome string

const (
	// OutcomeExhausted means every rule was considered.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeStopped means an applied rule carried StopFurther.
	OutcomeStopped Outcome = "stopped"
	// OutcomeZeroed means the running total reached zero.
	OutcomeZeroed Outcome = "zeroed"
	// OutcomeFailed means the calculation was aborted and no discount applied.
	OutcomeFailed Outcome = "failed"
)

// Applied is one rule application in cascade order.
type Applied struct {
	Rule   Rule
	Amount int64
	// AppliedTo is the running total before this rule's deduction.
	AppliedTo int64
}

// Step is one line of the audit trail.
type Step struct {
	Index       int
	Description string
	// Total is the running total after this step.
	Total     int64
	Discount  int64
	AppliedTo int64
}

// Result is the outcome of a discount calculation. All amounts are minor units.
type Result struct {
	Subtotal      int64
	Applied       []Applied
	TotalDiscount int64
	FinalTotal    int64
	Steps         []Step
	Outcome       Outcome
	// Error is set when the calculation fell back to no discount.
	Error string
}

// Failed reports whether the result is a fallback.
func (r Result) Failed() bool {
	return r.Error != ""
}

const originalSubtotalLabel = "Original Subtotal"

func buildResult(subtotal int64, applied []Applied, outcome Outcome) Result {
	var totalDiscount int64
	for _, a := range applied {
		totalDiscount += a.Amount
	}
	if applied == nil {
		applied = []Applied{}
	}
	return Result{
		Subtotal:      subtotal,
		Applied:       applied,
		TotalDiscount: totalDiscount,
		FinalTotal:    max(0, subtotal-totalDiscount),
		Steps:         buildSteps(subtotal, applied),
		Outcome:       outcome,
	}
}

func buildSteps(subtotal int64, applied []Applied) []Step {
	steps := make([]Step, 0, len(applied)+1)
	steps = append(steps, Step{
		Index:       0,
		Description: originalSubtotalLabel,
		Total:       subtotal,
		AppliedTo:   subtotal,
	})

	running := subtotal
	for i, a := range applied {
		running -= a.Amount
		steps = append(steps, Step{
			Index:       i + 1,
			Description: stepLabel(a.Rule),
			Total:       running,
			Discount:    a.Amount,
			AppliedTo:   a.AppliedTo,
		})
	}
	return steps
}

func stepLabel(r Rule) string {
	kind := "Order-level"
	if r.AttributeBased() {
		kind = "Attribute-based"
	}
	return fmt.Sprintf("After: %s (%s)", r.Name, kind)
}

func fallbackResult(subtotal int64, msg string) Result {
	return Result{
		Subtotal:   subtotal,
		Applied:    []Applied{},
		FinalTotal: subtotal,
		Steps:      []Step{},
		Outcome:    OutcomeFailed,
		Error:      msg,
	}
}
