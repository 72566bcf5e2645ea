// Package cart holds the plain cart data handed to pricing.
package cart

import "fmt"

// Line is one configured product in the cart.
type Line struct {
	ProductID int64
	Quantity  int
	// Selections maps attribute id to the chosen option id.
	Selections map[int64]int64
	// Amount is the line total in minor units, already multiplied by
	// Quantity. Pricing never recomputes it.
	Amount int64
}

// InvalidLineError reports a malformed cart line.
type InvalidLineError struct {
	Index  int
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("cart line %d: %s", e.Index, e.Reason)
}

// Validate checks the structural constraints on lines.
func Validate(lines []Line) error {
	for i, l := range lines {
		if l.Quantity < 1 {
			return &InvalidLineError{Index: i, Reason: "quantity must be at least 1"}
		}
		if l.Amount < 0 {
			return &InvalidLineError{Index: i, Reason: "amount must not be negative"}
		}
	}
	return nil
}

// Subtotal returns the sum of line amounts.
func Subtotal(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount
	}
	return total
}

// OptionSet is the deduplicated set of option ids selected across a cart.
type OptionSet map[int64]struct{}

// Has reports whether id was selected on any line.
func (s OptionSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// SelectedOptions unions the selections of every line.
func SelectedOptions(lines []Line) OptionSet {
	set := make(OptionSet)
	for _, l := range lines {
		for _, opt := range l.Selections {
			set[opt] = struct{}{}
		}
	}
	return set
}
