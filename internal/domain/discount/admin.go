package discount

import (
	"context"

	"github.com/go-faster/errors"
)

// Admin mutates rule records and keeps the active rule cache coherent.
// Every successful mutation clears the cache before returning.
type Admin struct {
	store Store
	rules Source
}

// NewAdmin creates an Admin writing to store and invalidating rules.
func NewAdmin(store Store, rules Source) *Admin {
	return &Admin{store: store, rules: rules}
}

// Create validates and persists r, returning its id.
func (a *Admin) Create(ctx context.Context, r Rule) (int64, error) {
	if r.Priority == 0 {
		r.Priority = DefaultPriority
	}
	if err := Validate(r); err != nil {
		return 0, err
	}
	id, err := a.store.Create(ctx, r)
	if err != nil {
		return 0, errors.Wrap(err, "create rule")
	}
	a.rules.ClearCache(ctx)
	return id, nil
}

// SetActive activates or deactivates a rule.
func (a *Admin) SetActive(ctx context.Context, id int64, active bool) error {
	if err := a.store.SetActive(ctx, id, active); err != nil {
		return errors.Wrapf(err, "set rule %d active=%t", id, active)
	}
	a.rules.ClearCache(ctx)
	return nil
}

// Delete removes a rule.
func (a *Admin) Delete(ctx context.Context, id int64) error {
	if err := a.store.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete rule %d", id)
	}
	a.rules.ClearCache(ctx)
	return nil
}
