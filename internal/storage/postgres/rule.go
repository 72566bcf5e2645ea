package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-discounts/internal/domain/discount"
)

const (
	ruleColumns = `id, name, discount_type, discount_value, attribute_option_id,
		comparator, threshold, user_type, is_active, priority, stop_further, starts_at, ends_at`

	fetchActiveRulesSQL = `SELECT ` + ruleColumns + `
		FROM discount_rules
		WHERE is_active
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY priority, id`

	insertRuleSQL = `INSERT INTO discount_rules
		(name, discount_type, discount_value, attribute_option_id, comparator, threshold,
		 user_type, is_active, priority, stop_further, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	upsertRuleSQL = `INSERT INTO discount_rules
		(name, discount_type, discount_value, attribute_option_id, comparator, threshold,
		 user_type, is_active, priority, stop_further, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			attribute_option_id = EXCLUDED.attribute_option_id,
			comparator = EXCLUDED.comparator,
			threshold = EXCLUDED.threshold,
			user_type = EXCLUDED.user_type,
			is_active = EXCLUDED.is_active,
			priority = EXCLUDED.priority,
			stop_further = EXCLUDED.stop_further,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			updated_at = NOW()
		RETURNING id`

	setRuleActiveSQL = `UPDATE discount_rules SET is_active = $2, updated_at = NOW() WHERE id = $1`

	deleteRuleSQL = `DELETE FROM discount_rules WHERE id = $1`
)

const uniqueViolation = "23505"

var (
	_ discount.Repository = (*RuleRepository)(nil)
	_ discount.Store      = (*RuleRepository)(nil)
)

// RuleRepository implements discount.Repository and discount.Store backed
// by PostgreSQL.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository returns a RuleRepository that uses the given pool.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// FetchActive returns enabled rules whose validity window contains now,
// ordered by priority then id.
func (r *RuleRepository) FetchActive(ctx context.Context, now time.Time) ([]discount.Rule, error) {
	rows, err := r.pool.Query(ctx, fetchActiveRulesSQL, now)
	if err != nil {
		return nil, fmt.Errorf("finding active rules: %w", err)
	}
	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("finding active rules: %w", err)
	}
	return rules, nil
}

// Create inserts a rule and returns its id.
func (r *RuleRepository) Create(ctx context.Context, rule discount.Rule) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, insertRuleSQL, ruleArgs(rule)...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, errors.Wrapf(discount.ErrRuleExists, "%q", rule.Name)
		}
		return 0, fmt.Errorf("creating rule %q: %w", rule.Name, err)
	}
	return id, nil
}

// Upsert inserts a rule or replaces the one with the same name.
func (r *RuleRepository) Upsert(ctx context.Context, rule discount.Rule) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, upsertRuleSQL, ruleArgs(rule)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upserting rule %q: %w", rule.Name, err)
	}
	return id, nil
}

// SetActive toggles a rule. Returns discount.ErrRuleNotFound for unknown ids.
func (r *RuleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, setRuleActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("updating rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule. Returns discount.ErrRuleNotFound for unknown ids.
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteRuleSQL, id)
	if err != nil {
		return fmt.Errorf("deleting rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrRuleNotFound
	}
	return nil
}

func ruleArgs(rule discount.Rule) []any {
	return []any{
		rule.Name,
		string(rule.ValueType),
		rule.Value,
		rule.RequiredOptionID,
		nullString(string(rule.Comparator)),
		rule.Threshold,
		nullString(string(rule.RequiredCustomerType)),
		rule.Active,
		int32(rule.Priority),
		rule.StopFurther,
		rule.ValidFrom,
		rule.ValidUntil,
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanRule(row pgx.CollectableRow) (discount.Rule, error) {
	var (
		rule       discount.Rule
		valueType  string
		comparator *string
		userType   *string
		priority   int32
	)
	err := row.Scan(
		&rule.ID, &rule.Name, &valueType, &rule.Value, &rule.RequiredOptionID,
		&comparator, &rule.Threshold, &userType, &rule.Active, &priority, &rule.StopFurther,
		&rule.ValidFrom, &rule.ValidUntil,
	)
	rule.ValueType = discount.ValueType(valueType)
	if comparator != nil {
		rule.Comparator = discount.Comparator(*comparator)
	}
	if userType != nil {
		rule.RequiredCustomerType = discount.CustomerType(*userType)
	}
	rule.Priority = int(priority)
	return rule, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
