package main

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/kart-discounts/internal/domain/discount"
)

type rulePack struct {
	Rules []ruleSpec `yaml:"rules"`
}

// ruleSpec is a rule as written by hand: money in major units, validity as
// a duration from seeding time.
type ruleSpec struct {
	Name         string        `yaml:"name"`
	Type         string        `yaml:"type"`
	Value        string        `yaml:"value"`
	Comparator   string        `yaml:"comparator"`
	Threshold    string        `yaml:"threshold"`
	OptionID     *int64        `yaml:"optionId"`
	CustomerType string        `yaml:"customerType"`
	Priority     int           `yaml:"priority"`
	StopFurther  bool          `yaml:"stopFurther"`
	Inactive     bool          `yaml:"inactive"`
	ValidFor     time.Duration `yaml:"validFor"`
}

func parsePack(data []byte, now time.Time, exponent int32) ([]discount.Rule, error) {
	var pack rulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, errors.Wrap(err, "parse rule pack")
	}

	rules := make([]discount.Rule, 0, len(pack.Rules))
	for i, s := range pack.Rules {
		r, err := s.rule(now, exponent)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d (%s)", i, s.Name)
		}
		if err := discount.Validate(r); err != nil {
			return nil, errors.Wrapf(err, "rule %d (%s)", i, s.Name)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s ruleSpec) rule(now time.Time, exponent int32) (discount.Rule, error) {
	value, err := decimal.NewFromString(s.Value)
	if err != nil {
		return discount.Rule{}, errors.Wrap(err, "value")
	}
	comparator, err := discount.ParseComparator(s.Comparator)
	if err != nil {
		return discount.Rule{}, err
	}

	r := discount.Rule{
		Name:                 s.Name,
		ValueType:            discount.ValueType(s.Type),
		Value:                value,
		RequiredOptionID:     s.OptionID,
		Comparator:           comparator,
		RequiredCustomerType: discount.CustomerType(s.CustomerType),
		Active:               !s.Inactive,
		Priority:             s.Priority,
		StopFurther:          s.StopFurther,
	}
	if r.Priority == 0 {
		r.Priority = discount.DefaultPriority
	}
	if s.Threshold != "" {
		major, err := decimal.NewFromString(s.Threshold)
		if err != nil {
			return discount.Rule{}, errors.Wrap(err, "threshold")
		}
		minor := discount.ToMinor(major, exponent)
		r.Threshold = &minor
	}
	if s.ValidFor > 0 {
		from, until := now, now.Add(s.ValidFor)
		r.ValidFrom, r.ValidUntil = &from, &until
	}
	return r, nil
}
