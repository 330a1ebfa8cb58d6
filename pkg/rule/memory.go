package rule

import (
	"context"

	"github.com/vigilsec/promptwall/pkg/types"
)

// StaticRepository serves a fixed in-memory rule set. Useful for tests and
// for embedding promptwall as a library with programmatic rules.
type StaticRepository struct {
	rules []types.Rule
}

// NewStaticRepository validates the given rules, rejects duplicate ids, and
// returns a repository serving copies of them.
func NewStaticRepository(rules []types.Rule) (*StaticRepository, error) {
	seen := make(map[string]bool, len(rules))
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
		if seen[rules[i].ID] {
			return nil, &DuplicateRuleError{RuleID: rules[i].ID}
		}
		seen[rules[i].ID] = true
	}
	owned := make([]types.Rule, len(rules))
	copy(owned, rules)
	return &StaticRepository{rules: owned}, nil
}

// LoadRules returns a copy of the fixed set.
func (r *StaticRepository) LoadRules(ctx context.Context) ([]types.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Rule, len(r.rules))
	copy(out, r.rules)
	return out, nil
}

// GetRule returns a single rule by id, or nil when absent.
func (r *StaticRepository) GetRule(ctx context.Context, id string) (*types.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range r.rules {
		if r.rules[i].ID == id {
			rule := r.rules[i]
			return &rule, nil
		}
	}
	return nil, nil
}
