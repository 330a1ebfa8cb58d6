package rule

import (
	"context"
	"fmt"

	"github.com/vigilsec/promptwall/pkg/types"
)

// Repository supplies the active rule set. Implementations must be safe to
// share across concurrent scans.
type Repository interface {
	// LoadRules returns the full active set.
	LoadRules(ctx context.Context) ([]types.Rule, error)

	// GetRule returns a single rule by id, or nil if absent.
	GetRule(ctx context.Context, id string) (*types.Rule, error)
}

// ParseError reports a malformed rule file, naming the file and, when
// line-oriented, the 1-based line number.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// DuplicateRuleError reports an id appearing more than once in the active set.
type DuplicateRuleError struct {
	RuleID string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.RuleID)
}
