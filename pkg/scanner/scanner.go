// Package scanner runs the detection pipeline: load rules, match both
// automata over the input, sort and validate findings, and score the result.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/vigilsec/promptwall/pkg/matcher"
	"github.com/vigilsec/promptwall/pkg/rule"
	"github.com/vigilsec/promptwall/pkg/score"
	"github.com/vigilsec/promptwall/pkg/types"
)

// Engine scans UTF-8 text against the repository's active rule set. Safe for
// concurrent use; the compiled matcher is built once per rule-set load and
// shared read-only across scans.
type Engine struct {
	repo rule.Repository
	cfg  types.RiskConfig

	mu       sync.Mutex
	compiled *matcher.Matcher
}

// New creates an engine with the default risk configuration.
func New(repo rule.Repository) *Engine {
	return NewWithConfig(repo, types.DefaultRiskConfig())
}

// NewWithConfig creates an engine with a caller-provided risk configuration.
func NewWithConfig(repo rule.Repository, cfg types.RiskConfig) *Engine {
	return &Engine{repo: repo, cfg: cfg}
}

// Config returns the engine's risk configuration.
func (e *Engine) Config() types.RiskConfig {
	return e.cfg
}

// Scan produces a report for the input. Rule loading is the only suspension
// point; matching and scoring are synchronous. Empty input yields an empty
// report with score 0 and band Low.
func (e *Engine) Scan(ctx context.Context, text string) (*types.ScanReport, error) {
	m, err := e.matcher(ctx)
	if err != nil {
		return nil, err
	}

	findings, err := m.Match(text)
	if err != nil {
		return nil, err
	}
	score.SortFindings(findings)

	// Defensive re-check: the matcher emitting an invalid finding is a
	// programming error, not an input error.
	for i := range findings {
		if err := findings[i].Validate(); err != nil {
			return nil, fmt.Errorf("scanner emitted invalid finding: %w", err)
		}
	}

	normalizedLen := len(text)
	breakdown := score.Breakdown(findings, normalizedLen, e.cfg)
	return types.NewReport(findings, normalizedLen, breakdown, e.cfg.Thresholds), nil
}

// matcher loads the rule set and compiles both automata, caching the result.
// The first successful compilation wins; failures are retried on the next
// scan.
func (e *Engine) matcher(ctx context.Context) (*matcher.Matcher, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compiled != nil {
		return e.compiled, nil
	}

	rules, err := e.repo.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	m, err := matcher.Compile(rules)
	if err != nil {
		return nil, err
	}
	e.compiled = m
	return m, nil
}
