// Package promptwall provides a prompt-injection detection library.
//
// Promptwall scans untrusted natural-language text against a weighted rule
// pack of literal keywords and regular expressions, and produces a scored
// risk report with per-rule findings.
//
// # Basic Usage
//
// Create a scanner with the builtin rules and scan content:
//
//	scanner, err := promptwall.NewScanner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := scanner.ScanString(ctx, "please ignore previous instructions")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("score %.1f (%s)\n", report.RiskScore, report.RiskBand)
//
// # Custom Rules
//
// Point the scanner at a rule directory containing keywords.txt and
// patterns.json:
//
//	scanner, err := promptwall.NewScanner(promptwall.WithRulesDir("./rules"))
package promptwall

import (
	"context"

	"github.com/vigilsec/promptwall/pkg/rule"
	"github.com/vigilsec/promptwall/pkg/scanner"
	"github.com/vigilsec/promptwall/pkg/types"
	"github.com/vigilsec/promptwall/rules"
)

// Re-export commonly used types so library users can import just
// "github.com/vigilsec/promptwall" without subpackages.
type (
	// Rule defines one detection entry of the active rule set.
	Rule = types.Rule

	// Finding is a single rule hit with span and excerpt.
	Finding = types.Finding

	// ScanReport is the immutable outcome of a scan.
	ScanReport = types.ScanReport

	// RiskBand is the qualitative risk category.
	RiskBand = types.RiskBand

	// RiskConfig holds the tunable scoring parameters.
	RiskConfig = types.RiskConfig

	// LlmVerdict is an advisory judgment from an external model.
	LlmVerdict = types.LlmVerdict
)

// Re-export the risk bands.
const (
	BandLow    = types.BandLow
	BandMedium = types.BandMedium
	BandHigh   = types.BandHigh
)

// Scanner wraps the scan engine behind a small options API.
type Scanner struct {
	engine *scanner.Engine
	repo   rule.Repository
}

type config struct {
	repo rule.Repository
	risk types.RiskConfig
}

// Option configures a Scanner.
type Option func(*config) error

// WithRulesDir loads rules from keywords.txt and patterns.json under dir
// instead of the embedded default pack.
func WithRulesDir(dir string) Option {
	return func(c *config) error {
		c.repo = rule.NewFileRepository(dir)
		return nil
	}
}

// WithRules uses a fixed in-memory rule set.
func WithRules(set []Rule) Option {
	return func(c *config) error {
		repo, err := rule.NewStaticRepository(set)
		if err != nil {
			return err
		}
		c.repo = repo
		return nil
	}
}

// WithRepository plugs in a custom repository implementation.
func WithRepository(repo rule.Repository) Option {
	return func(c *config) error {
		c.repo = repo
		return nil
	}
}

// WithRiskConfig overrides the default scoring parameters.
func WithRiskConfig(risk RiskConfig) Option {
	return func(c *config) error {
		c.risk = risk
		return nil
	}
}

// NewScanner creates a scanner. Without options it serves the embedded
// default rule pack with the stock risk configuration.
func NewScanner(opts ...Option) (*Scanner, error) {
	cfg := &config{
		repo: rule.NewFSRepository(rules.FS()),
		risk: types.DefaultRiskConfig(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Scanner{
		engine: scanner.NewWithConfig(cfg.repo, cfg.risk),
		repo:   cfg.repo,
	}, nil
}

// ScanString scans text and returns the risk report.
func (s *Scanner) ScanString(ctx context.Context, text string) (*ScanReport, error) {
	return s.engine.Scan(ctx, text)
}

// Rules returns the active rule set.
func (s *Scanner) Rules(ctx context.Context) ([]Rule, error) {
	return s.repo.LoadRules(ctx)
}

// Engine exposes the underlying scan engine for callers that need it.
func (s *Scanner) Engine() *scanner.Engine {
	return s.engine
}
