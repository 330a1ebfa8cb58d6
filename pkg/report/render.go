// Package report serializes scan reports to human-readable text or a stable
// JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/vigilsec/promptwall/pkg/types"
)

// Format selects a renderer.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// Render produces the report in the requested format. Output is deterministic
// for a given report.
func Render(r *types.ScanReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(r)
	default:
		return renderHuman(r), nil
	}
}

func renderHuman(r *types.ScanReport) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Risk Score: %s\n", bandColor(r.RiskBand).Sprintf("%.1f (%s)", r.RiskScore, r.RiskBand))
	fmt.Fprintf(&out, "Normalized Length: %d chars\n\n", r.NormalizedLen)

	if len(r.Findings) == 0 {
		out.WriteString("No findings detected.\n")
	} else {
		out.WriteString("Findings:\n")
		for i := range r.Findings {
			f := &r.Findings[i]
			fmt.Fprintf(&out, "  - %s [%.1f] @ %d..%d\n", f.RuleID, f.Weight, f.Span.Start, f.Span.End)
			if strings.TrimSpace(f.Excerpt) != "" {
				fmt.Fprintf(&out, "    %q\n", sanitizeExcerpt(f.Excerpt))
			}
		}
	}

	out.WriteString("\nFamily Contributions:\n")
	for _, fam := range r.ScoreBreakdown.FamilyContributions {
		fmt.Fprintf(&out, "  - %12s: raw %.1f, adjusted %.1f (occurrences: %d)\n",
			fam.Family, fam.RawWeight, fam.AdjustedWeight, fam.Occurrences)
	}

	fmt.Fprintf(&out, "\nLength factor: %.2f, Adjusted total: %.1f\n",
		r.ScoreBreakdown.LengthFactor, r.ScoreBreakdown.AdjustedTotal)

	if r.LlmVerdict != nil {
		fmt.Fprintf(&out, "\nLLM Verdict: %s\n", r.LlmVerdict.Label)
		fmt.Fprintf(&out, "  Rationale: %s\n", r.LlmVerdict.Rationale)
		fmt.Fprintf(&out, "  Mitigation: %s\n", r.LlmVerdict.Mitigation)
	}

	return out.String()
}

// sanitizeExcerpt replaces newlines and carriage returns with spaces so a
// finding renders on one line.
func sanitizeExcerpt(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}

func bandColor(band types.RiskBand) *color.Color {
	switch band {
	case types.BandHigh:
		return color.New(color.FgRed, color.Bold)
	case types.BandMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// jsonReport is the stable wire shape of a report. Family contributions are
// surfaced both at the top level and inside the breakdown for consumers that
// only read one or the other.
type jsonReport struct {
	RiskScore           float64                    `json:"risk_score"`
	RiskBand            types.RiskBand             `json:"risk_band"`
	NormalizedLen       int                        `json:"normalized_len"`
	Findings            []types.Finding            `json:"findings"`
	FamilyContributions []types.FamilyContribution `json:"family_contributions"`
	Breakdown           types.ScoreBreakdown       `json:"breakdown"`
	LlmVerdict          *types.LlmVerdict          `json:"llm_verdict"`
}

func renderJSON(r *types.ScanReport) (string, error) {
	doc := jsonReport{
		RiskScore:           r.RiskScore,
		RiskBand:            r.RiskBand,
		NormalizedLen:       r.NormalizedLen,
		Findings:            r.Findings,
		FamilyContributions: r.ScoreBreakdown.FamilyContributions,
		Breakdown:           r.ScoreBreakdown,
		LlmVerdict:          r.LlmVerdict,
	}
	if doc.Findings == nil {
		doc.Findings = []types.Finding{}
	}
	if doc.FamilyContributions == nil {
		doc.FamilyContributions = []types.FamilyContribution{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(data), nil
}

// Parse decodes a structured JSON report back into a ScanReport. Together
// with Render(FormatJSON) this round-trips without loss.
func Parse(data []byte) (*types.ScanReport, error) {
	var doc jsonReport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &types.ScanReport{
		RiskScore:      doc.RiskScore,
		RiskBand:       doc.RiskBand,
		NormalizedLen:  doc.NormalizedLen,
		Findings:       doc.Findings,
		ScoreBreakdown: doc.Breakdown,
		LlmVerdict:     doc.LlmVerdict,
	}, nil
}
