// Package score turns a sorted list of findings into an explainable risk
// breakdown: family bucketing with repeat dampening, a length-derived
// multiplier, and the clamped overall score.
package score

import (
	"sort"

	"github.com/vigilsec/promptwall/pkg/types"
)

// Breakdown aggregates findings into family contributions and totals.
//
// Within a family the first finding encountered contributes its full weight;
// every later finding is dampened by the configured factor. This keeps a
// single over-matching family from dominating the score through repetition.
func Breakdown(findings []types.Finding, textLen int, cfg types.RiskConfig) types.ScoreBreakdown {
	index := make(map[string]int)
	var families []types.FamilyContribution
	var rawTotal, adjustedTotal float64

	for i := range findings {
		family := types.Family(findings[i].RuleID)
		pos, ok := index[family]
		if !ok {
			pos = len(families)
			index[family] = pos
			families = append(families, types.FamilyContribution{Family: family})
		}
		entry := &families[pos]
		entry.Occurrences++
		entry.RawWeight += findings[i].Weight

		adjusted := findings[i].Weight
		if entry.Occurrences > 1 {
			adjusted *= cfg.FamilyDampening
		}
		entry.AdjustedWeight += adjusted
		rawTotal += findings[i].Weight
		adjustedTotal += adjusted
	}

	sort.SliceStable(families, func(i, j int) bool {
		if families[i].AdjustedWeight != families[j].AdjustedWeight {
			return families[i].AdjustedWeight > families[j].AdjustedWeight
		}
		return families[i].RawWeight > families[j].RawWeight
	})

	return types.ScoreBreakdown{
		RawTotal:            rawTotal,
		AdjustedTotal:       adjustedTotal,
		LengthFactor:        cfg.LengthFactor(textLen),
		FamilyContributions: families,
	}
}

// SortFindings orders findings by the scan engine's total order: weight
// descending, then span start ascending, then rule id ascending. NaN weights
// compare equal under the primary key so the secondary keys keep the order
// deterministic.
func SortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]
		if a.Weight > b.Weight {
			return true
		}
		if b.Weight > a.Weight {
			return false
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.RuleID < b.RuleID
	})
}
