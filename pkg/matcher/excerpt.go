package matcher

import (
	"unicode/utf8"

	"github.com/vigilsec/promptwall/pkg/types"
)

const (
	// defaultWindow is the context captured on each side of a match when
	// the rule does not specify its own window.
	defaultWindow = 64

	// maxExcerptChars caps excerpt length in characters.
	maxExcerptChars = 240
)

// extractExcerpt slices the text around a match span, widened by the rule
// window on each side, snapped outward to rune boundaries, and capped at 240
// characters. Never panics on multi-byte characters at the edges.
func extractExcerpt(text string, span types.Span, window *int) string {
	w := defaultWindow
	if window != nil {
		w = *window
	}

	start := span.Start - w
	if start < 0 {
		start = 0
	}
	start = floorRuneBoundary(text, start)

	end := span.End + w
	if end > len(text) {
		end = len(text)
	}
	end = ceilRuneBoundary(text, end)

	return truncateChars(text[start:end], maxExcerptChars)
}

// floorRuneBoundary walks backward to the nearest rune boundary <= idx.
func floorRuneBoundary(text string, idx int) int {
	if idx >= len(text) {
		return len(text)
	}
	for idx > 0 && !utf8.RuneStart(text[idx]) {
		idx--
	}
	return idx
}

// ceilRuneBoundary walks forward to the nearest rune boundary >= idx.
func ceilRuneBoundary(text string, idx int) int {
	if idx >= len(text) {
		return len(text)
	}
	for idx < len(text) && !utf8.RuneStart(text[idx]) {
		idx++
	}
	return idx
}

// truncateChars keeps the first max characters of s.
func truncateChars(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
