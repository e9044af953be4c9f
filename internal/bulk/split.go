// Package bulk turns raw pasted address lists into classified entries and
// renders inspected batches for display and export.
package bulk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bcnelson/addrscope/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// separators in precedence order. The first one present decides the split.
var separators = []string{"\n", ";", ",", "\t"}

// IsBulkInput returns true if the input holds more than one entry when split
// by newline, semicolon or comma.
func IsBulkInput(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	for _, sep := range separators[:3] {
		if strings.Contains(trimmed, sep) {
			return countNonEmpty(strings.Split(trimmed, sep)) > 1
		}
	}
	return false
}

// SplitEntries splits one raw bulk input into trimmed, case-insensitively
// deduplicated entries. Limit overflow and empty input are reported in the
// result, never as an error.
func SplitEntries(input string, opts domain.SplitOptions) domain.BulkParseResult {
	opts = opts.WithDefaults()
	result := domain.BulkParseResult{
		Entries:  []string{},
		Warnings: []string{},
		Errors:   []string{},
	}

	if !utf8.ValidString(input) {
		result.Errors = append(result.Errors, "Invalid input")
		return result
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		result.Errors = append(result.Errors, "No input provided")
		return result
	}

	seen := make(map[string]bool)
	for _, part := range splitParts(trimmed) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Entries = append(result.Entries, part)
	}

	switch n := len(result.Entries); {
	case n > opts.HardLimit:
		removed := n - opts.HardLimit
		result.Entries = result.Entries[:opts.HardLimit]
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Bulk mode is limited to %d entries to prevent performance issues. Removed %d entries.",
			opts.HardLimit, removed))
	case n > opts.SoftLimit:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Processing %d entries. This may take a moment...", n))
	}

	return result
}

// splitParts splits by exactly one separator kind. Spaces only separate when
// the input cannot be CIDR notation or a dash range.
func splitParts(trimmed string) []string {
	for _, sep := range separators {
		if strings.Contains(trimmed, sep) {
			return strings.Split(trimmed, sep)
		}
	}
	if strings.Contains(trimmed, " ") && !strings.ContainsAny(trimmed, "/-") {
		return whitespaceRun.Split(trimmed, -1)
	}
	return []string{trimmed}
}

func countNonEmpty(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
