package compare

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bcnelson/addrscope/internal/domain"
)

// Comparer diffs analysis results. Range sizes are rendered with the
// digit grouping of its locale.
type Comparer struct {
	printer *message.Printer
}

// NewComparer creates a Comparer for the given locale.
func NewComparer(tag language.Tag) *Comparer {
	return &Comparer{printer: message.NewPrinter(tag)}
}

var defaultComparer = NewComparer(language.English)

// CompareItems compares two results using English number formatting.
func CompareItems(a, b *domain.AnalysisResult, typeA, typeB domain.EntryType) domain.ComparisonResult {
	return defaultComparer.CompareItems(a, b, typeA, typeB)
}

// CompareItems gates the pair by type and dispatches to the matching differ.
// Incomparable pairs yield a result with StatusError and no diff.
func (c *Comparer) CompareItems(a, b *domain.AnalysisResult, typeA, typeB domain.EntryType) domain.ComparisonResult {
	if a == nil {
		a = &domain.AnalysisResult{}
	}
	if b == nil {
		b = &domain.AnalysisResult{}
	}

	comparability := CanCompare(typeA, typeB)
	if !comparability.Comparable {
		return domain.ComparisonResult{
			Type:          "incomparable",
			Status:        domain.StatusError,
			InputA:        a,
			InputB:        b,
			TypeA:         typeA,
			TypeB:         typeB,
			Comparability: comparability,
			Message:       comparability.Message,
		}
	}

	return domain.ComparisonResult{
		Type:          strings.ToLower(string(typeA)),
		Status:        domain.StatusComparable,
		InputA:        a,
		InputB:        b,
		TypeA:         typeA,
		TypeB:         typeB,
		Comparability: comparability,
		Diff:          c.diff(a, b, typeA, typeB),
	}
}

func (c *Comparer) diff(a, b *domain.AnalysisResult, typeA, typeB domain.EntryType) *domain.Diff {
	if typeA != typeB {
		if typeA == domain.EntryHostname {
			return diffHostnameWithIP(a, b, typeB)
		}
		return diffHostnameWithIP(b, a, typeA)
	}

	switch typeA {
	case domain.EntryIPv4:
		return diffIPv4(a, b)
	case domain.EntryIPv6:
		return diffIPv6(a, b)
	case domain.EntryCIDR:
		return diffCIDR(a, b)
	case domain.EntryRange:
		return c.diffRange(a, b)
	case domain.EntryHostname:
		return diffHostname(a, b)
	default:
		return diffInvalid(a, b)
	}
}

// formatSize renders a range size with locale digit grouping. Sizes beyond
// int64 fall back to comma grouping.
func (c *Comparer) formatSize(n *big.Int) any {
	if n == nil {
		return nil
	}
	if n.IsInt64() {
		return c.printer.Sprintf("%d", n.Int64())
	}
	return humanize.BigComma(n)
}
