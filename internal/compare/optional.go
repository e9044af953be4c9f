package compare

import (
	"math/big"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

// Absent values compare equal to each other and unequal to any present
// value. The *Val helpers render absence as nil for FieldDiff sides.

func strVal(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolVal(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func boolEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func bigEq(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}

func bigVal(n *big.Int) any {
	if n == nil {
		return nil
	}
	return n
}

func bigString(n *big.Int) any {
	if n == nil {
		return nil
	}
	return n.String()
}

func intVal(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

// distance returns |a-b|, or nil when either side is absent.
func distance(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return nil
	}
	d := new(big.Int).Sub(a, b)
	return d.Abs(d)
}

func classOf(r *domain.AnalysisResult) *domain.Classification {
	if r == nil || r.Class == nil {
		return &domain.Classification{}
	}
	return r.Class
}

func cidrOf(r *domain.AnalysisResult) *domain.CIDRInfo {
	if r == nil || r.CIDR == nil {
		return &domain.CIDRInfo{}
	}
	return r.CIDR
}

func rangeOf(r *domain.AnalysisResult) *domain.RangeInfo {
	if r == nil || r.Range == nil {
		return &domain.RangeInfo{}
	}
	return r.Range
}

func baseClassOf(r *domain.AnalysisResult) *domain.Classification {
	if r == nil {
		return &domain.Classification{}
	}
	return classOf(r.BaseIP)
}

// bothLabel builds a "both_<value>" similarity, or "" when value is absent.
func bothLabel(value string) string {
	if value == "" {
		return ""
	}
	return "both_" + strings.ToLower(value)
}

func ptrVal(ptr string) string {
	if ptr == "" {
		return "(no PTR)"
	}
	return ptr
}
