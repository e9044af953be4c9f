// Package inspect computes the per-entry analysis record for classified
// entries: normalized forms, integer and PTR representations, RFC
// classification, CIDR block math and range sizing. It is pure and never
// touches the network; hostnames are checked syntactically only.
package inspect

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/bcnelson/addrscope/internal/bulk"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/validation"
)

// Analyze builds the analysis result for an entry of the given type. The
// type is carried on the result unchanged even when the entry turns out to
// be semantically invalid for it.
func Analyze(entry string, typ domain.EntryType) domain.AnalysisResult {
	input := strings.TrimSpace(entry)

	var r domain.AnalysisResult
	switch typ {
	case domain.EntryIPv4:
		r = analyzeIPv4(input)
	case domain.EntryIPv6:
		r = analyzeIPv6(input)
	case domain.EntryCIDR:
		r = analyzeCIDR(input)
	case domain.EntryRange:
		r = analyzeRange(input)
	case domain.EntryHostname:
		r = analyzeHostname(input)
	default:
		r = invalid("Unrecognized input format")
	}

	r.Input = input
	r.InputType = typ
	return r
}

// AnalyzeEntry classifies an entry and analyzes it.
func AnalyzeEntry(entry string) domain.AnalysisResult {
	return Analyze(entry, bulk.Classify(entry))
}

func invalid(format string, args ...any) domain.AnalysisResult {
	return domain.AnalysisResult{
		IsValid: domain.Bool(false),
		Error:   fmt.Sprintf(format, args...),
	}
}

// analyzeAddr analyzes a single address of either family.
func analyzeAddr(input string) (domain.AnalysisResult, netip.Addr, bool) {
	addr, err := netip.ParseAddr(input)
	if err != nil {
		return invalid("Invalid IP address: %s", input), netip.Addr{}, false
	}
	if addr.Is4() {
		return ipv4Result(addr), addr, true
	}
	return ipv6Result(addr), addr, true
}

func analyzeHostname(input string) domain.AnalysisResult {
	host := strings.ToLower(strings.TrimSuffix(input, "."))
	if err := validation.ValidateHostname(input); err != nil {
		r := invalid("Invalid hostname: %v", err)
		r.Hostname = host
		return r
	}
	return domain.AnalysisResult{
		IsValid:    domain.Bool(true),
		Normalized: host,
		Hostname:   host,
	}
}
