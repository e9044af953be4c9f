package bulk

import (
	"regexp"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

const dottedQuad = `\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`

var (
	ipv4CIDRPattern  = regexp.MustCompile(`^` + dottedQuad + `/\d{1,2}$`)
	ipv4RangePattern = regexp.MustCompile(`^` + dottedQuad + `\s*[-–—]\s*` + dottedQuad + `$|^` + dottedQuad + `\s+to\s+` + dottedQuad + `$`)
	ipv6CIDRPattern  = regexp.MustCompile(`:/\d{1,3}$`)
	ipv6Pattern      = regexp.MustCompile(`^[0-9a-fA-F:]*:[0-9a-fA-F:]*`)
	ipv4Pattern      = regexp.MustCompile(`^` + dottedQuad + `$`)
	hostnamePattern  = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*\.)*[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	numericPrefix    = regexp.MustCompile(`^\d+\.\d+`)
)

// classifyRule maps a syntactic predicate to an entry type.
type classifyRule struct {
	name  string
	match func(string) bool
	typ   domain.EntryType
}

// classifyRules is evaluated top to bottom; the first match wins. The
// patterns overlap so the order is significant.
var classifyRules = []classifyRule{
	{"ipv4-cidr", ipv4CIDRPattern.MatchString, domain.EntryCIDR},
	{"ipv4-range", ipv4RangePattern.MatchString, domain.EntryRange},
	{"ipv6-cidr", ipv6CIDRPattern.MatchString, domain.EntryCIDR},
	{"ipv6", ipv6Pattern.MatchString, domain.EntryIPv6},
	{"ipv4", ipv4Pattern.MatchString, domain.EntryIPv4},
	{"hostname", isHostnameLike, domain.EntryHostname},
}

func isHostnameLike(s string) bool {
	return hostnamePattern.MatchString(s) && !numericPrefix.MatchString(s)
}

// Classify assigns an entry type from syntax alone. Octet and prefix ranges
// are not checked here; 999.999.1.1 is IPv4.
func Classify(entry string) domain.EntryType {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return domain.EntryInvalid
	}
	for _, rule := range classifyRules {
		if rule.match(trimmed) {
			return rule.typ
		}
	}
	return domain.EntryInvalid
}

// ClassifyAll classifies each entry, preserving order.
func ClassifyAll(entries []string) []domain.ClassifiedEntry {
	out := make([]domain.ClassifiedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.ClassifiedEntry{Entry: e, Type: Classify(e)})
	}
	return out
}

// TypeOf returns the type carried on the result, classifying the raw input
// when the result has none.
func TypeOf(r *domain.AnalysisResult) domain.EntryType {
	if r.InputType != "" {
		return r.InputType
	}
	return Classify(r.Input)
}
