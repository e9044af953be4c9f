package compare

import (
	"fmt"
	"sort"

	"github.com/bcnelson/addrscope/internal/domain"
)

// AnalyzeMultipleItems aggregates a batch of results with their positionally
// aligned types. It returns nil for fewer than two results. A type missing
// for some index counts as Invalid.
func AnalyzeMultipleItems(results []domain.AnalysisResult, types []domain.EntryType) *domain.MultiItemAnalysis {
	if len(results) < 2 {
		return nil
	}

	typeAt := func(i int) domain.EntryType {
		if i < len(types) && types[i] != "" {
			return types[i]
		}
		return domain.EntryInvalid
	}

	analysis := &domain.MultiItemAnalysis{
		Total:            len(results),
		TypeDistribution: make(map[domain.EntryType]int),
		Outliers:         []domain.Outlier{},
		Insights:         []string{},
	}

	// first-occurrence order keeps the majority tie-break stable
	var order []domain.EntryType
	for i := range results {
		t := typeAt(i)
		if analysis.TypeDistribution[t] == 0 {
			order = append(order, t)
		}
		analysis.TypeDistribution[t]++
	}

	for i := range results {
		r := &results[i]
		if domain.IsFalse(r.IsValid) {
			analysis.InvalidCount++
			analysis.Outliers = append(analysis.Outliers, domain.Outlier{
				Index:  i,
				Reason: "Invalid input",
				Type:   typeAt(i),
				Input:  r.Input,
			})
			continue
		}
		analysis.ValidCount++
		switch {
		case r.Private():
			analysis.PrivateCount++
		case r.Public():
			analysis.PublicCount++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return analysis.TypeDistribution[order[i]] > analysis.TypeDistribution[order[j]]
	})
	primary := order[0]

	for i := range results {
		t := typeAt(i)
		if t == primary || t == domain.EntryInvalid {
			continue
		}
		analysis.Outliers = append(analysis.Outliers, domain.Outlier{
			Index:  i,
			Reason: fmt.Sprintf("Different type (%s vs majority %s)", t, primary),
			Type:   t,
			Input:  results[i].Input,
		})
	}

	analysis.Insights = insights(analysis)
	return analysis
}

func insights(a *domain.MultiItemAnalysis) []string {
	has := func(t domain.EntryType) bool { return a.TypeDistribution[t] > 0 }
	hasIPv4, hasIPv6 := has(domain.EntryIPv4), has(domain.EntryIPv6)

	out := []string{}
	if hasIPv4 && hasIPv6 {
		out = append(out, "Mixed IPv4 and IPv6 addresses detected")
	}
	if has(domain.EntryCIDR) && !hasIPv4 && !hasIPv6 {
		out = append(out, "All inputs are CIDR blocks")
	}
	if has(domain.EntryHostname) && hasIPv4 && !hasIPv6 {
		out = append(out, "Hostnames and IPv4 addresses mixed")
	}

	switch {
	case a.PrivateCount > 0 && a.PublicCount > 0:
		out = append(out, fmt.Sprintf("%d private and %d public addresses", a.PrivateCount, a.PublicCount))
	case a.ValidCount > 0 && a.PrivateCount == a.ValidCount:
		out = append(out, "All valid addresses are private")
	case a.ValidCount > 0 && a.PublicCount == a.ValidCount:
		out = append(out, "All valid addresses are public")
	}
	return out
}
