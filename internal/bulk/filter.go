package bulk

import (
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

// FilterResults returns the results matching every set criterion. The input
// slice is not modified.
func FilterResults(results []domain.AnalysisResult, filters domain.Filters) []domain.AnalysisResult {
	search := strings.ToLower(filters.SearchText)
	hasSearch := strings.TrimSpace(filters.SearchText) != ""

	filtered := make([]domain.AnalysisResult, 0, len(results))
	for i := range results {
		r := &results[i]
		if !matchesType(r, filters.TypeFilter) {
			continue
		}
		if !matchesPrivacy(r, filters.PrivacyFilter) {
			continue
		}
		if hasSearch && !matchesSearch(r, search) {
			continue
		}
		filtered = append(filtered, *r)
	}
	return filtered
}

func matchesType(r *domain.AnalysisResult, typeFilter string) bool {
	if typeFilter == "" || typeFilter == domain.FilterAll {
		return true
	}
	return string(TypeOf(r)) == typeFilter
}

func matchesPrivacy(r *domain.AnalysisResult, privacyFilter string) bool {
	switch domain.PrivacyClass(privacyFilter) {
	case domain.PrivacyPublic:
		return r.Public()
	case domain.PrivacyPrivate:
		return r.Private()
	case domain.PrivacySpecial:
		return !r.Public() && !r.Private()
	}
	return true
}

func matchesSearch(r *domain.AnalysisResult, search string) bool {
	for _, field := range []string{r.Input, r.Normalized, r.Hostname} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
