package bulk

import "github.com/bcnelson/addrscope/internal/domain"

// Summarize counts validity, types and privacy classes in one pass.
// A result without an explicit isValid counts as valid.
func Summarize(results []domain.AnalysisResult) domain.BulkSummary {
	summary := domain.BulkSummary{
		Total:     len(results),
		ByType:    make(map[domain.EntryType]int),
		ByPrivacy: make(map[domain.PrivacyClass]int),
	}

	for i := range results {
		r := &results[i]
		if domain.IsFalse(r.IsValid) {
			summary.Invalid++
		} else {
			summary.Valid++
		}
		summary.ByType[TypeOf(r)]++
		summary.ByPrivacy[domain.PrivacyOf(r)]++
	}

	return summary
}
