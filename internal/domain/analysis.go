package domain

// Outlier is an entry flagged as invalid or inconsistent with the batch majority.
// Index refers to the position in the input slice.
type Outlier struct {
	Index  int       `json:"index"`
	Reason string    `json:"reason"`
	Type   EntryType `json:"type"`
	Input  string    `json:"input"`
}

// MultiItemAnalysis aggregates a batch of analysis results.
// ValidCount+InvalidCount == Total and the TypeDistribution values sum to Total.
type MultiItemAnalysis struct {
	Total            int               `json:"total"`
	TypeDistribution map[EntryType]int `json:"typeDistribution"`
	ValidCount       int               `json:"validCount"`
	InvalidCount     int               `json:"invalidCount"`
	PrivateCount     int               `json:"privateCount"`
	PublicCount      int               `json:"publicCount"`
	Outliers         []Outlier         `json:"outliers"`
	Insights         []string          `json:"insights"`
}

// PrivacyClass buckets a result by its classification flags.
type PrivacyClass string

const (
	PrivacyPrivate PrivacyClass = "Private"
	PrivacyPublic  PrivacyClass = "Public"
	PrivacySpecial PrivacyClass = "Special"
)

// Valid returns true if p is a known privacy class.
func (p PrivacyClass) Valid() bool {
	return p == PrivacyPrivate || p == PrivacyPublic || p == PrivacySpecial
}

// PrivacyOf returns the privacy class of a result. Private wins over public.
func PrivacyOf(r *AnalysisResult) PrivacyClass {
	switch {
	case r.Private():
		return PrivacyPrivate
	case r.Public():
		return PrivacyPublic
	default:
		return PrivacySpecial
	}
}

// FilterAll is accepted by both filters as "no filtering".
const FilterAll = "All"

// Filters narrows a batch of results. Every criterion is optional and they
// combine with AND.
type Filters struct {
	TypeFilter    string `json:"typeFilter,omitempty"`
	PrivacyFilter string `json:"privacyFilter,omitempty"`
	SearchText    string `json:"searchText,omitempty"`
}

// BulkSummary holds display counts for a batch.
type BulkSummary struct {
	Total     int                  `json:"total"`
	Valid     int                  `json:"valid"`
	Invalid   int                  `json:"invalid"`
	ByType    map[EntryType]int    `json:"byType"`
	ByPrivacy map[PrivacyClass]int `json:"byPrivacy"`
}

// Batch is the full pipeline output for one bulk input.
type Batch struct {
	Parse    BulkParseResult    `json:"parse"`
	Results  []AnalysisResult   `json:"results"`
	Types    []EntryType        `json:"types"`
	Summary  BulkSummary        `json:"summary"`
	Analysis *MultiItemAnalysis `json:"analysis,omitempty"`
}
