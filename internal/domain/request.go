package domain

// SplitRequest is the request body for splitting raw bulk input.
type SplitRequest struct {
	Input     string `json:"input"`
	SoftLimit int    `json:"softLimit,omitempty"`
	HardLimit int    `json:"hardLimit,omitempty"`
}

// ClassifyRequest is the request body for classifying entries.
type ClassifyRequest struct {
	Entries []string `json:"entries"`
}

// CompareRequest compares either two raw entries (A, B) or two
// pre-computed results with their types.
type CompareRequest struct {
	A       string          `json:"a,omitempty"`
	B       string          `json:"b,omitempty"`
	ResultA *AnalysisResult `json:"resultA,omitempty"`
	ResultB *AnalysisResult `json:"resultB,omitempty"`
	TypeA   EntryType       `json:"typeA,omitempty"`
	TypeB   EntryType       `json:"typeB,omitempty"`
}

// InspectRequest is the request body for running the full pipeline.
type InspectRequest struct {
	Input     string   `json:"input"`
	SoftLimit int      `json:"softLimit,omitempty"`
	HardLimit int      `json:"hardLimit,omitempty"`
	Filters   *Filters `json:"filters,omitempty"`
}

// AnalyzeRequest is the request body for multi-item analysis.
type AnalyzeRequest struct {
	Results []AnalysisResult `json:"results"`
	Types   []EntryType      `json:"types"`
}

// FilterRequest is the request body for filtering results.
type FilterRequest struct {
	Results []AnalysisResult `json:"results"`
	Filters Filters          `json:"filters"`
}

// ResultsRequest carries a batch of results for summary and export.
type ResultsRequest struct {
	Results []AnalysisResult `json:"results"`
}
