package domain

import "encoding/json"

// Severity grades a single field difference. Ordered error > major > minor > info.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
	SeverityInfo  Severity = "info"
)

// Valid returns true if s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityMajor, SeverityMinor, SeverityInfo:
		return true
	}
	return false
}

// Rank returns a sortable weight, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// OctetDiff compares one IPv4 octet position.
type OctetDiff struct {
	Position int  `json:"position"`
	A        *int `json:"a"`
	B        *int `json:"b"`
	Same     bool `json:"same"`
}

// FieldDiff is one difference between two compared entries.
// Distance is set only for integer-valued fields; Details only for octet breakdowns.
type FieldDiff struct {
	Field    string      `json:"field"`
	A        any         `json:"a"`
	B        any         `json:"b"`
	Severity Severity    `json:"severity"`
	Distance any         `json:"distance,omitempty"`
	Details  []OctetDiff `json:"details,omitempty"`
}

// ComparabilityReason names the rule that decided comparability.
type ComparabilityReason string

const (
	ReasonSameType             ComparabilityReason = "same_type"
	ReasonHostnameWithIP       ComparabilityReason = "hostname_with_ip"
	ReasonIncompatibleFamilies ComparabilityReason = "incompatible_families"
)

// Comparability is the verdict of the comparability gate.
type Comparability struct {
	Comparable bool                `json:"comparable"`
	Reason     ComparabilityReason `json:"reason"`
	Note       string              `json:"note,omitempty"`
	Message    string              `json:"message,omitempty"`
}

// ComparisonStatus is the top-level outcome of a pairwise comparison.
type ComparisonStatus string

const (
	StatusComparable ComparisonStatus = "comparable"
	StatusError      ComparisonStatus = "error"
)

// Diff is the output of a per-type differ.
type Diff struct {
	Differences  []FieldDiff `json:"differences"`
	Similarities []string    `json:"similarities"`
	Warnings     []string    `json:"warnings,omitempty"`
}

// ComparisonResult is the outcome of comparing two analysis results.
// When Status is StatusError, Diff is nil and Message is set; otherwise Diff
// is non-nil and Message is empty.
type ComparisonResult struct {
	Type          string
	Status        ComparisonStatus
	InputA        *AnalysisResult
	InputB        *AnalysisResult
	TypeA         EntryType
	TypeB         EntryType
	Comparability Comparability
	Diff          *Diff
	Message       string
}

type comparisonJSON struct {
	Type          string           `json:"type"`
	Status        ComparisonStatus `json:"status"`
	InputA        *AnalysisResult  `json:"inputA"`
	InputB        *AnalysisResult  `json:"inputB"`
	TypeA         EntryType        `json:"typeA"`
	TypeB         EntryType        `json:"typeB"`
	Comparability Comparability    `json:"comparability"`
	Differences   *[]FieldDiff     `json:"differences,omitempty"`
	Similarities  *[]string        `json:"similarities,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// MarshalJSON flattens the diff so differences/similarities are present
// exactly when the comparison succeeded.
func (c ComparisonResult) MarshalJSON() ([]byte, error) {
	out := comparisonJSON{
		Type:          c.Type,
		Status:        c.Status,
		InputA:        c.InputA,
		InputB:        c.InputB,
		TypeA:         c.TypeA,
		TypeB:         c.TypeB,
		Comparability: c.Comparability,
		Message:       c.Message,
	}
	if c.Diff != nil {
		diffs := c.Diff.Differences
		if diffs == nil {
			diffs = []FieldDiff{}
		}
		sims := c.Diff.Similarities
		if sims == nil {
			sims = []string{}
		}
		out.Differences = &diffs
		out.Similarities = &sims
		out.Warnings = c.Diff.Warnings
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *ComparisonResult) UnmarshalJSON(data []byte) error {
	var in comparisonJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = ComparisonResult{
		Type:          in.Type,
		Status:        in.Status,
		InputA:        in.InputA,
		InputB:        in.InputB,
		TypeA:         in.TypeA,
		TypeB:         in.TypeB,
		Comparability: in.Comparability,
		Message:       in.Message,
	}
	if in.Differences != nil || in.Similarities != nil {
		c.Diff = &Diff{Warnings: in.Warnings}
		if in.Differences != nil {
			c.Diff.Differences = *in.Differences
		}
		if in.Similarities != nil {
			c.Diff.Similarities = *in.Similarities
		}
	}
	return nil
}
