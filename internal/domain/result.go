package domain

import "math/big"

// AnalysisResult is the per-entry analysis record consumed by the comparison
// and aggregation engine. Absent fields are represented by zero strings, nil
// pointers and nil slices; the engine never writes back into a result.
type AnalysisResult struct {
	Input     string    `json:"input"`
	InputType EntryType `json:"inputType,omitempty"`
	IsValid   *bool     `json:"isValid,omitempty"`
	Error     string    `json:"error,omitempty"`

	Normalized   string          `json:"normalized,omitempty"`
	Integer      *big.Int        `json:"integer,omitempty"`
	IntegerHex   string          `json:"integerHex,omitempty"`
	BinaryOctets []string        `json:"binaryOctets,omitempty"`
	Octets       []int           `json:"octets,omitempty"`
	PTR          string          `json:"ptr,omitempty"`
	Class        *Classification `json:"classification,omitempty"`

	// IPv6
	Expanded     string   `json:"expanded,omitempty"`
	Compressed   string   `json:"compressed,omitempty"`
	Hextets      []string `json:"hextets,omitempty"`
	ZoneID       string   `json:"zoneId,omitempty"`
	IsIPv4Mapped *bool    `json:"isIPv4Mapped,omitempty"`
	MappedIPv4   string   `json:"mappedIPv4,omitempty"`

	// CIDR
	CIDR    *CIDRInfo       `json:"cidr,omitempty"`
	BaseIP  *AnalysisResult `json:"baseIP,omitempty"`
	Version int             `json:"version,omitempty"`

	// Range
	Range   *RangeInfo      `json:"range,omitempty"`
	StartIP *AnalysisResult `json:"startIP,omitempty"`
	EndIP   *AnalysisResult `json:"endIP,omitempty"`

	// Hostname
	Hostname string `json:"hostname,omitempty"`
}

// Classification is the RFC classification of a single address.
type Classification struct {
	Type      string `json:"type,omitempty"`
	Subtype   string `json:"subtype,omitempty"`
	RFC       string `json:"rfc,omitempty"`
	Scope     string `json:"scope,omitempty"`
	Range     string `json:"range,omitempty"`
	IsPrivate *bool  `json:"isPrivate,omitempty"`
	IsPublic  *bool  `json:"isPublic,omitempty"`
}

// CIDRInfo holds network block math for a CIDR entry.
type CIDRInfo struct {
	CIDR             *int     `json:"cidr,omitempty"`
	Netmask          string   `json:"netmask,omitempty"`
	WildcardMask     string   `json:"wildcardMask,omitempty"`
	NetworkAddress   string   `json:"networkAddress,omitempty"`
	BroadcastAddress string   `json:"broadcastAddress,omitempty"`
	FirstHost        string   `json:"firstHost,omitempty"`
	LastHost         string   `json:"lastHost,omitempty"`
	TotalHosts       *big.Int `json:"totalHosts,omitempty"`
	UsableHosts      *big.Int `json:"usableHosts,omitempty"`
	NetworkBits      int      `json:"networkBits"`
	HostBits         int      `json:"hostBits"`
}

// RangeInfo describes an address range entry.
type RangeInfo struct {
	Start               string   `json:"start,omitempty"`
	End                 string   `json:"end,omitempty"`
	Size                *big.Int `json:"size,omitempty"`
	IsValid             *bool    `json:"isValid,omitempty"`
	IsIncreasing        *bool    `json:"isIncreasing,omitempty"`
	ClassificationMatch *bool    `json:"classificationMatch,omitempty"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}

// IsTrue reports whether an optional boolean is set and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// IsFalse reports whether an optional boolean is set and false.
func IsFalse(b *bool) bool {
	return b != nil && !*b
}

// Private reports whether the result is classified as private.
func (r *AnalysisResult) Private() bool {
	return r.Class != nil && IsTrue(r.Class.IsPrivate)
}

// Public reports whether the result is classified as public.
func (r *AnalysisResult) Public() bool {
	return r.Class != nil && IsTrue(r.Class.IsPublic)
}

// ClassType returns the classification type or "" when unclassified.
func (r *AnalysisResult) ClassType() string {
	if r.Class == nil {
		return ""
	}
	return r.Class.Type
}
