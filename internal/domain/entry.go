package domain

// EntryType is the syntactic family assigned to a single bulk-input entry.
// It is assigned once per entry and governs which fields are legal to compare.
type EntryType string

const (
	EntryIPv4     EntryType = "IPv4"
	EntryIPv6     EntryType = "IPv6"
	EntryCIDR     EntryType = "CIDR"
	EntryRange    EntryType = "Range"
	EntryHostname EntryType = "Hostname"
	EntryInvalid  EntryType = "Invalid"
)

// EntryTypes lists every entry type in display order.
func EntryTypes() []EntryType {
	return []EntryType{EntryIPv4, EntryIPv6, EntryCIDR, EntryRange, EntryHostname, EntryInvalid}
}

// Valid returns true if t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryIPv4, EntryIPv6, EntryCIDR, EntryRange, EntryHostname, EntryInvalid:
		return true
	}
	return false
}

// IsIP returns true for single-address types.
func (t EntryType) IsIP() bool {
	return t == EntryIPv4 || t == EntryIPv6
}

// BulkParseResult is the output of splitting one raw bulk-input string.
type BulkParseResult struct {
	Entries  []string `json:"entries"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// SplitOptions controls the bulk entry limits.
type SplitOptions struct {
	SoftLimit int `json:"softLimit,omitempty"`
	HardLimit int `json:"hardLimit,omitempty"`
}

// Default bulk limits.
const (
	DefaultSoftLimit = 500
	DefaultHardLimit = 1000
)

// WithDefaults fills zero limits with the defaults.
func (o SplitOptions) WithDefaults() SplitOptions {
	if o.SoftLimit <= 0 {
		o.SoftLimit = DefaultSoftLimit
	}
	if o.HardLimit <= 0 {
		o.HardLimit = DefaultHardLimit
	}
	return o
}

// ClassifiedEntry pairs a raw entry with its type.
type ClassifiedEntry struct {
	Entry string    `json:"entry"`
	Type  EntryType `json:"type"`
}
