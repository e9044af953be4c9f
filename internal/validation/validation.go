// Package validation provides validation functions for address inspection
// requests. Hostname rules follow RFC 1123: labels of letters, digits and
// hyphens, 1-63 characters each, not starting or ending with a hyphen.
package validation

import (
	"fmt"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

const (
	maxHostnameLength = 253
	maxLabelLength    = 63
	maxReportName     = 128
)

// isAlpha returns true if the byte is an ASCII letter.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAlphaNum returns true if the byte is an ASCII letter or digit.
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isNum(b)
}

// ValidateHostname validates a DNS hostname syntactically. A single trailing
// dot is accepted. No resolution is attempted.
func ValidateHostname(name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return fmt.Errorf("hostname must not be empty")
	}
	if len(name) > maxHostnameLength {
		return fmt.Errorf("hostname must be at most %d characters", maxHostnameLength)
	}

	allNumeric := true
	for i, label := range strings.Split(name, ".") {
		if err := validateLabel(label); err != nil {
			return fmt.Errorf("label %d: %w", i+1, err)
		}
		for _, b := range []byte(label) {
			if !isNum(b) {
				allNumeric = false
			}
		}
	}
	if allNumeric {
		return fmt.Errorf("hostname must not be all numeric")
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty label")
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("label must be at most %d characters", maxLabelLength)
	}
	if !isAlphaNum(label[0]) || !isAlphaNum(label[len(label)-1]) {
		return fmt.Errorf("label must start and end with a letter or digit")
	}
	for _, b := range []byte(label) {
		if !isAlphaNum(b) && b != '-' {
			return fmt.Errorf("labels can only contain letters, numbers, or hyphens")
		}
	}
	return nil
}

// ValidateEntryType validates an entry type name. "All" and "" are accepted
// as the no-filter value.
func ValidateEntryType(value string) error {
	if value == "" || value == domain.FilterAll {
		return nil
	}
	if !domain.EntryType(value).Valid() {
		return fmt.Errorf("invalid entry type: %s", value)
	}
	return nil
}

// ValidatePrivacyFilter validates a privacy filter value.
func ValidatePrivacyFilter(value string) error {
	if value == "" || value == domain.FilterAll {
		return nil
	}
	if !domain.PrivacyClass(value).Valid() {
		return fmt.Errorf("privacy filter must be one of All, Private, Public, Special")
	}
	return nil
}

// ValidateFilters validates every criterion of a filter set.
func ValidateFilters(f domain.Filters) ValidationErrors {
	var errs ValidationErrors
	if err := ValidateEntryType(f.TypeFilter); err != nil {
		errs.Add("typeFilter", f.TypeFilter, err.Error())
	}
	if err := ValidatePrivacyFilter(f.PrivacyFilter); err != nil {
		errs.Add("privacyFilter", f.PrivacyFilter, err.Error())
	}
	return errs
}

// ValidateLimits validates bulk entry limits. Zero means the default.
func ValidateLimits(opts domain.SplitOptions) ValidationErrors {
	var errs ValidationErrors
	if opts.SoftLimit < 0 {
		errs.Add("softLimit", fmt.Sprint(opts.SoftLimit), "must not be negative")
	}
	if opts.HardLimit < 0 {
		errs.Add("hardLimit", fmt.Sprint(opts.HardLimit), "must not be negative")
	}
	if errs.HasErrors() {
		return errs
	}

	resolved := opts.WithDefaults()
	if resolved.HardLimit < resolved.SoftLimit {
		errs.Add("hardLimit", fmt.Sprint(resolved.HardLimit),
			fmt.Sprintf("must be at least the soft limit (%d)", resolved.SoftLimit))
	}
	return errs
}

// ValidateReportName validates a saved report name.
func ValidateReportName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("report name must not be empty")
	}
	if len(trimmed) > maxReportName {
		return fmt.Errorf("report name must be at most %d characters", maxReportName)
	}
	for _, b := range []byte(trimmed) {
		if b < 0x20 || b == 0x7f {
			return fmt.Errorf("report name must not contain control characters")
		}
	}
	return nil
}

// ValidateExportFormat validates an export format name against the supported set.
func ValidateExportFormat(format string, supported []string) error {
	lower := strings.ToLower(format)
	for _, s := range supported {
		if lower == s {
			return nil
		}
	}
	return fmt.Errorf("format must be one of %s", strings.Join(supported, ", "))
}
