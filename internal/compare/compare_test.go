package compare_test

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/bcnelson/addrscope/internal/compare"
	"github.com/bcnelson/addrscope/internal/domain"
)

func ipv4Result(input string, integer int64, private bool) *domain.AnalysisResult {
	classType := "Public"
	if private {
		classType = "Private"
	}
	return &domain.AnalysisResult{
		Input:      input,
		IsValid:    domain.Bool(true),
		Normalized: input,
		Integer:    big.NewInt(integer),
		Class: &domain.Classification{
			Type:      classType,
			IsPrivate: domain.Bool(private),
			IsPublic:  domain.Bool(!private),
		},
	}
}

func findDiff(t *testing.T, diffs []domain.FieldDiff, field string) *domain.FieldDiff {
	t.Helper()
	for i := range diffs {
		if diffs[i].Field == field {
			return &diffs[i]
		}
	}
	return nil
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestCanCompare(t *testing.T) {
	tests := []struct {
		name       string
		a, b       domain.EntryType
		comparable bool
		reason     domain.ComparabilityReason
	}{
		{"same ipv4", domain.EntryIPv4, domain.EntryIPv4, true, domain.ReasonSameType},
		{"same invalid", domain.EntryInvalid, domain.EntryInvalid, true, domain.ReasonSameType},
		{"hostname with ipv4", domain.EntryHostname, domain.EntryIPv4, true, domain.ReasonHostnameWithIP},
		{"ipv6 with hostname", domain.EntryIPv6, domain.EntryHostname, true, domain.ReasonHostnameWithIP},
		{"ipv4 with ipv6", domain.EntryIPv4, domain.EntryIPv6, false, domain.ReasonIncompatibleFamilies},
		{"cidr with range", domain.EntryCIDR, domain.EntryRange, false, domain.ReasonIncompatibleFamilies},
		{"hostname with cidr", domain.EntryHostname, domain.EntryCIDR, false, domain.ReasonIncompatibleFamilies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compare.CanCompare(tt.a, tt.b)
			if got.Comparable != tt.comparable {
				t.Errorf("Expected comparable=%v, got %v", tt.comparable, got.Comparable)
			}
			if got.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, got.Reason)
			}
			if !tt.comparable && got.Message == "" {
				t.Error("Expected a message for incomparable types")
			}
			if tt.reason == domain.ReasonHostnameWithIP && got.Note != "Uses DNS resolution for comparison" {
				t.Errorf("Unexpected note %q", got.Note)
			}
		})
	}
}

func TestCanCompare_Symmetric(t *testing.T) {
	for _, a := range domain.EntryTypes() {
		for _, b := range domain.EntryTypes() {
			ab := compare.CanCompare(a, b)
			ba := compare.CanCompare(b, a)
			if ab.Comparable != ba.Comparable {
				t.Errorf("CanCompare(%s, %s)=%v but CanCompare(%s, %s)=%v", a, b, ab.Comparable, b, a, ba.Comparable)
			}
		}
	}
}

func TestCompareItems_Incomparable(t *testing.T) {
	a := ipv4Result("10.0.0.1", 167772161, true)
	b := &domain.AnalysisResult{Input: "2001:db8::1", Normalized: "2001:db8::1"}

	got := compare.CompareItems(a, b, domain.EntryIPv4, domain.EntryIPv6)
	if got.Status != domain.StatusError {
		t.Fatalf("Expected status error, got %s", got.Status)
	}
	if got.Type != "incomparable" {
		t.Errorf("Expected type incomparable, got %s", got.Type)
	}
	if got.Diff != nil {
		t.Error("Expected no diff for an incomparable pair")
	}
	if got.Message == "" {
		t.Error("Expected a message")
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := raw["differences"]; ok {
		t.Error("Expected differences to be absent")
	}
	if _, ok := raw["similarities"]; ok {
		t.Error("Expected similarities to be absent")
	}
	if raw["message"] == nil {
		t.Error("Expected message to be present")
	}
}

func TestCompareItems_IPv4SameSubnet(t *testing.T) {
	a := ipv4Result("192.168.1.1", 3232235777, true)
	b := ipv4Result("192.168.1.2", 3232235778, true)

	got := compare.CompareItems(a, b, domain.EntryIPv4, domain.EntryIPv4)
	if got.Status != domain.StatusComparable {
		t.Fatalf("Expected comparable, got %s", got.Status)
	}
	if got.Type != "ipv4" {
		t.Errorf("Expected type ipv4, got %s", got.Type)
	}

	integer := findDiff(t, got.Diff.Differences, "integer")
	if integer == nil {
		t.Fatal("Expected an integer difference")
	}
	dist, ok := integer.Distance.(*big.Int)
	if !ok || dist.Int64() != 1 {
		t.Errorf("Expected distance 1, got %v", integer.Distance)
	}
	if integer.Severity != domain.SeverityMajor {
		t.Errorf("Expected major severity, got %s", integer.Severity)
	}

	for _, sim := range []string{"same_/24_subnet", "same_/16_subnet", "same_/8_subnet", "both_private"} {
		if !hasString(got.Diff.Similarities, sim) {
			t.Errorf("Expected similarity %s in %v", sim, got.Diff.Similarities)
		}
	}
	if hasString(got.Diff.Similarities, "same_octets") {
		t.Error("Did not expect same_octets for different addresses")
	}

	octets := findDiff(t, got.Diff.Differences, "octets")
	if octets == nil {
		t.Fatal("Expected an octets entry")
	}
	if octets.Severity != domain.SeverityInfo {
		t.Errorf("Expected info severity, got %s", octets.Severity)
	}
	if len(octets.Details) != 4 {
		t.Fatalf("Expected 4 octet details, got %d", len(octets.Details))
	}
	if octets.Details[3].Same {
		t.Error("Expected last octet to differ")
	}
	if !octets.Details[0].Same {
		t.Error("Expected first octet to match")
	}
}

func TestCompareItems_IPv4Identical(t *testing.T) {
	a := ipv4Result("8.8.8.8", 134744072, false)
	b := ipv4Result("8.8.8.8", 134744072, false)

	got := compare.CompareItems(a, b, domain.EntryIPv4, domain.EntryIPv4)

	// the octet breakdown is always present even for identical inputs
	if len(got.Diff.Differences) != 1 || got.Diff.Differences[0].Field != "octets" {
		t.Errorf("Expected only the octets entry, got %+v", got.Diff.Differences)
	}
	for _, sim := range []string{"same_normalized", "both_public", "same_integer", "same_octets", "same_/24_subnet"} {
		if !hasString(got.Diff.Similarities, sim) {
			t.Errorf("Expected similarity %s in %v", sim, got.Diff.Similarities)
		}
	}
}

func TestCompareItems_IPv4DifferentSlash8(t *testing.T) {
	a := ipv4Result("10.0.0.1", 167772161, true)
	b := ipv4Result("8.8.8.8", 134744072, false)
	b.PTR = "8.8.8.8.in-addr.arpa"

	got := compare.CompareItems(a, b, domain.EntryIPv4, domain.EntryIPv4)

	for _, sim := range []string{"same_/24_subnet", "same_/16_subnet", "same_/8_subnet"} {
		if hasString(got.Diff.Similarities, sim) {
			t.Errorf("Did not expect %s", sim)
		}
	}
	if findDiff(t, got.Diff.Differences, "classification.isPrivate") == nil {
		t.Error("Expected a privacy difference")
	}
	ptr := findDiff(t, got.Diff.Differences, "ptr")
	if ptr == nil {
		t.Fatal("Expected a ptr difference")
	}
	if ptr.A != "(no PTR)" || ptr.Severity != domain.SeverityMinor {
		t.Errorf("Unexpected ptr diff %+v", ptr)
	}
}

func TestCompareItems_MissingFields(t *testing.T) {
	// every differ must tolerate bare results
	for _, typ := range domain.EntryTypes() {
		t.Run(string(typ), func(t *testing.T) {
			got := compare.CompareItems(&domain.AnalysisResult{}, nil, typ, typ)
			if got.Status != domain.StatusComparable || got.Diff == nil {
				t.Fatalf("Expected a comparable result, got %+v", got)
			}
			for _, d := range got.Diff.Differences {
				if !d.Severity.Valid() {
					t.Errorf("Invalid severity %q on %s", d.Severity, d.Field)
				}
			}
		})
	}
}

func TestCompareItems_IPv6(t *testing.T) {
	a := &domain.AnalysisResult{
		Normalized: "2001:db8::1",
		Compressed: "2001:db8::1",
		Class:      &domain.Classification{Type: "Documentation", Scope: "global"},
	}
	b := &domain.AnalysisResult{
		Normalized:   "fe80::1",
		Compressed:   "fe80::1",
		IsIPv4Mapped: domain.Bool(false),
		Class:        &domain.Classification{Type: "Link-Local", Scope: "link"},
	}

	got := compare.CompareItems(a, b, domain.EntryIPv6, domain.EntryIPv6)
	for _, field := range []string{"normalized", "classification.type", "classification.scope", "compressed", "isIPv4Mapped"} {
		if findDiff(t, got.Diff.Differences, field) == nil {
			t.Errorf("Expected a %s difference", field)
		}
	}
	if d := findDiff(t, got.Diff.Differences, "isIPv4Mapped"); d != nil && (d.A != nil || d.B != false) {
		t.Errorf("Expected absent vs false, got %v vs %v", d.A, d.B)
	}

	same := compare.CompareItems(a, a, domain.EntryIPv6, domain.EntryIPv6)
	for _, sim := range []string{"same_normalized", "both_documentation", "both_global"} {
		if !hasString(same.Diff.Similarities, sim) {
			t.Errorf("Expected similarity %s in %v", sim, same.Diff.Similarities)
		}
	}
}

func cidrResult(network string, prefix, version int, total int64) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Input:   network,
		Version: version,
		CIDR: &domain.CIDRInfo{
			CIDR:           domain.Int(prefix),
			NetworkAddress: network,
			TotalHosts:     big.NewInt(total),
		},
		BaseIP: &domain.AnalysisResult{Class: &domain.Classification{Type: "Private"}},
	}
}

func TestCompareItems_CIDRSupernet(t *testing.T) {
	tests := []struct {
		name    string
		a, b    *domain.AnalysisResult
		want    string
		notWant []string
	}{
		{
			name: "same network",
			a:    cidrResult("10.0.0.0", 8, 4, 16777214),
			b:    cidrResult("10.0.0.0", 16, 4, 65534),
			want: "same_subnet",
		},
		{
			name: "a is supernet",
			a:    cidrResult("10.0.0.0", 8, 4, 16777214),
			b:    cidrResult("10.1.0.0", 16, 4, 65534),
			want: "A_is_supernet",
		},
		{
			name: "b is supernet",
			a:    cidrResult("10.1.0.0", 16, 4, 65534),
			b:    cidrResult("10.0.0.0", 8, 4, 16777214),
			want: "B_is_supernet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compare.CompareItems(tt.a, tt.b, domain.EntryCIDR, domain.EntryCIDR)
			if !hasString(got.Diff.Similarities, tt.want) {
				t.Errorf("Expected %s in %v", tt.want, got.Diff.Similarities)
			}
			prefix := findDiff(t, got.Diff.Differences, "cidrPrefix")
			if prefix == nil {
				t.Fatal("Expected a prefix difference")
			}
			if !strings.HasPrefix(prefix.A.(string), "/") {
				t.Errorf("Expected /N prefix, got %v", prefix.A)
			}
			total := findDiff(t, got.Diff.Differences, "totalHosts")
			if total == nil {
				t.Fatal("Expected a totalHosts difference")
			}
			if _, ok := total.A.(string); !ok {
				t.Errorf("Expected stringified totalHosts, got %T", total.A)
			}
			if !hasString(got.Diff.Similarities, "both_private") {
				t.Errorf("Expected both_private in %v", got.Diff.Similarities)
			}
		})
	}
}

func TestCompareItems_CIDRVersionMismatch(t *testing.T) {
	a := cidrResult("10.0.0.0", 8, 4, 16777214)
	b := cidrResult("2001:db8::", 32, 6, 0)

	got := compare.CompareItems(a, b, domain.EntryCIDR, domain.EntryCIDR)
	for _, sim := range []string{"same_subnet", "A_is_supernet", "B_is_supernet"} {
		if hasString(got.Diff.Similarities, sim) {
			t.Errorf("Did not expect %s across versions", sim)
		}
	}
}

func TestCompareItems_Range(t *testing.T) {
	a := &domain.AnalysisResult{Range: &domain.RangeInfo{
		Start: "10.0.0.1", End: "10.0.0.10", Size: big.NewInt(10),
		IsValid: domain.Bool(true), IsIncreasing: domain.Bool(true),
	}}
	b := &domain.AnalysisResult{Range: &domain.RangeInfo{
		Start: "10.0.0.1", End: "10.0.39.16", Size: big.NewInt(10000),
		IsValid: domain.Bool(true), IsIncreasing: domain.Bool(true),
	}}

	got := compare.CompareItems(a, b, domain.EntryRange, domain.EntryRange)
	for _, sim := range []string{"same_start", "both_valid"} {
		if !hasString(got.Diff.Similarities, sim) {
			t.Errorf("Expected %s in %v", sim, got.Diff.Similarities)
		}
	}
	size := findDiff(t, got.Diff.Differences, "size")
	if size == nil {
		t.Fatal("Expected a size difference")
	}
	if size.B != "10,000" {
		t.Errorf("Expected 10,000, got %v", size.B)
	}

	de := compare.NewComparer(language.German).CompareItems(a, b, domain.EntryRange, domain.EntryRange)
	if size := findDiff(t, de.Diff.Differences, "size"); size == nil || size.B != "10.000" {
		t.Errorf("Expected German grouping, got %+v", size)
	}
}

func TestCompareItems_Hostname(t *testing.T) {
	a := &domain.AnalysisResult{Input: "example.com", Hostname: "example.com", IsValid: domain.Bool(true)}
	b := &domain.AnalysisResult{Input: "example.org", Hostname: "example.org", IsValid: domain.Bool(true)}

	got := compare.CompareItems(a, b, domain.EntryHostname, domain.EntryHostname)
	if findDiff(t, got.Diff.Differences, "hostname") == nil {
		t.Error("Expected a hostname difference")
	}
	if !hasString(got.Diff.Similarities, "both_valid") {
		t.Errorf("Expected both_valid in %v", got.Diff.Similarities)
	}

	same := compare.CompareItems(a, a, domain.EntryHostname, domain.EntryHostname)
	if !hasString(same.Diff.Similarities, "same_hostname") {
		t.Errorf("Expected same_hostname in %v", same.Diff.Similarities)
	}
}

func TestCompareItems_Invalid(t *testing.T) {
	a := &domain.AnalysisResult{Input: "foo", Error: "unrecognized input"}
	b := &domain.AnalysisResult{Input: "bar", Error: "unrecognized input"}

	got := compare.CompareItems(a, b, domain.EntryInvalid, domain.EntryInvalid)
	if len(got.Diff.Differences) != 1 {
		t.Fatalf("Expected exactly one difference, got %d", len(got.Diff.Differences))
	}
	if d := got.Diff.Differences[0]; d.Field != "error" || d.Severity != domain.SeverityError {
		t.Errorf("Unexpected difference %+v", d)
	}
	if len(got.Diff.Similarities) != 0 {
		t.Errorf("Expected no similarities, got %v", got.Diff.Similarities)
	}
}

func TestCompareItems_HostnameWithIP(t *testing.T) {
	host := &domain.AnalysisResult{Input: "example.com", IsValid: domain.Bool(true)}
	ip := ipv4Result("93.184.216.34", 1572395042, false)

	for _, order := range []struct {
		name         string
		a, b         *domain.AnalysisResult
		typeA, typeB domain.EntryType
	}{
		{"hostname first", host, ip, domain.EntryHostname, domain.EntryIPv4},
		{"ip first", ip, host, domain.EntryIPv4, domain.EntryHostname},
	} {
		t.Run(order.name, func(t *testing.T) {
			got := compare.CompareItems(order.a, order.b, order.typeA, order.typeB)
			if got.Comparability.Reason != domain.ReasonHostnameWithIP {
				t.Fatalf("Expected hostname_with_ip, got %s", got.Comparability.Reason)
			}
			typeDiff := findDiff(t, got.Diff.Differences, "type")
			if typeDiff == nil || typeDiff.A != "Hostname" || typeDiff.B != "IPv4" || typeDiff.Severity != domain.SeverityInfo {
				t.Errorf("Unexpected type diff %+v", typeDiff)
			}
			if findDiff(t, got.Diff.Differences, "isValid") != nil {
				t.Error("Did not expect an isValid difference")
			}
			if !hasString(got.Diff.Similarities, "IP_is_public") {
				t.Errorf("Expected IP_is_public in %v", got.Diff.Similarities)
			}
			if len(got.Diff.Warnings) != 1 {
				t.Errorf("Expected one warning, got %v", got.Diff.Warnings)
			}
		})
	}
}

func TestComparisonResult_JSONRoundTrip(t *testing.T) {
	got := compare.CompareItems(ipv4Result("1.1.1.1", 16843009, false), ipv4Result("1.0.0.1", 16777217, false), domain.EntryIPv4, domain.EntryIPv4)

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back domain.ComparisonResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Diff == nil || len(back.Diff.Differences) != len(got.Diff.Differences) {
		t.Errorf("Expected differences to survive a round trip")
	}
}
