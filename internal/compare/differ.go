package compare

import (
	"strconv"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

// differ accumulates one comparison's output.
type differ struct {
	diff domain.Diff
}

func newDiffer() *differ {
	return &differ{diff: domain.Diff{
		Differences:  []domain.FieldDiff{},
		Similarities: []string{},
	}}
}

func (d *differ) add(field string, a, b any, severity domain.Severity) {
	d.diff.Differences = append(d.diff.Differences, domain.FieldDiff{
		Field:    field,
		A:        a,
		B:        b,
		Severity: severity,
	})
}

func (d *differ) similar(label string) {
	if label == "" {
		return
	}
	d.diff.Similarities = append(d.diff.Similarities, label)
}

func (d *differ) warn(msg string) {
	d.diff.Warnings = append(d.diff.Warnings, msg)
}

func (d *differ) result() *domain.Diff {
	out := d.diff
	return &out
}

// ptr is reported only when at least one side has one and they differ.
func (d *differ) comparePTR(a, b *domain.AnalysisResult) {
	if (a.PTR != "" || b.PTR != "") && a.PTR != b.PTR {
		d.add("ptr", ptrVal(a.PTR), ptrVal(b.PTR), domain.SeverityMinor)
	}
}

func (d *differ) compareClassType(field string, a, b *domain.Classification) {
	if a.Type != b.Type {
		d.add(field, strVal(a.Type), strVal(b.Type), domain.SeverityMajor)
		return
	}
	d.similar(bothLabel(a.Type))
}

func (d *differ) compareValidity(a, b *bool) {
	if !boolEq(a, b) {
		d.add("isValid", boolVal(a), boolVal(b), domain.SeverityMajor)
		return
	}
	if domain.IsTrue(a) {
		d.similar("both_valid")
	}
}

func diffIPv4(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()

	if a.Normalized != b.Normalized {
		d.add("normalized", strVal(a.Normalized), strVal(b.Normalized), domain.SeverityMajor)
	} else {
		d.similar("same_normalized")
	}

	classA, classB := classOf(a), classOf(b)
	d.compareClassType("classification.type", classA, classB)

	switch {
	case !boolEq(classA.IsPrivate, classB.IsPrivate):
		d.add("classification.isPrivate", boolVal(classA.IsPrivate), boolVal(classB.IsPrivate), domain.SeverityMajor)
	case domain.IsTrue(classA.IsPrivate):
		d.similar("both_private")
	default:
		d.similar("both_public")
	}

	if !bigEq(a.Integer, b.Integer) {
		fd := domain.FieldDiff{
			Field:    "integer",
			A:        bigVal(a.Integer),
			B:        bigVal(b.Integer),
			Severity: domain.SeverityMajor,
		}
		if dist := distance(a.Integer, b.Integer); dist != nil {
			fd.Distance = dist
		}
		d.diff.Differences = append(d.diff.Differences, fd)
	} else {
		d.similar("same_integer")
	}

	octA, octB := octetsOf(a), octetsOf(b)
	details := make([]domain.OctetDiff, 4)
	allSame := octA != nil && octB != nil
	for i := range details {
		oa, ob := octetAt(octA, i), octetAt(octB, i)
		same := intEq(oa, ob)
		details[i] = domain.OctetDiff{Position: i, A: oa, B: ob, Same: same}
		allSame = allSame && same
	}
	d.diff.Differences = append(d.diff.Differences, domain.FieldDiff{
		Field:    "octets",
		Severity: domain.SeverityInfo,
		Details:  details,
	})
	if allSame {
		d.similar("same_octets")
	}

	d.comparePTR(a, b)

	if octA != nil && octB != nil {
		for _, subnet := range []struct {
			octets int
			label  string
		}{
			{3, "same_/24_subnet"},
			{2, "same_/16_subnet"},
			{1, "same_/8_subnet"},
		} {
			if samePrefix(octA, octB, subnet.octets) {
				d.similar(subnet.label)
			}
		}
	}

	return d.result()
}

// octetsOf returns the four octets of an IPv4 result, read from the analysis
// when present and from the raw input otherwise. Unparseable positions are nil.
func octetsOf(r *domain.AnalysisResult) []*int {
	if len(r.Octets) > 0 {
		out := make([]*int, len(r.Octets))
		for i := range r.Octets {
			out[i] = domain.Int(r.Octets[i])
		}
		return out
	}
	if r.Input == "" {
		return nil
	}
	parts := strings.Split(r.Input, ".")
	out := make([]*int, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			out[i] = domain.Int(n)
		}
	}
	return out
}

func octetAt(octets []*int, i int) *int {
	if i >= len(octets) {
		return nil
	}
	return octets[i]
}

// samePrefix reports whether the leading n octets are present and equal.
func samePrefix(a, b []*int, n int) bool {
	for i := 0; i < n; i++ {
		oa, ob := octetAt(a, i), octetAt(b, i)
		if oa == nil || ob == nil || *oa != *ob {
			return false
		}
	}
	return true
}

func diffIPv6(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()

	if a.Normalized != b.Normalized {
		d.add("normalized", strVal(a.Normalized), strVal(b.Normalized), domain.SeverityMajor)
	} else {
		d.similar("same_normalized")
	}

	classA, classB := classOf(a), classOf(b)
	d.compareClassType("classification.type", classA, classB)

	if classA.Scope != classB.Scope {
		d.add("classification.scope", strVal(classA.Scope), strVal(classB.Scope), domain.SeverityMajor)
	} else if classA.Scope != "" {
		d.similar("both_" + classA.Scope)
	}

	if a.Compressed != b.Compressed {
		d.add("compressed", strVal(a.Compressed), strVal(b.Compressed), domain.SeverityInfo)
	}

	if !boolEq(a.IsIPv4Mapped, b.IsIPv4Mapped) {
		d.add("isIPv4Mapped", boolVal(a.IsIPv4Mapped), boolVal(b.IsIPv4Mapped), domain.SeverityMinor)
	}

	d.comparePTR(a, b)

	return d.result()
}

func diffCIDR(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()
	cidrA, cidrB := cidrOf(a), cidrOf(b)

	if !intEq(cidrA.CIDR, cidrB.CIDR) {
		d.add("cidrPrefix", prefixVal(cidrA.CIDR), prefixVal(cidrB.CIDR), domain.SeverityMajor)
	} else if cidrA.CIDR != nil {
		d.similar("both_/" + strconv.Itoa(*cidrA.CIDR))
	}

	if cidrA.Netmask != cidrB.Netmask {
		d.add("netmask", strVal(cidrA.Netmask), strVal(cidrB.Netmask), domain.SeverityMajor)
	}

	if cidrA.NetworkAddress != cidrB.NetworkAddress {
		d.add("networkAddress", strVal(cidrA.NetworkAddress), strVal(cidrB.NetworkAddress), domain.SeverityMajor)
	} else {
		d.similar("same_network")
	}

	if a.Version == 4 && cidrA.BroadcastAddress != cidrB.BroadcastAddress {
		d.add("broadcastAddress", strVal(cidrA.BroadcastAddress), strVal(cidrB.BroadcastAddress), domain.SeverityMajor)
	}

	if !bigEq(cidrA.TotalHosts, cidrB.TotalHosts) {
		d.add("totalHosts", bigString(cidrA.TotalHosts), bigString(cidrB.TotalHosts), domain.SeverityMajor)
	}

	d.compareClassType("baseIPClassification.type", baseClassOf(a), baseClassOf(b))

	if a.Version == b.Version && cidrA.NetworkAddress != "" && cidrB.NetworkAddress != "" {
		switch {
		case cidrA.NetworkAddress == cidrB.NetworkAddress:
			d.similar("same_subnet")
		case prefixLess(cidrA.CIDR, cidrB.CIDR):
			d.similar("A_is_supernet")
		case prefixLess(cidrB.CIDR, cidrA.CIDR):
			d.similar("B_is_supernet")
		}
	}

	return d.result()
}

func prefixVal(p *int) any {
	if p == nil {
		return nil
	}
	return "/" + strconv.Itoa(*p)
}

// prefixLess orders two prefix lengths; an absent prefix is never smaller.
func prefixLess(a, b *int) bool {
	return a != nil && b != nil && *a < *b
}

func (c *Comparer) diffRange(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()
	rangeA, rangeB := rangeOf(a), rangeOf(b)

	if rangeA.Start != rangeB.Start {
		d.add("startIP", strVal(rangeA.Start), strVal(rangeB.Start), domain.SeverityMajor)
	} else {
		d.similar("same_start")
	}

	if rangeA.End != rangeB.End {
		d.add("endIP", strVal(rangeA.End), strVal(rangeB.End), domain.SeverityMajor)
	} else {
		d.similar("same_end")
	}

	if !bigEq(rangeA.Size, rangeB.Size) {
		d.add("size", c.formatSize(rangeA.Size), c.formatSize(rangeB.Size), domain.SeverityMajor)
	}

	d.compareValidity(rangeA.IsValid, rangeB.IsValid)

	if !boolEq(rangeA.IsIncreasing, rangeB.IsIncreasing) {
		d.add("isIncreasing", boolVal(rangeA.IsIncreasing), boolVal(rangeB.IsIncreasing), domain.SeverityMinor)
	}

	return d.result()
}

func diffHostname(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()

	hostA, hostB := hostnameOf(a), hostnameOf(b)
	if hostA != hostB {
		d.add("hostname", strVal(hostA), strVal(hostB), domain.SeverityMajor)
	} else {
		d.similar("same_hostname")
	}

	d.compareValidity(a.IsValid, b.IsValid)

	return d.result()
}

func hostnameOf(r *domain.AnalysisResult) string {
	if r.Hostname != "" {
		return r.Hostname
	}
	return r.Input
}

func diffInvalid(a, b *domain.AnalysisResult) *domain.Diff {
	d := newDiffer()
	d.add("error", strVal(a.Error), strVal(b.Error), domain.SeverityError)
	return d.result()
}

func diffHostnameWithIP(host, ip *domain.AnalysisResult, ipType domain.EntryType) *domain.Diff {
	d := newDiffer()

	d.add("type", string(domain.EntryHostname), string(ipType), domain.SeverityInfo)

	if !boolEq(host.IsValid, ip.IsValid) {
		d.add("isValid", boolVal(host.IsValid), boolVal(ip.IsValid), domain.SeverityMajor)
	}

	if t := ip.ClassType(); t != "" {
		d.similar("IP_is_" + strings.ToLower(t))
	}

	d.warn(warningHostnameWithDNS)

	return d.result()
}
