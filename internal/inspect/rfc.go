package inspect

import (
	"net/netip"

	"github.com/bcnelson/addrscope/internal/domain"
)

type privacy int

const (
	special privacy = iota
	private
	public
)

// rfcBlock is one row of a classification table. Rows are matched in order.
type rfcBlock struct {
	prefix  netip.Prefix
	typ     string
	subtype string
	rfc     string
	scope   string
	privacy privacy
}

var ipv4Blocks = []rfcBlock{
	{netip.MustParsePrefix("0.0.0.0/8"), "Current Network", "This Host/Network", "RFC 1122", "This Network", private},
	{netip.MustParsePrefix("10.0.0.0/8"), "Private", "Class A Private", "RFC 1918", "Private Network", private},
	{netip.MustParsePrefix("100.64.0.0/10"), "Shared Address Space", "Carrier-Grade NAT", "RFC 6598", "Shared Network", special},
	{netip.MustParsePrefix("127.0.0.0/8"), "Loopback", "Local Loopback", "RFC 1122", "This Host", special},
	{netip.MustParsePrefix("169.254.0.0/16"), "Link-Local", "APIPA (Automatic Private IP Addressing)", "RFC 3927", "Link-Local", special},
	{netip.MustParsePrefix("172.16.0.0/12"), "Private", "Class B Private", "RFC 1918", "Private Network", private},
	{netip.MustParsePrefix("192.0.0.0/24"), "Reserved", "IETF Protocol Assignments", "RFC 6890", "Reserved", special},
	{netip.MustParsePrefix("192.0.2.0/24"), "Documentation", "TEST-NET-1", "RFC 5737", "Documentation/Examples", special},
	{netip.MustParsePrefix("192.168.0.0/16"), "Private", "Class C Private", "RFC 1918", "Private Network", private},
	{netip.MustParsePrefix("198.18.0.0/15"), "Benchmarking", "Performance Testing", "RFC 2544", "Benchmarking", special},
	{netip.MustParsePrefix("198.51.100.0/24"), "Documentation", "TEST-NET-2", "RFC 5737", "Documentation/Examples", special},
	{netip.MustParsePrefix("203.0.113.0/24"), "Documentation", "TEST-NET-3", "RFC 5737", "Documentation/Examples", special},
	{netip.MustParsePrefix("224.0.0.0/4"), "Multicast", "", "RFC 5771", "Multicast", special},
	{netip.MustParsePrefix("255.255.255.255/32"), "Broadcast", "Limited Broadcast", "RFC 919", "This Network", special},
	{netip.MustParsePrefix("240.0.0.0/4"), "Reserved", "Future Use", "RFC 1112", "Reserved", special},
}

var ipv6Blocks = []rfcBlock{
	{netip.MustParsePrefix("::/128"), "Unspecified", "Unspecified Address", "RFC 4291", "This Host", special},
	{netip.MustParsePrefix("::1/128"), "Loopback", "Loopback Address", "RFC 4291", "This Host", special},
	{netip.MustParsePrefix("::ffff:0:0/96"), "IPv4-mapped IPv6", "IPv4-mapped", "RFC 4291", "IPv4/IPv6 Transition", special},
	{netip.MustParsePrefix("fe80::/10"), "Link-Local", "Link-Local Unicast", "RFC 4291", "Link-Local", special},
	{netip.MustParsePrefix("fc00::/7"), "Unique Local", "Unique Local Address (ULA)", "RFC 4193", "Private Network", private},
	{netip.MustParsePrefix("ff00::/8"), "Multicast", "", "RFC 4291", "Multicast", special},
	{netip.MustParsePrefix("2001:db8::/32"), "Documentation", "Documentation Prefix", "RFC 3849", "Documentation/Examples", special},
	{netip.MustParsePrefix("2001::/32"), "Transition", "TEREDO Tunneling", "RFC 4380", "IPv4/IPv6 Transition", special},
	{netip.MustParsePrefix("2002::/16"), "Transition", "6to4 Tunneling", "RFC 3056", "IPv4/IPv6 Transition", special},
}

var (
	ipv4Public = rfcBlock{typ: "Public", subtype: "Global Unicast", scope: "Public Internet", privacy: public}
	ipv6Public = rfcBlock{typ: "Global Unicast", subtype: "Public IPv6", rfc: "RFC 4291", scope: "Public Internet", privacy: public}
)

var ipv4MulticastBlocks = []struct {
	prefix  netip.Prefix
	subtype string
}{
	{netip.MustParsePrefix("224.0.0.1/32"), "All Hosts (Local)"},
	{netip.MustParsePrefix("224.0.0.2/32"), "All Routers (Local)"},
	{netip.MustParsePrefix("224.0.0.0/24"), "Local Network Multicast"},
	{netip.MustParsePrefix("224.0.1.0/24"), "Internetwork Control"},
	{netip.MustParsePrefix("232.0.0.0/8"), "Source-Specific Multicast (SSM)"},
	{netip.MustParsePrefix("233.0.0.0/8"), "GLOP Addressing"},
	{netip.MustParsePrefix("239.0.0.0/8"), "Administratively Scoped"},
}

var ipv6MulticastScopes = map[byte]string{
	0x0: "Reserved",
	0x1: "Interface-Local",
	0x2: "Link-Local",
	0x3: "Realm-Local",
	0x4: "Admin-Local",
	0x5: "Site-Local",
	0x8: "Organization-Local",
	0xe: "Global",
	0xf: "Reserved",
}

func classifyIPv4(addr netip.Addr) *domain.Classification {
	for _, block := range ipv4Blocks {
		if !block.prefix.Contains(addr) {
			continue
		}
		c := block.classification()
		if block.typ == "Multicast" {
			c.Subtype = ipv4MulticastSubtype(addr)
		}
		return c
	}
	return ipv4Public.classification()
}

func ipv4MulticastSubtype(addr netip.Addr) string {
	for _, m := range ipv4MulticastBlocks {
		if m.prefix.Contains(addr) {
			return m.subtype
		}
	}
	return "Global Multicast"
}

func classifyIPv6(addr netip.Addr) *domain.Classification {
	for _, block := range ipv6Blocks {
		if !block.prefix.Contains(addr) {
			continue
		}
		c := block.classification()
		if block.typ == "Multicast" {
			c.Subtype = "Multicast"
			if scope, ok := ipv6MulticastScopes[addr.As16()[1]&0x0f]; ok {
				c.Subtype = scope
			}
		}
		return c
	}
	return ipv6Public.classification()
}

// classification materializes a fresh record so callers never share flags.
func (b rfcBlock) classification() *domain.Classification {
	c := &domain.Classification{
		Type:    b.typ,
		Subtype: b.subtype,
		RFC:     b.rfc,
		Scope:   b.scope,
	}
	if b.prefix.IsValid() {
		c.Range = blockRange(b.prefix)
	}
	switch b.privacy {
	case private:
		c.IsPrivate = domain.Bool(true)
	case public:
		c.IsPrivate = domain.Bool(false)
		c.IsPublic = domain.Bool(true)
	}
	return c
}

// blockRange renders a prefix as "first - last".
func blockRange(p netip.Prefix) string {
	first := p.Masked().Addr()
	hostBits := first.BitLen() - p.Bits()
	last := addrToInt(first)
	last.Add(last, hostMask(hostBits))
	return first.String() + " - " + intToAddr(last, first.BitLen()).String()
}
