package inspect

import (
	"math/big"
	"net/netip"
	"strconv"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

var one = big.NewInt(1)

// hostMask returns 2^bits - 1.
func hostMask(bits int) *big.Int {
	m := new(big.Int).Lsh(one, uint(bits))
	return m.Sub(m, one)
}

func analyzeCIDR(input string) domain.AnalysisResult {
	addrPart, bitsPart, ok := strings.Cut(input, "/")
	if !ok {
		return invalid("Invalid CIDR notation: missing prefix length")
	}

	base, addr, ok := analyzeAddr(addrPart)
	if !ok {
		return invalid("Invalid CIDR notation: %s is not an IP address", addrPart)
	}
	if addr.Zone() != "" {
		return invalid("Invalid CIDR notation: zones are not allowed")
	}

	bits, err := strconv.Atoi(bitsPart)
	if err != nil || bits < 0 || bits > addr.BitLen() {
		return invalid("Invalid CIDR notation: prefix length must be between 0 and %d", addr.BitLen())
	}

	prefix := netip.PrefixFrom(addr, bits).Masked()
	info := cidrInfo(prefix)

	network := prefix.Addr()
	class := base.Class
	if network != addr {
		class = classifyAddr(network)
	}

	return domain.AnalysisResult{
		IsValid:    domain.Bool(true),
		Normalized: prefix.String(),
		Class:      class,
		CIDR:       info,
		BaseIP:     &base,
		Version:    base.Version,
	}
}

func classifyAddr(addr netip.Addr) *domain.Classification {
	if addr.Is4() {
		return classifyIPv4(addr)
	}
	return classifyIPv6(addr)
}

// cidrInfo computes block math for a masked prefix. IPv4 blocks larger than
// /31 reserve the network and broadcast addresses; IPv6 blocks have no
// broadcast address and every address is usable.
func cidrInfo(prefix netip.Prefix) *domain.CIDRInfo {
	network := prefix.Addr()
	width := network.BitLen()
	bits := prefix.Bits()
	hostBits := width - bits

	hosts := hostMask(hostBits)
	mask := new(big.Int).Xor(hostMask(width), hosts)
	first := addrToInt(network)
	last := new(big.Int).Add(first, hosts)
	total := new(big.Int).Add(hosts, one)

	info := &domain.CIDRInfo{
		CIDR:           domain.Int(bits),
		Netmask:        intToAddr(mask, width).String(),
		WildcardMask:   intToAddr(hosts, width).String(),
		NetworkAddress: network.String(),
		FirstHost:      network.String(),
		LastHost:       intToAddr(last, width).String(),
		TotalHosts:     total,
		UsableHosts:    new(big.Int).Set(total),
		NetworkBits:    bits,
		HostBits:       hostBits,
	}

	if width == 32 {
		info.BroadcastAddress = intToAddr(last, width).String()
		if hostBits >= 2 {
			info.FirstHost = intToAddr(new(big.Int).Add(first, one), width).String()
			info.LastHost = intToAddr(new(big.Int).Sub(last, one), width).String()
			info.UsableHosts.Sub(total, big.NewInt(2))
		}
	}
	return info
}
