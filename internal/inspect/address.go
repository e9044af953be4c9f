package inspect

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/netip"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

func analyzeIPv4(input string) domain.AnalysisResult {
	addr, err := netip.ParseAddr(input)
	if err != nil || !addr.Is4() {
		return invalid("Invalid IPv4 address: %s", input)
	}
	return ipv4Result(addr)
}

func ipv4Result(addr netip.Addr) domain.AnalysisResult {
	b := addr.As4()
	n := binary.BigEndian.Uint32(b[:])

	octets := make([]int, 4)
	binaryOctets := make([]string, 4)
	for i, o := range b {
		octets[i] = int(o)
		binaryOctets[i] = fmt.Sprintf("%08b", o)
	}

	return domain.AnalysisResult{
		IsValid:      domain.Bool(true),
		Normalized:   addr.String(),
		Integer:      new(big.Int).SetUint64(uint64(n)),
		IntegerHex:   fmt.Sprintf("0x%08X", n),
		BinaryOctets: binaryOctets,
		Octets:       octets,
		PTR:          ptrIPv4(b),
		Class:        classifyIPv4(addr),
		Version:      4,
	}
}

func analyzeIPv6(input string) domain.AnalysisResult {
	addr, err := netip.ParseAddr(input)
	if err != nil || !addr.Is6() {
		return invalid("Invalid IPv6 address: %s", input)
	}
	return ipv6Result(addr)
}

func ipv6Result(addr netip.Addr) domain.AnalysisResult {
	zone := addr.Zone()
	plain := addr.WithZone("")
	b := plain.As16()

	hextets := make([]string, 8)
	for i := range hextets {
		hextets[i] = fmt.Sprintf("%04x", binary.BigEndian.Uint16(b[i*2:]))
	}

	r := domain.AnalysisResult{
		IsValid:      domain.Bool(true),
		Normalized:   plain.String(),
		Expanded:     plain.StringExpanded(),
		Compressed:   plain.String(),
		Hextets:      hextets,
		Integer:      new(big.Int).SetBytes(b[:]),
		IntegerHex:   "0x" + strings.ToUpper(hex.EncodeToString(b[:])),
		ZoneID:       zone,
		PTR:          ptrIPv6(b),
		Class:        classifyIPv6(plain),
		IsIPv4Mapped: domain.Bool(plain.Is4In6()),
		Version:      6,
	}
	if plain.Is4In6() {
		r.MappedIPv4 = plain.Unmap().String()
	}
	return r
}

func ptrIPv4(b [4]byte) string {
	return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", b[3], b[2], b[1], b[0])
}

// ptrIPv6 reverses all 32 nibbles of the address.
func ptrIPv6(b [16]byte) string {
	digits := hex.EncodeToString(b[:])
	nibbles := make([]string, 0, len(digits)+1)
	for i := len(digits) - 1; i >= 0; i-- {
		nibbles = append(nibbles, string(digits[i]))
	}
	nibbles = append(nibbles, "ip6.arpa")
	return strings.Join(nibbles, ".")
}

// addrToInt returns the address as an unsigned integer.
func addrToInt(addr netip.Addr) *big.Int {
	b := addr.AsSlice()
	return new(big.Int).SetBytes(b)
}

// intToAddr converts an integer back into an address of the given bit length.
func intToAddr(n *big.Int, bits int) netip.Addr {
	if bits == 32 {
		var b [4]byte
		n.FillBytes(b[:])
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	n.FillBytes(b[:])
	return netip.AddrFrom16(b)
}
