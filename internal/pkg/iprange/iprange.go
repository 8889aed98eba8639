// Package iprange checks whether a client address belongs to a set of
// allowed network ranges. A range is a CIDR block ("192.168.1.0/24"), a single
// address ("10.0.0.7") or an inclusive span ("10.0.0.10-10.0.0.20").
package iprange

import (
	"net/netip"
	"strings"
)

// Contains reports whether origin lies in any of ranges. IPv4-mapped IPv6
// origins are compared as IPv4. Malformed range entries never match.
func Contains(origin string, ranges []string) bool {
	addr, ok := ParseOrigin(origin)
	if !ok {
		return false
	}
	for _, r := range ranges {
		if matches(addr, strings.TrimSpace(r)) {
			return true
		}
	}
	return false
}

// ParseOrigin parses a client address, accepting a host:port form.
func ParseOrigin(origin string) (netip.Addr, bool) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(origin); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(origin, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

func matches(addr netip.Addr, r string) bool {
	switch {
	case r == "":
		return false
	case strings.Contains(r, "/"):
		prefix, err := netip.ParsePrefix(r)
		if err != nil {
			return false
		}
		if prefix.Addr().Is4In6() {
			prefix = netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()-96)
		}
		return prefix.Masked().Contains(addr)
	case strings.Contains(r, "-"):
		lo, hi, found := strings.Cut(r, "-")
		if !found {
			return false
		}
		from, err := netip.ParseAddr(strings.TrimSpace(lo))
		if err != nil {
			return false
		}
		to, err := netip.ParseAddr(strings.TrimSpace(hi))
		if err != nil {
			return false
		}
		from, to = from.Unmap(), to.Unmap()
		if from.BitLen() != addr.BitLen() || to.BitLen() != addr.BitLen() {
			return false
		}
		return from.Compare(addr) <= 0 && addr.Compare(to) <= 0
	default:
		exact, err := netip.ParseAddr(r)
		if err != nil {
			return false
		}
		return exact.Unmap() == addr
	}
}
