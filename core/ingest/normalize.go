package ingest

import (
	"net/netip"
	"sort"
	"strings"
)

// NormalizeKey is the identity normalization for hostnames and IPs.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeDomain folds an identity domain to its stored case.
func NormalizeDomain(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Clean trims s and returns nil when nothing is left.
func Clean(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CleanPtr is Clean for an optional value.
func CleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return Clean(*p)
}

// SplitGroups splits a comma-separated group list, trimming tokens and
// dropping empties. Order and duplicates are preserved.
func SplitGroups(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinGroups renders a group set as a sorted, deduplicated comma list.
func JoinGroups(groups []string) string {
	set := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// ValidIP reports whether s parses as an IPv4 or IPv6 address.
func ValidIP(s string) bool {
	_, err := netip.ParseAddr(strings.TrimSpace(s))
	return err == nil
}

// CanonicalIP returns the canonical text form of an address, or s trimmed
// when it does not parse.
func CanonicalIP(s string) string {
	s = strings.TrimSpace(s)
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String()
	}
	return s
}
