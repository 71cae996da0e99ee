// Package domain holds the value types shared across the registrar: the
// Address identity type and helpers for validating the opaque domain names
// the registrar manages. Keeping these dependency-free lets stores, services,
// and transport share them without import cycles.
package domain

import (
	"fmt"
	"strings"
)

// Address identifies an actor: a registrant, the registrar's own account, or
// a faucet recipient. Addresses are lowercase 0x-prefixed hex strings.
type Address string

// ZeroAddress is the null identity. Owner-scoped operations reject it.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress normalizes and validates an address string.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("address must be 0x-prefixed: %q", s)
	}
	hexPart := s[2:]
	if len(hexPart) != 40 {
		return "", fmt.Errorf("address must be 20 bytes of hex, got %d chars", len(hexPart))
	}
	for _, r := range hexPart {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("address contains non-hex character %q", r)
		}
	}
	return Address(s), nil
}

// IsZero reports whether the address is unset or the null identity.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

// ValidDomainName reports whether a domain string is acceptable for
// registration. The registrar treats names as opaque; the only structural
// requirement is that they are non-empty after trimming.
func ValidDomainName(name string) bool {
	return strings.TrimSpace(name) != ""
}
