package domain

import (
	"fmt"
	"strings"
)

// maxNameLength is the maximum wire-encoded length of a domain name
// (labels plus length bytes plus the terminating zero), per RFC 1035 section 3.1.
const maxNameLength = 255

// maxLabelLength is the maximum length of a single label.
const maxLabelLength = 63

// ValidateName checks that name is encodable as a DNS question name:
// no label exceeds 63 bytes and the wire-encoded form fits in 255 bytes.
func ValidateName(name string) error {
	trimmed := strings.TrimSuffix(name, ".")
	if trimmed == "" {
		return fmt.Errorf("domain name must not be empty")
	}
	encodedLen := 1 // terminating zero label
	for _, label := range strings.Split(trimmed, ".") {
		if len(label) == 0 {
			return fmt.Errorf("domain name %q has an empty label", name)
		}
		if len(label) > maxLabelLength {
			return fmt.Errorf("label %q exceeds %d bytes", label, maxLabelLength)
		}
		encodedLen += len(label) + 1
	}
	if encodedLen > maxNameLength {
		return fmt.Errorf("domain name %q exceeds %d encoded bytes", name, maxNameLength)
	}
	return nil
}

// EqualNames reports whether two domain names are equal under DNS's
// case-insensitive (ASCII) comparison rule, ignoring a trailing dot.
func EqualNames(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

// CanonicalName lowercases a name and strips any trailing dot, so that
// names parsed from the wire compare consistently with user input.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// ReverseIPv4Name builds the PTR question name for a dotted-quad IPv4
// address, e.g. "1.2.3.4" -> "4.3.2.1.in-addr.arpa".
func ReverseIPv4Name(ipv4 string) (string, error) {
	octets := strings.Split(ipv4, ".")
	if len(octets) != 4 {
		return "", fmt.Errorf("not a dotted-quad IPv4 address: %q", ipv4)
	}
	for _, o := range octets {
		if o == "" {
			return "", fmt.Errorf("not a dotted-quad IPv4 address: %q", ipv4)
		}
	}
	return fmt.Sprintf("%s.%s.%s.%s.in-addr.arpa", octets[3], octets[2], octets[1], octets[0]), nil
}
