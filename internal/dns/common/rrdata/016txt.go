package rrdata

import (
	"fmt"
	"strings"
)

// EncodeTXTData encodes a TXT record string into its binary representation.
func EncodeTXTData(data string) ([]byte, error) {
	// Supports multiple strings separated by semicolons for simplicity
	// see RFC 1035 section 3.3.14
	segments := strings.Split(data, ";")
	var encoded []byte
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if len(segment) > 255 {
			return nil, fmt.Errorf("TXT segment too long: %d bytes", len(segment))
		}
		encoded = append(encoded, byte(len(segment)))
		encoded = append(encoded, []byte(segment)...)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("TXT record must contain at least one segment")
	}
	return encoded, nil
}

// DecodeTXTData decodes a TXT record's RDATA, which is one or more
// length-prefixed character-string fragments, concatenating the
// fragments into a single string.
func DecodeTXTData(rdata []byte) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(rdata) {
		segLen := int(rdata[i])
		i++
		if i+segLen > len(rdata) {
			return "", fmt.Errorf("TXT segment length %d exceeds remaining rdata", segLen)
		}
		sb.Write(rdata[i : i+segLen])
		i += segLen
	}
	return sb.String(), nil
}
