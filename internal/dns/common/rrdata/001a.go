package rrdata

import (
	"fmt"
	"net"
)

// EncodeAData encodes an A record string into its binary representation.
func EncodeAData(data string) ([]byte, error) {
	// data = "192.168.0.1"
	ip := net.ParseIP(data)
	if ip == nil || !isIPv4(ip) {
		return nil, fmt.Errorf("invalid A record IP: %s", data)
	}
	return ip.To4(), nil
}

// DecodeAData decodes a 4-byte A record RDATA into its dotted-quad string.
func DecodeAData(rdata []byte) (string, error) {
	if len(rdata) != 4 {
		return "", fmt.Errorf("invalid A record rdata length: %d", len(rdata))
	}
	return net.IPv4(rdata[0], rdata[1], rdata[2], rdata[3]).String(), nil
}
