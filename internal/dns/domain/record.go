package domain

import "fmt"

// ResourceRecord is a single parsed answer/authority/additional
// section entry. TTL is carried as an opaque 32-bit value; see
// DESIGN.md's open-question resolution on the 16-vs-32-bit TTL field.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Rdata Rdata
}

// Rdata is the tagged-variant payload of a ResourceRecord, keyed by
// Type. Each record type in the supported set has its own Rdata
// implementation.
type Rdata interface {
	rrType() RRType
	fmt.Stringer
}

// AData is the rdata of an A record: an IPv4 address in dotted-quad form.
type AData struct {
	Address string
}

func (AData) rrType() RRType   { return RRTypeA }
func (d AData) String() string { return d.Address }

// NSData is the rdata of an NS record: the delegated nameserver's name.
type NSData struct {
	Host string
}

func (NSData) rrType() RRType   { return RRTypeNS }
func (d NSData) String() string { return d.Host }

// PTRData is the rdata of a PTR record: the hostname the address maps to.
type PTRData struct {
	Host string
}

func (PTRData) rrType() RRType   { return RRTypePTR }
func (d PTRData) String() string { return d.Host }

// CNAMEData marks a record as a CNAME. The target name
// is intentionally discarded; only the type tag survives. CNAME RRs
// in an answer section are skipped by the resolver
// rather than delivered, so this exists mainly so the codec has
// somewhere to decode the RR into without erroring.
type CNAMEData struct{}

func (CNAMEData) rrType() RRType { return RRTypeCNAME }
func (CNAMEData) String() string { return "" }

// MXData is the rdata of an MX record, optionally decorated with the
// glue A records found in the response's Additional section (sections 3, 4.4).
type MXData struct {
	Preference uint16
	Host       string
	Address    []string // nil if no matching glue A record was found
}

func (MXData) rrType() RRType { return RRTypeMX }
func (d MXData) String() string {
	return fmt.Sprintf("%d %s", d.Preference, d.Host)
}

// TXTData is the rdata of a TXT record: the concatenation of its one
// or more length-prefixed text fragments (sections 3, 4.1).
type TXTData struct {
	Text string
}

func (TXTData) rrType() RRType   { return RRTypeTXT }
func (d TXTData) String() string { return d.Text }
