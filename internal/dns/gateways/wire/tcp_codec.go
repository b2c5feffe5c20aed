// Package wire encodes and decodes DNS messages for the resolver's TCP
// transport, following the wire format in RFC 1035.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/common/rrdata"
	"github.com/arashvale/dnswalk/internal/dns/domain"
)

// maxSectionCount rejects a response whose header claims an
// implausibly large answer/authority/additional section.
const maxSectionCount = 128

// maxPointerHops bounds name-decompression recursion so a pointer loop
// cannot hang the parser.
const maxPointerHops = 20

// tcpCodec implements Codec for DNS-over-TCP messages.
type tcpCodec struct {
	logger log.Logger
}

// NewTCPCodec returns a Codec that logs decode diagnostics through logger.
func NewTCPCodec(logger log.Logger) *tcpCodec {
	return &tcpCodec{logger: logger}
}

// EncodeQuery serializes query into a length-prefixed TCP frame. The
// query ID is always 0: each TCP connection carries exactly one query,
// so there is nothing to disambiguate.
func (c *tcpCodec) EncodeQuery(query domain.Query) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))      // ID
	_ = binary.Write(&msg, binary.BigEndian, uint16(0x0100)) // flags: RD=1
	_ = binary.Write(&msg, binary.BigEndian, uint16(1))      // QDCOUNT
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))      // ANCOUNT
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))      // NSCOUNT
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))      // ARCOUNT

	qname, err := rrdata.EncodeDomainName(query.Name)
	if err != nil {
		return nil, domain.NewInvalidQuery(err)
	}
	msg.Write(qname)
	_ = binary.Write(&msg, binary.BigEndian, uint16(query.Type))
	_ = binary.Write(&msg, binary.BigEndian, uint16(query.Class))

	if msg.Len() > 0xFFFF {
		return nil, domain.NewInvalidQuery(fmt.Errorf("encoded query too large: %d bytes", msg.Len()))
	}

	var frame bytes.Buffer
	_ = binary.Write(&frame, binary.BigEndian, uint16(msg.Len()))
	frame.Write(msg.Bytes())
	return frame.Bytes(), nil
}

// DecodeResponse parses a complete DNS message into a Response.
func (c *tcpCodec) DecodeResponse(msg []byte) (domain.Response, error) {
	if len(msg) < 12 {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("message too short: %d bytes", len(msg)))
	}

	id := binary.BigEndian.Uint16(msg[0:2])
	qdCount := binary.BigEndian.Uint16(msg[4:6])
	anCount := binary.BigEndian.Uint16(msg[6:8])
	nsCount := binary.BigEndian.Uint16(msg[8:10])
	arCount := binary.BigEndian.Uint16(msg[10:12])

	if qdCount != 1 {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("expected qdcount=1, got %d", qdCount))
	}
	if anCount > maxSectionCount || nsCount > maxSectionCount || arCount > maxSectionCount {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("section count exceeds %d", maxSectionCount))
	}

	offset := 12
	for i := 0; i < int(qdCount); i++ {
		_, newOffset, err := decodeName(msg, offset)
		if err != nil {
			return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("question %d: %w", i, err))
		}
		offset = newOffset + 4 // QTYPE + QCLASS
		if offset > len(msg) {
			return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("truncated question %d", i))
		}
	}

	answers, offset, err := c.decodeRRSection(msg, offset, int(anCount), true)
	if err != nil {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("answer section: %w", err))
	}
	authority, offset, err := c.decodeRRSection(msg, offset, int(nsCount), false)
	if err != nil {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("authority section: %w", err))
	}
	additional, _, err := c.decodeRRSection(msg, offset, int(arCount), false)
	if err != nil {
		return domain.Response{}, domain.NewInvalidResponse(fmt.Errorf("additional section: %w", err))
	}

	c.logger.Debug(map[string]any{
		"id": id, "ancount": anCount, "nscount": nsCount, "arcount": arCount,
	}, "decoded DNS response")

	return domain.Response{
		ID:         id,
		Answers:    answers,
		Authority:  authority,
		Additional: additional,
	}, nil
}

// errUnrecognizedType marks an RR whose type isn't in the supported
// set. Fatal in the answer section; tolerated elsewhere.
var errUnrecognizedType = fmt.Errorf("unrecognized RR type")

// decodeRRSection decodes count resource records starting at offset,
// returning the records and the offset just past the last one. When
// strict is true an unrecognized RR type aborts the section (the
// answer-section rule); otherwise the RR is kept with a nil Rdata and
// decoding continues ("skip and continue" for authority/additional,
// recorded in DESIGN.md).
func (c *tcpCodec) decodeRRSection(msg []byte, offset, count int, strict bool) ([]domain.ResourceRecord, int, error) {
	records := make([]domain.ResourceRecord, 0, count)
	for i := 0; i < count; i++ {
		rr, newOffset, err := c.decodeResourceRecord(msg, offset)
		if err != nil {
			if !strict && err == errUnrecognizedType {
				c.logger.Debug(map[string]any{"index": i, "type": uint16(rr.Type)}, "skipping unrecognized RR type")
				records = append(records, rr)
				offset = newOffset
				continue
			}
			return nil, 0, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rr)
		offset = newOffset
	}
	return records, offset, nil
}

// decodeResourceRecord parses a single RR at offset in msg. When the
// RR's type is unrecognized, it still returns a valid record (with a
// nil Rdata) and the correct next offset alongside errUnrecognizedType,
// so the caller can choose to skip and continue without losing its
// place in the message.
func (c *tcpCodec) decodeResourceRecord(msg []byte, offset int) (domain.ResourceRecord, int, error) {
	name, offset, err := decodeName(msg, offset)
	if err != nil {
		return domain.ResourceRecord{}, 0, fmt.Errorf("name: %w", err)
	}
	if offset+10 > len(msg) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("truncated record header")
	}

	rrtype := domain.RRType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	offset += 2
	rrclass := domain.RRClass(binary.BigEndian.Uint16(msg[offset : offset+2]))
	offset += 2
	ttl := binary.BigEndian.Uint32(msg[offset : offset+4])
	offset += 4
	rdLen := int(binary.BigEndian.Uint16(msg[offset : offset+2]))
	offset += 2

	if offset+rdLen > len(msg) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("truncated rdata")
	}
	rdataBytes := msg[offset : offset+rdLen]
	nextOffset := offset + rdLen

	base := domain.ResourceRecord{Name: name, Type: rrtype, Class: rrclass, TTL: ttl}

	rdata, err := decodeRdata(msg, rrtype, offset, rdataBytes)
	if err != nil {
		if err == errUnrecognizedType {
			return base, nextOffset, errUnrecognizedType
		}
		return domain.ResourceRecord{}, 0, fmt.Errorf("rdata: %w", err)
	}
	base.Rdata = rdata

	return base, nextOffset, nil
}

// decodeRdata decodes an RR's RDATA based on its type. rdataOffset is
// the RDATA's start offset in msg, needed because NS/PTR/MX names may
// be compressed and reference earlier bytes in the full message.
func decodeRdata(msg []byte, rrtype domain.RRType, rdataOffset int, rdataBytes []byte) (domain.Rdata, error) {
	switch rrtype {
	case domain.RRTypeA:
		addr, err := rrdata.DecodeAData(rdataBytes)
		if err != nil {
			return nil, err
		}
		return domain.AData{Address: addr}, nil
	case domain.RRTypeNS:
		host, _, err := decodeName(msg, rdataOffset)
		if err != nil {
			return nil, err
		}
		return domain.NSData{Host: host}, nil
	case domain.RRTypePTR:
		host, _, err := decodeName(msg, rdataOffset)
		if err != nil {
			return nil, err
		}
		return domain.PTRData{Host: host}, nil
	case domain.RRTypeCNAME:
		return domain.CNAMEData{}, nil
	case domain.RRTypeMX:
		if len(rdataBytes) < 2 {
			return nil, fmt.Errorf("MX rdata too short: %d bytes", len(rdataBytes))
		}
		preference := binary.BigEndian.Uint16(rdataBytes[0:2])
		host, _, err := decodeName(msg, rdataOffset+2)
		if err != nil {
			return nil, err
		}
		return domain.MXData{Preference: preference, Host: host}, nil
	case domain.RRTypeTXT:
		text, err := rrdata.DecodeTXTData(rdataBytes)
		if err != nil {
			return nil, err
		}
		return domain.TXTData{Text: text}, nil
	default:
		return nil, errUnrecognizedType
	}
}

// decodeName decodes a domain name from msg starting at offset,
// following compression pointers. A pointer may only ever target an
// offset strictly less than the one it appears at, which together
// with the hop bound guarantees termination even against an
// adversarial message.
func decodeName(msg []byte, offset int) (string, int, error) {
	var labels []string
	pos := offset
	hops := 0
	endOffset := -1 // offset just past the name in the caller's stream, set once

	for {
		if pos >= len(msg) {
			return "", 0, fmt.Errorf("name offset %d out of bounds", pos)
		}
		length := int(msg[pos])

		if length&0xC0 == 0xC0 {
			if pos+1 >= len(msg) {
				return "", 0, fmt.Errorf("truncated compression pointer at offset %d", pos)
			}
			if endOffset == -1 {
				endOffset = pos + 2
			}
			hops++
			if hops > maxPointerHops {
				return "", 0, fmt.Errorf("name decompression exceeded %d hops", maxPointerHops)
			}
			ptr := int(binary.BigEndian.Uint16(msg[pos:pos+2]) & 0x3FFF)
			if ptr >= pos {
				return "", 0, fmt.Errorf("compression pointer at %d does not point strictly backward", pos)
			}
			pos = ptr
			continue
		}

		if length == 0 {
			pos++
			break
		}

		pos++
		if pos+length > len(msg) {
			return "", 0, fmt.Errorf("label at offset %d exceeds message bounds", pos)
		}
		labels = append(labels, string(msg[pos:pos+length]))
		pos += length
	}

	if endOffset == -1 {
		endOffset = pos
	}

	return strings.Join(labels, "."), endOffset, nil
}

var _ Codec = &tcpCodec{}
