package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/common/rrdata"
	"github.com/arashvale/dnswalk/internal/dns/domain"
)

func newTestCodec() *tcpCodec {
	return NewTCPCodec(log.NewNoopLogger())
}

func TestEncodeQuery_FrameAndHeader(t *testing.T) {
	c := newTestCodec()
	q, err := domain.NewQuery("www.example.com", domain.RRTypeA)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	frame, err := c.EncodeQuery(q)
	if err != nil {
		t.Fatalf("EncodeQuery: %v", err)
	}

	frameLen := binary.BigEndian.Uint16(frame[0:2])
	if int(frameLen) != len(frame)-2 {
		t.Fatalf("frame length prefix %d does not match body length %d", frameLen, len(frame)-2)
	}

	msg := frame[2:]
	if id := binary.BigEndian.Uint16(msg[0:2]); id != 0 {
		t.Errorf("expected ID=0, got %d", id)
	}
	if flags := binary.BigEndian.Uint16(msg[2:4]); flags != 0x0100 {
		t.Errorf("expected flags=0x0100, got 0x%04x", flags)
	}
	if qd := binary.BigEndian.Uint16(msg[4:6]); qd != 1 {
		t.Errorf("expected QDCOUNT=1, got %d", qd)
	}
}

func TestEncodeQuery_RejectsUnsupportedType(t *testing.T) {
	c := newTestCodec()
	_, err := c.EncodeQuery(domain.Query{Name: "example.com", Type: domain.RRType(99), Class: domain.RRClassIN})
	if err == nil {
		t.Fatal("expected error for unsupported type, got nil")
	}
}

// TestEncodeQuery_RoundTripsQuestion checks that encoding then decoding
// the question section yields the original QNAME/QTYPE.
func TestEncodeQuery_RoundTripsQuestion(t *testing.T) {
	c := newTestCodec()
	q, err := domain.NewQuery("Sub.Example.COM", domain.RRTypeMX)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	frame, err := c.EncodeQuery(q)
	if err != nil {
		t.Fatalf("EncodeQuery: %v", err)
	}
	msg := frame[2:]

	name, offset, err := decodeName(msg, 12)
	if err != nil {
		t.Fatalf("decodeName: %v", err)
	}
	if name != "sub.example.com" {
		t.Errorf("decoded name = %q, want %q", name, "sub.example.com")
	}
	gotType := domain.RRType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	if gotType != domain.RRTypeMX {
		t.Errorf("decoded type = %v, want %v", gotType, domain.RRTypeMX)
	}
}

// buildResponse assembles a minimal DNS response message (no TCP
// length prefix) for a fixed question "example.com A" with the given
// answer/authority/additional RR bytes already encoded.
func buildResponse(t *testing.T, ancount, nscount, arcount int, answers, authority, additional []byte) []byte {
	t.Helper()
	var msg bytes.Buffer
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0x8180))
	_ = binary.Write(&msg, binary.BigEndian, uint16(1))
	_ = binary.Write(&msg, binary.BigEndian, uint16(ancount))
	_ = binary.Write(&msg, binary.BigEndian, uint16(nscount))
	_ = binary.Write(&msg, binary.BigEndian, uint16(arcount))

	qname, err := rrdata.EncodeDomainName("example.com")
	if err != nil {
		t.Fatalf("encode qname: %v", err)
	}
	msg.Write(qname)
	_ = binary.Write(&msg, binary.BigEndian, uint16(domain.RRTypeA))
	_ = binary.Write(&msg, binary.BigEndian, uint16(domain.RRClassIN))

	msg.Write(answers)
	msg.Write(authority)
	msg.Write(additional)
	return msg.Bytes()
}

func encodeRR(t *testing.T, name string, rrtype domain.RRType, ttl uint32, rdata []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	nameBytes, err := rrdata.EncodeDomainName(name)
	if err != nil {
		t.Fatalf("encode name: %v", err)
	}
	buf.Write(nameBytes)
	_ = binary.Write(&buf, binary.BigEndian, uint16(rrtype))
	_ = binary.Write(&buf, binary.BigEndian, uint16(domain.RRClassIN))
	_ = binary.Write(&buf, binary.BigEndian, ttl)
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(rdata)))
	buf.Write(rdata)
	return buf.Bytes()
}

func TestDecodeResponse_ARecord(t *testing.T) {
	c := newTestCodec()
	aRR := encodeRR(t, "example.com", domain.RRTypeA, 300, []byte{93, 184, 216, 34})
	msg := buildResponse(t, 1, 0, 0, aRR, nil, nil)

	resp, err := c.DecodeResponse(msg)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(resp.Answers))
	}
	a, ok := resp.Answers[0].Rdata.(domain.AData)
	if !ok {
		t.Fatalf("expected AData, got %T", resp.Answers[0].Rdata)
	}
	if a.Address != "93.184.216.34" {
		t.Errorf("got address %q, want %q", a.Address, "93.184.216.34")
	}
}

func TestDecodeResponse_MXWithGlue(t *testing.T) {
	c := newTestCodec()

	var mxRdata bytes.Buffer
	_ = binary.Write(&mxRdata, binary.BigEndian, uint16(10))
	hostBytes, err := rrdata.EncodeDomainName("mx.example.org")
	if err != nil {
		t.Fatalf("encode host: %v", err)
	}
	mxRdata.Write(hostBytes)

	mxRR := encodeRR(t, "example.org", domain.RRTypeMX, 300, mxRdata.Bytes())
	glueRR := encodeRR(t, "mx.example.org", domain.RRTypeA, 300, []byte{1, 2, 3, 4})

	msg := buildResponse(t, 1, 0, 1, mxRR, nil, glueRR)

	resp, err := c.DecodeResponse(msg)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	mx, ok := resp.Answers[0].Rdata.(domain.MXData)
	if !ok {
		t.Fatalf("expected MXData, got %T", resp.Answers[0].Rdata)
	}
	if mx.Preference != 10 || mx.Host != "mx.example.org" {
		t.Errorf("unexpected MX data: %+v", mx)
	}
	if len(resp.Additional) != 1 {
		t.Fatalf("expected 1 additional record, got %d", len(resp.Additional))
	}
}

func TestDecodeResponse_NSReferral(t *testing.T) {
	c := newTestCodec()
	nsRR := encodeRR(t, "example.com", domain.RRTypeNS, 300, mustEncodeName(t, "ns.sub.example"))
	msg := buildResponse(t, 0, 1, 0, nil, nsRR, nil)

	resp, err := c.DecodeResponse(msg)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(resp.Answers) != 0 {
		t.Fatalf("expected 0 answers, got %d", len(resp.Answers))
	}
	if len(resp.Authority) != 1 {
		t.Fatalf("expected 1 authority record, got %d", len(resp.Authority))
	}
	ns, ok := resp.Authority[0].Rdata.(domain.NSData)
	if !ok {
		t.Fatalf("expected NSData, got %T", resp.Authority[0].Rdata)
	}
	if ns.Host != "ns.sub.example" {
		t.Errorf("got NS host %q, want %q", ns.Host, "ns.sub.example")
	}
}

func TestDecodeResponse_RejectsBadQDCount(t *testing.T) {
	c := newTestCodec()
	var msg bytes.Buffer
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0x8180))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0)) // QDCOUNT=0
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))

	if _, err := c.DecodeResponse(msg.Bytes()); err == nil {
		t.Fatal("expected error for qdcount != 1, got nil")
	}
}

func TestDecodeResponse_RejectsOversizedSectionCount(t *testing.T) {
	c := newTestCodec()
	var msg bytes.Buffer
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0x8180))
	_ = binary.Write(&msg, binary.BigEndian, uint16(1))
	_ = binary.Write(&msg, binary.BigEndian, uint16(200)) // ANCOUNT > 128
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))
	_ = binary.Write(&msg, binary.BigEndian, uint16(0))

	if _, err := c.DecodeResponse(msg.Bytes()); err == nil {
		t.Fatal("expected error for oversized section count, got nil")
	}
}

func TestDecodeResponse_UnrecognizedTypeInAnswerIsFatal(t *testing.T) {
	c := newTestCodec()
	weirdRR := encodeRR(t, "example.com", domain.RRType(999), 300, []byte{1, 2, 3})
	msg := buildResponse(t, 1, 0, 0, weirdRR, nil, nil)

	if _, err := c.DecodeResponse(msg); err == nil {
		t.Fatal("expected error for unrecognized type in answer section, got nil")
	}
}

func TestDecodeResponse_UnrecognizedTypeInAdditionalIsTolerated(t *testing.T) {
	c := newTestCodec()
	aRR := encodeRR(t, "example.com", domain.RRTypeA, 300, []byte{1, 2, 3, 4})
	weirdRR := encodeRR(t, "example.com", domain.RRType(999), 300, []byte{1, 2, 3})
	msg := buildResponse(t, 1, 0, 1, aRR, nil, weirdRR)

	resp, err := c.DecodeResponse(msg)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(resp.Additional) != 1 || resp.Additional[0].Rdata != nil {
		t.Fatalf("expected tolerated unrecognized additional record with nil Rdata, got %+v", resp.Additional)
	}
}

// TestDecodeName_CompressionPointer checks the termination guarantee
// for a well-formed pointer chain.
func TestDecodeName_CompressionPointer(t *testing.T) {
	var msg bytes.Buffer
	nameBytes, err := rrdata.EncodeDomainName("example.com")
	if err != nil {
		t.Fatalf("encode name: %v", err)
	}
	targetOffset := msg.Len()
	msg.Write(nameBytes)

	pointer := []byte{0xC0 | byte(targetOffset>>8), byte(targetOffset & 0xFF)}
	pointerOffset := msg.Len()
	msg.Write(pointer)

	name, next, err := decodeName(msg.Bytes(), pointerOffset)
	if err != nil {
		t.Fatalf("decodeName: %v", err)
	}
	if name != "example.com" {
		t.Errorf("got %q, want %q", name, "example.com")
	}
	if next != pointerOffset+2 {
		t.Errorf("got next offset %d, want %d", next, pointerOffset+2)
	}
}

func TestDecodeName_RejectsForwardPointer(t *testing.T) {
	msg := []byte{0xC0, 0x02, 3, 'f', 'o', 'o', 0}
	if _, _, err := decodeName(msg, 0); err == nil {
		t.Fatal("expected error for forward-pointing compression pointer, got nil")
	}
}

func TestDecodeName_RejectsPointerLoop(t *testing.T) {
	// Two mutually-referencing pointers would loop forever without the
	// strictly-backward rule; construct a chain that merely exceeds the
	// hop bound instead, since a true loop is already rejected by the
	// backward-pointer check.
	msg := make([]byte, 0, 64)
	for i := 0; i < 25; i++ {
		off := len(msg)
		if off >= 2 {
			msg = append(msg, 0xC0, byte(off-2))
		} else {
			msg = append(msg, 3, 'f', 'o', 'o', 0)
		}
	}
	if _, _, err := decodeName(msg, len(msg)-2); err == nil {
		t.Fatal("expected error for excessive pointer hops, got nil")
	}
}

func mustEncodeName(t *testing.T, name string) []byte {
	t.Helper()
	b, err := rrdata.EncodeDomainName(name)
	if err != nil {
		t.Fatalf("encode name %q: %v", name, err)
	}
	return b
}
