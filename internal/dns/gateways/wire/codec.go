package wire

import "github.com/arashvale/dnswalk/internal/dns/domain"

// Codec encodes outgoing queries and decodes incoming responses on the
// wire. Implementations are not required to be safe for concurrent use
// by multiple goroutines on the same query.
type Codec interface {
	// EncodeQuery serializes a query into a length-prefixed TCP frame
	// ready to write to a transport connection.
	EncodeQuery(query domain.Query) ([]byte, error)

	// DecodeResponse parses a complete DNS message (header, question,
	// and RR sections, with the 2-byte TCP length prefix already
	// stripped by the transport) into a Response.
	DecodeResponse(msg []byte) (domain.Response, error)
}
