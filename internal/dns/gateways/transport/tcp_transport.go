package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/domain"
)

// tcpTransport dials a fresh TCP connection per query. DNS-over-TCP
// exchanges are short-lived and infrequent enough, in this resolver's
// failover-and-referral pattern, that connection pooling buys nothing
// and would only complicate the single-shot request/response shape of
// SendAndReceive.
type tcpTransport struct {
	connectTimeout time.Duration
	logger         log.Logger
}

// NewTCPTransport returns a Transport that bounds connection setup to
// connectTimeout (DNS_TIMEOUTCONNECT) and logs through logger.
func NewTCPTransport(connectTimeout time.Duration, logger log.Logger) *tcpTransport {
	return &tcpTransport{connectTimeout: connectTimeout, logger: logger}
}

// SendAndReceive dials addr, writes the already-framed query, and reads
// back one framed response, stripping its length prefix. The error
// returned is always a *domain.ResolveError so callers can dispatch on
// Kind without further unwrapping.
func (t *tcpTransport) SendAndReceive(addr string, query []byte) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", addr, t.connectTimeout)
	if err != nil {
		return nil, classifyDialError(addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(query); err != nil {
		return nil, classifyDialError(addr, err)
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		t.logger.Debug(map[string]any{"server": addr, "err": err.Error()}, "failed reading response length prefix")
		return nil, domain.NewIncompleteResponse(addr)
	}

	msgLen := binary.BigEndian.Uint16(lenBuf[:])
	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, msg); err != nil {
		t.logger.Debug(map[string]any{"server": addr, "want": msgLen, "err": err.Error()}, "failed reading response body")
		return nil, domain.NewIncompleteResponse(addr)
	}

	return msg, nil
}

// classifyDialError maps a connect/write failure onto the error
// taxonomy. Timeouts and connection refusals each get their own Kind;
// anything else is a generic ServerError carrying the raw error text
// as Code. The resolver marks the server dead for the rest of the
// current lookup on any of these.
func classifyDialError(addr string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewTimeout(addr, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.NewConnectionRefused(addr, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return domain.NewConnectionRefused(addr, err)
		}
	}
	return domain.NewServerError(addr, err.Error(), err)
}

var _ Transport = &tcpTransport{}
