// Package resolver drives one logical DNS lookup: server failover
// across a pool, hop-bounded NS-referral recursion, CNAME skipping,
// and MX glue-record joining.
package resolver

import (
	"errors"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/domain"
	"github.com/arashvale/dnswalk/internal/dns/gateways/transport"
	"github.com/arashvale/dnswalk/internal/dns/gateways/wire"
	"github.com/arashvale/dnswalk/internal/dns/pool"
)

// maxHops bounds iterative NS-referral recursion; the 10th referral
// attempt fails with TooManyHops rather than being sent.
const maxHops = 10

// Resolver composes the wire codec and transport into the resolution
// state machine. A Resolver holds no per-query state and is safe to
// reuse (and share) across concurrent top-level lookups; each call
// builds its own Pool.
type Resolver struct {
	codec     wire.Codec
	transport transport.Transport
	logger    log.Logger
}

// New returns a Resolver that encodes/decodes with codec and performs
// I/O with t, logging diagnostics through logger.
func New(codec wire.Codec, t transport.Transport, logger log.Logger) *Resolver {
	return &Resolver{codec: codec, transport: t, logger: logger}
}

// Resolve performs one logical lookup for qname/qtype against servers,
// trying them in order with failover, and returns the matching rdata
// values. A nil, nil return means the server answered with no data and
// offered no referral: the "null" result.
func (r *Resolver) Resolve(servers []domain.Nameserver, qname string, qtype domain.RRType) ([]domain.Rdata, error) {
	return r.resolveWithPool(pool.New(servers), qname, qtype, 0)
}

// resolveWithPool implements both the outer server-failover loop and,
// via recursion into a fresh single-server pool, the inner NS-referral
// loop described above.
func (r *Resolver) resolveWithPool(p *pool.Pool, qname string, qtype domain.RRType, hops int) ([]domain.Rdata, error) {
	query, err := domain.NewQuery(qname, qtype)
	if err != nil {
		return nil, err
	}
	encoded, err := r.codec.EncodeQuery(query)
	if err != nil {
		return nil, err
	}

	for {
		ns, ok := p.PickNext()
		if !ok {
			return nil, domain.NewNoServerAlive()
		}

		raw, err := r.transport.SendAndReceive(ns.Addr(), encoded)
		if err != nil {
			if isIncomplete(err) {
				// Fatal to the whole lookup: an incomplete response never
				// triggers a retry against the next server.
				return nil, err
			}
			r.logger.Debug(map[string]any{"server": ns.Addr(), "err": err.Error()}, "marking nameserver dead for this lookup")
			p.MarkDead(ns)
			continue
		}

		resp, err := r.codec.DecodeResponse(raw)
		if err != nil {
			return nil, err
		}

		return r.handleResponse(resp, ns, qname, qtype, hops)
	}
}

// isIncomplete reports whether err is the transport's
// incomplete-response outcome, the one failover-ineligible I/O error
// above.
func isIncomplete(err error) bool {
	var resolveErr *domain.ResolveError
	return errors.As(err, &resolveErr) && resolveErr.Kind == domain.ErrIncompleteResponse
}

// handleResponse inspects a successfully decoded response and either
// delivers a result, follows a referral, or delivers "null".
func (r *Resolver) handleResponse(resp domain.Response, queried domain.Nameserver, qname string, qtype domain.RRType, hops int) ([]domain.Rdata, error) {
	if len(resp.Answers) > 0 {
		return extractAnswers(resp, qtype, r.logger), nil
	}

	if referral, ok := findReferral(resp.Authority, queried); ok {
		if hops+1 >= maxHops {
			return nil, domain.NewTooManyHops()
		}
		r.logger.Debug(map[string]any{"from": queried.Addr(), "to": referral, "hop": hops + 1}, "following NS referral")
		next := pool.New([]domain.Nameserver{{Host: referral, Port: domain.DefaultPort, Alive: true}})
		return r.resolveWithPool(next, qname, qtype, hops+1)
	}

	return nil, nil
}

// extractAnswers pulls the rdata values matching qtype out of the
// answer section, silently skipping CNAME records (their
// target is never followed, see DESIGN.md), and decorates MX entries
// with any glue A records found in the Additional section.
func extractAnswers(resp domain.Response, qtype domain.RRType, logger log.Logger) []domain.Rdata {
	results := make([]domain.Rdata, 0, len(resp.Answers))
	for _, rr := range resp.Answers {
		switch {
		case rr.Type == domain.RRTypeCNAME:
			logger.Debug(map[string]any{"name": rr.Name}, "skipping CNAME in answer section")
		case rr.Type == qtype && rr.Rdata != nil:
			if mx, ok := rr.Rdata.(domain.MXData); ok {
				mx.Address = glueAddresses(resp.Additional, mx.Host)
				results = append(results, mx)
				continue
			}
			results = append(results, rr.Rdata)
		}
	}
	return results
}

// glueAddresses returns the A-record addresses in additional whose
// owner name matches host, the MX/NS glue-record join.
func glueAddresses(additional []domain.ResourceRecord, host string) []string {
	var addrs []string
	for _, rr := range additional {
		if rr.Type != domain.RRTypeA || rr.Rdata == nil {
			continue
		}
		if !domain.EqualNames(rr.Name, host) {
			continue
		}
		if a, ok := rr.Rdata.(domain.AData); ok {
			addrs = append(addrs, a.Address)
		}
	}
	return addrs
}

// findReferral returns the first NS record in authority whose rdata
// names a server different from the one just queried, per the
// referral condition.
func findReferral(authority []domain.ResourceRecord, queried domain.Nameserver) (string, bool) {
	for _, rr := range authority {
		if rr.Type != domain.RRTypeNS || rr.Rdata == nil {
			continue
		}
		ns, ok := rr.Rdata.(domain.NSData)
		if !ok {
			continue
		}
		if !domain.EqualNames(ns.Host, queried.Host) {
			return ns.Host, true
		}
	}
	return "", false
}
