// Package reverse implements reverse-DNS lookup with forward
// confirmation: a PTR query followed by a parallel
// A-lookup per candidate hostname, keeping only the hostnames whose A
// record actually contains the original address.
package reverse

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/domain"
)

// resolveFunc is the single operation reverse lookup needs from the
// resolution state machine, narrowed to ease testing without a real
// wire codec and transport.
type resolveFunc func(servers []domain.Nameserver, qname string, qtype domain.RRType) ([]domain.Rdata, error)

// Reverser performs forward-confirmed reverse lookups.
type Reverser struct {
	resolve resolveFunc
	logger  log.Logger
}

// New returns a Reverser that drives PTR and forward-confirmation
// queries through resolve.
func New(resolve resolveFunc, logger log.Logger) *Reverser {
	return &Reverser{resolve: resolve, logger: logger}
}

// Lookup resolves the PTR name for ipv4 and confirms each candidate
// hostname with a parallel A query, returning only hostnames whose A
// answer set includes ipv4. A nil, nil return means no candidate
// survived confirmation, or the PTR query itself returned no data.
func (rv *Reverser) Lookup(servers []domain.Nameserver, ipv4 string) ([]string, error) {
	name, err := domain.ReverseIPv4Name(ipv4)
	if err != nil {
		return nil, err
	}

	ptrResults, err := rv.resolve(servers, name, domain.RRTypePTR)
	if err != nil {
		return nil, err
	}
	if len(ptrResults) == 0 {
		return nil, nil
	}

	hosts := make([]string, 0, len(ptrResults))
	for _, rd := range ptrResults {
		if p, ok := rd.(domain.PTRData); ok {
			hosts = append(hosts, p.Host)
		}
	}

	confirmed := make([]bool, len(hosts))
	g, _ := errgroup.WithContext(context.Background())
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			confirmed[i] = rv.confirms(servers, host, ipv4)
			return nil
		})
	}
	_ = g.Wait() // the goroutines never return an error; every one completes

	out := make([]string, 0, len(hosts))
	for i, host := range hosts {
		if confirmed[i] {
			out = append(out, host)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// confirms issues a forward A query for host and reports whether the
// answer set contains ipv4. A failed forward lookup simply fails to
// confirm that candidate; it does not abort the others.
func (rv *Reverser) confirms(servers []domain.Nameserver, host, ipv4 string) bool {
	aResults, err := rv.resolve(servers, host, domain.RRTypeA)
	if err != nil {
		rv.logger.Debug(map[string]any{"host": host, "err": err.Error()}, "forward-confirmation query failed")
		return false
	}
	for _, rd := range aResults {
		if a, ok := rd.(domain.AData); ok && a.Address == ipv4 {
			return true
		}
	}
	return false
}
