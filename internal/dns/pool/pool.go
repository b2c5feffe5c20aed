// Package pool selects and tracks nameservers for a single resolution
// attempt, implementing the outer failover loop's bookkeeping.
package pool

import "github.com/arashvale/dnswalk/internal/dns/domain"

// Pool hands out nameservers in preference order for one top-level
// query, remembering which ones have already failed so the caller
// never retries a dead server within that query.
//
// A Pool is not safe for concurrent use; callers needing one failover
// sequence per goroutine should build a fresh Pool (via Clone or New)
// for each.
type Pool struct {
	servers []domain.Nameserver
}

// New returns a Pool over servers in the given order. The slice is
// copied so the caller's backing array is never mutated by MarkDead.
func New(servers []domain.Nameserver) *Pool {
	cloned := make([]domain.Nameserver, len(servers))
	copy(cloned, servers)
	for i := range cloned {
		cloned[i].Alive = true
	}
	return &Pool{servers: cloned}
}

// Clone returns an independent copy of p with every server reset back
// to alive, so a caller can give each query its own failover state
// instead of sharing one mutable Pool across queries. (Resolve itself
// builds its Pool with New.)
func (p *Pool) Clone() *Pool {
	return New(p.servers)
}

// PickNext returns the next alive server in preference order, or
// (Nameserver{}, false) once every server has been marked dead.
func (p *Pool) PickNext() (domain.Nameserver, bool) {
	for _, ns := range p.servers {
		if ns.Alive {
			return ns, true
		}
	}
	return domain.Nameserver{}, false
}

// MarkDead marks addr (matched by host and port) as no longer
// eligible for PickNext within this Pool's lifetime.
func (p *Pool) MarkDead(addr domain.Nameserver) {
	for i := range p.servers {
		if p.servers[i].Host == addr.Host && p.servers[i].Port == addr.Port {
			p.servers[i].Alive = false
			return
		}
	}
}

// Len returns the total number of servers in the pool, alive or dead.
func (p *Pool) Len() int {
	return len(p.servers)
}

// BuildEffective merges the user-preference list with an
// OS-discovered list, preserving preference-list order first and
// appending OS-discovered servers not already present, deduplicated by
// host (explicit config beats OS discovery).
// When both lists are empty, falls back to a small built-in default set.
func BuildEffective(preferred, osDiscovered []domain.Nameserver) []domain.Nameserver {
	seen := make(map[string]bool, len(preferred)+len(osDiscovered))
	out := make([]domain.Nameserver, 0, len(preferred)+len(osDiscovered))

	for _, ns := range preferred {
		if seen[ns.Host] {
			continue
		}
		seen[ns.Host] = true
		out = append(out, ns)
	}
	for _, ns := range osDiscovered {
		if seen[ns.Host] {
			continue
		}
		seen[ns.Host] = true
		out = append(out, ns)
	}

	if len(out) == 0 {
		out = defaultServers()
	}
	return out
}

// defaultServers is the builtin fallback pool used when neither the
// user nor the OS supplies any nameservers.
func defaultServers() []domain.Nameserver {
	return []domain.Nameserver{
		{Host: "1.1.1.1", Port: domain.DefaultPort, Alive: true},
		{Host: "8.8.8.8", Port: domain.DefaultPort, Alive: true},
	}
}
