// Command dnsresolve looks up a single name (or, with -ptr, a single
// IPv4 address) against a pool of recursive nameservers and prints the
// result.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arashvale/dnswalk/internal/dns/common/log"
	"github.com/arashvale/dnswalk/internal/dns/config"
	"github.com/arashvale/dnswalk/internal/dns/domain"
	"github.com/arashvale/dnswalk/internal/dns/gateways/transport"
	"github.com/arashvale/dnswalk/internal/dns/gateways/wire"
	"github.com/arashvale/dnswalk/internal/dns/pool"
	"github.com/arashvale/dnswalk/internal/dns/services/resolver"
	"github.com/arashvale/dnswalk/internal/dns/services/reverse"
)

const version = "0.1.0-dev"

func main() {
	var (
		qtype      = flag.String("type", "A", "record type: A, NS, CNAME, PTR, MX, or TXT")
		ptrMode    = flag.Bool("ptr", false, "reverse-DNS lookup with forward confirmation; the argument is an IPv4 address")
		nameserver = flag.String("nameserver", "", "\";\"-delimited nameserver list, overriding DNS_NAMESERVER")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dnsresolve [-type TYPE | -ptr] [-nameserver LIST] <name-or-ip>")
		os.Exit(2)
	}
	target := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	level := cfg.Log.Level
	if cfg.Debug {
		level = "debug"
	}
	if err := log.Configure(cfg.Env, level); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}
	if *nameserver != "" {
		cfg.Nameserver = *nameserver
	}

	servers, err := buildPool(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "failed to build nameserver pool")
	}

	logger := log.GetLogger()
	codec := wire.NewTCPCodec(logger)
	tr := transport.NewTCPTransport(time.Duration(cfg.TimeoutConnect)*time.Second, logger)
	res := resolver.New(codec, tr, logger)

	log.Info(map[string]any{
		"version": version,
		"target":  target,
		"servers": len(servers),
	}, "starting lookup")

	if *ptrMode {
		runPTR(res, servers, target)
		return
	}
	runForward(res, servers, target, strings.ToUpper(*qtype))
}

func buildPool(cfg *config.AppConfig) ([]domain.Nameserver, error) {
	preferred, err := cfg.Nameservers()
	if err != nil {
		return nil, err
	}

	var osDiscovered []domain.Nameserver
	if cfg.GetNameserversFromOS {
		osDiscovered, err = pool.DiscoverOSNameservers()
		if err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "OS nameserver discovery failed, continuing without it")
		}
	}

	return pool.BuildEffective(preferred, osDiscovered), nil
}

func runForward(res *resolver.Resolver, servers []domain.Nameserver, name, qtypeName string) {
	rrtype := domain.RRTypeFromString(qtypeName)
	if rrtype == 0 {
		fmt.Fprintf(os.Stderr, "unsupported record type: %s\n", qtypeName)
		os.Exit(2)
	}

	results, err := res.Resolve(servers, name, rrtype)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("no data")
		return
	}
	for _, rd := range results {
		fmt.Printf("%s %s %s\n", name, qtypeName, rd.String())
	}
}

func runPTR(res *resolver.Resolver, servers []domain.Nameserver, ip string) {
	rv := reverse.New(res.Resolve, log.GetLogger())
	hosts, err := rv.Lookup(servers, ip)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reverse lookup error: %v\n", err)
		os.Exit(1)
	}
	if len(hosts) == 0 {
		fmt.Println("no data")
		return
	}
	for _, h := range hosts {
		fmt.Printf("%s PTR %s\n", ip, h)
	}
}
