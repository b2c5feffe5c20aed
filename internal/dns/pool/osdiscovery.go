package pool

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/arashvale/dnswalk/internal/dns/domain"
)

// DefaultResolvConfPath is the conventional location of the system
// resolver configuration on Linux and most BSDs.
const DefaultResolvConfPath = "/etc/resolv.conf"

// DiscoverOSNameservers reads the host's resolver configuration (when
// GetNameserversFromOS is enabled) and returns the
// "nameserver" entries it lists, in file order. A missing file is not
// an error: it simply yields no servers, letting BuildEffective fall
// through to the user list or the builtin default.
func DiscoverOSNameservers() ([]domain.Nameserver, error) {
	f, err := os.Open(DefaultResolvConfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return parseResolvConf(f)
}

// parseResolvConf extracts nameserver directives from r, the format
// read by glibc's resolver: one "nameserver <ip>" line per server,
// "#" and ";" starting a comment.
func parseResolvConf(r io.Reader) ([]domain.Nameserver, error) {
	var out []domain.Nameserver
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		out = append(out, domain.Nameserver{Host: fields[1], Port: domain.DefaultPort, Alive: true})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
