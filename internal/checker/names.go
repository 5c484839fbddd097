package checker

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// NormalizeName strips URL decoration and returns the lower-case
// presentation form of a domain name without the trailing dot.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "https://")
	name = strings.Split(name, "/")[0]

	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, raw)
	}

	return strings.TrimSuffix(dns.CanonicalName(name), "."), nil
}
