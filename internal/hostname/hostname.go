package hostname

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// Normalize canonicalizes a user-supplied hostname. Input arrives from a
// URL-shaped form field, so a scheme prefix and trailing path slashes are
// tolerated and stripped. Rules:
//   - strip http:// or https:// prefix
//   - strip anything after the first /
//   - lowercase, trim spaces
//   - strip trailing dot and port
//   - reject IPs, empty strings and illegal characters
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) (string, error) {
	host := strings.TrimSpace(raw)

	if host == "" {
		return "", fmt.Errorf("hostname must not be empty")
	}

	host = strings.ToLower(host)

	// strip scheme
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	// strip path, query, anything after the authority
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}

	// strip trailing dot
	host = strings.TrimSuffix(host, ".")

	// strip port
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "" {
		return "", fmt.Errorf("hostname must not be empty after normalization")
	}

	// reject IPv4/IPv6
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("IP address is not allowed as hostname: %s", host)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		inner := host[1 : len(host)-1]
		if net.ParseIP(inner) != nil {
			return "", fmt.Errorf("IP address is not allowed as hostname: %s", host)
		}
	}

	// only a-z 0-9 . - allowed
	for i := 0; i < len(host); {
		r, size := utf8.DecodeRuneInString(host[i:])
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-') {
			return "", fmt.Errorf("hostname contains invalid character: %c in %s", r, host)
		}
		i += size
	}

	if strings.HasPrefix(host, ".") || strings.HasPrefix(host, "-") {
		return "", fmt.Errorf("hostname must not start with '.' or '-': %s", host)
	}

	if !strings.Contains(host, ".") {
		return "", fmt.Errorf("hostname must contain at least one dot: %s", host)
	}

	// a bare public suffix (co.uk, com.br, ...) is not a registrable hostname
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", fmt.Errorf("hostname is not registrable: %s", host)
	}

	return host, nil
}
