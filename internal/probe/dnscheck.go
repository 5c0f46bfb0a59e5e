package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var errInvalidName = errors.New("invalid host name")

// resolve returns the address the host would be dialed at: the first IPv4
// address when one exists, otherwise the first address of any family.
func resolve(ctx context.Context, r Resolver, host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return "", errInvalidName
	}

	ips, err := r.LookupIP(ctx, "ip", host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no addresses for %s", host)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return ips[0].String(), nil
}

// dnsClass labels a resolution failure for the operational log:
// "NXDOMAIN" | "SERVFAIL_or_TIMEOUT" | "INVALID_NAME" | "NO_ADDRESS".
func dnsClass(err error) string {
	if errors.Is(err, errInvalidName) {
		return "INVALID_NAME"
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return "NXDOMAIN"
		}
		if de.IsTemporary || de.Timeout() {
			return "SERVFAIL_or_TIMEOUT"
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "SERVFAIL_or_TIMEOUT"
	}
	return "NO_ADDRESS"
}
