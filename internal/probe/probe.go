package probe

import (
	"context"
	"net"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

// Resolver looks up the addresses of a host. *net.Resolver satisfies it;
// tests swap in a fake.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Checker produces one reachability result per host and never fails.
type Checker interface {
	Check(ctx context.Context, host string) domain.SiteCheckResult
}

// Sampler produces one latency sample per host and never fails.
type Sampler interface {
	Sample(ctx context.Context, host string) domain.LatencySample
}
