package connectivity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/jackpal/gateway"
	probing "github.com/prometheus-community/pro-bing"
)

// GatewayProber finds the default gateway and measures whether it answers.
// gw is empty when no gateway could be discovered; rtt is nil when the
// gateway did not answer.
type GatewayProber interface {
	Probe(ctx context.Context) (gw string, rtt *float64, err error)
}

// ICMPGateway pings the default gateway once in unprivileged (UDP) mode.
type ICMPGateway struct {
	Discover func() (net.IP, error)
	Timeout  time.Duration
}

func NewICMPGateway() *ICMPGateway {
	return &ICMPGateway{
		Discover: gateway.DiscoverGateway,
		Timeout:  2 * time.Second,
	}
}

var errNoReply = errors.New("no reply from gateway")

func (g *ICMPGateway) Probe(ctx context.Context) (string, *float64, error) {
	ip, err := g.Discover()
	if err != nil {
		return "", nil, fmt.Errorf("discover gateway: %w", err)
	}
	gw := ip.String()

	pinger, err := probing.NewPinger(gw)
	if err != nil {
		return gw, nil, fmt.Errorf("pinger: %w", err)
	}
	pinger.Count = 1
	pinger.Timeout = g.Timeout
	pinger.SetPrivileged(false)

	if err := pinger.RunWithContext(ctx); err != nil {
		return gw, nil, fmt.Errorf("ping %s: %w", gw, err)
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return gw, nil, errNoReply
	}
	ms := math.Round(float64(stats.AvgRtt)/float64(time.Millisecond)*100) / 100
	return gw, &ms, nil
}
