package probe

import (
	"context"
	"math"
	"net"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

// Latency probing does not use the configured request timeout.
const (
	LatencyPort    = 80
	LatencyTimeout = 5 * time.Second
)

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// LatencySampler times a raw TCP connect to the host.
type LatencySampler struct {
	Dialer  Dialer
	Port    int
	Timeout time.Duration
	Clock   clock.Clock
}

func NewLatencySampler() *LatencySampler {
	return &LatencySampler{
		Dialer:  &net.Dialer{},
		Port:    LatencyPort,
		Timeout: LatencyTimeout,
		Clock:   clock.New(),
	}
}

func (s *LatencySampler) Sample(ctx context.Context, host string) domain.LatencySample {
	out := domain.LatencySample{Host: host}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(s.Port))
	start := s.Clock.Now()
	conn, err := s.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return out
	}
	elapsed := s.Clock.Since(start)
	_ = conn.Close()

	ms := roundMillis(elapsed)
	out.Millis = &ms
	return out
}

// roundMillis converts d to milliseconds rounded to two decimals.
func roundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
