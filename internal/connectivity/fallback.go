// Package connectivity decides whether a round with no reachable site means
// "the sites are down" or "this machine is offline".
package connectivity

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/netdiag"
)

const (
	DefaultTarget  = "8.8.8.8:53"
	DefaultTimeout = 5 * time.Second
)

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Fallback dials a well-known public address. When that fails too it
// collects interface and gateway diagnostics.
type Fallback struct {
	Dialer      Dialer
	Target      string
	Timeout     time.Duration
	Diagnostics netdiag.Diagnostics
	Gateway     GatewayProber // optional
	Logger      *zap.Logger
}

func New(diag netdiag.Diagnostics, gw GatewayProber, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		Dialer:      &net.Dialer{},
		Target:      DefaultTarget,
		Timeout:     DefaultTimeout,
		Diagnostics: diag,
		Gateway:     gw,
		Logger:      logger,
	}
}

func (f *Fallback) Check(ctx context.Context) domain.Diagnosis {
	if f.online(ctx) {
		f.Logger.Info("fallback_online", zap.String("target", f.Target))
		return domain.Diagnosis{Online: true}
	}
	f.Logger.Warn("fallback_offline", zap.String("target", f.Target))

	d := domain.Diagnosis{Online: false}
	if f.Diagnostics != nil {
		ifaces, err := f.Diagnostics.ActiveInterfaces(ctx)
		if err != nil {
			d.InterfacesErr = err.Error()
			f.Logger.Warn("fallback_interfaces_error", zap.Error(err))
		}
		d.Interfaces = ifaces
	}
	if f.Gateway != nil {
		gw, rtt, err := f.Gateway.Probe(ctx)
		d.Gateway = gw
		d.GatewayRTTMillis = rtt
		if err != nil {
			d.GatewayErr = err.Error()
			f.Logger.Warn("fallback_gateway_error", zap.String("gateway", gw), zap.Error(err))
		}
	}
	return d
}

func (f *Fallback) online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	conn, err := f.Dialer.DialContext(ctx, "tcp", f.Target)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
