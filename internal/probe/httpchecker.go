package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

// Prober resolves a host and then issues an HTTPS GET to its root.
type Prober struct {
	Resolver   Resolver
	Client     *http.Client
	Timeout    time.Duration
	ValidCodes map[int]struct{}
	Logger     *zap.Logger
}

// NewProber returns a Prober using the system resolver and the platform
// trust store. Keep-alives are off so every round dials fresh sockets.
func NewProber(timeout time.Duration, validCodes map[int]struct{}, logger *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableKeepAlives = true
	return &Prober{
		Resolver:   net.DefaultResolver,
		Client:     &http.Client{Timeout: timeout, Transport: tr},
		Timeout:    timeout,
		ValidCodes: validCodes,
		Logger:     logger,
	}
}

func (p *Prober) Check(ctx context.Context, host string) domain.SiteCheckResult {
	out := domain.SiteCheckResult{Host: host, ResolvedAddress: domain.Unresolved}

	dctx, cancel := context.WithTimeout(ctx, p.Timeout)
	ip, err := resolve(dctx, p.Resolver, host)
	cancel()
	if err != nil {
		out.Code = domain.CodeDNSError
		p.Logger.Debug("probe_dns_failed",
			zap.String("host", host),
			zap.String("class", dnsClass(err)),
			zap.Error(err),
		)
		return out
	}
	out.ResolvedAddress = ip

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host+"/", nil)
	if err != nil {
		out.Code = domain.CodeConnectionError
		return out
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		out.Code = classifyTransportError(err)
		p.Logger.Debug("probe_http_failed",
			zap.String("host", host),
			zap.String("code", out.Code.String()),
			zap.Error(err),
		)
		return out
	}
	defer resp.Body.Close()

	_, out.Reachable = p.ValidCodes[resp.StatusCode]
	out.Code = domain.HTTPCode(resp.StatusCode)
	return out
}

func classifyTransportError(err error) domain.Code {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.CodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.CodeTimeout
	}
	return domain.CodeConnectionError
}
