package round

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/sitemonitor/internal/config"
	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/probe"
	"github.com/hamed0406/sitemonitor/internal/report"
	"github.com/hamed0406/sitemonitor/internal/sink"
)

// --- fakes ---

type fakeProber struct {
	up     map[string]bool
	delays map[string]time.Duration
	done   atomic.Int32
	panics string
}

func (f *fakeProber) Check(_ context.Context, host string) domain.SiteCheckResult {
	defer f.done.Add(1)
	if host == f.panics {
		panic("boom")
	}
	time.Sleep(f.delays[host])
	if f.up[host] {
		return domain.SiteCheckResult{Host: host, ResolvedAddress: "10.0.0.1", Reachable: true, Code: domain.HTTPCode(200)}
	}
	return domain.SiteCheckResult{Host: host, ResolvedAddress: "10.0.0.1", Code: domain.CodeConnectionError}
}

type fakeSampler struct {
	before func()
	ms     float64
}

func (f *fakeSampler) Sample(_ context.Context, host string) domain.LatencySample {
	if f.before != nil {
		f.before()
	}
	ms := f.ms
	return domain.LatencySample{Host: host, Millis: &ms}
}

type fakeFallback struct {
	online bool
	calls  int
}

func (f *fakeFallback) Check(context.Context) domain.Diagnosis {
	f.calls++
	if f.online {
		return domain.Diagnosis{Online: true}
	}
	return domain.Diagnosis{Online: false, Interfaces: []string{"eth0 (ethernet)"}}
}

type fakeIndicator struct{ started, stopped int }

func (f *fakeIndicator) Start(context.Context) func() {
	f.started++
	return func() { f.stopped++ }
}

func cfgWith(sites []string, sorted bool) config.Config {
	cfg := config.Default()
	cfg.Websites = sites
	cfg.Settings.Sorted = sorted
	return cfg
}

func hosts(s domain.RoundSummary) []string {
	var out []string
	for _, site := range s.Sites {
		out = append(out, site.Result.Host)
	}
	return out
}

// --- tests ---

type fakeResolver map[string][]net.IP

func (f fakeResolver) LookupIP(_ context.Context, _ string, host string) ([]net.IP, error) {
	if ips, ok := f[host]; ok {
		return ips, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func TestRun_GoodAndBadSite(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := srv.Client().Transport.(*http.Transport).Clone()
	tr.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, srv.Listener.Addr().String())
	}
	tr.TLSClientConfig.InsecureSkipVerify = true

	cfg := cfgWith([]string{"good.example", "bad.example"}, false)
	p := probe.NewProber(2*time.Second, cfg.ValidCodes(), zap.NewNop())
	p.Resolver = fakeResolver{"good.example": {net.ParseIP("127.0.0.1")}}
	p.Client = &http.Client{Timeout: 2 * time.Second, Transport: tr}

	fb := &fakeFallback{}
	c := NewCoordinator(cfg, p, &fakeSampler{ms: 4}, fb, zap.NewNop())
	s := c.Run(context.Background())

	require.Equal(t, 1, s.ReachableCount)
	require.Equal(t, 2, s.TotalCount)
	require.Equal(t, []string{"good.example", "bad.example"}, hosts(s))

	good, bad := s.Sites[0].Result, s.Sites[1].Result
	require.True(t, good.Reachable)
	require.Equal(t, domain.HTTPCode(200), good.Code)
	require.Equal(t, domain.Unresolved, bad.ResolvedAddress)
	require.Equal(t, domain.CodeDNSError, bad.Code)

	require.Zero(t, fb.calls, "fallback must not run when a site is reachable")
	require.Nil(t, s.Diagnosis)
}

func TestRun_CountsInvariant(t *testing.T) {
	p := &fakeProber{up: map[string]bool{"a": true, "c": true}}
	c := NewCoordinator(cfgWith([]string{"a", "b", "c", "d"}, true), p, &fakeSampler{}, &fakeFallback{}, nil)
	s := c.Run(context.Background())

	n := 0
	for _, site := range s.Sites {
		if site.Result.Reachable {
			n++
		}
	}
	require.Equal(t, n, s.ReachableCount)
	require.LessOrEqual(t, s.ReachableCount, s.TotalCount)
	require.Equal(t, 4, s.TotalCount)
}

func TestRun_OrderIndependentOfTiming(t *testing.T) {
	sites := []string{"delta.io", "alpha.io", "charlie.io", "bravo.io"}

	run := func(delays map[string]time.Duration, sorted bool) []string {
		p := &fakeProber{delays: delays}
		c := NewCoordinator(cfgWith(sites, sorted), p, &fakeSampler{}, &fakeFallback{online: true}, nil)
		return hosts(c.Run(context.Background()))
	}

	fastFirst := map[string]time.Duration{"delta.io": 1 * time.Millisecond, "alpha.io": 30 * time.Millisecond, "charlie.io": 5 * time.Millisecond}
	slowFirst := map[string]time.Duration{"delta.io": 30 * time.Millisecond, "bravo.io": 20 * time.Millisecond, "alpha.io": 1 * time.Millisecond}

	sorted := []string{"alpha.io", "bravo.io", "charlie.io", "delta.io"}
	require.Equal(t, sorted, run(fastFirst, true))
	require.Equal(t, sorted, run(slowFirst, true))

	require.Equal(t, sites, run(fastFirst, false))
	require.Equal(t, sites, run(slowFirst, false))
}

func TestRun_LatencyPhaseStartsAfterAllProbes(t *testing.T) {
	sites := []string{"a", "b", "c"}
	p := &fakeProber{delays: map[string]time.Duration{"c": 20 * time.Millisecond}}
	var early atomic.Bool
	s := &fakeSampler{before: func() {
		if p.done.Load() != int32(len(sites)) {
			early.Store(true)
		}
	}}
	c := NewCoordinator(cfgWith(sites, false), p, s, &fakeFallback{online: true}, nil)
	c.Run(context.Background())
	require.False(t, early.Load(), "latency sampling started before every probe finished")
}

func TestRun_FallbackOnlineKeepsSitesDown(t *testing.T) {
	fb := &fakeFallback{online: true}
	var out bytes.Buffer
	c := NewCoordinator(cfgWith([]string{"a.example", "b.example"}, true), &fakeProber{}, &fakeSampler{}, fb, nil)
	c.Sink = report.New(&out, true)

	s := c.Run(context.Background())
	require.Equal(t, 1, fb.calls)
	require.NotNil(t, s.Diagnosis)
	require.True(t, s.Diagnosis.Online)
	require.Zero(t, s.ReachableCount)
	require.NotContains(t, out.String(), "No internet connection")
	require.Contains(t, out.String(), "[ DOWN ] a.example")
	require.Contains(t, out.String(), "[ DOWN ] b.example")
}

func TestRun_FallbackOfflineReportsNoInternet(t *testing.T) {
	fb := &fakeFallback{online: false}
	var out bytes.Buffer
	c := NewCoordinator(cfgWith([]string{"a.example", "b.example"}, true), &fakeProber{}, &fakeSampler{}, fb, nil)
	c.Sink = report.New(&out, true)

	s := c.Run(context.Background())
	require.Equal(t, 1, fb.calls)
	require.False(t, s.Diagnosis.Online)
	require.Contains(t, out.String(), "No internet connection detected.")
	require.Contains(t, out.String(), "eth0 (ethernet)")
}

func TestRun_SinkFailureDoesNotAbortRound(t *testing.T) {
	var warned string
	var reported bool
	c := NewCoordinator(cfgWith([]string{"a"}, true), &fakeProber{up: map[string]bool{"a": true}}, &fakeSampler{}, &fakeFallback{}, nil)
	c.Sink = sink.Multi{
		sink.Func(func(context.Context, domain.RoundSummary) error { return errors.New("disk full") }),
		sink.Func(func(context.Context, domain.RoundSummary) error { reported = true; return nil }),
	}
	c.Warnf = func(format string, args ...any) { warned = format }

	s := c.Run(context.Background())
	require.Equal(t, 1, s.ReachableCount)
	require.True(t, reported)
	require.NotEmpty(t, warned)
}

func TestRun_ProbePanicIsContained(t *testing.T) {
	p := &fakeProber{panics: "bad", up: map[string]bool{"ok": true}}
	c := NewCoordinator(cfgWith([]string{"ok", "bad"}, false), p, &fakeSampler{}, &fakeFallback{}, nil)

	s := c.Run(context.Background())
	require.Equal(t, 2, s.TotalCount)
	require.Equal(t, "bad", s.Sites[1].Result.Host)
	require.Equal(t, domain.CodeConnectionError, s.Sites[1].Result.Code)
}

func TestRun_IndicatorStoppedAfterProbing(t *testing.T) {
	ind := &fakeIndicator{}
	c := NewCoordinator(cfgWith([]string{"a", "b"}, false), &fakeProber{}, &fakeSampler{}, &fakeFallback{online: true}, nil)
	c.Indicator = ind
	c.Run(context.Background())
	require.Equal(t, 1, ind.started)
	require.Equal(t, 1, ind.stopped)
}

type countingProber struct {
	mu       sync.Mutex
	cur, max int
}

func (p *countingProber) Check(_ context.Context, host string) domain.SiteCheckResult {
	p.mu.Lock()
	p.cur++
	p.max = max(p.max, p.cur)
	p.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	p.mu.Lock()
	p.cur--
	p.mu.Unlock()
	return domain.SiteCheckResult{Host: host, Reachable: true, Code: domain.HTTPCode(200)}
}

func TestRun_MaxConcurrency(t *testing.T) {
	cfg := cfgWith([]string{"a", "b", "c", "d", "e", "f"}, true)
	cfg.Settings.MaxConcurrency = 2
	p := &countingProber{}
	NewCoordinator(cfg, p, &fakeSampler{}, &fakeFallback{}, nil).Run(context.Background())
	require.LessOrEqual(t, p.max, 2)
}
