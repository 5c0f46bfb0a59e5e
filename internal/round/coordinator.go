package round

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/sitemonitor/internal/config"
	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/probe"
	"github.com/hamed0406/sitemonitor/internal/sink"
)

// Fallback runs when no site in the round was reachable.
type Fallback interface {
	Check(ctx context.Context) domain.Diagnosis
}

// Indicator shows progress while the reachability phase runs.
type Indicator interface {
	Start(ctx context.Context) (stop func())
}

type Coordinator struct {
	Config    config.Config
	Prober    probe.Checker
	Sampler   probe.Sampler
	Fallback  Fallback
	Indicator Indicator // optional
	Sink      sink.Sink // optional
	Logger    *zap.Logger
	Clock     clock.Clock
	// Warnf reports a sink failure to the operator. Optional.
	Warnf func(format string, args ...any)
}

func NewCoordinator(cfg config.Config, prober probe.Checker, sampler probe.Sampler, fb Fallback, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		Config:   cfg,
		Prober:   prober,
		Sampler:  sampler,
		Fallback: fb,
		Logger:   logger,
		Clock:    clock.New(),
	}
}

// Run performs one full round and publishes it. Every site gets exactly one
// reachability check and one latency sample. Failures never escape: they
// are part of the summary or, for sinks, logged and dropped.
func (c *Coordinator) Run(ctx context.Context) domain.RoundSummary {
	started := c.Clock.Now()
	sites := c.Order()

	results := c.checkAll(ctx, sites)
	samples := c.sampleAll(ctx, sites)

	summary := domain.NewRoundSummary(results, samples)
	summary.StartedAt = started

	if summary.TotalCount > 0 && summary.ReachableCount == 0 && c.Fallback != nil {
		d := c.Fallback.Check(ctx)
		summary.Diagnosis = &d
	}
	summary.FinishedAt = c.Clock.Now()

	c.Logger.Info("round_finished",
		zap.Int("reachable", summary.ReachableCount),
		zap.Int("total", summary.TotalCount),
		zap.Duration("took", summary.FinishedAt.Sub(started)),
		zap.Bool("fallback", summary.Diagnosis != nil),
	)

	if c.Sink != nil {
		if err := c.Sink.Publish(ctx, summary); err != nil {
			c.Logger.Warn("sink_error", zap.Error(err))
			if c.Warnf != nil {
				c.Warnf("Failed to record round: %v", err)
			}
		}
	}
	return summary
}

// Order returns the configured hosts in display order.
func (c *Coordinator) Order() []string {
	return domain.OrderSites(c.Config.Sites(), c.Config.Settings.Sorted)
}

// checkAll runs the reachability phase. Slot i always belongs to sites[i],
// so completion order cannot affect display order.
func (c *Coordinator) checkAll(ctx context.Context, sites []string) []domain.SiteCheckResult {
	if c.Indicator != nil {
		stop := c.Indicator.Start(ctx)
		defer stop()
	}

	out := make([]domain.SiteCheckResult, len(sites))
	g := c.group()
	for i, host := range sites {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					c.Logger.Error("probe_panic", zap.String("host", host), zap.Any("panic", p))
					out[i] = domain.SiteCheckResult{Host: host, ResolvedAddress: domain.Unresolved, Code: domain.CodeConnectionError}
				}
			}()
			out[i] = c.Prober.Check(ctx, host)
			out[i].Host = host
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *Coordinator) sampleAll(ctx context.Context, sites []string) []domain.LatencySample {
	out := make([]domain.LatencySample, len(sites))
	g := c.group()
	for i, host := range sites {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					c.Logger.Error("sampler_panic", zap.String("host", host), zap.Any("panic", p))
					out[i] = domain.LatencySample{Host: host}
				}
			}()
			out[i] = c.Sampler.Sample(ctx, host)
			out[i].Host = host
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *Coordinator) group() *errgroup.Group {
	g := &errgroup.Group{}
	if n := c.Config.Settings.MaxConcurrency; n > 0 {
		g.SetLimit(n)
	}
	return g
}
