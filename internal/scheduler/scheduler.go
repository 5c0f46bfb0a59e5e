package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

// RoundRunner executes one complete round.
type RoundRunner interface {
	Run(ctx context.Context) domain.RoundSummary
}

// Notifier receives the lifecycle messages shown between rounds.
type Notifier interface {
	Banner()
	RoundStarted(t time.Time)
	NextRound(interval time.Duration)
	Shutdown()
}

type Scheduler struct {
	Runner   RoundRunner
	Notifier Notifier // optional
	Interval time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger

	state atomic.Int32
}

func New(runner RoundRunner, notifier Notifier, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Runner:   runner,
		Notifier: notifier,
		Interval: interval,
		Clock:    clock.New(),
		Logger:   logger,
	}
}

func (s *Scheduler) State() State { return State(s.state.Load()) }

// Run executes rounds back to back, sleeping Interval after each one, until
// ctx is cancelled. A round that has started always runs to completion; the
// cancellation is observed before the next round or during the sleep.
func (s *Scheduler) Run(ctx context.Context) error {
	s.state.Store(int32(Running))
	s.Logger.Info("scheduler_started", zap.Duration("interval", s.Interval))
	defer s.state.Store(int32(Stopped))

	for ctx.Err() == nil {
		s.runOnce(ctx)
		if s.Notifier != nil {
			s.Notifier.NextRound(s.Interval)
		}
		select {
		case <-ctx.Done():
		case <-s.Clock.After(s.Interval):
		}
	}

	if s.Notifier != nil {
		s.Notifier.Shutdown()
	}
	s.Logger.Info("scheduler_stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if s.Notifier != nil {
		s.Notifier.Banner()
		s.Notifier.RoundStarted(s.Clock.Now())
	}
	s.Runner.Run(context.WithoutCancel(ctx))
}
