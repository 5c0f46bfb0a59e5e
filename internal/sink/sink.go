package sink

import (
	"context"

	"go.uber.org/multierr"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

// Sink consumes a finished round.
type Sink interface {
	Publish(ctx context.Context, s domain.RoundSummary) error
}

type Func func(ctx context.Context, s domain.RoundSummary) error

func (f Func) Publish(ctx context.Context, s domain.RoundSummary) error { return f(ctx, s) }

// Multi publishes to every sink in order. A failing sink does not stop the
// others; all errors are combined.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, s domain.RoundSummary) error {
	var err error
	for _, sk := range m {
		if sk == nil {
			continue
		}
		err = multierr.Append(err, sk.Publish(ctx, s))
	}
	return err
}
