package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

// ErrNoRound is returned by Latest before any round has been saved.
var ErrNoRound = errors.New("no round recorded yet")

// RoundStore keeps the most recent finished round for readers such as the
// status API. Only the latest snapshot is retained.
type RoundStore interface {
	Save(ctx context.Context, s domain.RoundSummary) error
	Latest(ctx context.Context) (domain.RoundSummary, error)
	// Rounds counts the rounds saved since start.
	Rounds() int
}
