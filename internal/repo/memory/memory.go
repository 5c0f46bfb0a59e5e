package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/repo"
)

type Store struct {
	mu     sync.RWMutex
	latest *domain.RoundSummary
	rounds int
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, s domain.RoundSummary) error {
	s.Sites = append([]domain.SiteRound(nil), s.Sites...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &s
	m.rounds++
	return nil
}

// Publish lets the store sit in a sink fan-out.
func (m *Store) Publish(ctx context.Context, s domain.RoundSummary) error {
	return m.Save(ctx, s)
}

func (m *Store) Latest(ctx context.Context) (domain.RoundSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return domain.RoundSummary{}, repo.ErrNoRound
	}
	return *m.latest, nil
}

// Rounds reports how many rounds have been saved since start.
func (m *Store) Rounds() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rounds
}
