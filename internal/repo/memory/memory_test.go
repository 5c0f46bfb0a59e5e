package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/repo"
)

func round(hosts ...string) domain.RoundSummary {
	var rs []domain.SiteCheckResult
	for _, h := range hosts {
		rs = append(rs, domain.SiteCheckResult{Host: h, ResolvedAddress: "1.1.1.1", Reachable: true, Code: domain.HTTPCode(200)})
	}
	return domain.NewRoundSummary(rs, nil)
}

func TestMemoryStore_LatestBeforeAnyRound(t *testing.T) {
	s := New()
	_, err := s.Latest(context.Background())
	require.ErrorIs(t, err, repo.ErrNoRound)
	require.Zero(t, s.Rounds())
}

func TestMemoryStore_KeepsOnlyLatest(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, round("a.example")))
	require.NoError(t, s.Publish(ctx, round("b.example", "c.example")))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.TotalCount)
	require.Equal(t, "b.example", got.Sites[0].Result.Host)
	require.Equal(t, 2, s.Rounds())
}

func TestMemoryStore_SnapshotIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := round("a.example")
	require.NoError(t, s.Save(ctx, r))

	r.Sites[0].Result.Host = "mutated"

	got, _ := s.Latest(ctx)
	require.Equal(t, "a.example", got.Sites[0].Result.Host, "store shares backing array with caller")
}
