package roundlog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

func fp(v float64) *float64 { return &v }

func summary() domain.RoundSummary {
	s := domain.NewRoundSummary(
		[]domain.SiteCheckResult{
			{Host: "good.example", ResolvedAddress: "93.184.216.34", Reachable: true, Code: domain.HTTPCode(200)},
			{Host: "bad.example", ResolvedAddress: domain.Unresolved, Code: domain.CodeDNSError},
		},
		[]domain.LatencySample{{Host: "good.example", Millis: fp(23.456)}},
	)
	s.FinishedAt = time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	return s
}

func TestWriter_AppendsOneRecordPerRound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	w := New(path)

	require.NoError(t, w.Publish(context.Background(), summary()))
	require.NoError(t, w.Publish(context.Background(), summary()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := json.NewDecoder(f)
	var recs []map[string]any
	for {
		var r map[string]any
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		recs = append(recs, r)
	}
	require.Len(t, recs, 2)

	first := recs[0]
	require.Equal(t, "2025-03-04 05:06:07", first["timestamp"])
	results := first["results"].([]any)
	require.Len(t, results, 2)

	good := results[0].(map[string]any)
	require.Equal(t, "good.example", good["url"])
	require.Equal(t, "UP", good["status"])
	require.Equal(t, float64(200), good["code"])
	require.Equal(t, "23.46 ms", good["ping"])

	bad := results[1].(map[string]any)
	require.Equal(t, "N/A", bad["ip"])
	require.Equal(t, "DOWN", bad["status"])
	require.Equal(t, "DNS_ERROR", bad["code"])
	require.Equal(t, "N/A", bad["ping"])
}

func TestWriter_NoPublishNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	w := New(path)
	require.NoError(t, w.Close())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "log file must not exist without a round")
}

type failingFile struct{}

func (failingFile) Write([]byte) (int, error) { return 0, errors.New("read-only file system") }
func (failingFile) Close() error              { return nil }

func TestWriter_WriteErrorIsReturned(t *testing.T) {
	w := NewWriter(failingFile{})
	err := w.Publish(context.Background(), summary())
	require.ErrorContains(t, err, "read-only")
}

func TestNew_RotationKeepsEveryFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "monitor.log"))
	lj, ok := w.out.(*lumberjack.Logger)
	require.True(t, ok, "want a rotating file writer, got %T", w.out)
	require.Zero(t, lj.MaxBackups, "rotated records must not be pruned by count")
	require.Zero(t, lj.MaxAge, "rotated records must not be pruned by age")
	require.Positive(t, lj.MaxSize)
}
