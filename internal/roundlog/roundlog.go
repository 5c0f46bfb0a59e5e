// Package roundlog appends one JSON record per round to the configured log
// file. Records are concatenated JSON values, not a single array; readers
// decode them as a stream.
package roundlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

const TimestampLayout = "2006-01-02 15:04:05"

type Record struct {
	Timestamp string  `json:"timestamp"`
	Results   []Entry `json:"results"`
}

type Entry struct {
	URL    string        `json:"url"`
	IP     string        `json:"ip"`
	Status domain.Status `json:"status"`
	Code   domain.Code   `json:"code"`
	Ping   string        `json:"ping"`
}

type Writer struct {
	mu  sync.Mutex
	out io.WriteCloser
	now func() time.Time
}

// New appends to path. The file is created on the first record, so a writer
// that never publishes leaves no file behind. Past 50 MB the file is rotated
// to a timestamped sibling; rotated files are never pruned, so no record is
// ever dropped.
func New(path string) *Writer {
	return NewWriter(&lumberjack.Logger{
		Filename: path,
		MaxSize:  50, // MB
	})
}

func NewWriter(out io.WriteCloser) *Writer {
	return &Writer{out: out, now: time.Now}
}

func (w *Writer) Publish(_ context.Context, s domain.RoundSummary) error {
	ts := s.FinishedAt
	if ts.IsZero() {
		ts = w.now()
	}
	rec := NewRecord(ts, s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode round record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append round record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Close()
}

// NewRecord builds the log record. Status comes from Reachable; an
// unresolved host is logged with ip "N/A".
func NewRecord(ts time.Time, s domain.RoundSummary) Record {
	rec := Record{
		Timestamp: ts.Format(TimestampLayout),
		Results:   make([]Entry, 0, len(s.Sites)),
	}
	for _, site := range s.Sites {
		ip := site.Result.ResolvedAddress
		if ip == domain.Unresolved {
			ip = "N/A"
		}
		ping := "N/A"
		if site.Latency.Valid() {
			ping = fmt.Sprintf("%.2f ms", *site.Latency.Millis)
		}
		rec.Results = append(rec.Results, Entry{
			URL:    site.Result.Host,
			IP:     ip,
			Status: site.Result.Status(),
			Code:   site.Result.Code,
			Ping:   ping,
		})
	}
	return rec
}
