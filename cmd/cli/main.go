package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/hamed0406/sitemonitor/internal/domain"
	"github.com/hamed0406/sitemonitor/internal/report"
)

var errNoRound = errors.New("the monitor has not finished a round yet")

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := fetchLatest(ctx, http.DefaultClient, api)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error contacting monitor:", err)
		os.Exit(1)
	}

	noColor := !isatty.IsTerminal(os.Stdout.Fd())
	rep := report.New(os.Stdout, noColor)
	fmt.Printf("Round finished at %s\n\n", s.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	rep.Round(s)
}

// fetchLatest reads the most recent round from a running monitor's status API.
func fetchLatest(ctx context.Context, c *http.Client, base string) (domain.RoundSummary, error) {
	var s domain.RoundSummary
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/rounds/latest", nil)
	if err != nil {
		return s, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return s, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return s, errNoRound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return s, fmt.Errorf("API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return s, fmt.Errorf("decode round: %w", err)
	}
	return s, nil
}
