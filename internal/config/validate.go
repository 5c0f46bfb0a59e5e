package config

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize cleans the site list in place: trims whitespace, strips an
// accidental scheme or path, lowercases, and drops empty and duplicate hosts.
// It also fills in a missing log file name.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	seen := make(map[string]bool, len(cfg.Websites))
	hosts := make([]string, 0, len(cfg.Websites))
	for _, raw := range cfg.Websites {
		h := normalizeHost(raw)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	cfg.Websites = hosts

	if strings.TrimSpace(cfg.Monitor.LogFilePath) == "" {
		cfg.Monitor.LogFilePath = "monitor.log"
	}
}

func normalizeHost(raw string) string {
	h := strings.TrimSpace(raw)
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	return strings.ToLower(h)
}

// Validate reports the first problem that makes cfg unusable.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	s := cfg.Settings
	if s.Interval <= 0 {
		return fmt.Errorf("monitor_settings.interval must be > 0, got %d", s.Interval)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("monitor_settings.timeout must be > 0, got %d", s.Timeout)
	}
	if s.MaxConcurrency < 0 {
		return fmt.Errorf("monitor_settings.max_concurrency must be >= 0, got %d", s.MaxConcurrency)
	}
	if len(s.ValidStatusCodes) == 0 {
		return errors.New("monitor_settings.valid_status_codes is empty")
	}
	for _, code := range s.ValidStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("monitor_settings.valid_status_codes: %d is not an HTTP status", code)
		}
	}
	if len(cfg.Websites) == 0 {
		return errors.New("websites is empty")
	}
	return nil
}
