package config

import (
	"os"
	"path/filepath"
	"time"
)

// Env holds process-level settings taken from the environment.
type Env struct {
	ConfigPath string // monitor settings file, JSON or YAML
	LogDir     string // operational logs directory
	StatusAddr string // overrides Monitor.status_addr when set
	LogLevel   string // zap level name, "info" when unset
}

func FromEnv() Env {
	// Config file lives next to the executable unless told otherwise
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.json"
		if exe, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exe), "config.json")
		}
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Env{
		ConfigPath: path,
		LogDir:     logDir,
		StatusAddr: os.Getenv("STATUS_ADDR"),
		LogLevel:   level,
	}
}

// Config is the monitor configuration. It is treated as read-only once loaded.
type Config struct {
	Settings MonitorSettings `json:"monitor_settings" yaml:"monitor_settings"`
	Websites []string        `json:"websites" yaml:"websites"`
	Monitor  Monitor         `json:"Monitor" yaml:"Monitor"`
}

type MonitorSettings struct {
	Interval         int   `json:"interval" yaml:"interval"` // seconds between rounds
	Timeout          int   `json:"timeout" yaml:"timeout"`   // per-request seconds
	ValidStatusCodes []int `json:"valid_status_codes" yaml:"valid_status_codes"`
	Sorted           bool  `json:"sorted" yaml:"sorted"`
	MaxConcurrency   int   `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty"` // 0 = one task per site
}

type Monitor struct {
	LoggingEnabled bool   `json:"logging_enabled" yaml:"logging_enabled"`
	LogFilePath    string `json:"log_file_path" yaml:"log_file_path"`
	StatusAddr     string `json:"status_addr,omitempty" yaml:"status_addr,omitempty"`
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.Settings.Interval) * time.Second
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}

// ValidCodes returns the valid status codes as a set.
func (c Config) ValidCodes() map[int]struct{} {
	out := make(map[int]struct{}, len(c.Settings.ValidStatusCodes))
	for _, code := range c.Settings.ValidStatusCodes {
		out[code] = struct{}{}
	}
	return out
}

// Sites returns a copy of the configured hostnames in file order.
func (c Config) Sites() []string {
	return append([]string(nil), c.Websites...)
}

var defaultWebsites = []string{
	"ya.ru",
	"google.com",
	"example.com",
	"vk.com",
	"youtube.com",
	"github.com",
	"store.steampowered.com",
	"steamcommunity.com",
	"t.me",
	"discord.com",
	"pikabu.ru",
	"x.com",
	"anime.reactor.cc",
	"pixiv.net",
}

// Default is written to disk when the config file is missing or corrupt.
func Default() Config {
	return Config{
		Settings: MonitorSettings{
			Interval:         60,
			Timeout:          5,
			ValidStatusCodes: []int{200, 201, 202, 204, 300, 301, 302, 303, 307, 308},
			Sorted:           true,
		},
		Websites: append([]string(nil), defaultWebsites...),
		Monitor: Monitor{
			LoggingEnabled: false,
			LogFilePath:    "monitor.log",
		},
	}
}
