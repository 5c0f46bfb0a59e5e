// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/sitemonitor/internal/config"
)

func main() {
	os.Exit(run(config.FromEnv(), runtime.GOOS, os.Stdout, os.Stderr))
}

// run checks the environment and config file the monitor would use. It never
// writes the config; a missing file is only reported.
func run(env config.Env, goos string, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	if _, err := zapcore.ParseLevel(env.LogLevel); err != nil {
		fail(fmt.Sprintf("LOG_LEVEL=%q is not a log level.", env.LogLevel))
	} else {
		ok("LOG_LEVEL=" + env.LogLevel)
	}

	if err := os.MkdirAll(env.LogDir, 0o755); err != nil {
		fail(fmt.Sprintf("LOG_DIR %s is not writable: %v", env.LogDir, err))
	} else {
		ok("LOG_DIR=" + env.LogDir)
	}

	if env.StatusAddr != "" {
		if _, _, err := net.SplitHostPort(env.StatusAddr); err != nil {
			fail(fmt.Sprintf("STATUS_ADDR=%q: %v", env.StatusAddr, err))
		} else {
			ok("STATUS_ADDR=" + env.StatusAddr)
		}
	}

	cfg, err := config.Read(env.ConfigPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		warn(fmt.Sprintf("%s does not exist; the monitor will create the default config.", env.ConfigPath))
		cfg = config.Default()
	case config.IsCorrupt(err):
		fail(fmt.Sprintf("%s is corrupt (%v); the monitor would replace it with the default.", env.ConfigPath, err))
		return 1
	case err != nil:
		fail(fmt.Sprintf("%s: %v", env.ConfigPath, err))
		return 1
	default:
		ok("config " + env.ConfigPath + " parsed")
	}

	before := len(cfg.Websites)
	config.Normalize(&cfg)
	if n := before - len(cfg.Websites); n > 0 {
		warn(fmt.Sprintf("%d website entries are empty or duplicates and will be ignored.", n))
	}
	if err := config.Validate(&cfg); err != nil {
		fail(err.Error())
	} else {
		ok(fmt.Sprintf("%d sites, interval %ds, timeout %ds", len(cfg.Websites), cfg.Settings.Interval, cfg.Settings.Timeout))
	}

	if cfg.Monitor.LoggingEnabled {
		logPath := cfg.Monitor.LogFilePath
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(filepath.Dir(env.ConfigPath), logPath)
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			fail(fmt.Sprintf("round log directory for %s is not writable: %v", logPath, err))
		} else {
			ok("round log " + logPath)
		}
	}

	switch goos {
	case "linux":
		if _, err := exec.LookPath("nmcli"); err != nil {
			warn("nmcli not found; DNS and interface diagnostics will use /etc/resolv.conf and the kernel interface list.")
		}
	case "windows":
		if _, err := exec.LookPath("netsh"); err != nil {
			warn("netsh not found; interface diagnostics will be unavailable.")
		}
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}
