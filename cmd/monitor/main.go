package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/hamed0406/sitemonitor/internal/config"
	"github.com/hamed0406/sitemonitor/internal/connectivity"
	"github.com/hamed0406/sitemonitor/internal/httpapi"
	"github.com/hamed0406/sitemonitor/internal/logging"
	"github.com/hamed0406/sitemonitor/internal/netdiag"
	"github.com/hamed0406/sitemonitor/internal/probe"
	"github.com/hamed0406/sitemonitor/internal/repo/memory"
	"github.com/hamed0406/sitemonitor/internal/report"
	"github.com/hamed0406/sitemonitor/internal/round"
	"github.com/hamed0406/sitemonitor/internal/roundlog"
	"github.com/hamed0406/sitemonitor/internal/scheduler"
	"github.com/hamed0406/sitemonitor/internal/sink"
)

const startupPause = 10 * time.Second

func main() {
	env := config.FromEnv()
	logger, err := logging.NewLogger(env.LogDir, env.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	rep := report.New(os.Stdout, !tty)
	rep.Clear = tty

	loaded, err := config.Load(env.ConfigPath)
	if err != nil {
		logger.Error("config_invalid", zap.String("path", env.ConfigPath), zap.Error(err))
		rep.Warn("Invalid configuration: %v", err)
		os.Exit(1)
	}
	if loaded.PersistErr != nil {
		logger.Warn("config_persist_error", zap.Error(loaded.PersistErr))
	}
	cfg := loaded.Config
	if env.StatusAddr != "" {
		cfg.Monitor.StatusAddr = env.StatusAddr
	}
	logger.Info("config_loaded",
		zap.String("path", loaded.Path),
		zap.Bool("created", loaded.Created),
		zap.Int("sites", len(cfg.Websites)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep.Banner()
	loaded.Config = cfg
	rep.ConfigSummary(loaded)

	diag := netdiag.New(runtime.GOOS, nil)
	servers, err := diag.DNSServers(ctx)
	if err != nil {
		logger.Warn("dns_settings_error", zap.Error(err))
	}
	rep.DNSSettings(servers, err)

	// Each round clears the terminal; leave the startup summary readable first.
	if tty {
		select {
		case <-ctx.Done():
			rep.Shutdown()
			return
		case <-time.After(startupPause):
		}
	}

	store := memory.New()
	sinks := sink.Multi{rep, store}
	if cfg.Monitor.LoggingEnabled {
		rl := roundlog.New(cfg.Monitor.LogFilePath)
		defer rl.Close()
		sinks = append(sinks, rl)
		logger.Info("round_log_enabled", zap.String("path", cfg.Monitor.LogFilePath))
	}

	coord := round.NewCoordinator(
		cfg,
		probe.NewProber(cfg.Timeout(), cfg.ValidCodes(), logger),
		probe.NewLatencySampler(),
		connectivity.New(diag, connectivity.NewICMPGateway(), logger),
		logger,
	)
	coord.Sink = sinks
	coord.Warnf = rep.Warn
	if tty {
		coord.Indicator = report.NewSpinner(os.Stdout, false)
	}

	if addr := cfg.Monitor.StatusAddr; addr != "" {
		api := httpapi.NewServer(logger, store, coord.Order())
		go func() {
			if err := httpapi.ListenAndServe(ctx, addr, api.Router(120, 60), logger); err != nil {
				logger.Warn("status_api_error", zap.Error(err))
				rep.Warn("Status API stopped: %v", err)
			}
		}()
	}

	sched := scheduler.New(coord, rep, cfg.Interval(), logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler_error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
