package report

import (
	"fmt"

	"github.com/hamed0406/sitemonitor/internal/config"
)

// ConfigSummary prints the loaded settings once at startup.
func (r *Reporter) ConfigSummary(l config.Loaded) {
	if l.Created {
		r.yellow.Fprintf(r.Out, "Config file created at: %s\n", l.Path)
		if l.PersistErr != nil {
			r.red.Fprintf(r.Out, "Could not save the default config: %v\n", l.PersistErr)
		}
	}
	cfg := l.Config
	r.yellow.Fprintln(r.Out, "Configuration loaded!")
	fmt.Fprintf(r.Out, "Sites: %d\n", len(cfg.Websites))
	fmt.Fprintf(r.Out, "Sorted: %t\n", cfg.Settings.Sorted)
	fmt.Fprintf(r.Out, "Check interval: %d s\n", cfg.Settings.Interval)
	fmt.Fprintf(r.Out, "Request timeout: %d s\n", cfg.Settings.Timeout)
	fmt.Fprintf(r.Out, "Valid status codes: %v\n", cfg.Settings.ValidStatusCodes)
	fmt.Fprintf(r.Out, "Logging: %t\n", cfg.Monitor.LoggingEnabled)
	if cfg.Monitor.LoggingEnabled {
		fmt.Fprintf(r.Out, "Log file: %s\n", cfg.Monitor.LogFilePath)
	}
	if cfg.Monitor.StatusAddr != "" {
		fmt.Fprintf(r.Out, "Status API: http://%s\n", cfg.Monitor.StatusAddr)
	}
}
