// Package netdiag reports the host's DNS settings and active network
// interfaces. The answer comes from OS tools (nmcli, netsh, ipconfig) where
// they exist, and from the Go net package otherwise.
package netdiag

import (
	"context"
	"errors"
	"os/exec"
)

// Diagnostics is the OS capability used at startup and by the connectivity
// fallback. Both methods are best effort: callers report errors and move on.
type Diagnostics interface {
	DNSServers(ctx context.Context) ([]string, error)
	// ActiveInterfaces returns one description per active interface. An empty
	// slice with a nil error means no interface is active.
	ActiveInterfaces(ctx context.Context) ([]string, error)
}

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New selects the implementation for goos (normally runtime.GOOS).
func New(goos string, runner Runner) Diagnostics {
	if runner == nil {
		runner = ExecRunner{}
	}
	generic := &Generic{ResolvConf: "/etc/resolv.conf"}
	switch goos {
	case "linux":
		return &withFallback{primary: &NMCLI{Runner: runner}, secondary: generic}
	case "windows":
		return &Netsh{Runner: runner}
	default:
		return generic
	}
}

// withFallback uses secondary when the primary tool is not installed.
type withFallback struct {
	primary   Diagnostics
	secondary Diagnostics
}

func (w *withFallback) DNSServers(ctx context.Context) ([]string, error) {
	out, err := w.primary.DNSServers(ctx)
	if errors.Is(err, exec.ErrNotFound) {
		return w.secondary.DNSServers(ctx)
	}
	return out, err
}

func (w *withFallback) ActiveInterfaces(ctx context.Context) ([]string, error) {
	out, err := w.primary.ActiveInterfaces(ctx)
	if errors.Is(err, exec.ErrNotFound) {
		return w.secondary.ActiveInterfaces(ctx)
	}
	return out, err
}
