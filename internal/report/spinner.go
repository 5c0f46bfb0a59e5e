package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
)

// Spinner draws a progress indicator on one terminal line.
type Spinner struct {
	Out      io.Writer
	Label    string
	Interval time.Duration
	NoColor  bool
	Clock    clock.Clock
}

func NewSpinner(out io.Writer, noColor bool) *Spinner {
	return &Spinner{Out: out, Label: "Checking sites", Interval: 200 * time.Millisecond, NoColor: noColor, Clock: clock.New()}
}

// Start draws until stop is called or ctx ends. stop clears the line and is
// safe to call more than once.
func (s *Spinner) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c := color.New(color.FgMagenta)
	if s.NoColor {
		c.DisableColor()
	}

	t := s.Clock.Ticker(s.Interval)
	go func() {
		defer close(done)
		defer t.Stop()
		frames := `|/-\`
		for i := 0; ; i++ {
			c.Fprintf(s.Out, "\r%s %c...", s.Label, frames[i%len(frames)])
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			fmt.Fprint(s.Out, "\r"+strings.Repeat(" ", len(s.Label)+8)+"\r")
		})
	}
}
