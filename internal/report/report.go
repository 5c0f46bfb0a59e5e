// Package report renders rounds for the terminal. Colors and markers are
// decided here from domain values; domain data never carries formatting.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/hamed0406/sitemonitor/internal/domain"
)

const (
	Version     = "1.2.0"
	bannerWidth = 72
	statusWidth = 6
)

type Tier int

const (
	TierAbsent Tier = iota
	TierFast        // < 100ms
	TierMedium      // 100ms up to 300ms
	TierSlow        // 300ms and above
)

// TierOf buckets a latency for display only.
func TierOf(l domain.LatencySample) Tier {
	switch {
	case !l.Valid():
		return TierAbsent
	case *l.Millis < 100:
		return TierFast
	case *l.Millis < 300:
		return TierMedium
	default:
		return TierSlow
	}
}

type Reporter struct {
	Out io.Writer
	// Clear wipes the terminal before each banner.
	Clear bool

	green, yellow, red, cyan, magenta *color.Color
}

// New returns a Reporter writing to out. noColor forces plain output.
func New(out io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		Out:     out,
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan),
		magenta: color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range []*color.Color{r.green, r.yellow, r.red, r.cyan, r.magenta} {
			c.DisableColor()
		}
	}
	return r
}

func (r *Reporter) Publish(_ context.Context, s domain.RoundSummary) error {
	r.Round(s)
	return nil
}

// Round prints one aligned line per site, the totals line and, when the
// connectivity fallback ran and found no route, its diagnostics.
func (r *Reporter) Round(s domain.RoundSummary) {
	hostW, ipW, pingW := 0, 0, 0
	for _, site := range s.Sites {
		hostW = max(hostW, width(site.Result.Host))
		ipW = max(ipW, width(site.Result.ResolvedAddress))
		if site.Latency.Valid() {
			pingW = max(pingW, width(formatPing(site.Latency)))
		}
	}

	for _, site := range s.Sites {
		res := site.Result
		fmt.Fprintf(r.Out, "[%s] %s -> %s [Code: %s // %s]\n",
			r.statusLabel(res),
			pad(res.Host, hostW),
			pad(res.ResolvedAddress, ipW),
			r.codeLabel(res.Code),
			r.pingLabel(site.Latency, pingW),
		)
	}

	fmt.Fprintf(r.Out, "\nReachable: %d of %d sites.\n", s.ReachableCount, s.TotalCount)
	if s.Diagnosis != nil && !s.Diagnosis.Online {
		r.diagnosis(*s.Diagnosis)
	}
}

func (r *Reporter) statusLabel(res domain.SiteCheckResult) string {
	switch {
	case res.Reachable:
		return r.green.Sprint(center("UP", statusWidth))
	case res.Code == domain.CodeDNSError:
		return r.red.Sprint(center("N/A", statusWidth))
	default:
		return r.red.Sprint(center("DOWN", statusWidth))
	}
}

func (r *Reporter) codeLabel(c domain.Code) string {
	switch c {
	case domain.CodeTimeout:
		return r.yellow.Sprint(c.String())
	case domain.CodeConnectionError, domain.CodeDNSError:
		return r.red.Sprint(c.String())
	}
	return c.String()
}

func (r *Reporter) pingLabel(l domain.LatencySample, w int) string {
	text := "N/A"
	if l.Valid() {
		text = formatPing(l)
	}
	text = pad(text, w)
	switch TierOf(l) {
	case TierFast:
		return r.green.Sprint(text)
	case TierMedium:
		return r.yellow.Sprint(text)
	default:
		return r.red.Sprint(text)
	}
}

func (r *Reporter) diagnosis(d domain.Diagnosis) {
	r.red.Fprintln(r.Out, "No internet connection detected.")
	switch {
	case d.InterfacesErr != "":
		r.red.Fprintf(r.Out, "Could not check network interfaces: %s\n", d.InterfacesErr)
	case len(d.Interfaces) == 0:
		r.red.Fprintln(r.Out, "No active network interfaces.")
	default:
		r.green.Fprintln(r.Out, "Active network interfaces:")
		for _, ifc := range d.Interfaces {
			fmt.Fprintf(r.Out, "  %s\n", ifc)
		}
	}
	switch {
	case d.Gateway != "" && d.GatewayRTTMillis != nil:
		fmt.Fprintf(r.Out, "Default gateway %s answered in %.2f ms.\n", d.Gateway, *d.GatewayRTTMillis)
	case d.Gateway != "":
		r.yellow.Fprintf(r.Out, "Default gateway %s did not answer: %s\n", d.Gateway, d.GatewayErr)
	case d.GatewayErr != "":
		r.yellow.Fprintf(r.Out, "Default gateway unknown: %s\n", d.GatewayErr)
	}
}

func (r *Reporter) Banner() {
	if r.Clear {
		fmt.Fprint(r.Out, "\033[H\033[2J")
	}
	line := strings.Repeat("=", bannerWidth)
	r.cyan.Fprintln(r.Out, line)
	r.cyan.Fprintln(r.Out, center("SITE AVAILABILITY MONITOR", bannerWidth))
	r.cyan.Fprintln(r.Out, center("Version "+Version, bannerWidth))
	r.cyan.Fprintln(r.Out, line)
}

func (r *Reporter) RoundStarted(t time.Time) {
	r.yellow.Fprintf(r.Out, "Monitoring started at: %s\n\n", t.Format("2006-01-02 15:04:05"))
}

func (r *Reporter) NextRound(interval time.Duration) {
	r.magenta.Fprintf(r.Out, "Next check in %d seconds...\n\n", int(interval.Seconds()))
}

func (r *Reporter) DNSSettings(servers []string, err error) {
	if err != nil {
		r.red.Fprintf(r.Out, "Could not read DNS settings: %v\n", err)
		return
	}
	r.cyan.Fprintln(r.Out, "Current DNS settings:")
	if len(servers) == 0 {
		fmt.Fprintln(r.Out, "  (none found)")
	}
	for _, s := range servers {
		r.green.Fprintf(r.Out, "  %s\n", s)
	}
}

func (r *Reporter) Warn(format string, args ...any) {
	r.red.Fprintf(r.Out, format+"\n", args...)
}

func (r *Reporter) Shutdown() {
	r.red.Fprintln(r.Out, "Monitoring stopped by user. Shutting down...")
}

func formatPing(l domain.LatencySample) string {
	return fmt.Sprintf("%.2f ms", *l.Millis)
}

func width(s string) int { return utf8.RuneCountInString(s) }

func pad(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func center(s string, w int) string {
	n := width(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}
