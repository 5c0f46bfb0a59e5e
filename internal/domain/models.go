package domain

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"
)

// Unresolved is the ResolvedAddress of a host whose DNS lookup failed.
const Unresolved = "unresolved"

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Outcome tags used in place of an HTTP status when none is available.
const (
	OutcomeDNSError        = "DNS_ERROR"
	OutcomeTimeout         = "TIMEOUT"
	OutcomeConnectionError = "CONNECTION_ERROR"
)

// Code is either a numeric HTTP status or one of the outcome tags.
// The zero value is invalid.
type Code struct {
	http int
	tag  string
}

func HTTPCode(status int) Code { return Code{http: status} }

var (
	CodeDNSError        = Code{tag: OutcomeDNSError}
	CodeTimeout         = Code{tag: OutcomeTimeout}
	CodeConnectionError = Code{tag: OutcomeConnectionError}
)

// HTTP returns the numeric status and true when the code carries one.
func (c Code) HTTP() (int, bool) {
	if c.tag != "" || c.http == 0 {
		return 0, false
	}
	return c.http, true
}

func (c Code) String() string {
	if c.tag != "" {
		return c.tag
	}
	return strconv.Itoa(c.http)
}

func (c Code) MarshalJSON() ([]byte, error) {
	if c.tag != "" {
		return json.Marshal(c.tag)
	}
	return json.Marshal(c.http)
}

func (c *Code) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = HTTPCode(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case OutcomeDNSError, OutcomeTimeout, OutcomeConnectionError:
		*c = Code{tag: s}
		return nil
	}
	return errors.New("unknown outcome code " + strconv.Quote(s))
}

// SiteCheckResult is one site's reachability outcome for one round.
type SiteCheckResult struct {
	Host            string `json:"host"`
	ResolvedAddress string `json:"resolved_address"`
	Reachable       bool   `json:"reachable"`
	Code            Code   `json:"code"`
}

func (r SiteCheckResult) Status() Status {
	if r.Reachable {
		return StatusUp
	}
	return StatusDown
}

// LatencySample is one site's TCP connect time for one round.
// Millis is nil when the timed connection failed.
type LatencySample struct {
	Host   string   `json:"host"`
	Millis *float64 `json:"millis,omitempty"`
}

func (l LatencySample) Valid() bool { return l.Millis != nil }

type SiteRound struct {
	Result  SiteCheckResult `json:"result"`
	Latency LatencySample   `json:"latency"`
}

// Diagnosis is produced by the connectivity fallback when no site was reachable.
type Diagnosis struct {
	Online           bool     `json:"online"`
	Interfaces       []string `json:"interfaces,omitempty"`
	InterfacesErr    string   `json:"interfaces_error,omitempty"`
	Gateway          string   `json:"gateway,omitempty"`
	GatewayRTTMillis *float64 `json:"gateway_rtt_ms,omitempty"`
	GatewayErr       string   `json:"gateway_error,omitempty"`
}

type RoundSummary struct {
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     time.Time   `json:"finished_at"`
	Sites          []SiteRound `json:"sites"`
	ReachableCount int         `json:"reachable_count"`
	TotalCount     int         `json:"total_count"`
	Diagnosis      *Diagnosis  `json:"diagnosis,omitempty"`
}

// NewRoundSummary pairs results with samples by host and computes the counts.
// results defines the order; a result without a matching sample gets an
// absent one.
func NewRoundSummary(results []SiteCheckResult, samples []LatencySample) RoundSummary {
	byHost := make(map[string]LatencySample, len(samples))
	for _, s := range samples {
		byHost[s.Host] = s
	}
	out := RoundSummary{
		Sites:      make([]SiteRound, 0, len(results)),
		TotalCount: len(results),
	}
	for _, r := range results {
		s, ok := byHost[r.Host]
		if !ok {
			s = LatencySample{Host: r.Host}
		}
		if r.Reachable {
			out.ReachableCount++
		}
		out.Sites = append(out.Sites, SiteRound{Result: r, Latency: s})
	}
	return out
}

// OrderSites returns the hosts in display order. The input is not modified.
func OrderSites(hosts []string, sorted bool) []string {
	out := append([]string(nil), hosts...)
	if sorted {
		sort.Strings(out)
	}
	return out
}
