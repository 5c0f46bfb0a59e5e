package netdiag

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// NMCLI queries NetworkManager in terse mode.
type NMCLI struct {
	Runner Runner
}

func (n *NMCLI) DNSServers(ctx context.Context) ([]string, error) {
	out, err := n.Runner.Run(ctx, "nmcli", "-t", "-f", "IP4.DNS", "device", "show")
	if err != nil {
		return nil, fmt.Errorf("nmcli device show: %w", err)
	}
	return parseNMCLIDNS(out), nil
}

func (n *NMCLI) ActiveInterfaces(ctx context.Context) ([]string, error) {
	out, err := n.Runner.Run(ctx, "nmcli", "-t", "-f", "DEVICE,TYPE,STATE,CONNECTION", "device", "status")
	if err != nil {
		return nil, fmt.Errorf("nmcli device status: %w", err)
	}
	return parseNMCLIStatus(out), nil
}

// Lines look like "IP4.DNS[1]:192.168.1.1".
func parseNMCLIDNS(out []byte) []string {
	var servers []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "IP4.DNS") {
			continue
		}
		fields := splitTerse(line)
		if len(fields) < 2 || fields[1] == "" || seen[fields[1]] {
			continue
		}
		seen[fields[1]] = true
		servers = append(servers, fields[1])
	}
	return servers
}

// Lines look like "wlp2s0:wifi:connected:Home WiFi". Loopback and
// anything not fully connected are skipped.
func parseNMCLIStatus(out []byte) []string {
	var active []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := splitTerse(strings.TrimSpace(sc.Text()))
		if len(fields) < 3 {
			continue
		}
		dev, typ, state := fields[0], fields[1], fields[2]
		if typ == "loopback" || state != "connected" {
			continue
		}
		desc := dev + " (" + typ
		if len(fields) > 3 && fields[3] != "" && fields[3] != "--" {
			desc += ", " + fields[3]
		}
		active = append(active, desc+")")
	}
	return active
}

// splitTerse splits nmcli -t output on ':' honouring the "\:" escape.
func splitTerse(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
