package netdiag

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Netsh reads Windows ipconfig and netsh output. Russian-locale consoles
// emit CP866, which is decoded before parsing.
type Netsh struct {
	Runner Runner
}

func (n *Netsh) DNSServers(ctx context.Context) ([]string, error) {
	out, err := n.Runner.Run(ctx, "ipconfig", "/all")
	if err != nil {
		return nil, fmt.Errorf("ipconfig /all: %w", err)
	}
	return parseIPConfigDNS(decodeConsole(out)), nil
}

func (n *Netsh) ActiveInterfaces(ctx context.Context) ([]string, error) {
	out, err := n.Runner.Run(ctx, "netsh", "interface", "show", "interface")
	if err != nil {
		return nil, fmt.Errorf("netsh interface show interface: %w", err)
	}
	return parseNetshInterfaces(decodeConsole(out)), nil
}

func decodeConsole(out []byte) string {
	if utf8.Valid(out) {
		return string(out)
	}
	dec, err := charmap.CodePage866.NewDecoder().Bytes(out)
	if err != nil {
		return string(out)
	}
	return string(dec)
}

var dnsLabels = []string{"DNS Servers", "DNS-серверы"}

// The first server follows the label; further servers sit alone on the
// following lines.
func parseIPConfigDNS(out string) []string {
	var servers []string
	inBlock := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if hasDNSLabel(line) {
			inBlock = false
			if i := strings.LastIndex(line, " : "); i >= 0 {
				if v := strings.TrimSpace(line[i+3:]); isIP(v) {
					servers = append(servers, v)
					inBlock = true
				}
			}
			continue
		}
		if inBlock && isIP(line) {
			servers = append(servers, line)
			continue
		}
		inBlock = false
	}
	return servers
}

// isIP accepts IPv6 addresses carrying a zone suffix ("fe80::1%12").
func isIP(v string) bool {
	if i := strings.IndexByte(v, '%'); i >= 0 {
		v = v[:i]
	}
	return net.ParseIP(v) != nil
}

func hasDNSLabel(line string) bool {
	for _, l := range dnsLabels {
		if strings.Contains(line, l) {
			return true
		}
	}
	return false
}

// Columns: Admin State, State, Type, Interface Name.
func parseNetshInterfaces(out string) []string {
	var active []string
	sc := bufio.NewScanner(bytes.NewReader([]byte(out)))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		switch fields[1] {
		case "Connected", "Подключен":
			name := strings.Join(fields[3:], " ")
			active = append(active, name+" ("+fields[2]+")")
		}
	}
	return active
}
