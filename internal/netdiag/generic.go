package netdiag

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// Generic uses the Go net package and resolv.conf. It serves platforms
// without a supported network tool.
type Generic struct {
	ResolvConf string
}

func (g *Generic) DNSServers(_ context.Context) ([]string, error) {
	f, err := os.Open(g.ResolvConf)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", g.ResolvConf, err)
	}
	defer f.Close()
	return parseResolvConf(f)
}

func (g *Generic) ActiveInterfaces(_ context.Context) ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	var active []string
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := ifc.Addrs()
		if len(addrs) == 0 {
			continue
		}
		parts := make([]string, 0, len(addrs))
		for _, a := range addrs {
			parts = append(parts, a.String())
		}
		active = append(active, ifc.Name+" ("+strings.Join(parts, ", ")+")")
	}
	return active, nil
}

func parseResolvConf(r io.Reader) ([]string, error) {
	var servers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers, sc.Err()
}
