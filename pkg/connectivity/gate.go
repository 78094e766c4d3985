// Package connectivity decides whether outbound network access is usable
// before any provider is contacted. Checks only inspect local state.
package connectivity

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Gate answers whether the device currently has a usable network.
type Gate interface {
	Reachable() bool
}

// Static is a Gate with a fixed answer.
type Static bool

// Reachable returns the fixed answer.
func (s Static) Reachable() bool { return bool(s) }

// Func adapts a function to Gate.
type Func func() bool

// Reachable calls f.
func (f Func) Reachable() bool { return f() }

// Interface is the subset of interface state the NetGate looks at.
type Interface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// InterfaceLister returns the host's network interfaces.
type InterfaceLister func() ([]Interface, error)

// NetGate inspects host interfaces and, where available, the default route.
type NetGate struct {
	list       InterfaceLister
	routeFile  string
	route6File string
	logger     *slog.Logger
}

// NetOption configures a NetGate.
type NetOption func(*NetGate)

// WithLister replaces the interface lister.
func WithLister(l InterfaceLister) NetOption {
	return func(g *NetGate) { g.list = l }
}

// WithRouteFile sets the IPv4 routing table checked for a default route.
// An empty path skips it. With both tables empty there is no route check.
func WithRouteFile(path string) NetOption {
	return func(g *NetGate) { g.routeFile = path }
}

// WithIPv6RouteFile sets the IPv6 routing table checked for a ::/0 route.
// An empty path skips it.
func WithIPv6RouteFile(path string) NetOption {
	return func(g *NetGate) { g.route6File = path }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) NetOption {
	return func(g *NetGate) { g.logger = l }
}

// NewNetGate creates a gate backed by the host network stack.
func NewNetGate(opts ...NetOption) *NetGate {
	g := &NetGate{
		list:   SystemInterfaces,
		logger: slog.Default(),
	}
	if runtime.GOOS == "linux" {
		g.routeFile = "/proc/net/route"
		g.route6File = "/proc/net/ipv6_route"
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "connectivity.gate")
	return g
}

// Reachable returns true when an up, non-loopback interface carries a global
// unicast address and a default route exists. Any inspection error is false.
func (g *NetGate) Reachable() bool {
	ifaces, err := g.list()
	if err != nil {
		g.logger.Warn("interface listing failed", "error", err)
		return false
	}

	usable := ""
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if hasGlobalUnicast(iface.Addrs) {
			usable = iface.Name
			break
		}
	}
	if usable == "" {
		g.logger.Debug("no usable interface")
		return false
	}

	if g.routeFile == "" && g.route6File == "" {
		return true
	}
	if g.hasRoute(g.routeFile, HasDefaultRoute) || g.hasRoute(g.route6File, HasIPv6DefaultRoute) {
		return true
	}
	g.logger.Debug("no default route", "interface", usable)
	return false
}

func (g *NetGate) hasRoute(path string, parse func(io.Reader) (bool, error)) bool {
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		g.logger.Warn("route table unreadable", "path", path, "error", err)
		return false
	}
	defer f.Close()

	ok, err := parse(f)
	if err != nil {
		g.logger.Warn("route table parse failed", "path", path, "error", err)
		return false
	}
	return ok
}

// SystemInterfaces lists interfaces through the net package.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, err
		}
		out = append(out, Interface{Name: iface.Name, Flags: iface.Flags, Addrs: addrs})
	}
	return out, nil
}

// HasDefaultRoute scans a /proc/net/route table for a 0.0.0.0 destination
// on an interface that is up.
func HasDefaultRoute(r io.Reader) (bool, error) {
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		// Iface Destination Gateway Flags ...; flag 0x1 is RTF_UP.
		if fields[1] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil {
			continue
		}
		if flags&0x1 != 0 {
			return true, nil
		}
	}
	return false, sc.Err()
}

// HasIPv6DefaultRoute scans a /proc/net/ipv6_route table for an up ::/0
// route that is not a reject route on loopback.
func HasIPv6DefaultRoute(r io.Reader) (bool, error) {
	const (
		rtfUp     = 0x1
		rtfReject = 0x200
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		// dst dst_len src src_len next_hop metric refcnt use flags iface
		fields := strings.Fields(sc.Text())
		if len(fields) < 10 {
			continue
		}
		if strings.Trim(fields[0], "0") != "" || fields[1] != "00" {
			continue
		}
		if fields[9] == "lo" {
			continue
		}
		flags, err := strconv.ParseUint(fields[8], 16, 32)
		if err != nil {
			continue
		}
		if flags&rtfUp != 0 && flags&rtfReject == 0 {
			return true, nil
		}
	}
	return false, sc.Err()
}

func hasGlobalUnicast(addrs []net.Addr) bool {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip != nil && ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}
