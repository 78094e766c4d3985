package connectivity

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-sensesafe/internal/log"
)

const routeHeader = "Iface\tDestination\tGateway \tFlags\tRefCnt\tUse\tMetric\tMask\t\tMTU\tWindow\tIRTT\n"

func ipNet(s string) net.Addr {
	ip, n, _ := net.ParseCIDR(s)
	n.IP = ip
	return n
}

func wlan() Interface {
	return Interface{Name: "wlan0", Flags: net.FlagUp | net.FlagBroadcast, Addrs: []net.Addr{ipNet("192.168.1.20/24")}}
}

func loopback() Interface {
	return Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback, Addrs: []net.Addr{ipNet("127.0.0.1/8")}}
}

func writeRoutes(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "route")
	require.NoError(t, os.WriteFile(path, []byte(routeHeader+body), 0o600))
	return path
}

func TestNetGate(t *testing.T) {
	defaultRoute := "wlan0\t00000000\t0101A8C0\t0003\t0\t0\t600\t00000000\t0\t0\t0\n"

	tests := []struct {
		name   string
		ifaces []Interface
		err    error
		routes string
		want   bool
	}{
		{"up_with_default_route", []Interface{loopback(), wlan()}, nil, defaultRoute, true},
		{"loopback_only", []Interface{loopback()}, nil, defaultRoute, false},
		{"interface_down", []Interface{{Name: "eth0", Addrs: []net.Addr{ipNet("10.0.0.2/8")}}}, nil, defaultRoute, false},
		{"link_local_only", []Interface{{Name: "eth0", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("169.254.3.4/16")}}}, nil, defaultRoute, false},
		{"no_default_route", []Interface{wlan()}, nil, "wlan0\t0001A8C0\t00000000\t0001\t0\t0\t600\t00FFFFFF\t0\t0\t0\n", false},
		{"lister_error", nil, errors.New("permission denied"), defaultRoute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNetGate(
				WithLister(func() ([]Interface, error) { return tt.ifaces, tt.err }),
				WithRouteFile(writeRoutes(t, tt.routes)),
				WithIPv6RouteFile(""),
				WithLogger(log.Discard()),
			)
			assert.Equal(t, tt.want, g.Reachable())
		})
	}
}

func TestNetGateMissingRouteFileFailsClosed(t *testing.T) {
	g := NewNetGate(
		WithLister(func() ([]Interface, error) { return []Interface{wlan()}, nil }),
		WithRouteFile(filepath.Join(t.TempDir(), "missing")),
		WithIPv6RouteFile(filepath.Join(t.TempDir(), "missing6")),
		WithLogger(log.Discard()),
	)
	assert.False(t, g.Reachable())
}

func TestNetGateWithoutRouteCheck(t *testing.T) {
	g := NewNetGate(
		WithLister(func() ([]Interface, error) { return []Interface{wlan()}, nil }),
		WithRouteFile(""),
		WithIPv6RouteFile(""),
		WithLogger(log.Discard()),
	)
	assert.True(t, g.Reachable())
}

func TestHasDefaultRoute(t *testing.T) {
	ok, err := HasDefaultRoute(strings.NewReader(routeHeader + "eth0\t00000000\t0100000A\t0002\t0\t0\t0\t00000000\t0\t0\t0\n"))
	require.NoError(t, err)
	assert.False(t, ok, "route without RTF_UP")

	ok, err = HasDefaultRoute(strings.NewReader(routeHeader))
	require.NoError(t, err)
	assert.False(t, ok)
}

const (
	v6Default = "00000000000000000000000000000000 00 00000000000000000000000000000000 00 fe800000000000000000000000000001 00000400 00000001 00000000 00000003 wlan0\n"
	v6Reject  = "00000000000000000000000000000000 00 00000000000000000000000000000000 00 00000000000000000000000000000000 ffffffff 00000001 00000000 00200200 lo\n"
	v6Subnet  = "20010db8000000000000000000000000 40 00000000000000000000000000000000 00 00000000000000000000000000000000 00000100 00000001 00000000 00000001 wlan0\n"
)

func TestHasIPv6DefaultRoute(t *testing.T) {
	ok, err := HasIPv6DefaultRoute(strings.NewReader(v6Subnet + v6Default))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasIPv6DefaultRoute(strings.NewReader(v6Subnet + v6Reject))
	require.NoError(t, err)
	assert.False(t, ok, "loopback reject route")
}

func TestNetGateIPv6Only(t *testing.T) {
	v6iface := Interface{Name: "wlan0", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("2001:db8::20/64")}}
	dir := t.TempDir()
	v6 := filepath.Join(dir, "ipv6_route")
	require.NoError(t, os.WriteFile(v6, []byte(v6Subnet+v6Default), 0o600))
	v6none := filepath.Join(dir, "ipv6_route_none")
	require.NoError(t, os.WriteFile(v6none, []byte(v6Subnet+v6Reject), 0o600))

	newGate := func(route6 string) *NetGate {
		return NewNetGate(
			WithLister(func() ([]Interface, error) { return []Interface{v6iface}, nil }),
			WithRouteFile(writeRoutes(t, "")),
			WithIPv6RouteFile(route6),
			WithLogger(log.Discard()),
		)
	}
	assert.True(t, newGate(v6).Reachable())
	assert.False(t, newGate(v6none).Reachable())
	assert.False(t, newGate(filepath.Join(dir, "missing")).Reachable())
}

func TestStaticAndFunc(t *testing.T) {
	assert.True(t, Static(true).Reachable())
	assert.False(t, Static(false).Reachable())

	calls := 0
	g := Func(func() bool { calls++; return true })
	assert.True(t, g.Reachable())
	assert.Equal(t, 1, calls)
}
