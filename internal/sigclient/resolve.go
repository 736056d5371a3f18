package sigclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Queried directly when the system resolver fails, which happens on some
// captive or VPN-managed networks.
var publicDNS = []string{
	"1.1.1.1",
	"1.0.0.1",
	"8.8.8.8",
	"8.8.4.4",
	"9.9.9.9",
	"208.67.222.222",
}

const (
	localLookupTimeout  = time.Second
	publicLookupTimeout = 2 * time.Second
)

var errNoAddress = errors.New("no addresses found")

// dialContext resolves addr with lookupHost and dials the first address.
func dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("dns lookup failed: %w", err)
	}
	var d net.Dialer
	return d.DialContext(ctx, network, net.JoinHostPort(ip, port))
}

// lookupHost tries the system resolver and falls back to racing the public
// resolvers. IPv4 results are preferred.
func lookupHost(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	lctx, cancel := context.WithTimeout(ctx, localLookupTimeout)
	ip, err := resolveWith(lctx, net.DefaultResolver, host)
	cancel()
	if err == nil {
		return ip, nil
	}
	return racePublic(ctx, host, publicDNS)
}

func racePublic(ctx context.Context, host string, servers []string) (string, error) {
	type result struct {
		ip  string
		err error
	}

	ctx, cancel := context.WithTimeout(ctx, publicLookupTimeout)
	defer cancel()

	results := make(chan result, len(servers))
	for _, server := range servers {
		go func() {
			ip, err := resolveWith(ctx, pinnedResolver(server), host)
			results <- result{ip, err}
		}()
	}

	var lastErr error = errNoAddress
	for range servers {
		select {
		case res := <-results:
			if res.err == nil {
				return res.ip, nil
			}
			lastErr = res.err
		case <-ctx.Done():
			return "", fmt.Errorf("resolve %s: %w", host, ctx.Err())
		}
	}
	return "", fmt.Errorf("resolve %s: all %d public resolvers failed: %w", host, len(servers), lastErr)
}

// pinnedResolver sends every query to server on port 53.
func pinnedResolver(server string) *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
		},
	}
}

func resolveWith(ctx context.Context, r *net.Resolver, host string) (string, error) {
	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", errNoAddress
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a, nil
		}
	}
	return addrs[0], nil
}
