package blocklist

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// ErrNoAddress means the answer carried no A record
var ErrNoAddress = errors.New("no IPv4 address in answer")

// Resolver returns the IPv4 addresses of a domain in answer order
type Resolver interface {
	ResolveIPv4(ctx context.Context, domain string) ([]string, error)
}

// DNSResolver queries one fixed upstream server and nothing else. The
// system resolver configuration is never consulted.
type DNSResolver struct {
	server string
	client *dns.Client
}

// NewDNSResolver targets addr, which may omit the port (53 is assumed)
func NewDNSResolver(addr string, timeout time.Duration) (*DNSResolver, error) {
	if addr == "" {
		return nil, errors.New("blocklist: resolver address is required")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "53")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSResolver{
		server: addr,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}, nil
}

// Server is the upstream address in host:port form
func (r *DNSResolver) Server() string { return r.server }

// ResolveIPv4 sends one A query. A truncated UDP answer is retried once
// over TCP, which is the same lookup rather than a second attempt.
func (r *DNSResolver) ResolveIPv4(ctx context.Context, domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err == nil && resp.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: r.client.Timeout}
		resp, _, err = tcp.ExchangeContext(ctx, msg, r.server)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query %s: %s", r.server, dns.RcodeToString[resp.Rcode])
	}

	var ips []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	if len(ips) == 0 {
		return nil, ErrNoAddress
	}
	return ips, nil
}
