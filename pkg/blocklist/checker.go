// Package blocklist checks domains against a static list of blocked IPv4
// addresses.
//
// Each domain is resolved once, in list order, against a single upstream
// resolver. Only the first A record is compared. Lookups are paced by a
// fixed delay and a failed lookup is reported and skipped.
package blocklist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/itsneelabh/campusbite/pkg/logger"
)

// Result is the outcome for one domain. IP is empty when Err is set.
type Result struct {
	Domain  string
	IP      string
	Blocked bool
	Err     error
}

// LoadDomains reads a JSON array of domain names
func LoadDomains(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domains: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse domains %s: %w", path, err)
	}

	domains := make([]string, 0, len(raw))
	for _, d := range raw {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains, nil
}

// Set is a fixed set of blocked addresses
type Set map[string]struct{}

// NewSet builds a Set from ips
func NewSet(ips []string) Set {
	s := make(Set, len(ips))
	for _, ip := range ips {
		s[strings.TrimSpace(ip)] = struct{}{}
	}
	return s
}

// Contains reports whether ip is blocked
func (s Set) Contains(ip string) bool {
	_, ok := s[ip]
	return ok
}

// Option configures a Checker
type Option func(*Checker)

// WithDelay sets the pause between lookups
func WithDelay(d time.Duration) Option {
	return func(c *Checker) { c.delay = d }
}

// WithOutput sets where the report lines are written
func WithOutput(w io.Writer) Option {
	return func(c *Checker) { c.out = w }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// Checker runs the sequential lookup loop
type Checker struct {
	resolver Resolver
	blocked  Set
	delay    time.Duration
	out      io.Writer
	logger   logger.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewChecker creates a Checker that reports to stdout with a one second delay
func NewChecker(resolver Resolver, blocked []string, opts ...Option) *Checker {
	c := &Checker{
		resolver: resolver,
		blocked:  NewSet(blocked),
		delay:    time.Second,
		out:      os.Stdout,
		logger:   logger.NewNopLogger(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every domain in order. It stops early only when ctx is done,
// returning the results gathered so far.
func (c *Checker) Run(ctx context.Context, domains []string) []Result {
	fmt.Fprintln(c.out, "Starting domain checker bot...")

	results := make([]Result, 0, len(domains))
	for i, domain := range domains {
		if i > 0 && c.delay > 0 {
			if err := c.sleep(ctx, c.delay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		results = append(results, c.Check(ctx, domain))
	}

	if err := ctx.Err(); err != nil {
		c.logger.Warn("Domain check interrupted", map[string]interface{}{
			"checked": len(results),
			"total":   len(domains),
			"error":   err,
		})
	}

	fmt.Fprintln(c.out, "Domain checking completed.")
	return results
}

// Check resolves one domain and reports it
func (c *Checker) Check(ctx context.Context, domain string) Result {
	res := Result{Domain: domain}

	ips, err := c.resolver.ResolveIPv4(ctx, domain)
	if err == nil && len(ips) == 0 {
		err = ErrNoAddress
	}
	if err != nil {
		res.Err = err
		fmt.Fprintf(c.out, "Error resolving %s: %s\n", domain, err)
		c.logger.Debug("Resolution failed", map[string]interface{}{"domain": domain, "error": err})
		return res
	}

	res.IP = ips[0]
	res.Blocked = c.blocked.Contains(res.IP)

	fmt.Fprintf(c.out, "Domain: %s, IP: %s\n", domain, res.IP)
	if res.Blocked {
		fmt.Fprintf(c.out, "NOTICE: Domain %s is blocked (IP: %s)\n", domain, res.IP)
		c.logger.Info("Blocked domain", map[string]interface{}{"domain": domain, "ip": res.IP})
	} else {
		fmt.Fprintf(c.out, "Domain %s is not blocked\n", domain)
	}
	return res
}

// Summary counts results by outcome
func Summary(results []Result) (blocked, passed, failed int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Blocked:
			blocked++
		default:
			passed++
		}
	}
	return blocked, passed, failed
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
