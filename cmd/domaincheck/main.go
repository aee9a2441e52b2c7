// Command domaincheck resolves a list of domains against one DNS server and
// reports which resolve to a blocked address.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itsneelabh/campusbite"
	"github.com/itsneelabh/campusbite/pkg/blocklist"
	"github.com/itsneelabh/campusbite/pkg/config"
	"github.com/itsneelabh/campusbite/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("domaincheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		domainsFile = fs.String("domains", "", "JSON array of domains (default domains.json)")
		resolver    = fs.String("resolver", "", "DNS server to query (default 8.8.8.8)")
		delay       = fs.Duration("delay", -1, "pause between lookups (default 1s)")
		configFile  = fs.String("config", "", "YAML or JSON config file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *domainsFile != "" {
		opts = append(opts, config.WithDomainsFile(*domainsFile))
	}
	if *resolver != "" {
		opts = append(opts, config.WithResolver(*resolver))
	}
	if *delay >= 0 {
		opts = append(opts, config.WithCheckDelay(*delay))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return err
	}

	log := logger.NewZapLogger(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	domains, err := blocklist.LoadDomains(cfg.Checker.DomainsFile)
	if err != nil {
		return err
	}

	checker, err := campusbite.NewChecker(cfg, log, stdout)
	if err != nil {
		return err
	}

	start := time.Now()
	results := checker.Run(ctx, domains)
	blocked, passed, failed := blocklist.Summary(results)
	log.Info("Domain check finished", map[string]interface{}{
		"resolver":    cfg.Checker.Resolver,
		"domains":     len(domains),
		"checked":     len(results),
		"blocked":     blocked,
		"not_blocked": passed,
		"failed":      failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
