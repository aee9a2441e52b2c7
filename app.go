// Package campusbite wires the campus food-ordering client together.
//
// An App owns one configured session, the gateway client that authenticates
// with it, and the services built on top. Most programs need only:
//
//	app, err := campusbite.New(ctx, config.WithBaseURL("http://localhost:8000"))
//	if err != nil { ... }
//	defer app.Close(ctx)
//
//	flow := app.NewCheckout("chai-point")
//
// The same configuration also drives the domain blocklist checker through
// NewChecker.
package campusbite

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/itsneelabh/campusbite/pkg/blocklist"
	"github.com/itsneelabh/campusbite/pkg/checkout"
	"github.com/itsneelabh/campusbite/pkg/config"
	"github.com/itsneelabh/campusbite/pkg/gateway"
	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/memory"
	"github.com/itsneelabh/campusbite/pkg/orders"
	"github.com/itsneelabh/campusbite/pkg/session"
	"github.com/itsneelabh/campusbite/pkg/telemetry"
)

// App is a fully wired client
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Store   memory.Store
	Session *session.Session
	Client  *gateway.Client
	Orders  *orders.Service

	tracing *telemetry.Provider
}

// New builds the configuration from defaults, environment and opts, then
// wires an App from it
func New(ctx context.Context, opts ...config.Option) (*App, error) {
	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig wires an App from an already validated configuration
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewZapLogger(cfg.Logging.Level, cfg.Logging.Format)

	tracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	store, err := memory.Open(ctx, memory.Options{
		Provider:   cfg.Store.Provider,
		SQLitePath: cfg.Store.SQLitePath,
		RedisURL:   cfg.Store.RedisURL,
		Namespace:  cfg.Store.Namespace,
	})
	if err != nil {
		tracing.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Provider, err)
	}

	sess := session.New(store, log)
	client, err := gateway.New(cfg.API.BaseURL, sess,
		gateway.WithLogger(log),
		gateway.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		store.Close()
		tracing.Shutdown(ctx)
		return nil, err
	}

	log.Debug("Client ready", map[string]interface{}{
		"base_url":  cfg.API.BaseURL,
		"store":     cfg.Store.Provider,
		"telemetry": tracing.Enabled(),
	})

	return &App{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Session: sess,
		Client:  client,
		Orders:  orders.NewService(client, log),
		tracing: tracing,
	}, nil
}

// NewCheckout starts a checkout for vendorID. hooks observe every state
// transition.
func (a *App) NewCheckout(vendorID string, hooks ...checkout.TransitionHook) *checkout.Flow {
	opts := []checkout.Option{checkout.WithLogger(a.Logger)}
	for _, h := range hooks {
		opts = append(opts, checkout.WithTransitionHook(h))
	}
	return checkout.NewFlow(vendorID, a.Client, opts...)
}

// NewChecker builds the domain checker from the checker configuration.
// Report lines go to out.
func (a *App) NewChecker(out io.Writer) (*blocklist.Checker, error) {
	return NewChecker(a.Config, a.Logger, out)
}

// NewChecker builds a domain checker without the ordering client
func NewChecker(cfg *config.Config, log logger.Logger, out io.Writer) (*blocklist.Checker, error) {
	resolver, err := blocklist.NewDNSResolver(cfg.Checker.Resolver, cfg.API.Timeout)
	if err != nil {
		return nil, err
	}
	return blocklist.NewChecker(resolver, cfg.Checker.BlockedIPs,
		blocklist.WithDelay(cfg.Checker.Delay),
		blocklist.WithOutput(out),
		blocklist.WithLogger(log),
	), nil
}

// Close flushes telemetry and releases the store
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	if zl, ok := a.Logger.(*logger.ZapLogger); ok {
		// stderr sync fails on some terminals; not worth surfacing
		_ = zl.Sync()
	}
	return errors.Join(errs...)
}
