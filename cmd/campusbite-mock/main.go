// Command campusbite-mock serves the in-memory development backend.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itsneelabh/campusbite/internal/mockbackend"
	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/telemetry"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("CAMPUSBITE_MOCK_ADDR", ":8000"), "listen address")
	flag.Parse()

	log := logger.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		Exporter:    telemetry.ExporterOTLP,
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:    true,
		ServiceName: "campusbite-mock",
	})
	if err != nil {
		log.Error("Telemetry setup failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	store := mockbackend.NewStore()
	store.Seed()

	srv := &http.Server{
		Addr:         *addr,
		Handler:      mockbackend.NewServer(store, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Mock backend listening", map[string]interface{}{
			"addr":    *addr,
			"dev_otp": mockbackend.DevOTP,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown failed", map[string]interface{}{"error": err})
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", map[string]interface{}{"error": err})
	}
	log.Info("Mock backend stopped", nil)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
