// Command mock-backend runs the deterministic fake analysis service for
// local development and end-to-end testing.
//
// Endpoints are served under /calls with the same paths as the real
// service. Point a client at http://localhost:<port>/calls.
//
// Configuration is read through pkg/config:
//
//	ALCHEMY_CONFIG          - Config file path
//	ALCHEMY_MOCK_PORT       - Listen port (default: 8090)
//	ALCHEMY_MOCK_API_KEY    - Accepted API key (default: any 40 character key)
//	ALCHEMY_METRICS_ENABLED - Serve Prometheus metrics (default: true)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rhuss/alchemy/pkg/alchemy/alchemytest"
	"github.com/rhuss/alchemy/pkg/config"
	"github.com/rhuss/alchemy/pkg/debug"
	"github.com/rhuss/alchemy/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mock backend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	debug.Init(debug.Settings{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})

	svc := alchemytest.NewService(cfg.Mock.APIKey)
	port := strconv.Itoa(cfg.Mock.Port)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newHandler(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock backend starting", "port", port,
			"base_url", "http://localhost:"+port+alchemytest.PathPrefix,
			"metrics", cfg.Observability.Metrics.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("mock backend shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// newHandler wires the fake service, health check and metrics endpoint.
func newHandler(cfg *config.Config, svc *alchemytest.Service) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(alchemytest.PathPrefix+"/", observability.MetricsMiddleware(svc.PathLabel, svc))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, observability.Handler())
	}
	return mux
}
