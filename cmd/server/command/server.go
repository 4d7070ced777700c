package command

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/sms-engine/internal/api"
	"github.com/ricirt/sms-engine/internal/metrics"
	"github.com/ricirt/sms-engine/internal/service"
)

type Server struct {
	App *App
}

func (cmd Server) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.main(c.Context())
		},
	}
}

func (cmd Server) main(ctx context.Context) error {
	cfg, logger, err := cmd.App.load(os.Stdout)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onDispatched, onGatewayError := m.DispatchHooks()
	svc := newService(cfg, logger, service.MetricHooks{
		OnDispatched:   onDispatched,
		OnGatewayError: onGatewayError,
	})

	// ---- HTTP server ----
	router := api.NewRouter(svc, m, reg, cfg.HTTP, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("gateway", cfg.Gateway.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown ----
	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	// Stop accepting new requests and let in-flight dispatches finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		return errors.Wrap(err, "shutdown")
	}

	logger.Info("server stopped cleanly")
	return nil
}
