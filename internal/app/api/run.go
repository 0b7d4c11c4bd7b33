package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderingserver "github.com/Apurer/b2b-ordering-api/go"
	"github.com/Apurer/b2b-ordering-api/internal/app"
	ordersworkflows "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/b2b-ordering-api/internal/platform/observability"
)

const serviceName = "b2b-ordering-api"

// Run boots the ordering HTTP API with observability, repositories, and
// workflows wired. It returns once ctx is cancelled and the server drained.
func Run(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	container, err := app.NewContainer(ctx, cfg, serviceName, instruments)
	if err != nil {
		return err
	}
	defer container.Close()

	var orderWorkflows orderports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(container.Orders, container.Replenishment, logger)
	if temporalClient, err := app.ConnectTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := orderingserver.ApiHandleFunctions{
		AccountAPI:    orderingserver.NewAccountAPI(container.Accounts),
		CatalogAPI:    orderingserver.NewCatalogAPI(container.Catalog),
		OrderAPI:      orderingserver.NewOrderAPI(container.Orders, orderWorkflows),
		Authenticator: container.Accounts,
	}
	if cfg.Environment != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := orderingserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Ordering API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Ordering API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Ordering API shutting down")
	return server.Shutdown(shutdownCtx)
}
