package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/bugrelay/common/id"
	"basegraph.app/bugrelay/common/logger"
	"basegraph.app/bugrelay/common/otel"
	"basegraph.app/bugrelay/core/config"
	"basegraph.app/bugrelay/internal/http/middleware"
	httprouter "basegraph.app/bugrelay/internal/http/router"
	"basegraph.app/bugrelay/internal/service"
)

const maxRequestBody = 2 << 20

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "bugrelay starting",
		"env", cfg.Env,
		"llm_provider", cfg.LLM.Provider,
		"tracker", cfg.Tracker.Provider)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	services, err := service.NewServices(cfg, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Fetch, analysis and filing all run inside the request.
		WriteTimeout: cfg.Crisp.Timeout + cfg.LLM.Timeout + cfg.Tracker.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second+cfg.Notifier.Timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := services.Pipeline().Drain(shutdownCtx); err != nil {
		slog.WarnContext(shutdownCtx, "conversation notes still in flight", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.BodyLimit(maxRequestBody))

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
██████╗ ██╗   ██╗ ██████╗ ██████╗ ███████╗██╗      █████╗ ██╗   ██╗
██╔══██╗██║   ██║██╔════╝ ██╔══██╗██╔════╝██║     ██╔══██╗╚██╗ ██╔╝
██████╔╝██║   ██║██║  ███╗██████╔╝█████╗  ██║     ███████║ ╚████╔╝
██╔══██╗██║   ██║██║   ██║██╔══██╗██╔══╝  ██║     ██╔══██║  ╚██╔╝
██████╔╝╚██████╔╝╚██████╔╝██║  ██║███████╗███████╗██║  ██║   ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝   ╚═╝
`
