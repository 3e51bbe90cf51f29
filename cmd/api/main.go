package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	deliveryHTTP "entity-resolver/internal/adapter/delivery/http"
	handlerHTTP "entity-resolver/internal/adapter/handler/http"
	"entity-resolver/internal/bootstrap"
	"entity-resolver/internal/config"
	"entity-resolver/internal/logger"
)

func main() {
	// --- Configuration ---
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// --- Logger ---
	appLogger, err := logger.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.Any("config", cfg.Logger))

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Dependency Injection (Manual) ---
	appLogger.Info("Initializing dependencies...")
	app := bootstrap.New(rootCtx, cfg, appLogger)
	if err := app.Networks.Start(rootCtx); err != nil {
		appLogger.Fatal("Failed to register networks", zap.Error(err))
	}

	h := handlerHTTP.NewResolverHandler(app.Resolver, app.Registry, app.Networks, appLogger)

	// --- HTTP Router & Server ---
	r := router.New()
	deliveryHTTP.RegisterRoutes(r, h, appLogger)

	server := &fasthttp.Server{
		Handler: deliveryHTTP.RequestLogger(r.Handler, appLogger),
		Name:    cfg.App.Name,
	}

	go func() {
		<-rootCtx.Done()
		appLogger.Info("Shutting down HTTP server")
		if err := server.Shutdown(); err != nil {
			appLogger.Error("Failed to shut down HTTP server", zap.Error(err))
		}
	}()

	serverAddr := ":" + cfg.Server.Port
	appLogger.Info("Starting HTTP server", zap.String("address", serverAddr))
	if err := server.ListenAndServe(serverAddr); err != nil {
		appLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
