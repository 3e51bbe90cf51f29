package bootstrap

import (
	"context"

	"entity-resolver/internal/adapter/networks"
	"entity-resolver/internal/adapter/rpc"
	"entity-resolver/internal/adapter/storage/catalog"
	"entity-resolver/internal/adapter/storage/chainconfig"
	"entity-resolver/internal/application"
	"entity-resolver/internal/application/port"
	"entity-resolver/internal/config"
	domainRepo "entity-resolver/internal/domain/repository"

	"go.uber.org/zap"
)

// App holds the wired application services.
type App struct {
	Registry port.Registry
	Resolver port.Resolver
	Networks port.NetworkService
}

// New wires the application. Networks are registered only once Networks.Start is called.
// The periodic refresh, when enabled, runs until rootCtx is done.
func New(rootCtx context.Context, cfg *config.Config, logger *zap.Logger) *App {
	rpcClient := rpc.NewClient(cfg.RPC, logger)
	builder := networks.NewBuilder(rpcClient, cfg.EVM, logger)

	catalogRepo := catalog.NewRepository(cfg.Networks.CatalogPath, logger)
	var chainConfigRepo domainRepo.ChainConfigRepository
	if cfg.Networks.AddNetworkEndpoint != "" {
		chainConfigRepo = chainconfig.NewRepository(cfg.Networks, logger)
	}

	registry := application.NewRegistry(logger)
	return &App{
		Registry: registry,
		Resolver: application.NewResolver(registry, logger),
		Networks: application.NewNetworkService(rootCtx, registry, catalogRepo, chainConfigRepo, builder, logger, cfg.Networks),
	}
}
