package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"entity-resolver/internal/application/port"
	"entity-resolver/internal/config"
	"entity-resolver/internal/domain"
	domainRepo "entity-resolver/internal/domain/repository"
	domainService "entity-resolver/internal/domain/service"

	"go.uber.org/zap"
)

const defaultLoadTimeout = 15 * time.Second

// Compile-time check
var _ port.NetworkService = (*networkService)(nil)

// networkService implements port.NetworkService, feeding static and announced networks into the registry.
type networkService struct {
	registry        port.Registry
	catalogRepo     domainRepo.CatalogRepository
	chainConfigRepo domainRepo.ChainConfigRepository
	builder         domainService.NetworkBuilder
	logger          *zap.Logger
	cfg             config.NetworksConfig
	rootCtx         context.Context
	isRefreshing    *atomic.Bool
}

// NewNetworkService creates a new network service. chainConfigRepo may be nil, which disables
// dynamic registration.
func NewNetworkService(
	rootCtx context.Context,
	registry port.Registry,
	catalogRepo domainRepo.CatalogRepository,
	chainConfigRepo domainRepo.ChainConfigRepository,
	builder domainService.NetworkBuilder,
	logger *zap.Logger,
	cfg config.NetworksConfig,
) port.NetworkService {
	return &networkService{
		registry:        registry,
		catalogRepo:     catalogRepo,
		chainConfigRepo: chainConfigRepo,
		builder:         builder,
		logger:          logger.Named("NetworkService"),
		cfg:             cfg,
		rootCtx:         rootCtx,
		isRefreshing:    new(atomic.Bool),
	}
}

// Start registers the static catalog and the announced networks. A failing chain-config source
// is logged and does not prevent startup; the periodic refresh retries it.
func (s *networkService) Start(ctx context.Context) error {
	catalog, err := s.catalogRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load network catalog: %w", err)
	}
	for _, def := range s.builder.Catalog(catalog) {
		s.registry.AddNetwork(def)
	}

	if s.chainConfigRepo == nil {
		s.logger.Info("Dynamic network registration disabled")
		return nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout())
	defer cancel()
	if _, err := s.Refresh(loadCtx); err != nil {
		s.logger.Warn("Initial chain-config fetch failed", zap.Error(err))
	}

	go s.startBackgroundRefresher()
	return nil
}

// Refresh fetches the announced networks and registers each of them. Only one refresh runs at a time.
func (s *networkService) Refresh(ctx context.Context) (int, error) {
	if s.chainConfigRepo == nil {
		return 0, domain.ErrDynamicRegistrationDisabled
	}
	if !s.isRefreshing.CompareAndSwap(false, true) {
		s.logger.Debug("Refresh already in progress, skipping")
		return 0, domain.ErrRefreshInProgress
	}
	defer s.isRefreshing.Store(false)

	remotes, err := s.chainConfigRepo.GetRemoteNetworks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch remote networks: %w", err)
	}

	defs := s.builder.Remotes(remotes)
	for _, def := range defs {
		s.registry.AddNetwork(def)
	}
	s.logger.Info("Remote networks registered",
		zap.Int("announced", len(remotes)), zap.Int("registered", len(defs)),
	)
	return len(defs), nil
}

func (s *networkService) loadTimeout() time.Duration {
	if timeout := s.cfg.GetLoadTimeout(); timeout > 0 {
		return timeout
	}
	return defaultLoadTimeout
}

// startBackgroundRefresher periodically re-fetches the announced networks until the root context is done.
func (s *networkService) startBackgroundRefresher() {
	interval := s.cfg.GetRefreshInterval()
	if interval <= 0 {
		s.logger.Info("Background refresh disabled (interval <= 0)")
		return
	}

	s.logger.Info("Starting background refresh", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(s.rootCtx, s.loadTimeout())
			_, err := s.Refresh(ctx)
			cancel()
			switch {
			case err == nil, errors.Is(err, domain.ErrRefreshInProgress):
			case s.rootCtx.Err() != nil:
				s.logger.Warn("Periodic refresh cancelled due to application shutdown")
			default:
				s.logger.Error("Periodic refresh failed", zap.Error(err))
			}

		case <-s.rootCtx.Done():
			s.logger.Info("Background refresh stopping due to context cancellation.")
			return
		}
	}
}
