package repository

import (
	"context"

	"entity-resolver/internal/domain/entity"
)

// ChainConfigRepository provides the remotely announced networks.
type ChainConfigRepository interface {
	// GetRemoteNetworks retrieves the network descriptors from the chain-config source.
	GetRemoteNetworks(ctx context.Context) ([]entity.RemoteNetwork, error)
}
