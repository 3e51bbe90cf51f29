package repository

import (
	"context"

	"entity-resolver/internal/domain/entity"
)

// CatalogRepository provides the statically configured networks.
type CatalogRepository interface {
	// Load reads the network catalog.
	Load(ctx context.Context) (entity.Catalog, error)
}
