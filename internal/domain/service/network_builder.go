package service

import "entity-resolver/internal/domain/entity"

// NetworkBuilder turns network descriptors into registrable definitions.
type NetworkBuilder interface {
	// Catalog builds every statically configured network. Networks that cannot be built are skipped.
	Catalog(c entity.Catalog) []entity.NetworkDefinition
	// Remotes builds announced networks. Networks that cannot be built are skipped.
	Remotes(remotes []entity.RemoteNetwork) []entity.NetworkDefinition
}
