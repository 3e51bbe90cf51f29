package port

import (
	"context"

	"entity-resolver/internal/domain/entity"
)

// Registry holds the network definitions served by the resolver.
type Registry interface {
	// AddNetwork registers def under its label, replacing any previous definition with that label.
	AddNetwork(def entity.NetworkDefinition)

	// Lookup returns the entity type definition registered for a network label and type name.
	Lookup(network, entityType string) (entity.EntityTypeDefinition, error)

	// LookupGetter returns the getter declared for field by the entity type.
	LookupGetter(def entity.EntityTypeDefinition, field string) (entity.Getter, error)

	// Networks returns the registered definitions sorted by label.
	Networks() []entity.NetworkDefinition
}

// Resolver dispatches resolution requests to the registered getters and derivers.
// None of its operations fail: unknown lookups and upstream faults yield nil or an empty slice.
type Resolver interface {
	ResolveOne(ctx context.Context, network, entityType, field, value string) *entity.Entity
	ResolveMany(ctx context.Context, network, entityType, field, value string) []entity.Entity
	ResolveAssociated(ctx context.Context, e entity.Entity) []entity.AssociatedRef
}

// NetworkService registers the configured networks and keeps the announced ones up to date.
type NetworkService interface {
	// Start registers the static catalog, then the announced networks, and starts the periodic refresh.
	Start(ctx context.Context) error

	// Refresh fetches the announced networks and registers them. It returns the number registered.
	Refresh(ctx context.Context) (int, error)
}
