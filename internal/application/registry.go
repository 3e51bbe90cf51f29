package application

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"entity-resolver/internal/application/port"
	"entity-resolver/internal/domain"
	"entity-resolver/internal/domain/entity"

	"go.uber.org/zap"
)

// Compile-time check
var _ port.Registry = (*registry)(nil)

type registeredNetwork struct {
	def   entity.NetworkDefinition
	types map[string]entity.EntityTypeDefinition
}

// snapshot is never mutated once published.
type snapshot map[string]registeredNetwork

// registry is a copy-on-write map of network label to definition. Readers load the current
// snapshot without locking; writers are serialized and publish a fresh snapshot.
type registry struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	logger  *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) port.Registry {
	r := &registry{logger: logger.Named("Registry")}
	empty := snapshot{}
	r.current.Store(&empty)
	return r
}

// AddNetwork never fails. A structurally invalid definition is still registered; the problem is logged.
func (r *registry) AddNetwork(def entity.NetworkDefinition) {
	if err := def.Validate(); err != nil {
		r.logger.Warn("Registering network with invalid definition", zap.String("network", def.Label), zap.Error(err))
	}

	entry := registeredNetwork{
		def:   def,
		types: make(map[string]entity.EntityTypeDefinition, len(def.EntityTypes)),
	}
	for _, et := range def.EntityTypes {
		entry.types[et.Name] = et
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.current.Load()
	next := make(snapshot, len(old)+1)
	for label, n := range old {
		next[label] = n
	}
	_, replaced := old[def.Label]
	next[def.Label] = entry
	r.current.Store(&next)

	r.logger.Info("Network registered",
		zap.String("network", def.Label),
		zap.Strings("entityTypes", def.EntityTypeNames()),
		zap.Bool("replaced", replaced),
	)
}

func (r *registry) Lookup(network, entityType string) (entity.EntityTypeDefinition, error) {
	n, ok := (*r.current.Load())[network]
	if !ok {
		return entity.EntityTypeDefinition{}, fmt.Errorf("%w: %q", domain.ErrNetworkNotFound, network)
	}
	et, ok := n.types[entityType]
	if !ok {
		return entity.EntityTypeDefinition{}, fmt.Errorf("%w: %q on network %q", domain.ErrEntityTypeNotFound, entityType, network)
	}
	return et, nil
}

func (r *registry) LookupGetter(def entity.EntityTypeDefinition, field string) (entity.Getter, error) {
	for _, g := range def.Getters {
		if g.Field == field {
			return g, nil
		}
	}
	return entity.Getter{}, fmt.Errorf("%w: %q on entity type %q", domain.ErrGetterNotFound, field, def.Name)
}

func (r *registry) Networks() []entity.NetworkDefinition {
	current := *r.current.Load()
	defs := make([]entity.NetworkDefinition, 0, len(current))
	for _, n := range current {
		defs = append(defs, n.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Label < defs[j].Label })
	return defs
}
