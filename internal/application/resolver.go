package application

import (
	"context"

	"entity-resolver/internal/application/port"
	"entity-resolver/internal/domain/entity"
	"entity-resolver/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Compile-time check
var _ port.Resolver = (*resolver)(nil)

type resolver struct {
	registry port.Registry
	logger   *zap.Logger
}

// NewResolver creates a resolver dispatching to the registry's definitions.
func NewResolver(registry port.Registry, logger *zap.Logger) port.Resolver {
	return &resolver{
		registry: registry,
		logger:   logger.Named("Resolver"),
	}
}

// ResolveOne returns nil for an unknown triple, for a getter that resolves many, and on any getter failure.
func (r *resolver) ResolveOne(ctx context.Context, network, entityType, field, value string) (result *entity.Entity) {
	getter, ok := r.getter(network, entityType, field)
	if !ok {
		return nil
	}
	if getter.GetOne == nil {
		r.logger.Debug("Getter resolves a list, not a single entity",
			zap.String("network", network), zap.String("entityType", entityType), zap.String("field", field))
		return nil
	}

	defer r.recoverGetter("ResolveOne", network, entityType, func() { result = nil })
	return getter.GetOne(ctx, value)
}

// ResolveMany returns an empty slice for an unknown triple, for a single-entity getter, and on any getter failure.
func (r *resolver) ResolveMany(ctx context.Context, network, entityType, field, value string) (result []entity.Entity) {
	getter, ok := r.getter(network, entityType, field)
	if !ok {
		return []entity.Entity{}
	}
	if getter.GetMany == nil {
		r.logger.Debug("Getter resolves a single entity, not a list",
			zap.String("network", network), zap.String("entityType", entityType), zap.String("field", field))
		return []entity.Entity{}
	}

	defer r.recoverGetter("ResolveMany", network, entityType, func() { result = []entity.Entity{} })
	if entities := getter.GetMany(ctx, value); entities != nil {
		return entities
	}
	return []entity.Entity{}
}

// ResolveAssociated runs the deriver registered for the entity's network and type.
func (r *resolver) ResolveAssociated(ctx context.Context, e entity.Entity) (result []entity.AssociatedRef) {
	def, err := r.registry.Lookup(e.Context.Network, e.Context.EntityTypeName)
	if err != nil {
		r.logLookupFailure(err)
		return []entity.AssociatedRef{}
	}
	if def.GetAssociated == nil {
		return []entity.AssociatedRef{}
	}

	defer r.recoverGetter("ResolveAssociated", e.Context.Network, e.Context.EntityTypeName,
		func() { result = []entity.AssociatedRef{} })
	if refs := def.GetAssociated(ctx, e); refs != nil {
		return refs
	}
	return []entity.AssociatedRef{}
}

func (r *resolver) getter(network, entityType, field string) (entity.Getter, bool) {
	def, err := r.registry.Lookup(network, entityType)
	if err != nil {
		r.logLookupFailure(err)
		return entity.Getter{}, false
	}
	getter, err := r.registry.LookupGetter(def, field)
	if err != nil {
		r.logLookupFailure(err)
		return entity.Getter{}, false
	}
	return getter, true
}

func (r *resolver) logLookupFailure(err error) {
	r.logger.Debug("Lookup not found in registry", zap.String("errorKind", apperrors.Kind(err)), zap.Error(err))
}

// recoverGetter converts a panicking getter or deriver into an empty result.
func (r *resolver) recoverGetter(op, network, entityType string, reset func()) {
	p := recover()
	if p == nil {
		return
	}
	r.logger.Error("Recovered from panic in resolution function",
		zap.String("op", op),
		zap.String("network", network),
		zap.String("entityType", entityType),
		zap.String("errorKind", "internal"),
		zap.Any("panic", p),
		zap.StackSkip("stack", 2),
	)
	reset()
}
