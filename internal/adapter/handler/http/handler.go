package http

import (
	"encoding/json"
	"errors"

	"entity-resolver/internal/application/port"
	"entity-resolver/internal/domain"
	"entity-resolver/internal/domain/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ResolverHandler serves the resolution API.
type ResolverHandler struct {
	resolver port.Resolver
	registry port.Registry
	networks port.NetworkService
	logger   *zap.Logger
}

// NewResolverHandler creates a new resolver handler.
func NewResolverHandler(
	resolver port.Resolver,
	registry port.Registry,
	networks port.NetworkService,
	logger *zap.Logger,
) *ResolverHandler {
	return &ResolverHandler{
		resolver: resolver,
		registry: registry,
		networks: networks,
		logger:   logger.Named("ResolverHandler"),
	}
}

// GetterView describes a getter of an entity type.
type GetterView struct {
	Field string `json:"field"`
	Kind  string `json:"kind"`
}

// EntityTypeView describes a registered entity type.
type EntityTypeView struct {
	Name    string       `json:"name"`
	Getters []GetterView `json:"getters"`
}

// NetworkView describes a registered network.
type NetworkView struct {
	Label       string           `json:"label"`
	EntityTypes []EntityTypeView `json:"entityTypes"`
}

// NetworkViews converts registered definitions into their JSON description.
func NetworkViews(defs []entity.NetworkDefinition) []NetworkView {
	views := make([]NetworkView, 0, len(defs))
	for _, def := range defs {
		view := NetworkView{Label: def.Label, EntityTypes: make([]EntityTypeView, 0, len(def.EntityTypes))}
		for _, et := range def.EntityTypes {
			etView := EntityTypeView{Name: et.Name, Getters: make([]GetterView, 0, len(et.Getters))}
			for _, g := range et.Getters {
				kind := "one"
				if g.GetMany != nil {
					kind = "many"
				}
				etView.Getters = append(etView.Getters, GetterView{Field: g.Field, Kind: kind})
			}
			view.EntityTypes = append(view.EntityTypes, etView)
		}
		views = append(views, view)
	}
	return views
}

// GetNetworks lists the registered networks with their entity types and getters.
func (h *ResolverHandler) GetNetworks(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, fasthttp.StatusOK, NetworkViews(h.registry.Networks()))
}

type resolveQuery struct {
	network, entityType, field, value string
}

func (h *ResolverHandler) parseResolveQuery(ctx *fasthttp.RequestCtx) (resolveQuery, bool) {
	args := ctx.QueryArgs()
	q := resolveQuery{
		network:    string(args.Peek("network")),
		entityType: string(args.Peek("type")),
		field:      string(args.Peek("field")),
		value:      string(args.Peek("value")),
	}
	if q.network == "" || q.entityType == "" || q.field == "" || q.value == "" {
		h.logger.Debug("Resolve request with missing parameters", zap.ByteString("query", args.QueryString()))
		h.writeError(ctx, fasthttp.StatusBadRequest, "network, type, field and value are required")
		return resolveQuery{}, false
	}
	return q, true
}

// ResolveOne resolves a single entity. A nil result is reported as 404 with a JSON null body.
func (h *ResolverHandler) ResolveOne(ctx *fasthttp.RequestCtx) {
	q, ok := h.parseResolveQuery(ctx)
	if !ok {
		return
	}
	e := h.resolver.ResolveOne(ctx, q.network, q.entityType, q.field, q.value)
	if e == nil {
		h.writeJSON(ctx, fasthttp.StatusNotFound, nil)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, e)
}

// ResolveMany resolves a list of entities. The list is empty, never null, when nothing resolves.
func (h *ResolverHandler) ResolveMany(ctx *fasthttp.RequestCtx) {
	q, ok := h.parseResolveQuery(ctx)
	if !ok {
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, h.resolver.ResolveMany(ctx, q.network, q.entityType, q.field, q.value))
}

// ResolveAssociated derives the references of the entity posted in the request body.
func (h *ResolverHandler) ResolveAssociated(ctx *fasthttp.RequestCtx) {
	var e entity.Entity
	if err := json.Unmarshal(ctx.PostBody(), &e); err != nil {
		h.logger.Debug("Invalid entity in request body", zap.Error(err))
		h.writeError(ctx, fasthttp.StatusBadRequest, "body must be an entity")
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, h.resolver.ResolveAssociated(ctx, e))
}

// RefreshNetworks re-fetches the announced networks.
func (h *ResolverHandler) RefreshNetworks(ctx *fasthttp.RequestCtx) {
	n, err := h.networks.Refresh(ctx)
	switch {
	case err == nil:
		h.writeJSON(ctx, fasthttp.StatusOK, map[string]int{"registered": n})
	case errors.Is(err, domain.ErrDynamicRegistrationDisabled):
		h.writeError(ctx, fasthttp.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRefreshInProgress):
		h.writeError(ctx, fasthttp.StatusConflict, err.Error())
	default:
		h.logger.Error("Failed to refresh networks", zap.Error(err))
		h.writeError(ctx, fasthttp.StatusBadGateway, "failed to refresh networks")
	}
}

// Health reports liveness.
func (h *ResolverHandler) Health(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("OK")
}

func (h *ResolverHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, map[string]string{"error": message})
}

func (h *ResolverHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
