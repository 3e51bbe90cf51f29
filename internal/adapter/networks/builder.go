package networks

import (
	"fmt"

	"entity-resolver/internal/adapter/cosmos"
	"entity-resolver/internal/adapter/evm"
	"entity-resolver/internal/adapter/svm"
	"entity-resolver/internal/config"
	"entity-resolver/internal/domain/entity"
	domainService "entity-resolver/internal/domain/service"

	"go.uber.org/zap"
)

// Type prefixes used when one label serves both the EVM and the SVM family.
const (
	EVMTypePrefix = "EVM "
	SVMTypePrefix = "SVM "
)

// Builder turns configured network descriptors into registrable network definitions.
type Builder struct {
	client domainService.RPCClient
	evmCfg config.EVMConfig
	logger *zap.Logger
}

// NewBuilder creates a new network definition builder.
func NewBuilder(client domainService.RPCClient, evmCfg config.EVMConfig, logger *zap.Logger) *Builder {
	return &Builder{
		client: client,
		evmCfg: evmCfg,
		logger: logger,
	}
}

// Cosmos builds the definition of a Cosmos/Tendermint network.
func (b *Builder) Cosmos(n entity.CosmosNetwork) entity.NetworkDefinition {
	adapter := cosmos.NewAdapter(cosmos.Config{
		Label:         n.Label,
		Endpoint:      n.RPC,
		AccountPrefix: n.AccountPrefix,
		Denom:         n.Denom,
		DisplayDenom:  n.DisplayDenom,
		HistoryParams: n.HistoryParams,
	}, b.client, b.logger)
	return adapter.NetworkDefinition()
}

// Remote builds the definition of an announced network. A network with both an EVM and an SVM
// endpoint yields one definition whose entity type names carry the family prefix.
func (b *Builder) Remote(n entity.RemoteNetwork) (entity.NetworkDefinition, error) {
	combined := len(n.Families()) > 1
	def := entity.NetworkDefinition{Label: n.Name}

	if n.Endpoints.EVM != "" {
		prefix := ""
		if combined {
			prefix = EVMTypePrefix
		}
		adapter := evm.NewAdapter(evm.Config{
			Label:              n.Name,
			Endpoint:           n.Endpoints.EVM,
			Provider:           n.Provider,
			ChainID:            n.ID,
			TypePrefix:         prefix,
			NativeSymbol:       n.NativeSymbol,
			SignatureLookupURL: b.evmCfg.SignatureLookupURL,
			ChainDataService:   b.evmCfg.ChainDataService,
		}, b.client, b.logger)
		def.EntityTypes = append(def.EntityTypes, adapter.EntityTypes()...)
	}

	if n.Endpoints.SVM != "" {
		prefix := ""
		if combined {
			prefix = SVMTypePrefix
		}
		adapter := svm.NewAdapter(svm.Config{
			Label:      n.Name,
			Endpoint:   n.Endpoints.SVM,
			TypePrefix: prefix,
		}, b.client, b.logger)
		def.EntityTypes = append(def.EntityTypes, adapter.EntityTypes()...)
	}

	if len(def.EntityTypes) == 0 {
		return entity.NetworkDefinition{}, fmt.Errorf("network %q has no evm or svm endpoint", n.Name)
	}
	if err := def.Validate(); err != nil {
		return entity.NetworkDefinition{}, err
	}
	return def, nil
}

// Catalog builds the definitions of every network in the catalog, skipping the ones that cannot be built.
func (b *Builder) Catalog(c entity.Catalog) []entity.NetworkDefinition {
	defs := make([]entity.NetworkDefinition, 0, len(c.Cosmos)+len(c.Remotes))
	for _, n := range c.Cosmos {
		defs = append(defs, b.Cosmos(n))
	}
	defs = append(defs, b.Remotes(c.Remotes)...)
	return defs
}

// Remotes builds the definitions of announced networks, skipping the ones that cannot be built.
func (b *Builder) Remotes(remotes []entity.RemoteNetwork) []entity.NetworkDefinition {
	defs := make([]entity.NetworkDefinition, 0, len(remotes))
	for _, n := range remotes {
		def, err := b.Remote(n)
		if err != nil {
			b.logger.Warn("Skipping remote network", zap.String("network", n.Name), zap.Error(err))
			continue
		}
		defs = append(defs, def)
	}
	return defs
}
