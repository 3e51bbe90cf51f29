package entity

import (
	"context"
	"fmt"
)

// Entity type names shared by the chain-family adapters.
const (
	TypeBlock       = "Block"
	TypeTransaction = "Transaction"
	TypeAccount     = "Account"
	TypeMessage     = "Message"
	TypeLog         = "Log"
	TypeContract    = "Contract"
)

// OneFunc resolves a single entity. It returns nil on any failure.
type OneFunc func(ctx context.Context, value string) *Entity

// ManyFunc resolves a list of entities. It returns an empty slice on any failure.
type ManyFunc func(ctx context.Context, value string) []Entity

// AssociatedFunc derives references to related entities from a resolved entity.
// It returns an empty slice on any failure.
type AssociatedFunc func(ctx context.Context, e Entity) []AssociatedRef

// Getter is a named single-field resolution function. Exactly one of GetOne and GetMany is set.
type Getter struct {
	Field   string
	GetOne  OneFunc
	GetMany ManyFunc
}

// EntityTypeDefinition describes one entity type of a network.
type EntityTypeDefinition struct {
	Name          string
	Getters       []Getter
	GetAssociated AssociatedFunc
}

// NetworkDefinition is the set of entity types served for one network label.
type NetworkDefinition struct {
	Label       string
	EntityTypes []EntityTypeDefinition
}

// Validate checks the structural rules of a definition: unique entity-type names,
// unique getter fields per type, and exactly one resolution function per getter.
func (d NetworkDefinition) Validate() error {
	if d.Label == "" {
		return fmt.Errorf("network definition has empty label")
	}
	seenTypes := make(map[string]struct{}, len(d.EntityTypes))
	for _, et := range d.EntityTypes {
		if et.Name == "" {
			return fmt.Errorf("network %q: entity type with empty name", d.Label)
		}
		if _, dup := seenTypes[et.Name]; dup {
			return fmt.Errorf("network %q: duplicate entity type %q", d.Label, et.Name)
		}
		seenTypes[et.Name] = struct{}{}

		seenFields := make(map[string]struct{}, len(et.Getters))
		for _, g := range et.Getters {
			if _, dup := seenFields[g.Field]; dup {
				return fmt.Errorf("network %q, type %q: duplicate getter field %q", d.Label, et.Name, g.Field)
			}
			seenFields[g.Field] = struct{}{}
			if (g.GetOne == nil) == (g.GetMany == nil) {
				return fmt.Errorf("network %q, type %q: getter %q must set exactly one of GetOne/GetMany",
					d.Label, et.Name, g.Field)
			}
		}
	}
	return nil
}

// EntityTypeNames lists the entity type names in declaration order.
func (d NetworkDefinition) EntityTypeNames() []string {
	names := make([]string, len(d.EntityTypes))
	for i, et := range d.EntityTypes {
		names[i] = et.Name
	}
	return names
}

// RemoteNetwork describes a network announced by the chain-config service or static config.
type RemoteNetwork struct {
	Provider  string
	Name      string
	ID        string
	Endpoints RemoteEndpoints
	// NativeSymbol is optional and only shown next to EVM balances.
	NativeSymbol string
}

// RemoteEndpoints lists the RPC endpoints of a remote network per chain family.
type RemoteEndpoints struct {
	EVM RPCURL
	SVM RPCURL
}

// Families returns the chain families the descriptor has endpoints for.
func (r RemoteNetwork) Families() []ChainFamily {
	var families []ChainFamily
	if r.Endpoints.EVM != "" {
		families = append(families, FamilyEVM)
	}
	if r.Endpoints.SVM != "" {
		families = append(families, FamilySVM)
	}
	return families
}

// CosmosNetwork describes a statically configured Cosmos/Tendermint network.
type CosmosNetwork struct {
	Label         string
	RPC           RPCURL
	AccountPrefix string
	Denom         string
	DisplayDenom  string
	HistoryParams string
}

// Catalog is the statically configured set of networks.
type Catalog struct {
	Cosmos  []CosmosNetwork
	Remotes []RemoteNetwork
}
