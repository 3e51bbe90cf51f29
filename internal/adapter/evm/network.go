package evm

import (
	"entity-resolver/internal/domain/entity"
)

// EntityTypes returns the EVM entity types, named with the adapter's type prefix.
func (a *Adapter) EntityTypes() []entity.EntityTypeDefinition {
	return []entity.EntityTypeDefinition{
		{
			Name: a.TypeName(entity.TypeBlock),
			Getters: []entity.Getter{
				{Field: "height", GetOne: a.BlockByHeight},
				{Field: "hash", GetOne: a.BlockByHash},
			},
			GetAssociated: a.BlockTransactions,
		},
		{
			Name: a.TypeName(entity.TypeTransaction),
			Getters: []entity.Getter{
				{Field: "hash", GetOne: a.TransactionByHash},
			},
			GetAssociated: a.TransactionLogs,
		},
		{
			Name: a.TypeName(entity.TypeLog),
			Getters: []entity.Getter{
				{Field: "path", GetOne: a.LogByPath},
			},
			GetAssociated: a.NoAssociations,
		},
		{
			Name: a.TypeName(entity.TypeAccount),
			Getters: []entity.Getter{
				{Field: "address", GetOne: a.AccountByAddress},
			},
			GetAssociated: a.AddressTransactions,
		},
		{
			Name: a.TypeName(entity.TypeContract),
			Getters: []entity.Getter{
				{Field: "address", GetOne: a.ContractByAddress},
			},
			GetAssociated: a.AddressTransactions,
		},
	}
}

// NetworkDefinition returns a registrable network serving only EVM entity types.
func (a *Adapter) NetworkDefinition() entity.NetworkDefinition {
	return entity.NetworkDefinition{Label: a.cfg.Label, EntityTypes: a.EntityTypes()}
}
