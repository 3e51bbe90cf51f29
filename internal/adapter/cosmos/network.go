package cosmos

import (
	"entity-resolver/internal/domain/entity"
)

// NetworkDefinition wires the adapter's getters and derivers into a registrable network.
// The Account type is only offered when a denomination is configured.
func (a *Adapter) NetworkDefinition() entity.NetworkDefinition {
	types := []entity.EntityTypeDefinition{
		{
			Name: entity.TypeBlock,
			Getters: []entity.Getter{
				{Field: "height", GetOne: a.BlockByHeight},
				{Field: "hash", GetOne: a.BlockByHash},
			},
			GetAssociated: a.BlockTransactions,
		},
		{
			Name: entity.TypeTransaction,
			Getters: []entity.Getter{
				{Field: "hash", GetOne: a.TransactionByHash},
				{Field: "height", GetMany: a.TransactionsByHeight},
				{Field: "address", GetMany: a.TransactionsByAddress},
			},
			GetAssociated: a.TransactionMessages,
		},
		{
			Name: entity.TypeMessage,
			Getters: []entity.Getter{
				{Field: "path", GetOne: a.MessageByPath},
			},
			GetAssociated: a.NoAssociations,
		},
	}

	if a.AccountsEnabled() {
		types = append(types, entity.EntityTypeDefinition{
			Name: entity.TypeAccount,
			Getters: []entity.Getter{
				{Field: "address", GetOne: a.AccountByAddress},
			},
			GetAssociated: a.AccountTransactions,
		})
	}

	return entity.NetworkDefinition{Label: a.cfg.Label, EntityTypes: types}
}
