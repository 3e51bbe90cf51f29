package svm

import (
	"entity-resolver/internal/domain/entity"
)

// EntityTypes returns the SVM entity types, named with the adapter's type prefix.
func (a *Adapter) EntityTypes() []entity.EntityTypeDefinition {
	return []entity.EntityTypeDefinition{
		{
			Name: a.TypeName(entity.TypeBlock),
			Getters: []entity.Getter{
				{Field: "slot", GetOne: a.BlockBySlot},
			},
			GetAssociated: a.BlockTransactions,
		},
		{
			Name: a.TypeName(entity.TypeTransaction),
			Getters: []entity.Getter{
				{Field: "signature", GetOne: a.TransactionBySignature},
			},
			GetAssociated: a.NoAssociations,
		},
	}
}

// NetworkDefinition returns a registrable network serving only SVM entity types.
func (a *Adapter) NetworkDefinition() entity.NetworkDefinition {
	return entity.NetworkDefinition{Label: a.cfg.Label, EntityTypes: a.EntityTypes()}
}
