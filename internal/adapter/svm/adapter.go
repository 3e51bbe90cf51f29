package svm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"entity-resolver/internal/adapter/chainutil"
	"entity-resolver/internal/domain/entity"
	domainService "entity-resolver/internal/domain/service"
	"entity-resolver/internal/pkg/apperrors"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

const (
	signatureLength             = 64
	maxSupportedTransactionVers = 0
)

// Config describes one SVM network.
type Config struct {
	Label    string
	Endpoint entity.RPCURL
	// TypePrefix is prepended to every entity type name, e.g. "SVM " when a label also serves EVM types.
	TypePrefix string
}

// Adapter resolves blocks and transactions of one SVM network.
type Adapter struct {
	cfg      Config
	endpoint string
	client   domainService.RPCClient
	boundary chainutil.Boundary
}

// NewAdapter creates a new SVM adapter.
func NewAdapter(cfg Config, client domainService.RPCClient, logger *zap.Logger) *Adapter {
	return &Adapter{
		cfg:      cfg,
		endpoint: cfg.Endpoint.String(),
		client:   client,
		boundary: chainutil.NewBoundary(logger.Named("SVMAdapter"), cfg.Label),
	}
}

// TypeName returns the entity type name as registered for this network.
func (a *Adapter) TypeName(name string) string {
	return a.cfg.TypePrefix + name
}

// BlockBySlot resolves a block by slot.
func (a *Adapter) BlockBySlot(ctx context.Context, slot string) *entity.Entity {
	record, err := a.fetchBlock(ctx, slot)
	if err != nil {
		a.boundary.Fail("BlockBySlot", slot, err)
		return nil
	}

	var height, blockTime any
	if record.BlockHeight != nil {
		height = *record.BlockHeight
	}
	if record.BlockTime != nil {
		blockTime = formatTime(*record.BlockTime)
	}

	return &entity.Entity{
		UniqueIdentifier:      record.Blockhash,
		UniqueIdentifierLabel: "Hash",
		Metadata: a.boundary.Metadata("BlockBySlot", entity.Fields{
			{Name: "Slot", Value: strings.TrimSpace(slot)},
			{Name: "Block Height", Value: height},
			{Name: "Time", Value: blockTime},
			{Name: "Parent Slot", Value: record.ParentSlot},
			{Name: "Previous Blockhash", Value: record.PreviousBlockhash},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeBlock)},
		Raw:     chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchBlock(ctx context.Context, slot string) (BlockRecord, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(slot), 10, 64)
	if err != nil {
		return BlockRecord{}, fmt.Errorf("%w: slot %q is not a decimal number", apperrors.ErrInvalidInput, slot)
	}
	result, err := a.client.Call(ctx, a.endpoint, "getBlock", []any{
		n,
		map[string]any{"transactionDetails": "signatures"},
	})
	if err != nil {
		return BlockRecord{}, err
	}
	return chainutil.DecodeJSON[BlockRecord](result)
}

// BlockTransactions derives one Transaction reference per signature of a block entity.
func (a *Adapter) BlockTransactions(_ context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[BlockRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("BlockTransactions", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(record.Signatures))
	for _, sig := range record.Signatures {
		refs = append(refs, entity.AssociatedRef{
			NetworkLabel: a.cfg.Label,
			EntityType:   a.TypeName(entity.TypeTransaction),
			FieldName:    "signature",
			FieldValue:   sig,
		})
	}
	return refs
}

// TransactionBySignature resolves a transaction by its base58 signature.
func (a *Adapter) TransactionBySignature(ctx context.Context, signature string) *entity.Entity {
	record, err := a.fetchTransaction(ctx, signature)
	if err != nil {
		a.boundary.Fail("TransactionBySignature", signature, err)
		return nil
	}

	var blockTime any
	if record.BlockTime != nil {
		blockTime = formatTime(*record.BlockTime)
	}

	return &entity.Entity{
		UniqueIdentifier:      signature,
		UniqueIdentifierLabel: "Signature",
		Metadata: a.boundary.Metadata("TransactionBySignature", entity.Fields{
			{Name: "Slot", Value: record.Slot},
			{Name: "Time", Value: blockTime},
			{Name: "Signer", Value: record.Signer()},
			{Name: "Fee", Value: record.Meta.Fee},
			{Name: "Status", Value: entity.StatusValue(record.Meta.Succeeded())},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeTransaction)},
		Raw:     chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchTransaction(ctx context.Context, signature string) (TransactionRecord, error) {
	if err := ValidateSignature(signature); err != nil {
		return TransactionRecord{}, err
	}
	result, err := a.client.Call(ctx, a.endpoint, "getTransaction", []any{
		signature,
		map[string]any{"maxSupportedTransactionVersion": maxSupportedTransactionVers},
	})
	if err != nil {
		return TransactionRecord{}, err
	}
	return chainutil.DecodeJSON[TransactionRecord](result)
}

// NoAssociations is the deriver of leaf entity types.
func (a *Adapter) NoAssociations(context.Context, entity.Entity) []entity.AssociatedRef {
	return []entity.AssociatedRef{}
}

// ValidateSignature checks that s is a base58-encoded 64-byte transaction signature.
func ValidateSignature(s string) error {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != signatureLength {
		return fmt.Errorf("%w: %q is not a base58 transaction signature", apperrors.ErrInvalidInput, s)
	}
	return nil
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC1123)
}
