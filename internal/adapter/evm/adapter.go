package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"entity-resolver/internal/adapter/chainutil"
	"entity-resolver/internal/domain/entity"
	domainService "entity-resolver/internal/domain/service"
	"entity-resolver/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

const (
	contractCreatedEvent = "Contract Created"
	anonymousEvent       = "Anonymous"
	weiPerEther          = 1e18
)

// Config describes one EVM network.
type Config struct {
	Label    string
	Endpoint entity.RPCURL
	// Provider and ChainID key the chain-data service, which serves address history.
	Provider string
	ChainID  string
	// TypePrefix is prepended to every entity type name, e.g. "EVM " when a label also serves SVM types.
	TypePrefix string
	// NativeSymbol is shown next to balances, e.g. "ETH".
	NativeSymbol       string
	SignatureLookupURL string
	ChainDataService   string
}

// Adapter resolves blocks, transactions, logs and addresses of one EVM network.
type Adapter struct {
	cfg      Config
	endpoint string
	client   domainService.RPCClient
	logger   *zap.Logger
	boundary chainutil.Boundary
}

// NewAdapter creates a new EVM adapter.
func NewAdapter(cfg Config, client domainService.RPCClient, logger *zap.Logger) *Adapter {
	named := logger.Named("EVMAdapter")
	return &Adapter{
		cfg:      cfg,
		endpoint: cfg.Endpoint.String(),
		client:   client,
		logger:   named,
		boundary: chainutil.NewBoundary(named, cfg.Label),
	}
}

// TypeName returns the entity type name as registered for this network.
func (a *Adapter) TypeName(name string) string {
	return a.cfg.TypePrefix + name
}

// BlockByHeight resolves a block by decimal height.
func (a *Adapter) BlockByHeight(ctx context.Context, height string) *entity.Entity {
	n, err := strconv.ParseUint(strings.TrimSpace(height), 10, 64)
	if err != nil {
		a.boundary.Fail("BlockByHeight", height, fmt.Errorf("%w: height %q is not a decimal number", apperrors.ErrInvalidInput, height))
		return nil
	}
	return a.block(ctx, "BlockByHeight", height, "eth_getBlockByNumber", hexutil.EncodeUint64(n))
}

// BlockByHash resolves a block by hash, with or without the 0x prefix.
func (a *Adapter) BlockByHash(ctx context.Context, hash string) *entity.Entity {
	prefixed, err := normalizeHash(hash)
	if err != nil {
		a.boundary.Fail("BlockByHash", hash, err)
		return nil
	}
	return a.block(ctx, "BlockByHash", hash, "eth_getBlockByHash", prefixed)
}

func (a *Adapter) block(ctx context.Context, op, value, method, param string) *entity.Entity {
	record, err := call[BlockRecord](ctx, a, method, []any{param, false})
	if err != nil {
		a.boundary.Fail(op, value, err)
		return nil
	}

	id := value
	if record.Hash != nil {
		id = *record.Hash
	}
	var height any
	if record.Number != nil {
		height = decimal(*record.Number)
	}

	return &entity.Entity{
		UniqueIdentifier:      id,
		UniqueIdentifierLabel: "Hash",
		Metadata: a.boundary.Metadata(op, entity.Fields{
			{Name: "Height", Value: height},
			{Name: "Timestamp", Value: formatTimestamp(record.Timestamp)},
			{Name: "Gas Used", Value: decimal(record.GasUsed)},
			{Name: "Gas Limit", Value: decimal(record.GasLimit)},
			{Name: "Size", Value: formatSize(record.Size)},
			{Name: "Fee Recipient", Value: record.Miner},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeBlock)},
		Raw:     chainutil.EncodeRaw(record),
	}
}

// BlockTransactions derives one Transaction reference per transaction hash of a block entity.
func (a *Adapter) BlockTransactions(_ context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[BlockRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("BlockTransactions", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(record.Transactions))
	for _, hash := range record.Transactions {
		refs = append(refs, a.ref(entity.TypeTransaction, "hash", hash))
	}
	return refs
}

// TransactionByHash resolves a transaction and its receipt.
func (a *Adapter) TransactionByHash(ctx context.Context, hash string) *entity.Entity {
	record, err := a.fetchTransaction(ctx, hash)
	if err != nil {
		a.boundary.Fail("TransactionByHash", hash, err)
		return nil
	}

	tx, receipt := record.Transaction, record.Receipt
	var height, to any
	if tx.BlockNumber != nil {
		height = decimal(*tx.BlockNumber)
	}
	if tx.To != nil {
		to = *tx.To
	}
	status, _ := receipt.Status.Uint64()

	return &entity.Entity{
		UniqueIdentifier:      tx.Hash,
		UniqueIdentifierLabel: "Hash",
		Metadata: a.boundary.Metadata("TransactionByHash", entity.Fields{
			{Name: "Height", Value: height},
			{Name: "From", Value: tx.From},
			{Name: "To", Value: to},
			{Name: "Gas Price", Value: formatEther(tx.GasPrice)},
			{Name: "Gas Used", Value: decimal(receipt.GasUsed)},
			{Name: "Status", Value: entity.StatusValue(int64(status))},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeTransaction)},
		Raw:     chainutil.EncodeRaw(record),
	}
}

// fetchTransaction issues eth_getTransactionByHash and then eth_getTransactionReceipt.
func (a *Adapter) fetchTransaction(ctx context.Context, hash string) (TransactionRecord, error) {
	prefixed, err := normalizeHash(hash)
	if err != nil {
		return TransactionRecord{}, err
	}
	tx, err := call[Transaction](ctx, a, "eth_getTransactionByHash", []any{prefixed})
	if err != nil {
		return TransactionRecord{}, err
	}
	receipt, err := call[Receipt](ctx, a, "eth_getTransactionReceipt", []any{prefixed})
	if err != nil {
		return TransactionRecord{}, err
	}
	return TransactionRecord{Transaction: tx, Receipt: receipt}, nil
}

// TransactionLogs derives the contract-creation reference, when the transaction deployed a
// contract, followed by one Log reference per receipt log.
func (a *Adapter) TransactionLogs(_ context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[TransactionRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("TransactionLogs", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}

	hash := record.Transaction.Hash
	refs := make([]entity.AssociatedRef, 0, len(record.Receipt.Logs)+1)
	if contract, ok := record.Receipt.CreatedContract(); ok {
		refs = append(refs, a.ref(entity.TypeLog, "path", hash+"/"+contract))
	}
	for i := range record.Receipt.Logs {
		refs = append(refs, a.ref(entity.TypeLog, "path", fmt.Sprintf("%s/%d", hash, i)))
	}
	return refs
}

// LogByPath resolves "<txHash>/<logIndex>" to a log, or "<txHash>/<address>" to the contract
// the transaction created.
func (a *Adapter) LogByPath(ctx context.Context, path string) *entity.Entity {
	e, err := a.logByPath(ctx, path)
	if err != nil {
		a.boundary.Fail("LogByPath", path, err)
		return nil
	}
	return e
}

func (a *Adapter) logByPath(ctx context.Context, path string) (*entity.Entity, error) {
	hash, segment, err := chainutil.SplitPath(path)
	if err != nil {
		return nil, err
	}
	prefixed, err := normalizeHash(hash)
	if err != nil {
		return nil, err
	}

	var index int
	isAddress := common.IsHexAddress(segment)
	if !isAddress {
		if index, err = chainutil.ParseIndex(segment); err != nil {
			return nil, err
		}
	}

	receipt, err := call[Receipt](ctx, a, "eth_getTransactionReceipt", []any{prefixed})
	if err != nil {
		return nil, err
	}

	if isAddress {
		contract, ok := receipt.CreatedContract()
		if !ok {
			return nil, fmt.Errorf("%w: transaction %s created no contract", apperrors.ErrInvalidInput, hash)
		}
		return &entity.Entity{
			UniqueIdentifier:      contract,
			UniqueIdentifierLabel: "Address",
			Metadata: a.boundary.Metadata("LogByPath", entity.Fields{
				{Name: "Event", Value: contractCreatedEvent},
				{Name: "Transaction", Value: receipt.TransactionHash},
			}),
			Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeContract)},
			Raw:     chainutil.EncodeRaw(AddressRecord{Address: contract}),
		}, nil
	}

	if index >= len(receipt.Logs) {
		return nil, fmt.Errorf("%w: log index %d out of range, receipt has %d logs",
			apperrors.ErrInvalidInput, index, len(receipt.Logs),
		)
	}
	log := receipt.Logs[index]
	record := LogRecord{
		Transaction: receipt.TransactionHash,
		Index:       index,
		Event:       a.eventName(ctx, log.Topics),
		Log:         log,
	}

	return &entity.Entity{
		UniqueIdentifier:      record.Event,
		UniqueIdentifierLabel: "Event",
		Metadata: a.boundary.Metadata("LogByPath", entity.Fields{
			{Name: "Address", Value: log.Address},
			{Name: "Topics", Value: log.Topics},
			{Name: "Data", Value: log.Data},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(entity.TypeLog)},
		Raw:     chainutil.EncodeRaw(record),
	}, nil
}

// eventName resolves topic0 through the signature database, falling back to the topic itself.
func (a *Adapter) eventName(ctx context.Context, topics []string) string {
	if len(topics) == 0 {
		return anonymousEvent
	}
	topic := topics[0]
	if a.cfg.SignatureLookupURL == "" {
		return topic
	}

	lookupURL := a.cfg.SignatureLookupURL + "?event=" + url.QueryEscape(topic) + "&filter=true"
	resp, err := a.client.Get(ctx, lookupURL)
	if err == nil && !resp.OK() {
		err = fmt.Errorf("%w: signature lookup returned http status %d", apperrors.ErrBadResponse, resp.StatusCode)
	}
	if err != nil {
		a.logger.Debug("Event signature lookup failed", zap.String("topic", topic), zap.Error(err))
		return topic
	}

	lookup, err := chainutil.DecodeJSON[signatureLookup](resp.Body)
	if err != nil {
		a.logger.Debug("Event signature lookup returned invalid body", zap.String("topic", topic), zap.Error(err))
		return topic
	}
	if matches := lookup.Result.Event[topic]; len(matches) > 0 && matches[0].Name != "" {
		return matches[0].Name
	}
	return topic
}

// AccountByAddress resolves an externally owned account.
func (a *Adapter) AccountByAddress(ctx context.Context, address string) *entity.Entity {
	return a.address(ctx, "AccountByAddress", entity.TypeAccount, address)
}

// ContractByAddress resolves a contract account.
func (a *Adapter) ContractByAddress(ctx context.Context, address string) *entity.Entity {
	return a.address(ctx, "ContractByAddress", entity.TypeContract, address)
}

func (a *Adapter) address(ctx context.Context, op, typeName, address string) *entity.Entity {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		a.boundary.Fail(op, address, fmt.Errorf("%w: %q is not a hex address", apperrors.ErrInvalidInput, address))
		return nil
	}

	record := AddressRecord{Address: address}
	var balance any
	if wei, err := a.fetchBalance(ctx, address); err != nil {
		a.logger.Debug("Balance unavailable", zap.String("network", a.cfg.Label), zap.String("address", address), zap.Error(err))
	} else {
		record.Balance = wei.String()
		balance = strings.TrimSpace(formatEther(chainutil.Number(record.Balance)) + " " + a.cfg.NativeSymbol)
	}

	return &entity.Entity{
		UniqueIdentifier:      address,
		UniqueIdentifierLabel: "Address",
		Metadata:              a.boundary.Metadata(op, entity.Fields{{Name: "Balance", Value: balance}}),
		Context:               entity.Context{Network: a.cfg.Label, EntityTypeName: a.TypeName(typeName)},
		Raw:                   chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchBalance(ctx context.Context, address string) (*big.Int, error) {
	result, err := a.client.Call(ctx, a.endpoint, "eth_getBalance", []any{address, "latest"})
	if err != nil {
		return nil, err
	}
	var quantity chainutil.Number
	if err := json.Unmarshal(result, &quantity); err != nil {
		return nil, fmt.Errorf("%w: eth_getBalance: %v", apperrors.ErrSchemaValidation, err)
	}
	wei, err := bigOf(quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_getBalance: %v", apperrors.ErrSchemaValidation, err)
	}
	return wei, nil
}

// AddressTransactions derives the transaction history of an account or contract from the chain-data service.
func (a *Adapter) AddressTransactions(ctx context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[AddressRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("AddressTransactions", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}
	hashes, err := a.fetchAddressHistory(ctx, record.Address)
	if err != nil {
		a.boundary.Fail("AddressTransactions", record.Address, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(hashes))
	for _, hash := range hashes {
		refs = append(refs, a.ref(entity.TypeTransaction, "hash", hash))
	}
	return refs
}

func (a *Adapter) fetchAddressHistory(ctx context.Context, address string) ([]string, error) {
	if a.cfg.ChainDataService == "" || a.cfg.Provider == "" || a.cfg.ChainID == "" {
		return nil, fmt.Errorf("%w: no chain-data service configured for %s", apperrors.ErrInvalidInput, a.cfg.Label)
	}

	serviceURL := strings.TrimRight(a.cfg.ChainDataService, "/") + "/" +
		url.PathEscape(a.cfg.Provider) + "/" + url.PathEscape(a.cfg.ChainID)
	resp, err := a.client.PostJSON(ctx, serviceURL, map[string]any{
		"method": "mc_getTransactionsByAddress",
		"params": []string{address},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: chain-data service returned http status %d", apperrors.ErrBadResponse, resp.StatusCode)
	}

	txs, err := chainutil.DecodeJSON[chainDataTxs](resp.Body)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(txs.Result.Txs))
	for _, tx := range txs.Result.Txs {
		hashes = append(hashes, tx.Hash)
	}
	return hashes, nil
}

// NoAssociations is the deriver of leaf entity types.
func (a *Adapter) NoAssociations(context.Context, entity.Entity) []entity.AssociatedRef {
	return []entity.AssociatedRef{}
}

func (a *Adapter) ref(entityType, field, value string) entity.AssociatedRef {
	return entity.AssociatedRef{
		NetworkLabel: a.cfg.Label,
		EntityType:   a.TypeName(entityType),
		FieldName:    field,
		FieldValue:   value,
	}
}

// call performs a JSON-RPC call and validates its result as T.
func call[T any, PT interface {
	*T
	chainutil.Validator
}](ctx context.Context, a *Adapter, method string, params []any) (T, error) {
	var zero T
	result, err := a.client.Call(ctx, a.endpoint, method, params)
	if err != nil {
		return zero, err
	}
	out, err := chainutil.DecodeJSON[T, PT](result)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}

// normalizeHash returns a 0x-prefixed 32-byte hex hash.
func normalizeHash(hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	if !strings.HasPrefix(hash, "0x") && !strings.HasPrefix(hash, "0X") {
		hash = "0x" + hash
	}
	b, err := hexutil.Decode("0x" + hash[2:])
	if err != nil || len(b) != common.HashLength {
		return "", fmt.Errorf("%w: %q is not a 32-byte hex hash", apperrors.ErrInvalidInput, hash)
	}
	return "0x" + hash[2:], nil
}

// decimal renders a hex or decimal quantity in decimal.
func decimal(n chainutil.Number) string {
	v, err := bigOf(n)
	if err != nil {
		return n.String()
	}
	return v.String()
}

// formatEther renders a wei quantity in ether units with no trailing zeros.
func formatEther(n chainutil.Number) string {
	wei, err := bigOf(n)
	if err != nil {
		return n.String()
	}
	s := new(big.Rat).SetFrac(wei, big.NewInt(weiPerEther)).FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatTimestamp(n chainutil.Number) string {
	sec, err := n.Uint64()
	if err != nil {
		return n.String()
	}
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC1123)
}

func formatSize(n chainutil.Number) string {
	size := decimal(n)
	if size == "1" {
		return size + " byte"
	}
	return size + " bytes"
}
