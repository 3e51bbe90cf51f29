package cosmos

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"entity-resolver/internal/adapter/chainutil"
	"entity-resolver/internal/domain/entity"
	domainService "entity-resolver/internal/domain/service"
	"entity-resolver/internal/pkg/apperrors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config describes one Cosmos/Tendermint network.
type Config struct {
	Label    string
	Endpoint entity.RPCURL
	// AccountPrefix is the bech32 prefix accepted by the Account getter, e.g. "dym".
	AccountPrefix string
	// Denom is the base denomination queried for balances, e.g. "udym". Empty disables accounts.
	Denom string
	// DisplayDenom is the human unit shown next to balances, e.g. "DYM".
	DisplayDenom string
	// HistoryParams are extra tx_search query parameters for address history, e.g. "per_page=100".
	HistoryParams string
}

// Adapter resolves blocks, transactions, messages and accounts of one Cosmos/Tendermint network.
type Adapter struct {
	cfg      Config
	base     string
	client   domainService.RPCClient
	logger   *zap.Logger
	boundary chainutil.Boundary
	address  *regexp.Regexp
}

// NewAdapter creates a new Cosmos adapter.
func NewAdapter(cfg Config, client domainService.RPCClient, logger *zap.Logger) *Adapter {
	named := logger.Named("CosmosAdapter")
	address := regexp.MustCompile(`^\w+$`)
	if cfg.AccountPrefix != "" {
		address = regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.AccountPrefix) + `\w{39}$`)
	}
	return &Adapter{
		cfg:      cfg,
		base:     cfg.Endpoint.String(),
		client:   client,
		logger:   named,
		boundary: chainutil.NewBoundary(named, cfg.Label),
		address:  address,
	}
}

// Label returns the network label.
func (a *Adapter) Label() string {
	return a.cfg.Label
}

// AccountsEnabled reports whether the network has a denomination configured for balance queries.
func (a *Adapter) AccountsEnabled() bool {
	return a.cfg.Denom != ""
}

// BlockByHeight resolves a block by height.
func (a *Adapter) BlockByHeight(ctx context.Context, height string) *entity.Entity {
	return a.block(ctx, "BlockByHeight", "/block?height=", height)
}

// BlockByHash resolves a block by hash.
func (a *Adapter) BlockByHash(ctx context.Context, hash string) *entity.Entity {
	return a.block(ctx, "BlockByHash", "/block_by_hash?hash=", hash)
}

func (a *Adapter) block(ctx context.Context, op, path, value string) *entity.Entity {
	record, err := a.fetchBlock(ctx, path, value)
	if err != nil {
		a.boundary.Fail(op, value, err)
		return nil
	}

	header := record.Block.Header
	fields := entity.Fields{
		{Name: "Chain Id", Value: header.ChainID},
		{Name: "Height", Value: header.Height.String()},
		{Name: "Time", Value: header.Time},
	}
	if size := record.Block.Data.SquareSize; size != nil {
		fields = append(fields, entity.Field{Name: "Square Size", Value: size.String()})
	}
	fields = append(fields, entity.Field{Name: "Proposer", Value: header.ProposerAddress})

	return &entity.Entity{
		UniqueIdentifier:      record.BlockID.Hash,
		UniqueIdentifierLabel: "Hash",
		Metadata:              a.boundary.Metadata(op, fields),
		Context:               entity.Context{Network: a.cfg.Label, EntityTypeName: entity.TypeBlock},
		Raw:                   chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchBlock(ctx context.Context, path, value string) (BlockRecord, error) {
	if strings.TrimSpace(value) == "" {
		return BlockRecord{}, fmt.Errorf("%w: empty block identifier", apperrors.ErrInvalidInput)
	}
	body, err := a.get(ctx, path+url.QueryEscape(strings.ToUpper(value)))
	if err != nil {
		return BlockRecord{}, err
	}
	return decodeResult[BlockRecord](body)
}

// BlockTransactions derives one Transaction reference per raw tx of a block entity.
func (a *Adapter) BlockTransactions(_ context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[BlockRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("BlockTransactions", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(record.Block.Data.Txs))
	for i, tx := range record.Block.Data.Txs {
		hash, err := TxHash(tx)
		if err != nil {
			a.logger.Debug("Skipping undecodable block tx",
				zap.String("block", e.UniqueIdentifier),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		refs = append(refs, a.ref(entity.TypeTransaction, "hash", hash))
	}
	return refs
}

// TransactionByHash resolves a transaction by hash.
func (a *Adapter) TransactionByHash(ctx context.Context, hash string) *entity.Entity {
	record, err := a.fetchTx(ctx, hash)
	if err != nil {
		a.boundary.Fail("TransactionByHash", hash, err)
		return nil
	}
	e := a.txEntity("TransactionByHash", record)
	return &e
}

func (a *Adapter) fetchTx(ctx context.Context, hash string) (TxRecord, error) {
	if strings.TrimSpace(hash) == "" {
		return TxRecord{}, fmt.Errorf("%w: empty transaction hash", apperrors.ErrInvalidInput)
	}
	body, err := a.get(ctx, "/tx?hash="+url.QueryEscape(strings.ToUpper(hash)))
	if err != nil {
		return TxRecord{}, err
	}
	return decodeResult[TxRecord](body)
}

// TransactionsByHeight resolves every transaction included at a height.
func (a *Adapter) TransactionsByHeight(ctx context.Context, height string) []entity.Entity {
	if _, err := strconv.ParseUint(height, 10, 64); err != nil {
		a.boundary.Fail("TransactionsByHeight", height,
			fmt.Errorf("%w: height %q is not a decimal number", apperrors.ErrInvalidInput, height))
		return []entity.Entity{}
	}

	body, err := a.get(ctx, "/tx_search?query="+url.QueryEscape(`"tx.height=`+height+`"`))
	if err != nil {
		a.boundary.Fail("TransactionsByHeight", height, err)
		return []entity.Entity{}
	}
	result, err := decodeResult[txSearchResult](body)
	if err != nil {
		a.boundary.Fail("TransactionsByHeight", height, err)
		return []entity.Entity{}
	}
	return a.txEntities("TransactionsByHeight", result.Txs)
}

// TransactionsByAddress resolves the transactions sent or received by an address, newest first.
func (a *Adapter) TransactionsByAddress(ctx context.Context, address string) []entity.Entity {
	txs, err := a.fetchHistory(ctx, address)
	if err != nil {
		a.boundary.Fail("TransactionsByAddress", address, err)
		return []entity.Entity{}
	}
	return a.txEntities("TransactionsByAddress", txs)
}

// fetchHistory runs the sent and received searches concurrently and merges them by height descending.
// Only the sent search's HTTP status fails the lookup; the received search only has to decode.
func (a *Adapter) fetchHistory(ctx context.Context, address string) ([]TxRecord, error) {
	if !a.address.MatchString(address) {
		return nil, fmt.Errorf("%w: %q is not an account address of %s",
			apperrors.ErrInvalidInput, address, a.cfg.Label,
		)
	}

	var sent, received txSearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := a.client.Get(gctx, a.historyURL("message.sender", address))
		if err != nil {
			return err
		}
		if !resp.OK() {
			return fmt.Errorf("%w: sent search returned http status %d", apperrors.ErrBadResponse, resp.StatusCode)
		}
		sent, err = decodeResult[txSearchResult](resp.Body)
		return err
	})
	g.Go(func() error {
		resp, err := a.client.Get(gctx, a.historyURL("transfer.recipient", address))
		if err != nil {
			return err
		}
		received, err = decodeResult[txSearchResult](resp.Body)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]TxRecord, 0, len(sent.Txs)+len(received.Txs))
	merged = append(merged, sent.Txs...)
	merged = append(merged, received.Txs...)
	sort.SliceStable(merged, func(i, j int) bool {
		hi, _ := merged[i].Height.Uint64()
		hj, _ := merged[j].Height.Uint64()
		return hi > hj
	})
	return merged, nil
}

func (a *Adapter) historyURL(event, address string) string {
	u := a.base + "/tx_search?query=" + url.QueryEscape(`"`+event+`='`+address+`'"`)
	if a.cfg.HistoryParams != "" {
		u += "&" + strings.TrimPrefix(a.cfg.HistoryParams, "&")
	}
	return u
}

func (a *Adapter) txEntities(op string, txs []TxRecord) []entity.Entity {
	entities := make([]entity.Entity, 0, len(txs))
	for _, tx := range txs {
		entities = append(entities, a.txEntity(op, tx))
	}
	return entities
}

func (a *Adapter) txEntity(op string, record TxRecord) entity.Entity {
	return entity.Entity{
		UniqueIdentifier:      record.Hash,
		UniqueIdentifierLabel: "Hash",
		Metadata: a.boundary.Metadata(op, entity.Fields{
			{Name: "Height", Value: record.Height.String()},
			{Name: "Index", Value: strconv.Itoa(record.Index)},
			{Name: "Status", Value: entity.StatusValue(record.TxResult.Code == 0)},
			{Name: "Gas (used/wanted)", Value: record.TxResult.GasUsed.String() + "/" + record.TxResult.GasWanted.String()},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: entity.TypeTransaction},
		Raw:     chainutil.EncodeRaw(record),
	}
}

// TransactionMessages derives one Message reference per message of a transaction entity.
func (a *Adapter) TransactionMessages(_ context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[TxRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("TransactionMessages", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}
	messages, err := DecodeMessages(record.Tx)
	if err != nil {
		a.boundary.Fail("TransactionMessages", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(messages))
	for i := range messages {
		refs = append(refs, a.ref(entity.TypeMessage, "path", fmt.Sprintf("%s/%d", e.UniqueIdentifier, i)))
	}
	return refs
}

// MessageByPath resolves "<txHash>/<index>" to one message of a transaction.
func (a *Adapter) MessageByPath(ctx context.Context, path string) *entity.Entity {
	record, err := a.fetchMessage(ctx, path)
	if err != nil {
		a.boundary.Fail("MessageByPath", path, err)
		return nil
	}

	fields := entity.Fields{
		{Name: "Type", Value: record.TypeURL},
		{Name: "Transaction", Value: record.Transaction},
		{Name: "Index", Value: record.Index},
	}
	if send := record.Send; send != nil {
		amounts := make([]string, 0, len(send.Amount))
		for _, c := range send.Amount {
			amounts = append(amounts, c.String())
		}
		fields = append(fields,
			entity.Field{Name: "From", Value: send.From},
			entity.Field{Name: "To", Value: send.To},
			entity.Field{Name: "Amount", Value: strings.Join(amounts, ", ")},
		)
	}

	return &entity.Entity{
		UniqueIdentifier:      path,
		UniqueIdentifierLabel: "Path",
		Metadata:              a.boundary.Metadata("MessageByPath", fields),
		Context:               entity.Context{Network: a.cfg.Label, EntityTypeName: entity.TypeMessage},
		Raw:                   chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchMessage(ctx context.Context, path string) (MessageRecord, error) {
	hash, segment, err := chainutil.SplitPath(path)
	if err != nil {
		return MessageRecord{}, err
	}
	index, err := chainutil.ParseIndex(segment)
	if err != nil {
		return MessageRecord{}, err
	}

	tx, err := a.fetchTx(ctx, hash)
	if err != nil {
		return MessageRecord{}, err
	}
	messages, err := DecodeMessages(tx.Tx)
	if err != nil {
		return MessageRecord{}, err
	}
	if index >= len(messages) {
		return MessageRecord{}, fmt.Errorf("%w: message index %d out of range, tx has %d messages",
			apperrors.ErrInvalidInput, index, len(messages),
		)
	}
	return MessageRecord{Transaction: tx.Hash, Index: index, Message: messages[index]}, nil
}

// AccountByAddress resolves an account and its spendable balance in the network's denomination.
func (a *Adapter) AccountByAddress(ctx context.Context, address string) *entity.Entity {
	record, err := a.fetchAccount(ctx, address)
	if err != nil {
		a.boundary.Fail("AccountByAddress", address, err)
		return nil
	}

	return &entity.Entity{
		UniqueIdentifier:      record.Address,
		UniqueIdentifierLabel: "Address",
		Metadata: a.boundary.Metadata("AccountByAddress", entity.Fields{
			{Name: "Spendable", Value: ScaleAmount(record.Amount) + " " + a.cfg.DisplayDenom},
		}),
		Context: entity.Context{Network: a.cfg.Label, EntityTypeName: entity.TypeAccount},
		Raw:     chainutil.EncodeRaw(record),
	}
}

func (a *Adapter) fetchAccount(ctx context.Context, address string) (AccountRecord, error) {
	if !a.AccountsEnabled() {
		return AccountRecord{}, fmt.Errorf("%w: %s has no denomination configured", apperrors.ErrInvalidInput, a.cfg.Label)
	}
	if !a.address.MatchString(address) {
		return AccountRecord{}, fmt.Errorf("%w: %q is not an account address of %s",
			apperrors.ErrInvalidInput, address, a.cfg.Label,
		)
	}

	path := "/abci_query?path=" + url.QueryEscape(`"`+balancePath+`"`) +
		"&data=0x" + BalanceQueryData(address, a.cfg.Denom)
	body, err := a.get(ctx, path)
	if err != nil {
		return AccountRecord{}, err
	}
	result, err := decodeResult[abciQueryResult](body)
	if err != nil {
		return AccountRecord{}, err
	}

	record := AccountRecord{Address: address, Denom: a.cfg.Denom, Amount: "0"}
	if value := result.Response.Value; value != "" {
		coin, err := ParseBalance(value)
		if err != nil {
			a.logger.Debug("Balance not decodable, showing zero", zap.String("address", address), zap.Error(err))
		} else if coin.Amount != "" {
			record.Amount = coin.Amount
		}
	}
	return record, nil
}

// AccountTransactions derives the transaction history of an account entity as Transaction references.
func (a *Adapter) AccountTransactions(ctx context.Context, e entity.Entity) []entity.AssociatedRef {
	record, err := chainutil.DecodeRaw[AccountRecord](e.Raw)
	if err != nil {
		a.boundary.Fail("AccountTransactions", e.UniqueIdentifier, err)
		return []entity.AssociatedRef{}
	}
	txs, err := a.fetchHistory(ctx, record.Address)
	if err != nil {
		a.boundary.Fail("AccountTransactions", record.Address, err)
		return []entity.AssociatedRef{}
	}

	refs := make([]entity.AssociatedRef, 0, len(txs))
	for _, tx := range txs {
		refs = append(refs, a.ref(entity.TypeTransaction, "hash", tx.Hash))
	}
	return refs
}

// NoAssociations is the deriver of leaf entity types.
func (a *Adapter) NoAssociations(context.Context, entity.Entity) []entity.AssociatedRef {
	return []entity.AssociatedRef{}
}

func (a *Adapter) ref(entityType, field, value string) entity.AssociatedRef {
	return entity.AssociatedRef{
		NetworkLabel: a.cfg.Label,
		EntityType:   entityType,
		FieldName:    field,
		FieldValue:   value,
	}
}

// get fetches base+path and fails on transport errors and non-2xx statuses.
func (a *Adapter) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := a.client.Get(ctx, a.base+path)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s returned http status %d", apperrors.ErrBadResponse, path, resp.StatusCode)
	}
	return resp.Body, nil
}
