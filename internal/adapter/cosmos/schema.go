package cosmos

import (
	"encoding/json"
	"fmt"

	"entity-resolver/internal/adapter/chainutil"
	"entity-resolver/internal/pkg/apperrors"
)

// envelope is the JSON-RPC wrapper Tendermint puts around every REST-style GET response.
type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data"`
	} `json:"error"`
}

// decodeResult unwraps the envelope and validates its result as T.
func decodeResult[T any, PT interface {
	*T
	chainutil.Validator
}](body []byte) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("%w: envelope: %v", apperrors.ErrSchemaValidation, err)
	}
	if env.Error != nil {
		return zero, fmt.Errorf("%w: rpc error %d: %s %s",
			apperrors.ErrBadResponse, env.Error.Code, env.Error.Message, env.Error.Data,
		)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return zero, chainutil.Invalid("envelope", "missing result")
	}
	return chainutil.DecodeJSON[T, PT](env.Result)
}

// BlockRecord is the validated /block and /block_by_hash result. It is also the Block raw record.
type BlockRecord struct {
	BlockID struct {
		Hash string `json:"hash"`
	} `json:"block_id"`
	Block struct {
		Header struct {
			ChainID         string           `json:"chain_id"`
			Height          chainutil.Number `json:"height"`
			Time            string           `json:"time"`
			ProposerAddress string           `json:"proposer_address"`
		} `json:"header"`
		Data struct {
			Txs        []string          `json:"txs"`
			SquareSize *chainutil.Number `json:"square_size,omitempty"`
		} `json:"data"`
	} `json:"block"`
}

func (r *BlockRecord) Validate() error {
	switch {
	case r.BlockID.Hash == "":
		return chainutil.Invalid("block", "block_id.hash is empty")
	case r.Block.Header.ChainID == "":
		return chainutil.Invalid("block", "header.chain_id is empty")
	case !r.Block.Header.Height.Valid():
		return chainutil.Invalid("block", "header.height %q is not numeric", r.Block.Header.Height)
	case r.Block.Header.Time == "":
		return chainutil.Invalid("block", "header.time is empty")
	}
	if r.Block.Data.SquareSize != nil && !r.Block.Data.SquareSize.Valid() {
		return chainutil.Invalid("block", "data.square_size %q is not numeric", *r.Block.Data.SquareSize)
	}
	return nil
}

// TxResult is the execution result of a transaction.
type TxResult struct {
	Code      int              `json:"code"`
	Codespace string           `json:"codespace,omitempty"`
	Log       string           `json:"log"`
	GasWanted chainutil.Number `json:"gas_wanted"`
	GasUsed   chainutil.Number `json:"gas_used"`
}

// TxRecord is the validated /tx result and one element of a /tx_search result.
// It is the Transaction raw record for both the hash and the height getters.
type TxRecord struct {
	Hash     string           `json:"hash"`
	Height   chainutil.Number `json:"height"`
	Index    int              `json:"index"`
	TxResult TxResult         `json:"tx_result"`
	Tx       string           `json:"tx"`
}

func (r *TxRecord) Validate() error {
	switch {
	case r.Hash == "":
		return chainutil.Invalid("tx", "hash is empty")
	case !r.Height.Valid():
		return chainutil.Invalid("tx", "height %q is not numeric", r.Height)
	case r.Index < 0:
		return chainutil.Invalid("tx", "index %d is negative", r.Index)
	case r.Tx == "":
		return chainutil.Invalid("tx", "tx bytes are empty")
	}
	return nil
}

// txSearchResult is the validated /tx_search result.
type txSearchResult struct {
	Txs        []TxRecord       `json:"txs"`
	TotalCount chainutil.Number `json:"total_count"`
}

func (r *txSearchResult) Validate() error {
	if r.Txs == nil {
		return chainutil.Invalid("tx_search", "txs is missing")
	}
	for i := range r.Txs {
		if err := r.Txs[i].Validate(); err != nil {
			return fmt.Errorf("txs[%d]: %w", i, err)
		}
	}
	return nil
}

// abciQueryResult is the validated /abci_query result.
type abciQueryResult struct {
	Response *struct {
		Code  int    `json:"code"`
		Log   string `json:"log"`
		Value string `json:"value"`
	} `json:"response"`
}

func (r *abciQueryResult) Validate() error {
	if r.Response == nil {
		return chainutil.Invalid("abci_query", "response is missing")
	}
	return nil
}

// MessageRecord is the Message raw record.
type MessageRecord struct {
	Transaction string `json:"transaction"`
	Index       int    `json:"index"`
	Message
}

func (r *MessageRecord) Validate() error {
	switch {
	case r.Transaction == "":
		return chainutil.Invalid("message", "transaction is empty")
	case r.TypeURL == "":
		return chainutil.Invalid("message", "type_url is empty")
	}
	return nil
}

// AccountRecord is the Account raw record.
type AccountRecord struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  string `json:"amount"`
}

func (r *AccountRecord) Validate() error {
	if r.Address == "" {
		return chainutil.Invalid("account", "address is empty")
	}
	return nil
}
