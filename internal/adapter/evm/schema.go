package evm

import (
	"fmt"
	"math/big"
	"strings"

	"entity-resolver/internal/adapter/chainutil"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockRecord is the validated eth_getBlockBy* result with transaction hashes only. It is the Block raw record.
type BlockRecord struct {
	Number       *chainutil.Number `json:"number"`
	Hash         *string           `json:"hash"`
	ParentHash   string            `json:"parentHash"`
	Timestamp    chainutil.Number  `json:"timestamp"`
	GasUsed      chainutil.Number  `json:"gasUsed"`
	GasLimit     chainutil.Number  `json:"gasLimit"`
	Size         chainutil.Number  `json:"size"`
	Miner        string            `json:"miner"`
	Transactions []string          `json:"transactions"`
}

func (r *BlockRecord) Validate() error {
	switch {
	case r.Number != nil && !r.Number.Valid():
		return chainutil.Invalid("block", "number %q is not numeric", *r.Number)
	case !r.Timestamp.Valid():
		return chainutil.Invalid("block", "timestamp %q is not numeric", r.Timestamp)
	case !r.GasUsed.Valid():
		return chainutil.Invalid("block", "gasUsed %q is not numeric", r.GasUsed)
	case !r.GasLimit.Valid():
		return chainutil.Invalid("block", "gasLimit %q is not numeric", r.GasLimit)
	case !r.Size.Valid():
		return chainutil.Invalid("block", "size %q is not numeric", r.Size)
	case r.Miner == "":
		return chainutil.Invalid("block", "miner is empty")
	case r.Transactions == nil:
		return chainutil.Invalid("block", "transactions is missing")
	}
	return nil
}

// Transaction is the validated eth_getTransactionByHash result.
type Transaction struct {
	Hash        string            `json:"hash"`
	BlockNumber *chainutil.Number `json:"blockNumber"`
	From        string            `json:"from"`
	To          *string           `json:"to"`
	Gas         chainutil.Number  `json:"gas"`
	GasPrice    chainutil.Number  `json:"gasPrice"`
	Value       chainutil.Number  `json:"value"`
	Nonce       chainutil.Number  `json:"nonce"`
	Input       string            `json:"input"`
}

func (t *Transaction) Validate() error {
	switch {
	case t.Hash == "":
		return chainutil.Invalid("transaction", "hash is empty")
	case t.From == "":
		return chainutil.Invalid("transaction", "from is empty")
	case t.BlockNumber != nil && !t.BlockNumber.Valid():
		return chainutil.Invalid("transaction", "blockNumber %q is not numeric", *t.BlockNumber)
	}
	if _, err := bigOf(t.GasPrice); err != nil {
		return chainutil.Invalid("transaction", "gasPrice: %v", err)
	}
	if _, err := bigOf(t.Value); err != nil {
		return chainutil.Invalid("transaction", "value: %v", err)
	}
	return nil
}

// Log is one receipt log.
type Log struct {
	Address         string           `json:"address"`
	Topics          []string         `json:"topics"`
	Data            string           `json:"data"`
	LogIndex        chainutil.Number `json:"logIndex"`
	TransactionHash string           `json:"transactionHash"`
	Removed         bool             `json:"removed"`
}

func (l *Log) Validate() error {
	switch {
	case l.Address == "":
		return chainutil.Invalid("log", "address is empty")
	case l.Topics == nil:
		return chainutil.Invalid("log", "topics is missing")
	}
	return nil
}

// Receipt is the validated eth_getTransactionReceipt result.
type Receipt struct {
	TransactionHash string           `json:"transactionHash"`
	BlockNumber     chainutil.Number `json:"blockNumber"`
	From            string           `json:"from"`
	To              *string          `json:"to"`
	GasUsed         chainutil.Number `json:"gasUsed"`
	ContractAddress *string          `json:"contractAddress"`
	Logs            []Log            `json:"logs"`
	Status          chainutil.Number `json:"status"`
}

func (r *Receipt) Validate() error {
	switch {
	case r.TransactionHash == "":
		return chainutil.Invalid("receipt", "transactionHash is empty")
	case !r.GasUsed.Valid():
		return chainutil.Invalid("receipt", "gasUsed %q is not numeric", r.GasUsed)
	case !r.Status.Valid():
		return chainutil.Invalid("receipt", "status %q is not numeric", r.Status)
	case r.Logs == nil:
		return chainutil.Invalid("receipt", "logs is missing")
	}
	for i := range r.Logs {
		if err := r.Logs[i].Validate(); err != nil {
			return fmt.Errorf("logs[%d]: %w", i, err)
		}
	}
	return nil
}

// CreatedContract returns the address of the contract deployed by the transaction, if any.
func (r *Receipt) CreatedContract() (string, bool) {
	if r.ContractAddress == nil || *r.ContractAddress == "" {
		return "", false
	}
	return *r.ContractAddress, true
}

// TransactionRecord is the Transaction raw record. The receipt is kept so that log
// derivation needs no second round trip.
type TransactionRecord struct {
	Transaction Transaction `json:"transaction"`
	Receipt     Receipt     `json:"receipt"`
}

func (r *TransactionRecord) Validate() error {
	if err := r.Transaction.Validate(); err != nil {
		return err
	}
	return r.Receipt.Validate()
}

// LogRecord is the Log raw record.
type LogRecord struct {
	Transaction string `json:"transaction"`
	Index       int    `json:"index"`
	Event       string `json:"event"`
	Log         Log    `json:"log"`
}

func (r *LogRecord) Validate() error {
	if r.Transaction == "" {
		return chainutil.Invalid("log record", "transaction is empty")
	}
	return r.Log.Validate()
}

// AddressRecord is the Account and Contract raw record.
type AddressRecord struct {
	Address string `json:"address"`
	// Balance is the wei balance in decimal, empty when it could not be fetched.
	Balance string `json:"balance,omitempty"`
}

func (r *AddressRecord) Validate() error {
	if r.Address == "" {
		return chainutil.Invalid("address", "address is empty")
	}
	return nil
}

// signatureLookup is the response of the event signature database.
type signatureLookup struct {
	Result struct {
		Event map[string][]struct {
			Name string `json:"name"`
		} `json:"event"`
	} `json:"result"`
}

func (s *signatureLookup) Validate() error {
	return nil
}

// chainDataTxs is the response of the chain-data service's mc_getTransactionsByAddress.
type chainDataTxs struct {
	Result *struct {
		Txs []struct {
			Hash string `json:"hash"`
		} `json:"txs"`
	} `json:"result"`
}

func (c *chainDataTxs) Validate() error {
	if c.Result == nil || c.Result.Txs == nil {
		return chainutil.Invalid("chain data", "result.txs is missing")
	}
	for i, tx := range c.Result.Txs {
		if tx.Hash == "" {
			return chainutil.Invalid("chain data", "txs[%d].hash is empty", i)
		}
	}
	return nil
}

// bigOf parses a quantity given as 0x-hex or decimal.
func bigOf(n chainutil.Number) (*big.Int, error) {
	s := strings.TrimSpace(n.String())
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			if len(s) == 2 {
				return nil, fmt.Errorf("invalid quantity %q", s)
			}
			return new(big.Int), nil
		}
		return hexutil.DecodeBig("0x" + digits)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}
