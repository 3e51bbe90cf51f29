package svm

import (
	"encoding/json"
	"fmt"

	"entity-resolver/internal/adapter/chainutil"
)

// Reward is a block or transaction reward entry.
type Reward struct {
	Pubkey      string  `json:"pubkey"`
	Lamports    int64   `json:"lamports"`
	PostBalance uint64  `json:"postBalance"`
	RewardType  *string `json:"rewardType,omitempty"`
	Commission  *int    `json:"commission,omitempty"`
}

func (r *Reward) Validate() error {
	if r.Pubkey == "" {
		return chainutil.Invalid("reward", "pubkey is empty")
	}
	return nil
}

// BlockRecord is the validated getBlock result with signature-only transaction details.
// It is the Block raw record.
type BlockRecord struct {
	BlockHeight       *uint64  `json:"blockHeight"`
	BlockTime         *int64   `json:"blockTime"`
	Blockhash         string   `json:"blockhash"`
	ParentSlot        uint64   `json:"parentSlot"`
	PreviousBlockhash string   `json:"previousBlockhash"`
	Signatures        []string `json:"signatures"`
	Rewards           []Reward `json:"rewards,omitempty"`
}

func (r *BlockRecord) Validate() error {
	switch {
	case r.Blockhash == "":
		return chainutil.Invalid("block", "blockhash is empty")
	case r.PreviousBlockhash == "":
		return chainutil.Invalid("block", "previousBlockhash is empty")
	case r.Signatures == nil:
		return chainutil.Invalid("block", "signatures is missing")
	}
	for i := range r.Rewards {
		if err := r.Rewards[i].Validate(); err != nil {
			return fmt.Errorf("rewards[%d]: %w", i, err)
		}
	}
	return nil
}

// Instruction is a compiled instruction.
type Instruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"`
}

func (in *Instruction) Validate() error {
	if in.ProgramIDIndex < 0 {
		return chainutil.Invalid("instruction", "programIdIndex %d is negative", in.ProgramIDIndex)
	}
	return nil
}

// TokenBalance is a pre or post token balance of a transaction.
type TokenBalance struct {
	AccountIndex  int     `json:"accountIndex"`
	Mint          string  `json:"mint"`
	Owner         *string `json:"owner,omitempty"`
	ProgramID     *string `json:"programId,omitempty"`
	UITokenAmount struct {
		Amount         string   `json:"amount"`
		Decimals       int      `json:"decimals"`
		UIAmount       *float64 `json:"uiAmount"`
		UIAmountString string   `json:"uiAmountString"`
	} `json:"uiTokenAmount"`
}

func (b *TokenBalance) Validate() error {
	switch {
	case b.Mint == "":
		return chainutil.Invalid("token balance", "mint is empty")
	case b.UITokenAmount.Amount == "":
		return chainutil.Invalid("token balance", "uiTokenAmount.amount is empty")
	}
	return nil
}

// TransactionMeta is the execution status of a transaction.
type TransactionMeta struct {
	Err               json.RawMessage `json:"err"`
	Fee               uint64          `json:"fee"`
	PreBalances       []uint64        `json:"preBalances"`
	PostBalances      []uint64        `json:"postBalances"`
	PreTokenBalances  []TokenBalance  `json:"preTokenBalances,omitempty"`
	PostTokenBalances []TokenBalance  `json:"postTokenBalances,omitempty"`
	InnerInstructions []struct {
		Index        int           `json:"index"`
		Instructions []Instruction `json:"instructions"`
	} `json:"innerInstructions,omitempty"`
	LogMessages          []string `json:"logMessages,omitempty"`
	ComputeUnitsConsumed *uint64  `json:"computeUnitsConsumed,omitempty"`
}

// Succeeded reports whether the transaction executed without error.
func (m *TransactionMeta) Succeeded() bool {
	return len(m.Err) == 0 || string(m.Err) == "null"
}

// TransactionRecord is the validated getTransaction result. It is the Transaction raw record.
type TransactionRecord struct {
	Slot        uint64           `json:"slot"`
	BlockTime   *int64           `json:"blockTime"`
	Meta        *TransactionMeta `json:"meta"`
	Transaction struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			AccountKeys []string `json:"accountKeys"`
			Header      struct {
				NumRequiredSignatures       int `json:"numRequiredSignatures"`
				NumReadonlySignedAccounts   int `json:"numReadonlySignedAccounts"`
				NumReadonlyUnsignedAccounts int `json:"numReadonlyUnsignedAccounts"`
			} `json:"header"`
			Instructions    []Instruction `json:"instructions"`
			RecentBlockhash string        `json:"recentBlockhash"`
		} `json:"message"`
	} `json:"transaction"`
}

func (r *TransactionRecord) Validate() error {
	msg := &r.Transaction.Message
	switch {
	case r.Meta == nil:
		return chainutil.Invalid("transaction", "meta is missing")
	case len(r.Transaction.Signatures) == 0:
		return chainutil.Invalid("transaction", "signatures is empty")
	case len(msg.AccountKeys) == 0:
		return chainutil.Invalid("transaction", "message.accountKeys is empty")
	case msg.RecentBlockhash == "":
		return chainutil.Invalid("transaction", "message.recentBlockhash is empty")
	}
	for i := range msg.Instructions {
		if err := msg.Instructions[i].Validate(); err != nil {
			return fmt.Errorf("instructions[%d]: %w", i, err)
		}
	}
	for _, balances := range [][]TokenBalance{r.Meta.PreTokenBalances, r.Meta.PostTokenBalances} {
		for i := range balances {
			if err := balances[i].Validate(); err != nil {
				return fmt.Errorf("token balances[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Signer returns the fee payer, the first account key of the message.
func (r *TransactionRecord) Signer() string {
	return r.Transaction.Message.AccountKeys[0]
}
