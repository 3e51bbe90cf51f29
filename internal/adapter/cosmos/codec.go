package cosmos

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"entity-resolver/internal/pkg/apperrors"

	sha256 "github.com/minio/sha256-simd"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	msgSendTypeURL = "/cosmos.bank.v1beta1.MsgSend"
	blobTxTypeID   = "BLOB"
	balancePath    = "/cosmos.bank.v1beta1.Query/Balance"
	balanceScale   = 1_000_000
)

// Coin is a cosmos-sdk amount.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func (c Coin) String() string {
	return c.Amount + " " + c.Denom
}

// Message is one decoded entry of TxBody.messages.
type Message struct {
	TypeURL string `json:"type_url"`
	Value   string `json:"value"`
	Send    *Send  `json:"send,omitempty"`
}

// Send is the decoded payload of a bank MsgSend.
type Send struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount []Coin `json:"amount"`
}

// TxHash returns the upper-case hex SHA-256 of the base64 transaction bytes, the hash Tendermint indexes txs by.
func TxHash(txB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return "", fmt.Errorf("%w: tx is not base64: %v", apperrors.ErrSchemaValidation, err)
	}
	sum := sha256.Sum256(raw)
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// DecodeMessages decodes TxRaw.body_bytes into its messages. Celestia BlobTx wrappers are unwrapped first.
func DecodeMessages(txB64 string) ([]Message, error) {
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return nil, fmt.Errorf("%w: tx is not base64: %v", apperrors.ErrSchemaValidation, err)
	}
	if inner, ok := unwrapBlobTx(raw); ok {
		raw = inner
	}

	var body []byte
	err = walkFields(raw, func(num protowire.Number, value []byte) error {
		if num == 1 {
			body = value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("TxRaw: %w", err)
	}

	messages := []Message{}
	err = walkFields(body, func(num protowire.Number, value []byte) error {
		if num != 1 {
			return nil
		}
		msg, err := decodeAny(value)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("TxBody: %w", err)
	}
	return messages, nil
}

func decodeAny(b []byte) (Message, error) {
	var msg Message
	var value []byte
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			msg.TypeURL = string(v)
		case 2:
			value = v
		}
		return nil
	})
	if err != nil {
		return Message{}, fmt.Errorf("Any: %w", err)
	}
	msg.Value = base64.StdEncoding.EncodeToString(value)
	if msg.TypeURL == msgSendTypeURL {
		if send, err := decodeSend(value); err == nil {
			msg.Send = &send
		}
	}
	return msg, nil
}

func decodeSend(b []byte) (Send, error) {
	send := Send{Amount: []Coin{}}
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			send.From = string(v)
		case 2:
			send.To = string(v)
		case 3:
			coin, err := decodeCoin(v)
			if err != nil {
				return err
			}
			send.Amount = append(send.Amount, coin)
		}
		return nil
	})
	return send, err
}

func decodeCoin(b []byte) (Coin, error) {
	var coin Coin
	err := walkFields(b, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			coin.Denom = string(v)
		case 2:
			coin.Amount = string(v)
		}
		return nil
	})
	return coin, err
}

// unwrapBlobTx returns BlobTx.tx when raw is a Celestia BlobTx{tx=1, blobs=2, type_id=3}.
func unwrapBlobTx(raw []byte) ([]byte, bool) {
	var inner []byte
	var typeID string
	err := walkFields(raw, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			inner = v
		case 3:
			typeID = string(v)
		}
		return nil
	})
	if err != nil || typeID != blobTxTypeID || inner == nil {
		return nil, false
	}
	return inner, true
}

// walkFields calls fn with the payload of every length-delimited field in b and skips the others.
func walkFields(b []byte, fn func(num protowire.Number, value []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", apperrors.ErrSchemaValidation, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", apperrors.ErrSchemaValidation, num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", apperrors.ErrSchemaValidation, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}

// BalanceQueryData returns the hex protobuf encoding of QueryBalanceRequest{address, denom}.
func BalanceQueryData(address, denom string) string {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, address)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, denom)
	return hex.EncodeToString(b)
}

// ParseBalance decodes the base64 QueryBalanceResponse{balance: Coin} returned by the ABCI query.
func ParseBalance(valueB64 string) (Coin, error) {
	raw, err := base64.StdEncoding.DecodeString(valueB64)
	if err != nil {
		return Coin{}, fmt.Errorf("%w: balance is not base64: %v", apperrors.ErrSchemaValidation, err)
	}
	var coin Coin
	err = walkFields(raw, func(num protowire.Number, v []byte) error {
		if num != 1 {
			return nil
		}
		c, err := decodeCoin(v)
		if err != nil {
			return err
		}
		coin = c
		return nil
	})
	if err != nil {
		return Coin{}, fmt.Errorf("QueryBalanceResponse: %w", err)
	}
	return coin, nil
}

// ScaleAmount divides an integer base-unit amount by 10^6. Unparseable amounts are shown as 0.
func ScaleAmount(amount string) string {
	n, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return "0"
	}
	s := new(big.Rat).SetFrac(n, big.NewInt(balanceScale)).FloatString(6)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
