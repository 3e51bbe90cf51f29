package evm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"entity-resolver/internal/adapter/chainutil"
	"entity-resolver/internal/adapter/rpc"
	"entity-resolver/internal/config"
	"entity-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	txHash       = "0x" + strings.Repeat("ab", 32)
	blockHash    = "0x" + strings.Repeat("cd", 32)
	fromAddress  = "0x" + strings.Repeat("1", 40)
	toAddress    = "0x" + strings.Repeat("2", 40)
	contractAddr = "0x" + strings.Repeat("3", 40)
	transferSig  = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
)

type fakeNode struct {
	t       *testing.T
	mu      sync.Mutex
	calls   []string
	params  map[string][]any
	results map[string]any
	events  map[string]string
	history []string
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/lookup":
		topic := r.URL.Query().Get("event")
		assert.Equal(n.t, "true", r.URL.Query().Get("filter"))
		matches := []any{}
		n.mu.Lock()
		name, ok := n.events[topic]
		n.mu.Unlock()
		if ok {
			matches = append(matches, map[string]any{"name": name, "filtered": false})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"event": map[string]any{topic: matches}, "function": map[string]any{}},
		})
	case strings.HasPrefix(r.URL.Path, "/chaindata/"):
		assert.Equal(n.t, "/chaindata/eclipse/91002", r.URL.Path)
		var req struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(n.t, "mc_getTransactionsByAddress", req.Method)
		n.mu.Lock()
		txs := make([]any, 0, len(n.history))
		for _, h := range n.history {
			txs = append(txs, map[string]any{"hash": h})
		}
		n.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"txs": txs}})
	default:
		var req struct {
			Method  string `json:"method"`
			Params  []any  `json:"params"`
			ID      int    `json:"id"`
			Jsonrpc string `json:"jsonrpc"`
		}
		require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(n.t, 1, req.ID)
		assert.Equal(n.t, "2.0", req.Jsonrpc)

		n.mu.Lock()
		n.calls = append(n.calls, req.Method)
		n.params[req.Method] = req.Params
		result, ok := n.results[req.Method]
		n.mu.Unlock()

		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": 1, "error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result})
	}
}

func (n *fakeNode) set(method string, result any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results[method] = result
}

func (n *fakeNode) setEvent(topic, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[topic] = name
}

func (n *fakeNode) setHistory(hashes ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = hashes
}

func (n *fakeNode) paramsOf(method string) []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.params[method]
}

func (n *fakeNode) callLog() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *fakeNode) resetCalls() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}

func newTestAdapter(t *testing.T, prefix string) (*Adapter, *fakeNode) {
	t.Helper()
	node := &fakeNode{
		t:       t,
		params:  map[string][]any{},
		results: map[string]any{},
		events:  map[string]string{},
	}
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	endpoint, err := entity.NewRPCURL(server.URL)
	require.NoError(t, err)

	client := rpc.NewClient(config.RPCConfig{Timeout: 2 * time.Second}, zap.NewNop())
	return NewAdapter(Config{
		Label:              "Ethereum",
		Endpoint:           endpoint,
		Provider:           "eclipse",
		ChainID:            "91002",
		TypePrefix:         prefix,
		NativeSymbol:       "ETH",
		SignatureLookupURL: server.URL + "/lookup",
		ChainDataService:   server.URL + "/chaindata",
	}, client, zap.NewNop()), node
}

func block(size string) map[string]any {
	return map[string]any{
		"number":       "0x2a",
		"hash":         blockHash,
		"parentHash":   "0x00",
		"timestamp":    "0x5f5e1000",
		"gasUsed":      "0x5208",
		"gasLimit":     "0x1c9c380",
		"size":         size,
		"miner":        fromAddress,
		"transactions": []string{txHash, "0x" + strings.Repeat("ef", 32)},
	}
}

func transaction() map[string]any {
	return map[string]any{
		"hash":        txHash,
		"blockNumber": "0x2a",
		"from":        fromAddress,
		"to":          toAddress,
		"gas":         "0x5208",
		"gasPrice":    "0x4a817c800",
		"value":       "0x0",
		"nonce":       "0x1",
		"input":       "0x",
	}
}

func receipt(status string, contract any, logs ...map[string]any) map[string]any {
	if logs == nil {
		logs = []map[string]any{}
	}
	return map[string]any{
		"transactionHash": txHash,
		"blockNumber":     "0x2a",
		"from":            fromAddress,
		"to":              toAddress,
		"gasUsed":         "0x5208",
		"contractAddress": contract,
		"logs":            logs,
		"status":          status,
	}
}

func logEntry(topics ...string) map[string]any {
	if topics == nil {
		topics = []string{}
	}
	return map[string]any{
		"address":         toAddress,
		"topics":          topics,
		"data":            "0x01",
		"logIndex":        "0x0",
		"transactionHash": txHash,
		"removed":         false,
	}
}

func TestBlockByHeight(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getBlockByNumber", block("0x220"))

	e := adapter.BlockByHeight(context.Background(), "42")
	require.NotNil(t, e)
	assert.Equal(t, []any{"0x2a", false}, node.paramsOf("eth_getBlockByNumber"))
	assert.Equal(t, blockHash, e.UniqueIdentifier)
	assert.Equal(t, []string{"Height", "Timestamp", "Gas Used", "Gas Limit", "Size", "Fee Recipient"}, e.Metadata.Keys())

	for field, want := range map[string]string{
		"Height":    "42",
		"Timestamp": "Sun, 13 Sep 2020 12:26:40 UTC",
		"Gas Used":  "21000",
		"Gas Limit": "30000000",
		"Size":      "544 bytes",
	} {
		got, ok := e.Metadata.Get(field)
		require.True(t, ok, field)
		assert.Equal(t, want, got.Payload, field)
	}

	refs := adapter.BlockTransactions(context.Background(), *e)
	require.Len(t, refs, 2)
	assert.Equal(t, entity.AssociatedRef{
		NetworkLabel: "Ethereum",
		EntityType:   "Transaction",
		FieldName:    "hash",
		FieldValue:   txHash,
	}, refs[0])
}

func TestBlockByHeight_SingleByteSize(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getBlockByNumber", block("0x1"))

	e := adapter.BlockByHeight(context.Background(), "42")
	require.NotNil(t, e)
	size, _ := e.Metadata.Get("Size")
	assert.Equal(t, "1 byte", size.Payload)
}

func TestBlockByHash_PrefixesHash(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getBlockByHash", block("0x10"))

	e := adapter.BlockByHash(context.Background(), strings.TrimPrefix(blockHash, "0x"))
	require.NotNil(t, e)
	assert.Equal(t, []any{blockHash, false}, node.paramsOf("eth_getBlockByHash"))

	assert.Nil(t, adapter.BlockByHash(context.Background(), "0x1234"))
}

func TestBlockByHeight_FailuresReturnNil(t *testing.T) {
	adapter, node := newTestAdapter(t, "")

	assert.Nil(t, adapter.BlockByHeight(context.Background(), "not-a-height"))
	assert.Nil(t, adapter.BlockByHeight(context.Background(), "42"), "json-rpc error")

	drifted := block("0x10")
	delete(drifted, "miner")
	node.set("eth_getBlockByNumber", drifted)
	assert.Nil(t, adapter.BlockByHeight(context.Background(), "42"), "schema drift")
}

func TestTransactionByHash_StatusIsReceiptStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   int64
	}{
		{name: "success", status: "0x1", want: 1},
		{name: "reverted", status: "0x0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, node := newTestAdapter(t, "")
			node.set("eth_getTransactionByHash", transaction())
			node.set("eth_getTransactionReceipt", receipt(tt.status, nil))

			e := adapter.TransactionByHash(context.Background(), strings.TrimPrefix(txHash, "0x"))
			require.NotNil(t, e)
			assert.Equal(t, []string{"eth_getTransactionByHash", "eth_getTransactionReceipt"}, node.callLog())
			assert.Equal(t, []any{txHash}, node.paramsOf("eth_getTransactionReceipt"))

			status, ok := e.Metadata.Get("Status")
			require.True(t, ok)
			assert.Equal(t, entity.ValueStatus, status.Type)
			assert.Equal(t, tt.want, status.Payload)

			price, _ := e.Metadata.Get("Gas Price")
			assert.Equal(t, "0.00000002", price.Payload)
			to, _ := e.Metadata.Get("To")
			assert.Equal(t, toAddress, to.Payload)
		})
	}
}

func TestTransactionByHash_ContractCreationHasNoTo(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	tx := transaction()
	tx["to"] = nil
	node.set("eth_getTransactionByHash", tx)
	node.set("eth_getTransactionReceipt", receipt("0x1", contractAddr))

	e := adapter.TransactionByHash(context.Background(), txHash)
	require.NotNil(t, e)
	_, hasTo := e.Metadata.Get("To")
	assert.False(t, hasTo)
}

func TestTransactionLogs(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getTransactionByHash", transaction())
	node.set("eth_getTransactionReceipt", receipt("0x1", contractAddr, logEntry(transferSig), logEntry()))

	e := adapter.TransactionByHash(context.Background(), txHash)
	require.NotNil(t, e)

	node.resetCalls()

	refs := adapter.TransactionLogs(context.Background(), *e)
	require.Len(t, refs, 3)
	assert.Equal(t, txHash+"/"+contractAddr, refs[0].FieldValue)
	assert.Equal(t, txHash+"/0", refs[1].FieldValue)
	assert.Equal(t, txHash+"/1", refs[2].FieldValue)
	for _, ref := range refs {
		assert.Equal(t, "Log", ref.EntityType)
		assert.Equal(t, "path", ref.FieldName)
	}
	assert.Empty(t, node.callLog(), "derivation must reuse the receipt kept in raw")
}

func TestLogByPath(t *testing.T) {
	unknownTopic := "0x" + strings.Repeat("99", 32)
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getTransactionReceipt", receipt("0x1", contractAddr,
		logEntry(transferSig, "0x"+strings.Repeat("0", 64)),
		logEntry(unknownTopic),
		logEntry(),
	))
	node.setEvent(transferSig, "Transfer(address,address,uint256)")

	t.Run("known event", func(t *testing.T) {
		e := adapter.LogByPath(context.Background(), txHash+"/0")
		require.NotNil(t, e)
		assert.Equal(t, "Transfer(address,address,uint256)", e.UniqueIdentifier)
		assert.Equal(t, "Event", e.UniqueIdentifierLabel)
		assert.Equal(t, "Ethereum", e.Context.Network)
		assert.Equal(t, entity.TypeLog, e.Context.EntityTypeName)

		topics, ok := e.Metadata.Get("Topics")
		require.True(t, ok)
		assert.Equal(t, entity.ValueList, topics.Type)
		assert.Equal(t, []string{transferSig, "0x" + strings.Repeat("0", 64)}, topics.Payload)

		record, err := chainutil.DecodeRaw[LogRecord](e.Raw)
		require.NoError(t, err)
		assert.Equal(t, 0, record.Index)
	})

	t.Run("unknown event falls back to topic", func(t *testing.T) {
		e := adapter.LogByPath(context.Background(), txHash+"/1")
		require.NotNil(t, e)
		assert.Equal(t, unknownTopic, e.UniqueIdentifier)
	})

	t.Run("log without topics is anonymous", func(t *testing.T) {
		e := adapter.LogByPath(context.Background(), txHash+"/2")
		require.NotNil(t, e)
		assert.Equal(t, "Anonymous", e.UniqueIdentifier)
	})

	t.Run("out of range index is nil", func(t *testing.T) {
		assert.Nil(t, adapter.LogByPath(context.Background(), txHash+"/3"))
	})

	t.Run("address segment is the created contract", func(t *testing.T) {
		e := adapter.LogByPath(context.Background(), txHash+"/"+contractAddr)
		require.NotNil(t, e)
		assert.Equal(t, contractAddr, e.UniqueIdentifier)
		assert.Equal(t, entity.TypeContract, e.Context.EntityTypeName)
		event, _ := e.Metadata.Get("Event")
		assert.Equal(t, "Contract Created", event.Payload)
	})
}

func TestAccountByAddress(t *testing.T) {
	adapter, node := newTestAdapter(t, "")
	node.set("eth_getBalance", "0xde0b6b3a7640000")
	node.setHistory(txHash)

	assert.Nil(t, adapter.AccountByAddress(context.Background(), "0x1234"))

	e := adapter.AccountByAddress(context.Background(), fromAddress)
	require.NotNil(t, e)
	assert.Equal(t, []any{fromAddress, "latest"}, node.paramsOf("eth_getBalance"))
	balance, _ := e.Metadata.Get("Balance")
	assert.Equal(t, "1 ETH", balance.Payload)

	refs := adapter.AddressTransactions(context.Background(), *e)
	require.Len(t, refs, 1)
	assert.Equal(t, entity.AssociatedRef{
		NetworkLabel: "Ethereum",
		EntityType:   "Transaction",
		FieldName:    "hash",
		FieldValue:   txHash,
	}, refs[0])
}

func TestContractByAddress_BalanceIsBestEffort(t *testing.T) {
	adapter, _ := newTestAdapter(t, "")

	e := adapter.ContractByAddress(context.Background(), contractAddr)
	require.NotNil(t, e)
	assert.Equal(t, entity.TypeContract, e.Context.EntityTypeName)
	assert.Equal(t, 0, e.Metadata.Len())
}

func TestNetworkDefinition_Prefixed(t *testing.T) {
	adapter, _ := newTestAdapter(t, "EVM ")
	def := adapter.NetworkDefinition()
	require.NoError(t, def.Validate())
	assert.Equal(t, []string{"EVM Block", "EVM Transaction", "EVM Log", "EVM Account", "EVM Contract"}, def.EntityTypeNames())

	ref := adapter.ref(entity.TypeTransaction, "hash", txHash)
	assert.Equal(t, "EVM Transaction", ref.EntityType)
}

func TestFormatEther(t *testing.T) {
	tests := map[string]string{
		"0xde0b6b3a7640000":   "1",
		"0x4a817c800":         "0.00000002",
		"0x0":                 "0",
		"1500000000000000000": "1.5",
		"1":                   "0.000000000000000001",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatEther(chainutil.Number(in)), in)
	}
}
