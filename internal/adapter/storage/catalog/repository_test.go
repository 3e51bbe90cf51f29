package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"entity-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_HUB_RPC", "https://hub.example/")
	t.Setenv("TEST_ROLLAPP_RPC", "")

	path := writeCatalog(t, `
cosmos:
  - label: Dymension Hub
    rpc: ${TEST_HUB_RPC}
    account_prefix: dym
    denom: udym
    display_denom: DYM
  - label: RollApp X
    rpc: ${TEST_ROLLAPP_RPC}
  - label: Broken
    rpc: ftp://nope
remotes:
  - provider: eclipse
    name: Eclipse
    id: "91002"
    endpoints:
      evm: https://evm.example
      svm: https://svm.example
  - provider: eclipse
    name: Nothing
    id: none
`)

	catalog, err := NewRepository(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entity.CosmosNetwork{{
		Label:         "Dymension Hub",
		RPC:           "https://hub.example",
		AccountPrefix: "dym",
		Denom:         "udym",
		DisplayDenom:  "DYM",
	}}, catalog.Cosmos)

	require.Len(t, catalog.Remotes, 1)
	assert.Equal(t, "Eclipse", catalog.Remotes[0].Name)
	assert.Equal(t, "91002", catalog.Remotes[0].ID)
	assert.Equal(t, []entity.ChainFamily{entity.FamilyEVM, entity.FamilySVM}, catalog.Remotes[0].Families())
}

func TestLoad_MissingFileUsesBuiltIn(t *testing.T) {
	tests := []struct {
		name      string
		solanaRPC string
		want      []string
	}{
		{name: "solana unset", solanaRPC: "", want: []string{"Ethereum"}},
		{name: "solana set", solanaRPC: "https://solana.example", want: []string{"Ethereum", "Solana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SOLANA_RPC", tt.solanaRPC)

			repo := NewRepository(filepath.Join(t.TempDir(), "absent.yaml"), zap.NewNop())
			catalog, err := repo.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, catalog.Cosmos)

			var names []string
			for _, r := range catalog.Remotes {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)

			eth := catalog.Remotes[0]
			assert.Equal(t, entity.RPCURL("https://rpc.ankr.com/eth"), eth.Endpoints.EVM)
			assert.Equal(t, "eclipse", eth.Provider)
			assert.Equal(t, "ETH", eth.NativeSymbol)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "cosmos:\n  - label: A\n    rpc_url: https://a.example\n"},
		{name: "not yaml", content: "cosmos: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRepository(writeCatalog(t, tt.content), zap.NewNop()).Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	catalog, err := NewRepository(writeCatalog(t, ""), zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalog.Cosmos)
	assert.Empty(t, catalog.Remotes)
}
