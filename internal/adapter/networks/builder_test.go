package networks

import (
	"testing"
	"time"

	"entity-resolver/internal/adapter/rpc"
	"entity-resolver/internal/config"
	"entity-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBuilder() *Builder {
	client := rpc.NewClient(config.RPCConfig{Timeout: time.Second}, zap.NewNop())
	return NewBuilder(client, config.EVMConfig{}, zap.NewNop())
}

func TestRemote(t *testing.T) {
	tests := []struct {
		name      string
		endpoints entity.RemoteEndpoints
		wantTypes []string
	}{
		{
			name:      "evm only",
			endpoints: entity.RemoteEndpoints{EVM: "https://evm.example"},
			wantTypes: []string{"Block", "Transaction", "Log", "Account", "Contract"},
		},
		{
			name:      "svm only",
			endpoints: entity.RemoteEndpoints{SVM: "https://svm.example"},
			wantTypes: []string{"Block", "Transaction"},
		},
		{
			name:      "both families",
			endpoints: entity.RemoteEndpoints{EVM: "https://evm.example", SVM: "https://svm.example"},
			wantTypes: []string{
				"EVM Block", "EVM Transaction", "EVM Log", "EVM Account", "EVM Contract",
				"SVM Block", "SVM Transaction",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := newTestBuilder().Remote(entity.RemoteNetwork{
				Provider:  "eclipse",
				Name:      "Eclipse",
				ID:        "91002",
				Endpoints: tt.endpoints,
			})
			require.NoError(t, err)
			assert.Equal(t, "Eclipse", def.Label)
			assert.Equal(t, tt.wantTypes, def.EntityTypeNames())
		})
	}
}

func TestRemote_NoEndpoints(t *testing.T) {
	_, err := newTestBuilder().Remote(entity.RemoteNetwork{Name: "Empty"})
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	defs := newTestBuilder().Catalog(entity.Catalog{
		Cosmos: []entity.CosmosNetwork{
			{Label: "Celestia Mocha", RPC: "https://mocha.example"},
			{Label: "Dymension Hub", RPC: "https://hub.example", AccountPrefix: "dym", Denom: "udym", DisplayDenom: "DYM"},
		},
		Remotes: []entity.RemoteNetwork{
			{Name: "Empty"},
			{Name: "Ethereum", Endpoints: entity.RemoteEndpoints{EVM: "https://eth.example"}},
		},
	})

	require.Len(t, defs, 3)
	assert.Equal(t, "Celestia Mocha", defs[0].Label)
	assert.Equal(t, []string{"Block", "Transaction", "Message"}, defs[0].EntityTypeNames())
	assert.Equal(t, []string{"Block", "Transaction", "Message", "Account"}, defs[1].EntityTypeNames())
	assert.Equal(t, "Ethereum", defs[2].Label)
	for _, def := range defs {
		assert.NoError(t, def.Validate())
	}
}
