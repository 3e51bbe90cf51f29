package chainconfig

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"entity-resolver/internal/config"
	"entity-resolver/internal/domain"
	"entity-resolver/internal/domain/entity"
	"entity-resolver/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const document = `{"result":[
	{"provider":"eclipse","name":"Eclipse","id":"91002","endpoints":{"evm":"https://evm.example/","svm":"https://svm.example"}},
	{"provider":"eclipse","name":"Ethereum","id":"ethereum","endpoints":{"evm":"https://eth.example"},"nativeSymbol":"ETH"},
	{"provider":"eclipse","name":"Broken","id":"x","endpoints":{"evm":"not a url"}},
	{"provider":"eclipse","name":"Empty","id":"y","endpoints":{}},
	{"provider":"eclipse","name":"","id":"z","endpoints":{"svm":"https://svm.example"}}
]}`

func newTestRepository(t *testing.T, handler http.HandlerFunc) *Repository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	repo := NewRepository(config.NetworksConfig{
		AddNetworkEndpoint: server.URL + "/",
		LoadTimeout:        2 * time.Second,
	}, zap.NewNop())
	return repo.(*Repository)
}

func TestGetRemoteNetworks(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chain-config", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(document))
	})

	networks, err := repo.GetRemoteNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, networks, 2)

	assert.Equal(t, entity.RemoteNetwork{
		Provider: "eclipse",
		Name:     "Eclipse",
		ID:       "91002",
		Endpoints: entity.RemoteEndpoints{
			EVM: "https://evm.example",
			SVM: "https://svm.example",
		},
	}, networks[0])
	assert.Equal(t, []entity.ChainFamily{entity.FamilyEVM, entity.FamilySVM}, networks[0].Families())

	assert.Equal(t, "Ethereum", networks[1].Name)
	assert.Equal(t, "ETH", networks[1].NativeSymbol)
	assert.Equal(t, []entity.ChainFamily{entity.FamilyEVM}, networks[1].Families())
}

func TestGetRemoteNetworks_Gzip(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		zw := gzip.NewWriter(w)
		_, _ = zw.Write([]byte(document))
		_ = zw.Close()
	})

	networks, err := repo.GetRemoteNetworks(context.Background())
	require.NoError(t, err)
	assert.Len(t, networks, 2)
}

func TestGetRemoteNetworks_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "non-OK status", status: http.StatusServiceUnavailable, body: "down", wantErr: apperrors.ErrBadResponse},
		{name: "not found", status: http.StatusNotFound, body: "", wantErr: apperrors.ErrBadResponse},
		{name: "not json", status: http.StatusOK, body: "<html>", wantErr: apperrors.ErrSchemaValidation},
		{name: "missing result", status: http.StatusOK, body: `{"data":[]}`, wantErr: apperrors.ErrSchemaValidation},
		{name: "result not a list", status: http.StatusOK, body: `{"result":{"name":"x"}}`, wantErr: apperrors.ErrSchemaValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			networks, err := repo.GetRemoteNetworks(context.Background())
			require.Error(t, err)
			assert.Nil(t, networks)
			assert.ErrorIs(t, err, domain.ErrChainConfigUnavailable)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetRemoteNetworks_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	repo := NewRepository(config.NetworksConfig{AddNetworkEndpoint: url, LoadTimeout: time.Second}, zap.NewNop())
	_, err := repo.GetRemoteNetworks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetworkUnreachable)
}

func TestGetRemoteNetworks_ExpiredContext(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected once the context expired")
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := repo.GetRemoteNetworks(ctx)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}
