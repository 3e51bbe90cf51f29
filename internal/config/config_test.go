package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.RPC.GetTimeout())
	assert.Equal(t, "configs/networks.yaml", cfg.Networks.CatalogPath)
	assert.Equal(t, time.Duration(0), cfg.Networks.GetRefreshInterval())
	assert.Equal(t, 15*time.Second, cfg.Networks.GetLoadTimeout())
	assert.Empty(t, cfg.Networks.AddNetworkEndpoint)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server:
  port: "9090"
networks:
  refresh_interval: 1m
`), 0o600))

	t.Setenv("ENTITY_RESOLVER_LOGGER_LEVEL", "debug")
	t.Setenv("ADD_NETWORK_ENDPOINT", "https://config.example")
	t.Setenv("EVM_CHAIN_DATA_SERVICE", "https://chaindata.example")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Networks.GetRefreshInterval())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "https://config.example", cfg.Networks.AddNetworkEndpoint)
	assert.Equal(t, "https://chaindata.example", cfg.EVM.ChainDataService)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [\n"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}
