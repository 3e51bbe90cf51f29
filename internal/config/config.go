package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Networks NetworksConfig `mapstructure:"networks"`
	EVM      EVMConfig      `mapstructure:"evm"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
	Output   string `mapstructure:"output"`
}

// RPCConfig holds settings of the outbound RPC transport.
type RPCConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	MaxResponseBodySize int           `mapstructure:"max_response_body_size"`
	UserAgent           string        `mapstructure:"user_agent"`
}

// NetworksConfig holds the sources of network definitions.
type NetworksConfig struct {
	CatalogPath        string        `mapstructure:"catalog_path"`
	AddNetworkEndpoint string        `mapstructure:"add_network_endpoint"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	LoadTimeout        time.Duration `mapstructure:"load_timeout"`
}

// EVMConfig holds the external services used by EVM networks.
type EVMConfig struct {
	SignatureLookupURL string `mapstructure:"signature_lookup_url"`
	ChainDataService   string `mapstructure:"chain_data_service"`
}

// legacyEnv maps unprefixed environment variables still honoured for compatibility.
var legacyEnv = map[string]string{
	"networks.add_network_endpoint": "ADD_NETWORK_ENDPOINT",
	"evm.chain_data_service":        "EVM_CHAIN_DATA_SERVICE",
}

// Load reads configuration from .env, the config file and environment variables.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	v := viper.New()

	v.SetDefault("app.name", "entity-resolver")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("rpc.timeout", "10s")
	v.SetDefault("rpc.max_conns_per_host", 64)
	v.SetDefault("rpc.max_response_body_size", 32<<20)
	v.SetDefault("rpc.user_agent", "entity-resolver")
	v.SetDefault("networks.catalog_path", "configs/networks.yaml")
	v.SetDefault("networks.add_network_endpoint", "")
	v.SetDefault("networks.refresh_interval", "0s")
	v.SetDefault("networks.load_timeout", "15s")
	v.SetDefault("evm.signature_lookup_url", "https://api.openchain.xyz/signature-database/v1/lookup")
	v.SetDefault("evm.chain_data_service", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintf(os.Stderr, "Warning: Config file not found in %s or '.', using defaults/env vars\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("ENTITY_RESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c RPCConfig) GetTimeout() time.Duration {
	return c.Timeout
}

func (c NetworksConfig) GetRefreshInterval() time.Duration {
	return c.RefreshInterval
}

func (c NetworksConfig) GetLoadTimeout() time.Duration {
	return c.LoadTimeout
}
