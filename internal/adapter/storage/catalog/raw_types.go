package catalog

// catalogRaw is the on-disk layout of the network catalog.
type catalogRaw struct {
	Cosmos  []cosmosNetworkRaw `yaml:"cosmos"`
	Remotes []remoteNetworkRaw `yaml:"remotes"`
}

type cosmosNetworkRaw struct {
	Label         string `yaml:"label"`
	RPC           string `yaml:"rpc"`
	AccountPrefix string `yaml:"account_prefix"`
	Denom         string `yaml:"denom"`
	DisplayDenom  string `yaml:"display_denom"`
	HistoryParams string `yaml:"history_params"`
}

type remoteNetworkRaw struct {
	Provider     string       `yaml:"provider"`
	Name         string       `yaml:"name"`
	ID           string       `yaml:"id"`
	NativeSymbol string       `yaml:"native_symbol"`
	Endpoints    endpointsRaw `yaml:"endpoints"`
}

type endpointsRaw struct {
	EVM string `yaml:"evm"`
	SVM string `yaml:"svm"`
}

// defaultCatalog is used when no catalog file exists.
const defaultCatalog = `
remotes:
  - provider: eclipse
    name: Ethereum
    id: ethereum
    native_symbol: ETH
    endpoints:
      evm: https://rpc.ankr.com/eth
  - provider: eclipse
    name: Solana
    id: solana
    endpoints:
      svm: ${SOLANA_RPC}
`
