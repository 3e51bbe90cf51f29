package chainconfig_dto

// ChainConfigRaw is the document served under {ADD_NETWORK_ENDPOINT}/chain-config.
type ChainConfigRaw struct {
	Result []RemoteNetworkRaw `json:"result"`
}

// RemoteNetworkRaw describes one announced network as received from the chain-config service.
type RemoteNetworkRaw struct {
	Provider     string       `json:"provider"`
	Name         string       `json:"name"`
	ID           string       `json:"id"`
	Endpoints    EndpointsRaw `json:"endpoints"`
	NativeSymbol string       `json:"nativeSymbol,omitempty"`
}

// EndpointsRaw lists the per-family RPC endpoints of a network. Both are optional.
type EndpointsRaw struct {
	EVM string `json:"evm,omitempty"`
	SVM string `json:"svm,omitempty"`
}
