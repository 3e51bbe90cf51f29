package entity

import "strings"

// Protocol defines the type for RPC protocols.
type Protocol string

// Constants for known protocols.
const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolWS      Protocol = "ws"
	ProtocolWSS     Protocol = "wss"
	ProtocolUnknown Protocol = "unknown"
)

// ProtocolOf returns the protocol of an endpoint URL from its scheme.
func ProtocolOf(rawURL string) Protocol {
	scheme, _, found := strings.Cut(rawURL, "://")
	if !found {
		return ProtocolUnknown
	}
	switch strings.ToLower(scheme) {
	case "http":
		return ProtocolHTTP
	case "https":
		return ProtocolHTTPS
	case "ws":
		return ProtocolWS
	case "wss":
		return ProtocolWSS
	default:
		return ProtocolUnknown
	}
}

// IsWebSocket reports whether the protocol is ws or wss.
func (p Protocol) IsWebSocket() bool {
	return p == ProtocolWS || p == ProtocolWSS
}

// ChainFamily classifies a network by its RPC protocol family.
type ChainFamily string

// Supported chain families.
const (
	FamilyCosmos ChainFamily = "cosmos"
	FamilyEVM    ChainFamily = "evm"
	FamilySVM    ChainFamily = "svm"
)
