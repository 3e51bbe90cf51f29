package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// RPCURL is a validated upstream endpoint. Trailing slashes are trimmed so that
// REST-style paths can be appended directly.
type RPCURL string

// NewRPCURL validates rawURL and returns it as an RPCURL.
func NewRPCURL(rawURL string) (RPCURL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("rpc url cannot be empty")
	}

	u, err := url.ParseRequestURI(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url format '%s': %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("rpc url '%s' has no host", rawURL)
	}

	if ProtocolOf(trimmed) == ProtocolUnknown {
		return "", fmt.Errorf("rpc url '%s' has unsupported scheme: '%s'", rawURL, u.Scheme)
	}

	return RPCURL(strings.TrimRight(trimmed, "/")), nil
}

// String returns the string representation of the RPCURL.
func (r RPCURL) String() string {
	return string(r)
}

// Protocol returns the transport protocol of the endpoint.
func (r RPCURL) Protocol() Protocol {
	return ProtocolOf(string(r))
}
