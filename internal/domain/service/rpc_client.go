package service

import (
	"context"
	"encoding/json"
)

// Response is a raw upstream HTTP response. Transport failures are reported as errors;
// HTTP statuses are left for the caller to judge.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RPCClient is the outbound transport shared by all chain-family adapters.
type RPCClient interface {
	// Get issues a GET request against a REST-style endpoint.
	Get(ctx context.Context, url string) (Response, error)

	// PostJSON posts body encoded as JSON.
	PostJSON(ctx context.Context, url string, body any) (Response, error)

	// Call performs a JSON-RPC 2.0 call and returns the raw result.
	// Non-2xx statuses and JSON-RPC errors are reported as apperrors.ErrBadResponse.
	Call(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error)
}
