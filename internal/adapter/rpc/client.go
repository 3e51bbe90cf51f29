package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"entity-resolver/internal/config"
	"entity-resolver/internal/domain/entity"
	domainService "entity-resolver/internal/domain/service"
	"entity-resolver/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCClient = (*Client)(nil)

const defaultTimeout = 10 * time.Second

// Client implements domainService.RPCClient over fasthttp, and over websocket for ws/wss endpoints.
type Client struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new RPC client instance.
func NewClient(cfg config.RPCConfig, logger *zap.Logger) domainService.RPCClient {
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &fasthttp.Client{
			Name:                cfg.UserAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     cfg.MaxConnsPerHost,
			MaxResponseBodySize: cfg.MaxResponseBodySize,
		},
		timeout: timeout,
		logger:  logger.Named("RPCClient"),
	}
}

// jsonRPCRequest is the JSON-RPC 2.0 request body. Field order is part of the wire contract.
type jsonRPCRequest struct {
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
	Jsonrpc string `json:"jsonrpc"`
}

// JSONRPCResponse defines the basic structure for a JSON-RPC response.
type JSONRPCResponse struct {
	ID      interface{}     `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure for a JSON-RPC error.
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Get issues a GET request and returns the response regardless of its status code.
func (c *Client) Get(ctx context.Context, url string) (domainService.Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	return c.do(ctx, req, resp)
}

// PostJSON posts body as JSON and returns the response regardless of its status code.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (domainService.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domainService.Response{}, fmt.Errorf("%w: failed to encode request body: %v",
			apperrors.ErrInvalidInput, err,
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	return c.do(ctx, req, resp)
}

// Call performs a JSON-RPC call, over websocket when the endpoint is ws/wss and over HTTP POST otherwise.
func (c *Client) Call(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(jsonRPCRequest{Method: method, Params: params, ID: 1, Jsonrpc: "2.0"})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s params: %v", apperrors.ErrInvalidInput, method, err)
	}

	if entity.ProtocolOf(endpoint).IsWebSocket() {
		body, err := c.callWS(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}
		return c.validateJSONRPCResponse(endpoint, method, body)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	r, err := c.do(ctx, req, resp)
	if err != nil {
		return nil, err
	}
	if !r.OK() {
		c.logger.Debug("JSON-RPC call returned non-OK status",
			zap.String("url", endpoint),
			zap.String("method", method),
			zap.Int("statusCode", r.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s %s returned http status %d",
			apperrors.ErrBadResponse, endpoint, method, r.StatusCode,
		)
	}
	return c.validateJSONRPCResponse(endpoint, method, r.Body)
}

// do executes the request bounded by the smaller of the client timeout and the ctx deadline.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) (domainService.Response, error) {
	url := string(req.URI().FullURI())
	if err := ctx.Err(); err != nil {
		return domainService.Response{}, fmt.Errorf("%w: request to %s not sent: %v",
			apperrors.ErrNetworkUnreachable, url, err,
		)
	}

	timeout := c.timeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		requestTimeout := time.Until(deadline)
		if requestTimeout > 0 && requestTimeout < timeout {
			timeout = requestTimeout
		}
	}

	startTime := time.Now()
	err := c.client.DoTimeout(req, resp, timeout)
	latency := time.Since(startTime)

	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			c.logger.Debug("HTTP request timed out",
				zap.String("url", url),
				zap.Duration("timeout", timeout),
				zap.Error(err),
			)
			return domainService.Response{}, fmt.Errorf("%w: %w: http request to %s timed out after %v: %v",
				apperrors.ErrNetworkUnreachable, apperrors.ErrTimeout, url, timeout, err,
			)
		}
		c.logger.Debug("HTTP request failed", zap.String("url", url), zap.Error(err))
		return domainService.Response{}, fmt.Errorf("%w: http request to %s failed: %v",
			apperrors.ErrNetworkUnreachable, url, err,
		)
	}

	c.logger.Debug("HTTP request completed",
		zap.String("url", url),
		zap.Int("statusCode", resp.StatusCode()),
		zap.Duration("latency", latency),
	)

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return domainService.Response{StatusCode: resp.StatusCode(), Body: body}, nil
}

// callWS sends one JSON-RPC request over a fresh websocket connection and returns the reply.
func (c *Client) callWS(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.timeout,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		c.logger.Debug("WSS dial failed", zap.String("url", endpoint), zap.Error(err))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: wss dial to %s timed out: %v",
				apperrors.ErrNetworkUnreachable, apperrors.ErrTimeout, endpoint, err,
			)
		}
		return nil, fmt.Errorf("%w: wss dial to %s failed: %v", apperrors.ErrNetworkUnreachable, endpoint, err)
	}
	defer conn.Close()

	operationTimeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < operationTimeout {
		operationTimeout = time.Until(deadline)
	}
	if operationTimeout <= 0 {
		return nil, fmt.Errorf("%w: %w: wss call to %s has no time left",
			apperrors.ErrNetworkUnreachable, apperrors.ErrTimeout, endpoint,
		)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(operationTimeout))
	_ = conn.SetReadDeadline(time.Now().Add(operationTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.Debug("WSS write message failed", zap.String("url", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: wss write to %s failed: %v", apperrors.ErrNetworkUnreachable, endpoint, err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.logger.Debug("WSS read message failed", zap.String("url", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: wss read from %s failed: %v", apperrors.ErrNetworkUnreachable, endpoint, err)
	}
	return message, nil
}

// validateJSONRPCResponse unwraps the JSON-RPC envelope and returns its result.
func (c *Client) validateJSONRPCResponse(endpoint, method string, body []byte) (json.RawMessage, error) {
	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		c.logger.Debug("JSON-RPC response is not valid JSON",
			zap.String("url", endpoint),
			zap.String("method", method),
			zap.ByteString("bodySample", body[:min(1024, len(body))]),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s returned invalid JSON: %v",
			apperrors.ErrSchemaValidation, endpoint, method, err,
		)
	}

	if rpcResp.Error != nil {
		c.logger.Debug("JSON-RPC call returned error",
			zap.String("url", endpoint),
			zap.String("method", method),
			zap.Int("errorCode", rpcResp.Error.Code),
			zap.String("errorMessage", rpcResp.Error.Message),
		)
		return nil, fmt.Errorf("%w: %s %s returned json-rpc error: %d %s",
			apperrors.ErrBadResponse, endpoint, method, rpcResp.Error.Code, rpcResp.Error.Message,
		)
	}

	if rpcResp.Jsonrpc != "2.0" {
		return nil, fmt.Errorf("%w: %s %s returned jsonrpc version %q",
			apperrors.ErrSchemaValidation, endpoint, method, rpcResp.Jsonrpc,
		)
	}

	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil, fmt.Errorf("%w: %s %s returned a null result",
			apperrors.ErrSchemaValidation, endpoint, method,
		)
	}

	return rpcResp.Result, nil
}
