package chainconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	dto "entity-resolver/internal/adapter/storage/chainconfig/dto"
	"entity-resolver/internal/config"
	"entity-resolver/internal/domain"
	"entity-resolver/internal/domain/entity"
	domainRepo "entity-resolver/internal/domain/repository"
	"entity-resolver/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	chainConfigPath       = "/chain-config"
	defaultRequestTimeout = 15 * time.Second
)

// Compile-time check
var _ domainRepo.ChainConfigRepository = (*Repository)(nil)

// Repository implements ChainConfigRepository for fetching network descriptors from the chain-config service.
type Repository struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRepository creates a new chain-config repository instance. The document URL is derived from
// the configured add-network endpoint.
func NewRepository(cfg config.NetworksConfig, logger *zap.Logger) domainRepo.ChainConfigRepository {
	timeout := cfg.GetLoadTimeout()
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Repository{
		client:  &fasthttp.Client{},
		url:     strings.TrimRight(cfg.AddNetworkEndpoint, "/") + chainConfigPath,
		timeout: timeout,
		logger:  logger.Named("ChainConfigStorage"),
	}
}

// GetRemoteNetworks fetches the announced networks from the chain-config service.
func (r *Repository) GetRemoteNetworks(ctx context.Context) ([]entity.RemoteNetwork, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := r.timeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		requestTimeout := time.Until(deadline)
		if requestTimeout <= 0 {
			return nil, fmt.Errorf("%w: %w", domain.ErrChainConfigUnavailable, apperrors.ErrTimeout)
		}
		if requestTimeout < timeout {
			timeout = requestTimeout
		}
	}

	r.logger.Debug(
		"Fetching chain config",
		zap.String("url", r.url),
		zap.Duration("timeout", timeout),
	)

	err := r.client.DoTimeout(req, resp, timeout)
	if err != nil {
		r.logger.Error("Failed to execute request to chain-config service", zap.Error(err))
		return nil, fmt.Errorf("%w: request to %s failed: %w",
			domain.ErrChainConfigUnavailable, r.url, transportError(err),
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error(
			"Chain-config service returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()[:min(1024, len(resp.Body()))]),
		)
		return nil, fmt.Errorf("%w: chain-config returned status %d",
			domain.ErrChainConfigUnavailable, resp.StatusCode(),
		)
	}

	var body []byte
	contentEncoding := resp.Header.Peek(fasthttp.HeaderContentEncoding)
	if bytes.EqualFold(contentEncoding, []byte("gzip")) {
		r.logger.Debug("Received gzipped response from chain-config service")
		body, err = resp.BodyGunzip()
		if err != nil {
			r.logger.Error("Failed to gunzip chain-config response body", zap.Error(err))
			return nil, fmt.Errorf("%w: failed to decompress response: %v",
				domain.ErrChainConfigUnavailable, err,
			)
		}
	} else {
		body = resp.Body()
	}

	var document dto.ChainConfigRaw
	if err := json.Unmarshal(body, &document); err != nil || document.Result == nil {
		r.logger.Error("Chain-config response does not match the expected document",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: %w: expected {\"result\": [...]}",
			domain.ErrChainConfigUnavailable, apperrors.ErrSchemaValidation,
		)
	}

	r.logger.Info("Fetched chain config", zap.Int("count", len(document.Result)))

	networks := toDomainNetworks(document.Result, r.logger)
	r.logger.Info("Mapped chain config to remote networks", zap.Int("count", len(networks)))

	return networks, nil
}

func transportError(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) {
		return apperrors.ErrTimeout
	}
	return apperrors.ErrNetworkUnreachable
}
