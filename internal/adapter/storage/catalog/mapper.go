package catalog

import (
	"os"
	"strings"

	"entity-resolver/internal/domain/entity"

	"go.uber.org/zap"
)

// expand substitutes ${VAR} references. Unset variables expand to the empty string.
func expand(s string) string {
	return strings.TrimSpace(os.ExpandEnv(s))
}

// mapEndpoint converts a configured endpoint. ok is false when the value is set but invalid;
// an unset value maps to an empty RPCURL.
func mapEndpoint(raw, network string, logger *zap.Logger) (rpcURL entity.RPCURL, ok bool) {
	value := expand(raw)
	if value == "" {
		return "", true
	}
	rpcURL, err := entity.NewRPCURL(value)
	if err != nil {
		logger.Warn("Skipping invalid RPC URL during mapping",
			zap.String("rawUrl", value),
			zap.String("network", network),
			zap.Error(err))
		return "", false
	}
	return rpcURL, true
}

func toDomainCatalog(raw catalogRaw, logger *zap.Logger) entity.Catalog {
	catalog := entity.Catalog{
		Cosmos:  make([]entity.CosmosNetwork, 0, len(raw.Cosmos)),
		Remotes: make([]entity.RemoteNetwork, 0, len(raw.Remotes)),
	}

	for _, c := range raw.Cosmos {
		if c.Label == "" {
			logger.Warn("Skipping cosmos network without a label")
			continue
		}
		rpcURL, ok := mapEndpoint(c.RPC, c.Label, logger)
		if !ok {
			continue
		}
		if rpcURL == "" {
			logger.Debug("Cosmos network has no RPC endpoint configured", zap.String("network", c.Label))
			continue
		}
		catalog.Cosmos = append(catalog.Cosmos, entity.CosmosNetwork{
			Label:         c.Label,
			RPC:           rpcURL,
			AccountPrefix: c.AccountPrefix,
			Denom:         c.Denom,
			DisplayDenom:  c.DisplayDenom,
			HistoryParams: expand(c.HistoryParams),
		})
	}

	for _, r := range raw.Remotes {
		if r.Name == "" {
			logger.Warn("Skipping remote network without a name", zap.String("id", r.ID))
			continue
		}
		evmURL, evmOK := mapEndpoint(r.Endpoints.EVM, r.Name, logger)
		svmURL, svmOK := mapEndpoint(r.Endpoints.SVM, r.Name, logger)
		if !evmOK || !svmOK {
			continue
		}
		network := entity.RemoteNetwork{
			Provider:     r.Provider,
			Name:         r.Name,
			ID:           r.ID,
			Endpoints:    entity.RemoteEndpoints{EVM: evmURL, SVM: svmURL},
			NativeSymbol: r.NativeSymbol,
		}
		if len(network.Families()) == 0 {
			logger.Debug("Remote network has no endpoints configured", zap.String("network", r.Name))
			continue
		}
		catalog.Remotes = append(catalog.Remotes, network)
	}

	return catalog
}
