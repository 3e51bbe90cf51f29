package chainconfig

import (
	dto "entity-resolver/internal/adapter/storage/chainconfig/dto"
	"entity-resolver/internal/domain/entity"

	"go.uber.org/zap"
)

// mapEndpoint converts an optional raw endpoint. An empty string maps to an empty RPCURL.
func mapEndpoint(raw, family string, network dto.RemoteNetworkRaw, logger *zap.Logger) (entity.RPCURL, bool) {
	if raw == "" {
		return "", true
	}
	rpcURL, err := entity.NewRPCURL(raw)
	if err != nil {
		logger.Warn("Skipping invalid RPC URL during mapping",
			zap.String("rawUrl", raw),
			zap.String("family", family),
			zap.String("network", network.Name),
			zap.Error(err))
		return "", false
	}
	return rpcURL, true
}

// toDomainNetworks converts raw descriptors to domain remote networks.
// Descriptors without a name or without any usable endpoint are skipped.
func toDomainNetworks(raws []dto.RemoteNetworkRaw, logger *zap.Logger) []entity.RemoteNetwork {
	if raws == nil {
		return nil
	}
	networks := make([]entity.RemoteNetwork, 0, len(raws))
	for _, raw := range raws {
		if raw.Name == "" {
			logger.Warn("Skipping network descriptor without a name", zap.String("id", raw.ID))
			continue
		}
		evmURL, evmOK := mapEndpoint(raw.Endpoints.EVM, string(entity.FamilyEVM), raw, logger)
		svmURL, svmOK := mapEndpoint(raw.Endpoints.SVM, string(entity.FamilySVM), raw, logger)
		if !evmOK || !svmOK {
			continue
		}

		network := entity.RemoteNetwork{
			Provider:     raw.Provider,
			Name:         raw.Name,
			ID:           raw.ID,
			Endpoints:    entity.RemoteEndpoints{EVM: evmURL, SVM: svmURL},
			NativeSymbol: raw.NativeSymbol,
		}
		if len(network.Families()) == 0 {
			logger.Warn("Skipping network descriptor without endpoints", zap.String("network", raw.Name))
			continue
		}
		networks = append(networks, network)
	}
	return networks
}
