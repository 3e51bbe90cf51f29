package domain

import (
	"errors"
	"fmt"

	"entity-resolver/internal/pkg/apperrors"
)

var (
	// ErrNetworkNotFound means no network is registered under the requested label.
	ErrNetworkNotFound = fmt.Errorf("%w: network", apperrors.ErrNotFoundInRegistry)

	// ErrEntityTypeNotFound means the network has no entity type with the requested name.
	ErrEntityTypeNotFound = fmt.Errorf("%w: entity type", apperrors.ErrNotFoundInRegistry)

	// ErrGetterNotFound means the entity type declares no getter for the requested field.
	ErrGetterNotFound = fmt.Errorf("%w: getter", apperrors.ErrNotFoundInRegistry)

	// ErrChainConfigUnavailable means the dynamic chain-config document could not be fetched or parsed.
	ErrChainConfigUnavailable = fmt.Errorf("%w: chain config", apperrors.ErrBadResponse)
)

var (
	// ErrDynamicRegistrationDisabled means no add-network endpoint is configured.
	ErrDynamicRegistrationDisabled = errors.New("dynamic network registration is disabled")

	// ErrRefreshInProgress means another refresh of the remote networks is still running.
	ErrRefreshInProgress = errors.New("network refresh already in progress")
)
