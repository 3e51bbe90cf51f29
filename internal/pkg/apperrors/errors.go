package apperrors

import "errors"

// Standard application errors
var (
	// ErrNetworkUnreachable is returned when an upstream endpoint could not be reached at transport level.
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrBadResponse is returned when an upstream endpoint answered with a non-success status or a JSON-RPC error.
	ErrBadResponse = errors.New("bad upstream response")

	// ErrSchemaValidation is returned when an upstream payload does not match the expected structure.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrNotFoundInRegistry is returned for an unknown network, entity type or getter field.
	ErrNotFoundInRegistry = errors.New("not found in registry")

	// ErrLossyMetadataCoercion is returned when a metadata value cannot be coerced into a typed value.
	ErrLossyMetadataCoercion = errors.New("metadata value dropped")

	// ErrInvalidInput is returned when an identifier is malformed for the requested lookup.
	ErrInvalidInput = errors.New("invalid input provided")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timed out")
)

// Kind returns a short label for the error kind, used as a structured log field.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetworkUnreachable):
		return "network_unreachable"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	case errors.Is(err, ErrSchemaValidation):
		return "schema_validation"
	case errors.Is(err, ErrNotFoundInRegistry):
		return "not_found_in_registry"
	case errors.Is(err, ErrLossyMetadataCoercion):
		return "lossy_metadata"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
