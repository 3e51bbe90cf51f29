// Package chainutil holds the helpers shared by the chain-family adapters: canonical raw
// record encoding, flexible numeric JSON fields, and failure reporting at the adapter boundary.
package chainutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"entity-resolver/internal/domain/entity"
	"entity-resolver/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Validator is implemented by every schema record.
type Validator interface {
	Validate() error
}

// EncodeRaw serializes a canonical record into an Entity raw string.
func EncodeRaw(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeRaw re-parses a raw string produced by EncodeRaw and validates it.
func DecodeRaw[T any, PT interface {
	*T
	Validator
}](raw string) (T, error) {
	var out T
	if strings.TrimSpace(raw) == "" {
		return out, fmt.Errorf("%w: empty raw record", apperrors.ErrSchemaValidation)
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: raw record: %v", apperrors.ErrSchemaValidation, err)
	}
	if err := PT(&out).Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeJSON decodes data into T and validates it.
func DecodeJSON[T any, PT interface {
	*T
	Validator
}](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", apperrors.ErrSchemaValidation, err)
	}
	if err := PT(&out).Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// Invalid builds a schema validation error for a record field.
func Invalid(record, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", apperrors.ErrSchemaValidation, record, fmt.Sprintf(format, args...))
}

// Number is a JSON numeric field that upstreams encode as a number, a decimal string or a 0x-hex string.
type Number string

// UnmarshalJSON accepts numbers and strings.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = Number(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = Number(num.String())
	return nil
}

// String returns the field as received.
func (n Number) String() string {
	return string(n)
}

// Uint64 parses the field as a decimal or 0x-hex unsigned integer.
func (n Number) Uint64() (uint64, error) {
	s := strings.TrimSpace(string(n))
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// Valid reports whether the field parses as an unsigned integer.
func (n Number) Valid() bool {
	_, err := n.Uint64()
	return err == nil
}

// Boundary reports failures of one adapter with structured fields, without changing
// the nil/empty contract seen by callers.
type Boundary struct {
	logger  *zap.Logger
	network string
}

// NewBoundary creates a Boundary for a network.
func NewBoundary(logger *zap.Logger, network string) Boundary {
	return Boundary{logger: logger, network: network}
}

// Fail logs a failed lookup. Schema drift and upstream errors are warnings; malformed input is debug.
func (b Boundary) Fail(op, value string, err error) {
	kind := apperrors.Kind(err)
	fields := []zap.Field{
		zap.String("network", b.network),
		zap.String("op", op),
		zap.String("value", value),
		zap.String("errorKind", kind),
		zap.Error(err),
	}
	if kind == "invalid_input" {
		b.logger.Debug("Lookup rejected", fields...)
		return
	}
	b.logger.Warn("Lookup failed", fields...)
}

// Metadata builds entity metadata and logs dropped fields at debug level.
func (b Boundary) Metadata(op string, fields entity.Fields) entity.Metadata {
	md, dropped := entity.BuildMetadataReport(fields)
	for name, err := range dropped {
		b.logger.Debug("Metadata field dropped",
			zap.String("network", b.network),
			zap.String("op", op),
			zap.String("field", name),
			zap.Error(err),
		)
	}
	return md
}

// SplitPath splits "<hash>/<segment>" identifiers used by message and log lookups.
func SplitPath(path string) (string, string, error) {
	hash, segment, found := strings.Cut(path, "/")
	if !found || hash == "" || segment == "" || strings.Contains(segment, "/") {
		return "", "", fmt.Errorf("%w: path %q is not <hash>/<segment>", apperrors.ErrInvalidInput, path)
	}
	return hash, segment, nil
}

// ParseIndex parses a non-negative decimal index.
func ParseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: index %q", apperrors.ErrInvalidInput, s)
	}
	return i, nil
}
