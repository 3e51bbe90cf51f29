package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"entity-resolver/internal/pkg/apperrors"
)

// ValueType tags the payload carried by a TypedValue.
type ValueType string

// Known value types.
const (
	ValueString ValueType = "string"
	ValueStatus ValueType = "status"
	ValueList   ValueType = "list"
)

// TypedValue is a tagged metadata value rendered by the generic display layer.
type TypedValue struct {
	Type    ValueType `json:"type"`
	Payload any       `json:"payload"`
}

// StringValue builds a string-typed value.
func StringValue(s string) TypedValue {
	return TypedValue{Type: ValueString, Payload: s}
}

// StatusValue builds a status-typed value. The payload is either a bool or a number.
func StatusValue(payload any) TypedValue {
	return TypedValue{Type: ValueStatus, Payload: payload}
}

// ListValue builds a list-typed value.
func ListValue(items []string) TypedValue {
	return TypedValue{Type: ValueList, Payload: items}
}

// UnmarshalJSON decodes a TypedValue and validates its payload shape.
func (v *TypedValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    ValueType       `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var payload any
	if len(raw.Payload) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw.Payload))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return err
		}
	}
	coerced, err := CoerceValue(map[string]any{"type": string(raw.Type), "payload": payload})
	if err != nil {
		return err
	}
	*v = coerced
	return nil
}

// CoerceValue converts an arbitrary value into a TypedValue. It accepts TypedValue values,
// maps shaped like {"type": ..., "payload": ...} and string slices; everything else fails
// with apperrors.ErrLossyMetadataCoercion.
func CoerceValue(v any) (TypedValue, error) {
	switch val := v.(type) {
	case TypedValue:
		return checkPayload(val)
	case *TypedValue:
		if val == nil {
			return TypedValue{}, fmt.Errorf("%w: nil typed value", apperrors.ErrLossyMetadataCoercion)
		}
		return checkPayload(*val)
	case []string:
		return ListValue(val), nil
	case map[string]any:
		t, ok := val["type"].(string)
		if !ok {
			return TypedValue{}, fmt.Errorf("%w: missing type tag", apperrors.ErrLossyMetadataCoercion)
		}
		return checkPayload(TypedValue{Type: ValueType(t), Payload: val["payload"]})
	default:
		return TypedValue{}, fmt.Errorf("%w: unsupported value %T", apperrors.ErrLossyMetadataCoercion, v)
	}
}

func checkPayload(v TypedValue) (TypedValue, error) {
	switch v.Type {
	case ValueString:
		if _, ok := v.Payload.(string); ok {
			return v, nil
		}
	case ValueStatus:
		switch p := v.Payload.(type) {
		case bool:
			return v, nil
		case json.Number:
			if n, err := p.Int64(); err == nil {
				return StatusValue(n), nil
			}
		default:
			if isNumber(p) {
				return v, nil
			}
		}
	case ValueList:
		switch p := v.Payload.(type) {
		case []string:
			return v, nil
		case []any:
			items := make([]string, 0, len(p))
			for _, item := range p {
				s, ok := item.(string)
				if !ok {
					return TypedValue{}, fmt.Errorf("%w: list item %T", apperrors.ErrLossyMetadataCoercion, item)
				}
				items = append(items, s)
			}
			return ListValue(items), nil
		}
	default:
		return TypedValue{}, fmt.Errorf("%w: unknown type %q", apperrors.ErrLossyMetadataCoercion, v.Type)
	}
	return TypedValue{}, fmt.Errorf("%w: %s payload %T", apperrors.ErrLossyMetadataCoercion, v.Type, v.Payload)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
