package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is one named input value for BuildMetadata.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered list of metadata inputs; order is display order.
type Fields []Field

// Metadata is an insertion-ordered mapping of field name to TypedValue.
type Metadata struct {
	keys   []string
	values map[string]TypedValue
}

// Set stores a value; re-setting an existing key keeps its original position.
func (m *Metadata) Set(name string, v TypedValue) {
	if m.values == nil {
		m.values = make(map[string]TypedValue)
	}
	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.values[name] = v
}

// Get returns the value stored under name.
func (m Metadata) Get(name string) (TypedValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Keys returns field names in display order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of fields.
func (m Metadata) Len() int {
	return len(m.keys)
}

// MarshalJSON encodes the metadata as a JSON object preserving insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the key order of the document.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if tok == nil {
			*m = Metadata{}
			return nil
		}
		return fmt.Errorf("metadata: expected object, got %v", tok)
	}
	out := Metadata{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: unexpected key %v", keyTok)
		}
		var v TypedValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("metadata field %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// BuildMetadata converts plain fields into typed metadata. Numbers and strings become
// string values; other values go through CoerceValue and are omitted when coercion fails.
func BuildMetadata(fields Fields) Metadata {
	md, _ := BuildMetadataReport(fields)
	return md
}

// BuildMetadataReport is BuildMetadata that also returns the coercion errors of dropped fields.
func BuildMetadataReport(fields Fields) (Metadata, map[string]error) {
	var md Metadata
	var dropped map[string]error
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		if s, ok := stringify(f.Value); ok {
			md.Set(f.Name, StringValue(s))
			continue
		}
		v, err := CoerceValue(f.Value)
		if err != nil {
			if dropped == nil {
				dropped = make(map[string]error)
			}
			dropped[f.Name] = err
			continue
		}
		md.Set(f.Name, v)
	}
	return md, dropped
}

func stringify(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
