package entity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMetadata_DropsUncoercibleNestedObject(t *testing.T) {
	md := BuildMetadata(Fields{
		{"Name", "alpha"},
		{"Nested", map[string]any{"foo": "bar"}},
	})

	assert.Equal(t, []string{"Name"}, md.Keys())
	v, ok := md.Get("Name")
	require.True(t, ok)
	assert.Equal(t, StringValue("alpha"), v)
}

func TestBuildMetadata_Stringifies(t *testing.T) {
	md := BuildMetadata(Fields{
		{"Int", 42},
		{"Uint", uint64(7)},
		{"Float", 1.5},
		{"WholeFloat", float64(12)},
		{"Number", json.Number("99")},
	})

	want := map[string]string{"Int": "42", "Uint": "7", "Float": "1.5", "WholeFloat": "12", "Number": "99"}
	for k, expected := range want {
		v, ok := md.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, StringValue(expected), v, k)
	}
}

func TestBuildMetadata_PreservesOrderAndPassesTypedValues(t *testing.T) {
	md, dropped := BuildMetadataReport(Fields{
		{"Zeta", "z"},
		{"Status", StatusValue(true)},
		{"Missing", nil},
		{"Flag", true},
		{"Topics", []string{"0xabc"}},
		{"Alpha", "a"},
		{"Map", map[string]any{"type": "status", "payload": false}},
		{"BadStatus", map[string]any{"type": "status", "payload": "yes"}},
	})

	assert.Equal(t, []string{"Zeta", "Status", "Topics", "Alpha", "Map"}, md.Keys())
	assert.Contains(t, dropped, "Flag")
	assert.Contains(t, dropped, "BadStatus")
	assert.NotContains(t, dropped, "Missing")

	v, _ := md.Get("Map")
	assert.Equal(t, StatusValue(false), v)
}

func TestMetadata_JSONRoundTripKeepsOrder(t *testing.T) {
	md := BuildMetadata(Fields{
		{"Height", "10"},
		{"Status", StatusValue(int64(1))},
		{"Chain Id", "test-1"},
	})

	data, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Height":{"type":"string","payload":"10"},"Status":{"type":"status","payload":1},"Chain Id":{"type":"string","payload":"test-1"}}`, string(data))
	assert.Equal(t, `{"Height":{"type":"string","payload":"10"},"Status":{"type":"status","payload":1},"Chain Id":{"type":"string","payload":"test-1"}}`, string(data))

	var decoded Metadata
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, md.Keys(), decoded.Keys())
	v, _ := decoded.Get("Status")
	assert.Equal(t, StatusValue(int64(1)), v)
}

func TestNetworkDefinition_Validate(t *testing.T) {
	one := func(_ context.Context, _ string) *Entity { return nil }
	many := func(_ context.Context, _ string) []Entity { return nil }

	tests := []struct {
		name    string
		def     NetworkDefinition
		wantErr bool
	}{
		{
			name: "valid",
			def: NetworkDefinition{Label: "n", EntityTypes: []EntityTypeDefinition{
				{Name: TypeBlock, Getters: []Getter{{Field: "height", GetOne: one}, {Field: "hash", GetOne: one}}},
				{Name: TypeTransaction, Getters: []Getter{{Field: "height", GetMany: many}}},
			}},
		},
		{
			name:    "empty label",
			def:     NetworkDefinition{},
			wantErr: true,
		},
		{
			name: "duplicate field",
			def: NetworkDefinition{Label: "n", EntityTypes: []EntityTypeDefinition{
				{Name: TypeBlock, Getters: []Getter{{Field: "hash", GetOne: one}, {Field: "hash", GetMany: many}}},
			}},
			wantErr: true,
		},
		{
			name: "both functions",
			def: NetworkDefinition{Label: "n", EntityTypes: []EntityTypeDefinition{
				{Name: TypeBlock, Getters: []Getter{{Field: "hash", GetOne: one, GetMany: many}}},
			}},
			wantErr: true,
		},
		{
			name: "duplicate type",
			def: NetworkDefinition{Label: "n", EntityTypes: []EntityTypeDefinition{
				{Name: TypeBlock}, {Name: TypeBlock},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRPCURL(t *testing.T) {
	u, err := NewRPCURL(" https://rpc.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, RPCURL("https://rpc.example.com"), u)
	assert.Equal(t, ProtocolHTTPS, u.Protocol())

	_, err = NewRPCURL("ftp://rpc.example.com")
	assert.Error(t, err)
	_, err = NewRPCURL("")
	assert.Error(t, err)
}
