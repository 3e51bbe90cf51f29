package cli

import (
	"bytes"
	"context"
	"testing"

	"entity-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_Entity(t *testing.T) {
	var buf bytes.Buffer
	e := entity.Entity{
		UniqueIdentifier:      "ABC123",
		UniqueIdentifierLabel: "Hash",
		Context:               entity.Context{Network: "Dymension Hub", EntityTypeName: "Transaction"},
	}
	e.Metadata.Set("Height", entity.StringValue("42"))
	e.Metadata.Set("Status", entity.StatusValue(false))
	e.Metadata.Set("Topics", entity.ListValue([]string{"0x01", "0x02"}))

	NewRenderer(&buf).Entity(e)

	out := buf.String()
	assert.Contains(t, out, "Transaction")
	assert.Contains(t, out, "on Dymension Hub")
	assert.Contains(t, out, "ABC123")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "0x01, 0x02")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Height")), bytes.Index(buf.Bytes(), []byte("Status")))
}

func TestRenderer_Value(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})

	tests := []struct {
		name string
		v    entity.TypedValue
		want string
	}{
		{name: "string", v: entity.StringValue("1.5 DYM"), want: "1.5 DYM"},
		{name: "status true", v: entity.StatusValue(true), want: "success"},
		{name: "status number", v: entity.StatusValue(int64(1)), want: "1"},
		{name: "list", v: entity.ListValue([]string{"a", "b"}), want: "a, b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, r.Value(tt.v), tt.want)
		})
	}
}

func TestRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Entities(nil)
	r.Refs(nil)
	r.Networks(nil)

	assert.Contains(t, buf.String(), "no entities")
	assert.Contains(t, buf.String(), "no associated entities")
	assert.Contains(t, buf.String(), "no networks registered")
}

func TestRenderer_Networks(t *testing.T) {
	var buf bytes.Buffer
	one := func(context.Context, string) *entity.Entity { return nil }
	many := func(context.Context, string) []entity.Entity { return nil }

	NewRenderer(&buf).Networks([]entity.NetworkDefinition{{
		Label: "Celestia Mocha",
		EntityTypes: []entity.EntityTypeDefinition{{
			Name:    "Transaction",
			Getters: []entity.Getter{{Field: "hash", GetOne: one}, {Field: "height", GetMany: many}},
		}},
	}})

	assert.Contains(t, buf.String(), "Celestia Mocha")
	assert.Contains(t, buf.String(), "by hash, height (many)")
}
