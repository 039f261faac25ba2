package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaviz/schemaviz/pkg/er"
	schemavizerrors "github.com/schemaviz/schemaviz/pkg/errors"
)

func TestParseRelationshipLine(t *testing.T) {
	d, err := Parse(`erDiagram
CUSTOMER ||--o{ ORDER : places`)
	require.NoError(t, err)

	require.Len(t, d.Relationships(), 1)
	rel := d.Relationships()[0]
	assert.Equal(t, "CUSTOMER", rel.EntityA)
	assert.Equal(t, "ORDER", rel.EntityB)
	assert.Equal(t, "places", rel.Role)
	assert.Equal(t, er.ExactlyOne, rel.Spec.CardA)
	assert.Equal(t, er.ZeroOrMore, rel.Spec.CardB)
	assert.Equal(t, er.Identifying, rel.Spec.Identification)

	// Both endpoints are declared implicitly.
	assert.Equal(t, []string{"CUSTOMER", "ORDER"}, d.Entities().Keys())
}

func TestParseCardinalityTokens(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		cardA er.Cardinality
		cardB er.Cardinality
		ident er.Identification
	}{
		{"zero-or-one to one-or-more", "A |o--|{ B", er.ZeroOrOne, er.OneOrMore, er.Identifying},
		{"zero-or-more dashed", "A }o..o{ B", er.ZeroOrMore, er.ZeroOrMore, er.NonIdentifying},
		{"one-or-more to zero-or-one", "A }|--o| B", er.OneOrMore, er.ZeroOrOne, er.Identifying},
		{"parent", "A u--|| B", er.MDParent, er.ExactlyOne, er.Identifying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse("erDiagram\n" + tt.line)
			require.NoError(t, err)
			require.Len(t, d.Relationships(), 1)
			rel := d.Relationships()[0]
			assert.Equal(t, tt.cardA, rel.Spec.CardA)
			assert.Equal(t, tt.cardB, rel.Spec.CardB)
			assert.Equal(t, tt.ident, rel.Spec.Identification)
		})
	}
}

func TestParseAttributeEndpoints(t *testing.T) {
	d, err := Parse(`erDiagram
ORDER.customer_id }o--|| CUSTOMER.id : "belongs to"`)
	require.NoError(t, err)

	rel := d.Relationships()[0]
	assert.Equal(t, "customer_id", rel.AttributeA)
	assert.Equal(t, "id", rel.AttributeB)
	assert.Equal(t, "belongs to", rel.Role)
}

func TestParseAttributeBlock(t *testing.T) {
	d, err := Parse(`erDiagram
CUSTOMER {
    int id PK
    string name
    string email UK,FK "work address"
    nickname
}`)
	require.NoError(t, err)

	e, ok := d.Entities().Get("CUSTOMER")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "email", "nickname"}, e.Attributes.Keys())

	id, _ := e.Attributes.Get("id")
	assert.Equal(t, "int", id.Type)
	assert.Equal(t, []string{"PK"}, id.Keys)

	email, _ := e.Attributes.Get("email")
	assert.Equal(t, []string{"UK", "FK"}, email.Keys)

	nick, _ := e.Attributes.Get("nickname")
	assert.Empty(t, nick.Type)
	assert.Empty(t, nick.Keys)
}

func TestParseAlias(t *testing.T) {
	d, err := Parse(`erDiagram
CUSTOMER["Customer Account"] {
    int id
}
CUSTOMER["Ignored Later Alias"] ||--o{ ORDER : places`)
	require.NoError(t, err)

	e, _ := d.Entities().Get("CUSTOMER")
	assert.Equal(t, "Customer Account", e.Alias)
}

func TestParseTitleAndAccessibility(t *testing.T) {
	d, err := Parse(`erDiagram
title Order handling
accTitle: Orders
accDescr: Customers place orders
CUSTOMER`)
	require.NoError(t, err)

	assert.Equal(t, "Order handling", d.Title())
	assert.Equal(t, "Orders", d.AccTitle())
	assert.Equal(t, "Customers place orders", d.AccDescr())
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	d, err := Parse(`erDiagram

%% this is a comment
CUSTOMER
%% another
ORDER`)
	require.NoError(t, err)
	assert.Equal(t, []string{"CUSTOMER", "ORDER"}, d.Entities().Keys())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing header", "CUSTOMER ||--o{ ORDER : places"},
		{"empty input", ""},
		{"garbage statement", "erDiagram\n!!!"},
		{"malformed relationship", "erDiagram\nA ||--xx B"},
		{"unterminated block", "erDiagram\nCUSTOMER {\n int id"},
		{"malformed attribute", "erDiagram\nCUSTOMER {\n int id PK FK extra\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, schemavizerrors.Is(err, schemavizerrors.ErrCodeParse),
				"error should carry PARSE_ERROR code, got %v", err)
		})
	}
}

func TestParseMergePreservesEarlierFields(t *testing.T) {
	d, err := Parse(`erDiagram
CUSTOMER {
    int id PK
}
CUSTOMER {
    id
    string name
}`)
	require.NoError(t, err)

	e, _ := d.Entities().Get("CUSTOMER")
	id, _ := e.Attributes.Get("id")
	assert.Equal(t, "int", id.Type, "bare re-declaration must not erase the type")
	assert.Equal(t, []string{"PK"}, id.Keys)
	assert.Equal(t, []string{"id", "name"}, e.Attributes.Keys())
}
