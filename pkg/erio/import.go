package erio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schemaviz/schemaviz/pkg/er"
)

var cardFromString = map[string]er.Cardinality{
	"zero-or-one":  er.ZeroOrOne,
	"zero-or-more": er.ZeroOrMore,
	"one-or-more":  er.OneOrMore,
	"exactly-one":  er.ExactlyOne,
	"parent":       er.MDParent,
}

var identFromString = map[string]er.Identification{
	"identifying":     er.Identifying,
	"non-identifying": er.NonIdentifying,
}

// ReadJSON decodes a JSON model from r into a diagram.
//
// ReadJSON returns an error if the JSON is malformed, if an entity or
// attribute has an empty name, or if a relationship names an unknown
// cardinality or identification. Relationship endpoints are not validated
// against the entity list; the renderer decides how to handle dangling
// references.
//
// The returned diagram is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*er.Diagram, error) {
	var data model
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	d := er.NewDiagram()
	d.SetTitle(data.Title)
	d.SetAccTitle(data.AccTitle)
	d.SetAccDescr(data.AccDescr)

	for _, ent := range data.Entities {
		if ent.Name == "" {
			return nil, fmt.Errorf("entity with empty name")
		}
		d.AddEntity(ent.Name, ent.Alias)
		attrs := make([]er.Attribute, 0, len(ent.Attributes))
		for _, a := range ent.Attributes {
			if a.Name == "" {
				return nil, fmt.Errorf("entity %s: attribute with empty name", ent.Name)
			}
			attrs = append(attrs, er.Attribute{Name: a.Name, Type: a.Type, Keys: a.Keys})
		}
		if len(attrs) > 0 {
			d.AddAttributes(ent.Name, attrs)
		}
	}

	for i, rel := range data.Relationships {
		cardA, ok := cardFromString[rel.CardA]
		if !ok {
			return nil, fmt.Errorf("relationship %d: unknown cardinality %q", i, rel.CardA)
		}
		cardB, ok := cardFromString[rel.CardB]
		if !ok {
			return nil, fmt.Errorf("relationship %d: unknown cardinality %q", i, rel.CardB)
		}
		ident, ok := identFromString[rel.Identification]
		if !ok {
			return nil, fmt.Errorf("relationship %d: unknown identification %q", i, rel.Identification)
		}
		spec := er.RelSpec{CardA: cardA, CardB: cardB, Identification: ident}
		d.AddRelationshipBetween(rel.EntityA, rel.AttributeA, rel.Role, rel.EntityB, rel.AttributeB, spec)
	}

	return d, nil
}

// ImportJSON reads a JSON file at path and returns the decoded diagram.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*er.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
