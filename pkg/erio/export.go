package erio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schemaviz/schemaviz/pkg/er"
)

type model struct {
	Title         string         `json:"title,omitempty"`
	AccTitle      string         `json:"accTitle,omitempty"`
	AccDescr      string         `json:"accDescr,omitempty"`
	Entities      []entity       `json:"entities"`
	Relationships []relationship `json:"relationships"`
}

type entity struct {
	Name       string      `json:"name"`
	Alias      string      `json:"alias,omitempty"`
	Attributes []attribute `json:"attributes,omitempty"`
}

type attribute struct {
	Name string   `json:"name"`
	Type string   `json:"type,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

type relationship struct {
	EntityA        string `json:"entityA"`
	AttributeA     string `json:"attributeA,omitempty"`
	EntityB        string `json:"entityB"`
	AttributeB     string `json:"attributeB,omitempty"`
	Role           string `json:"role,omitempty"`
	CardA          string `json:"cardA"`
	CardB          string `json:"cardB"`
	Identification string `json:"identification"`
}

// WriteJSON encodes a diagram as JSON and writes it to w.
// Entities and attributes appear in insertion order, so the output is
// deterministic and can be re-imported with [ReadJSON] for round-trip
// processing.
func WriteJSON(d *er.Diagram, w io.Writer) error {
	ents := d.Entities()
	out := model{
		Title:         d.Title(),
		AccTitle:      d.AccTitle(),
		AccDescr:      d.AccDescr(),
		Entities:      make([]entity, 0, ents.Len()),
		Relationships: make([]relationship, 0, len(d.Relationships())),
	}

	for _, name := range ents.Keys() {
		e, _ := ents.Get(name)
		ent := entity{Name: e.Name, Alias: e.Alias}
		for _, an := range e.Attributes.Keys() {
			a, _ := e.Attributes.Get(an)
			ent.Attributes = append(ent.Attributes, attribute{
				Name: a.Name,
				Type: a.Type,
				Keys: a.Keys,
			})
		}
		out.Entities = append(out.Entities, ent)
	}

	for _, rel := range d.Relationships() {
		out.Relationships = append(out.Relationships, relationship{
			EntityA:        rel.EntityA,
			AttributeA:     rel.AttributeA,
			EntityB:        rel.EntityB,
			AttributeB:     rel.AttributeB,
			Role:           rel.Role,
			CardA:          rel.Spec.CardA.String(),
			CardB:          rel.Spec.CardB.String(),
			Identification: rel.Spec.Identification.String(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a diagram to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(d *er.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
