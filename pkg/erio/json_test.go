package erio

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/schemaviz/schemaviz/pkg/er"
)

func sampleDiagram() *er.Diagram {
	d := er.NewDiagram()
	d.SetTitle("Order handling")
	d.SetAccTitle("Orders")
	d.AddEntity("CUSTOMER", "Customer Account")
	d.AddAttributes("CUSTOMER", []er.Attribute{
		{Name: "id", Type: "int", Keys: []string{"PK"}},
		{Name: "name", Type: "string"},
	})
	d.AddAttributes("ORDER", []er.Attribute{
		{Name: "customer_id", Type: "int", Keys: []string{"FK"}},
	})
	d.AddRelationshipBetween("ORDER", "customer_id", "belongs to", "CUSTOMER", "id", er.RelSpec{
		CardA:          er.ZeroOrMore,
		CardB:          er.ExactlyOne,
		Identification: er.NonIdentifying,
	})
	return d
}

func TestWriteJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleDiagram(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`"title": "Order handling"`,
		`"name": "CUSTOMER"`,
		`"alias": "Customer Account"`,
		`"cardA": "zero-or-more"`,
		`"cardB": "exactly-one"`,
		`"identification": "non-identifying"`,
		`"attributeA": "customer_id"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	orig := sampleDiagram()

	var buf bytes.Buffer
	if err := WriteJSON(orig, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.Title() != orig.Title() || got.AccTitle() != orig.AccTitle() {
		t.Errorf("titles: got %q/%q", got.Title(), got.AccTitle())
	}
	if !reflect.DeepEqual(got.Entities().Keys(), orig.Entities().Keys()) {
		t.Errorf("entity order: got %v, want %v", got.Entities().Keys(), orig.Entities().Keys())
	}
	ge, _ := got.Entities().Get("CUSTOMER")
	oe, _ := orig.Entities().Get("CUSTOMER")
	if ge.Alias != oe.Alias {
		t.Errorf("alias: got %q, want %q", ge.Alias, oe.Alias)
	}
	if !reflect.DeepEqual(ge.Attributes.Keys(), oe.Attributes.Keys()) {
		t.Errorf("attribute order: got %v", ge.Attributes.Keys())
	}
	ga, _ := ge.Attributes.Get("id")
	if ga.Type != "int" || !reflect.DeepEqual(ga.Keys, []string{"PK"}) {
		t.Errorf("attribute id: got %+v", ga)
	}
	if !reflect.DeepEqual(got.Relationships(), orig.Relationships()) {
		t.Errorf("relationships: got %+v, want %+v", got.Relationships(), orig.Relationships())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"entities": [`},
		{"empty entity name", `{"entities": [{"name": ""}], "relationships": []}`},
		{"empty attribute name", `{"entities": [{"name": "A", "attributes": [{"name": ""}]}], "relationships": []}`},
		{"unknown cardinality", `{"entities": [], "relationships": [{"entityA": "A", "entityB": "B", "cardA": "lots", "cardB": "exactly-one", "identification": "identifying"}]}`},
		{"unknown identification", `{"entities": [], "relationships": [{"entityA": "A", "entityB": "B", "cardA": "exactly-one", "cardB": "exactly-one", "identification": "maybe"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	if err := ExportJSON(sampleDiagram(), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.Entities().Len() != 2 {
		t.Errorf("entities = %d, want 2", got.Entities().Len())
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
