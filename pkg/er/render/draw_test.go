package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/schemaviz/schemaviz/pkg/er"
	schemavizerrors "github.com/schemaviz/schemaviz/pkg/errors"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// fixedMeasurer returns deterministic metrics without font parsing, keeping
// the layout tests fast and independent of the embedded typeface.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(text, _ string, size float64) (svg.TextMetrics, error) {
	return svg.TextMetrics{
		Width:  float64(len(text)) * size * 0.6,
		Height: size * 1.2,
	}, nil
}

// failingMeasurer simulates a detached drawing surface.
type failingMeasurer struct{}

func (failingMeasurer) Measure(string, string, float64) (svg.TextMetrics, error) {
	return svg.TextMetrics{}, errors.New("no bounding box available")
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(DefaultConfig(), WithMeasurer(fixedMeasurer{}))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

// entityGroups returns the per-entity groups below the entities layer.
func entityGroups(root *svg.Element) []*svg.Element {
	var out []*svg.Element
	for _, g := range root.FindAll("g") {
		if _, ok := g.Attr("data-entity-name"); ok {
			out = append(out, g)
		}
	}
	return out
}

// rowGroups returns the attribute row groups inside an entity group.
func rowGroups(entity *svg.Element) []*svg.Element {
	var out []*svg.Element
	for _, g := range entity.FindAll("g") {
		if strings.HasPrefix(g.ID(), "row-") {
			out = append(out, g)
		}
	}
	return out
}

// textCells returns the text elements of a row group in document order.
func textCells(row *svg.Element) []*svg.Element {
	return row.FindAll("text")
}

func TestDrawSingleEntityNoAttributes(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "1.0", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	groups := entityGroups(root)
	if got, want := len(groups), 1; got != want {
		t.Fatalf("entity groups = %d, want %d", got, want)
	}
	g := groups[0]

	if name, _ := g.Attr("data-entity-name"); name != "CUSTOMER" {
		t.Errorf("data-entity-name = %q, want %q", name, "CUSTOMER")
	}
	if !strings.HasPrefix(g.ID(), "entity-CUSTOMER-") {
		t.Errorf("entity group id = %q, want entity-CUSTOMER-<hash>", g.ID())
	}

	titles := g.FindAll("text")
	if got, want := len(titles), 1; got != want {
		t.Fatalf("text elements = %d, want %d (title only)", got, want)
	}
	if titles[0].Text != "CUSTOMER" {
		t.Errorf("title text = %q, want %q", titles[0].Text, "CUSTOMER")
	}
	if class, _ := titles[0].Attr("class"); class != "er entityLabel" {
		t.Errorf("title class = %q, want %q", class, "er entityLabel")
	}
	if !strings.HasPrefix(titles[0].ID(), "text-entity-CUSTOMER-") {
		t.Errorf("title id = %q, want text-entity-CUSTOMER-<hash>", titles[0].ID())
	}

	if got := len(rowGroups(g)); got != 0 {
		t.Errorf("row groups = %d, want 0", got)
	}
}

func TestDrawKeyColumnUniformity(t *testing.T) {
	d := er.NewDiagram()
	d.AddAttributes("CUSTOMER", []er.Attribute{
		{Name: "PKID", Type: "int", Keys: []string{"PK", "UK"}},
		{Name: "Name", Type: "str"},
	})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	rows := rowGroups(entityGroups(root)[0])
	if got, want := len(rows), 2; got != want {
		t.Fatalf("row groups = %d, want %d", got, want)
	}

	for i, row := range rows {
		cells := textCells(row)
		if got, want := len(cells), 3; got != want {
			t.Errorf("row %d cells = %d, want %d", i+1, got, want)
		}
	}

	// Row 1 carries the joined key tags, row 2 an empty string cell.
	cells1 := textCells(rows[0])
	if got, want := cells1[2].Text, "PK,UK"; got != want {
		t.Errorf("row 1 key cell = %q, want %q", got, want)
	}
	cells2 := textCells(rows[1])
	if got := cells2[2].Text; got != "" {
		t.Errorf("row 2 key cell = %q, want empty string", got)
	}
	if !strings.HasSuffix(cells2[2].ID(), "-attr-2-key") {
		t.Errorf("row 2 key cell id = %q, want suffix -attr-2-key", cells2[2].ID())
	}
}

func TestDrawColumnCountPerEntity(t *testing.T) {
	d := er.NewDiagram()
	d.AddAttributes("FIRST", []er.Attribute{
		{Name: "id", Type: "int", Keys: []string{"PK"}},
		{Name: "note", Type: "str"},
	})
	d.AddAttributes("SECOND", []er.Attribute{
		{Name: "id", Type: "int"},
		{Name: "label", Type: "str"},
	})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	groups := entityGroups(root)
	if len(groups) != 2 {
		t.Fatalf("entity groups = %d, want 2", len(groups))
	}

	wantCells := map[string]int{"FIRST": 3, "SECOND": 2}
	for _, g := range groups {
		name, _ := g.Attr("data-entity-name")
		for i, row := range rowGroups(g) {
			if got := len(textCells(row)); got != wantCells[name] {
				t.Errorf("%s row %d cells = %d, want %d", name, i+1, got, wantCells[name])
			}
		}
	}
}

func TestRowIndexFixedAtFirstInsertion(t *testing.T) {
	d := er.NewDiagram()
	d.AddAttributes("CUSTOMER", []er.Attribute{{Name: "id"}, {Name: "name"}})
	// Re-declaring the first attribute must not change its row position.
	d.AddAttributes("CUSTOMER", []er.Attribute{{Name: "id", Type: "int"}})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	rows := rowGroups(entityGroups(root)[0])
	if len(rows) != 2 {
		t.Fatalf("row groups = %d, want 2", len(rows))
	}
	if !strings.HasSuffix(rows[0].ID(), "-attr-1") {
		t.Errorf("first row id = %q, want suffix -attr-1", rows[0].ID())
	}
	if got := textCells(rows[0])[1].Text; got != "id" {
		t.Errorf("first row name cell = %q, want %q", got, "id")
	}
	if got := textCells(rows[0])[0].Text; got != "int" {
		t.Errorf("first row type cell = %q, want %q (overlay applied in place)", got, "int")
	}
}

func TestTitleUsesAlias(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUST", "Customer Account")

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	title := entityGroups(root)[0].FindAll("text")[0]
	if title.Text != "Customer Account" {
		t.Errorf("title = %q, want alias %q", title.Text, "Customer Account")
	}
}

func TestDanglingRelationshipSkipped(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")
	d.AddRelationship("CUSTOMER", "haunts", "GHOST", er.RelSpec{
		CardA: er.ExactlyOne, CardB: er.ZeroOrMore,
	})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw should not fail on dangling relationships: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	for _, p := range root.FindAll("path") {
		if class, _ := p.Attr("class"); class == "er relationshipLine" {
			t.Error("no edge should be emitted for a dangling relationship")
		}
	}
}

func TestRelationshipMarkersAndStroke(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")
	d.AddEntity("ORDER", "")
	d.AddRelationship("CUSTOMER", "places", "ORDER", er.RelSpec{
		CardA:          er.ExactlyOne,
		CardB:          er.ZeroOrMore,
		Identification: er.NonIdentifying,
	})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	var edge *svg.Element
	for _, p := range root.FindAll("path") {
		if class, _ := p.Attr("class"); class == "er relationshipLine" {
			edge = p
		}
	}
	if edge == nil {
		t.Fatal("relationship edge not emitted")
	}

	if got, _ := edge.Attr("marker-start"); got != "url(#"+MarkerID("diagram", MarkerOnlyOneStart)+")" {
		t.Errorf("marker-start = %q, want scoped exactly-one start marker", got)
	}
	if got, _ := edge.Attr("marker-end"); got != "url(#"+MarkerID("diagram", MarkerZeroOrMoreEnd)+")" {
		t.Errorf("marker-end = %q, want scoped zero-or-more end marker", got)
	}
	if _, ok := edge.Attr("stroke-dasharray"); !ok {
		t.Error("non-identifying relationship should be dashed")
	}

	var label *svg.Element
	for _, txt := range root.FindAll("text") {
		if class, _ := txt.Attr("class"); class == "er relationshipLabel" {
			label = txt
		}
	}
	if label == nil || label.Text != "places" {
		t.Error("role label missing or wrong")
	}

	var backing *svg.Element
	for _, rect := range root.FindAll("rect") {
		if class, _ := rect.Attr("class"); class == "er relationshipLabelBox" {
			backing = rect
		}
	}
	if backing == nil {
		t.Fatal("role label should sit on a backing rect")
	}
	if fill, _ := backing.Attr("fill"); fill != "white" {
		t.Errorf("backing rect fill = %q, want white", fill)
	}
	if w, _ := backing.Attr("width"); w == "" || w == "0" {
		t.Errorf("backing rect width = %q, want the measured label width plus padding", w)
	}
}

func TestUnlabeledRelationshipHasNoBackingRect(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("A", "")
	d.AddEntity("B", "")
	d.AddRelationship("A", "", "B", er.RelSpec{})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	for _, rect := range root.FindAll("rect") {
		if class, _ := rect.Attr("class"); class == "er relationshipLabelBox" {
			t.Error("a relationship without a role should not emit a label backing rect")
		}
	}
}

func TestIdentifyingRelationshipIsSolid(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("A", "")
	d.AddEntity("B", "")
	d.AddRelationship("A", "", "B", er.RelSpec{Identification: er.Identifying})

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	for _, p := range root.FindAll("path") {
		if class, _ := p.Attr("class"); class == "er relationshipLine" {
			if _, dashed := p.Attr("stroke-dasharray"); dashed {
				t.Error("identifying relationship must not be dashed")
			}
		}
	}
}

func TestMeasurementFailureAbortsRender(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")

	r, err := NewRenderer(DefaultConfig(), WithMeasurer(failingMeasurer{}))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	err = r.Draw(svg.NewDocument(), "diagram", "", d)
	if err == nil {
		t.Fatal("Draw should fail when measurement fails")
	}
	if !schemavizerrors.Is(err, schemavizerrors.ErrCodeMeasurement) {
		t.Errorf("error code = %v, want MEASUREMENT_FAILED", schemavizerrors.GetCode(err))
	}
}

func TestRepeatedDrawDoesNotDuplicateMarkers(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")

	doc := svg.NewDocument()
	r := newTestRenderer(t)
	if err := r.Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := r.Draw(doc, "diagram", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	root, _ := doc.Lookup("diagram")

	if got, want := len(root.FindAll("marker")), 10; got != want {
		t.Errorf("marker count after two draws = %d, want %d", got, want)
	}
}

func TestDrawGeneratesTargetIDWhenEmpty(t *testing.T) {
	d := er.NewDiagram()
	d.AddEntity("CUSTOMER", "")

	doc := svg.NewDocument()
	if err := newTestRenderer(t).Draw(doc, "", "", d); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	ids := doc.IDs()
	if len(ids) != 1 {
		t.Fatalf("root count = %d, want 1", len(ids))
	}
	if !strings.HasPrefix(ids[0], "er-") {
		t.Errorf("generated id = %q, want er- prefix", ids[0])
	}
	root, _ := doc.Lookup(ids[0])
	if len(entityGroups(root)) != 1 {
		t.Error("generated root should contain the drawn entity")
	}
}
