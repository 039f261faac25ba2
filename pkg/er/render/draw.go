// Package render turns an entity-relationship model into a positioned SVG
// scene graph: sized entity boxes with attribute table rows, routed
// relationship edges with cardinality markers, and deterministic element ids
// for styling and testing.
//
// The draw pass is single-threaded and synchronous: measure every entity,
// place the boxes in a sequential flow, then route the relationships. No
// state survives between calls; every render is a full recomputation from
// the model snapshot.
package render

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/errors"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// Renderer draws ER diagrams onto an svg surface.
//
// The zero value is not usable - use NewRenderer. A Renderer holds no
// per-draw state and may be reused across draws, but concurrent draws against
// the same target root must be serialized by the caller.
type Renderer struct {
	cfg      Config
	measurer svg.Measurer
	logger   *log.Logger
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithMeasurer replaces the default font-metrics measurer.
func WithMeasurer(m svg.Measurer) Option {
	return func(r *Renderer) { r.measurer = m }
}

// WithLogger sets the logger used to report skipped relationships.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer creates a renderer with the given configuration. Without
// WithMeasurer an embedded-font measurer is constructed; that construction is
// the only way NewRenderer can fail.
func NewRenderer(cfg Config, opts ...Option) (*Renderer, error) {
	r := &Renderer{cfg: cfg.withDefaults()}
	for _, opt := range opts {
		opt(r)
	}
	if r.measurer == nil {
		m, err := svg.NewFontMeasurer()
		if err != nil {
			return nil, err
		}
		r.measurer = m
	}
	return r, nil
}

// Draw renders the diagram model into the surface root identified by
// targetID, creating the root on first use. An empty targetID gets a random
// identifier. The surface is the only side effect; the caller owns its
// lifecycle and serialization.
//
// A relationship that names an unknown entity is skipped with a warning.
// A text-measurement failure aborts the whole pass.
func (r *Renderer) Draw(doc *svg.Document, targetID, version string, d *er.Diagram) error {
	if targetID == "" {
		targetID = "er-" + uuid.NewString()
	}
	root := doc.Root(targetID)

	r.ensureAccessibility(root, d)
	EnsureMarkers(root)

	content := root.NewChild("g").SetAttr("class", "er-diagram")
	if version != "" {
		content.SetAttr("data-version", version)
	}

	titleOffset := 0.0
	if d.Title() != "" {
		titleOffset = r.cfg.TitleTopMargin
	}

	// Edges render below the entity boxes, so their group comes first.
	edges := content.NewChild("g").SetAttr("class", "er edges")
	boxes := content.NewChild("g").SetAttr("class", "er entities")
	if titleOffset > 0 {
		boxes.SetAttr("transform", fmt.Sprintf("translate(0,%s)", fmtCoord(titleOffset)))
		edges.SetAttr("transform", fmt.Sprintf("translate(0,%s)", fmtCoord(titleOffset)))
	}

	tables := make([]*tableLayout, 0, d.Entities().Len())
	placed := make(map[string]*tableLayout, d.Entities().Len())
	for _, name := range d.Entities().Keys() {
		e, _ := d.Entities().Get(name)
		t, err := buildTable(r.cfg, r.measurer, e)
		if err != nil {
			return err
		}
		tables = append(tables, t)
		placed[name] = t
	}

	width, height := placeTables(r.cfg, tables)

	for _, t := range tables {
		r.drawEntity(boxes, t)
	}

	for _, rel := range d.Relationships() {
		if err := r.drawRelationship(edges, targetID, rel, placed); err != nil {
			return err
		}
	}

	if d.Title() != "" {
		content.NewChild("text").
			SetAttr("class", "er diagramTitle").
			SetAttr("x", fmtCoord(width/2)).
			SetAttr("y", fmtCoord(r.cfg.TitleTopMargin/2)).
			SetAttr("text-anchor", "middle").
			SetAttr("font-family", r.cfg.FontFamily).
			SetAttr("font-size", fmtNum(r.cfg.FontSize+2)).
			SetText(d.Title())
	}

	r.sizeRoot(root, width, height+titleOffset)
	return nil
}

// ensureAccessibility adds <title> and <desc> children once per root.
func (r *Renderer) ensureAccessibility(root *svg.Element, d *er.Diagram) {
	if d.AccTitle() != "" && len(root.FindAll("title")) == 0 {
		root.NewChild("title").SetText(d.AccTitle())
	}
	if d.AccDescr() != "" && len(root.FindAll("desc")) == 0 {
		root.NewChild("desc").SetText(d.AccDescr())
	}
}

// sizeRoot sets the viewport of the root element.
func (r *Renderer) sizeRoot(root *svg.Element, width, height float64) {
	root.SetAttr("viewBox", fmt.Sprintf("0 0 %s %s", fmtCoord(width), fmtCoord(height)))
	root.SetAttr("height", fmtCoord(height))
	if r.cfg.UseMaxWidth {
		root.SetAttr("width", "100%")
		root.SetAttr("style", fmt.Sprintf("max-width: %spx;", fmtCoord(width)))
	} else {
		root.SetAttr("width", fmtCoord(width))
	}
}

// drawEntity emits the group for one placed entity: background box, title
// text, and one row group per attribute with up to three individually
// identified text cells.
func (r *Renderer) drawEntity(parent *svg.Element, t *tableLayout) {
	cfg := r.cfg

	g := parent.NewChild("g").
		SetAttr("id", t.id).
		SetAttr("data-entity-name", t.entity.Name)

	g.NewChild("rect").
		SetAttr("class", "er entityBox").
		SetAttr("x", fmtCoord(t.x)).
		SetAttr("y", fmtCoord(t.y)).
		SetAttr("width", fmtCoord(t.width)).
		SetAttr("height", fmtCoord(t.height)).
		SetAttr("fill", cfg.Fill).
		SetAttr("stroke", cfg.Stroke)

	g.NewChild("text").
		SetAttr("id", t.titleID).
		SetAttr("class", "er entityLabel").
		SetAttr("x", fmtCoord(t.centerX())).
		SetAttr("y", fmtCoord(t.y+t.titleRowHeight/2)).
		SetAttr("text-anchor", "middle").
		SetAttr("dominant-baseline", "middle").
		SetAttr("font-family", cfg.FontFamily).
		SetAttr("font-size", fmtNum(cfg.FontSize)).
		SetAttr("font-weight", "bold").
		SetText(t.title)

	rowY := t.y + t.titleRowHeight
	for i, row := range t.rows {
		rowG := g.NewChild("g").
			SetAttr("id", fmt.Sprintf("row-%s-attr-%d", t.id, row.index)).
			SetAttr("class", "er attributeRow")

		boxClass := "er attributeBoxOdd"
		if i%2 == 1 {
			boxClass = "er attributeBoxEven"
		}
		rowG.NewChild("rect").
			SetAttr("class", boxClass).
			SetAttr("x", fmtCoord(t.x)).
			SetAttr("y", fmtCoord(rowY)).
			SetAttr("width", fmtCoord(t.width)).
			SetAttr("height", fmtCoord(row.height)).
			SetAttr("fill", "none").
			SetAttr("stroke", cfg.Stroke)

		cellX := t.x
		for c, text := range row.cells {
			rowG.NewChild("text").
				SetAttr("id", fmt.Sprintf("text-%s-attr-%d-%s", t.id, row.index, colSuffixes[c])).
				SetAttr("class", "er entityLabel").
				SetAttr("x", fmtCoord(cellX+cfg.EntityPadding/2)).
				SetAttr("y", fmtCoord(rowY+row.height/2)).
				SetAttr("dominant-baseline", "middle").
				SetAttr("font-family", cfg.FontFamily).
				SetAttr("font-size", fmtNum(cfg.FontSize*attrFontScale)).
				SetText(text)
			cellX += t.colWidths[c]
		}
		rowY += row.height
	}
}

// drawRelationship routes one edge between two placed boxes and attaches the
// cardinality marker pair. Unknown endpoint entities skip the edge.
func (r *Renderer) drawRelationship(parent *svg.Element, rootID string, rel er.Relationship, placed map[string]*tableLayout) error {
	a, okA := placed[rel.EntityA]
	b, okB := placed[rel.EntityB]
	if !okA || !okB {
		if r.logger != nil {
			r.logger.Warn("skipping relationship with unknown entity",
				"from", rel.EntityA, "to", rel.EntityB)
		}
		return nil
	}

	centerA := point{a.centerX(), a.centerY()}
	centerB := point{b.centerX(), b.centerY()}
	if y, ok := a.rowCenterY(rel.AttributeA); ok {
		centerA.y = y
	}
	if y, ok := b.rowCenterY(rel.AttributeB); ok {
		centerB.y = y
	}

	start := a.boundaryPoint(centerB)
	end := b.boundaryPoint(centerA)

	path := parent.NewChild("path").
		SetAttr("class", "er relationshipLine").
		SetAttr("d", fmt.Sprintf("M%s,%s L%s,%s",
			fmtCoord(start.x), fmtCoord(start.y), fmtCoord(end.x), fmtCoord(end.y))).
		SetAttr("stroke", r.cfg.Stroke).
		SetAttr("fill", "none").
		SetAttr("marker-start", "url(#"+MarkerID(rootID, markerName(rel.Spec.CardA, true))+")").
		SetAttr("marker-end", "url(#"+MarkerID(rootID, markerName(rel.Spec.CardB, false))+")")
	if rel.Spec.Identification == er.NonIdentifying {
		path.SetAttr("stroke-dasharray", "8,8")
	}

	if rel.Role != "" {
		midX := (start.x + end.x) / 2
		midY := (start.y + end.y) / 2
		labelSize := r.cfg.FontSize * attrFontScale
		metrics, err := r.measurer.Measure(rel.Role, r.cfg.FontFamily, labelSize)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMeasurement, err,
				"measure label of %s-%s", rel.EntityA, rel.EntityB)
		}

		// White backing keeps the label readable where it crosses the edge.
		parent.NewChild("rect").
			SetAttr("class", "er relationshipLabelBox").
			SetAttr("x", fmtCoord(midX-metrics.Width/2-labelPadding)).
			SetAttr("y", fmtCoord(midY-metrics.Height/2-labelPadding)).
			SetAttr("width", fmtCoord(metrics.Width+2*labelPadding)).
			SetAttr("height", fmtCoord(metrics.Height+2*labelPadding)).
			SetAttr("fill", "white").
			SetAttr("opacity", "0.85")
		parent.NewChild("text").
			SetAttr("class", "er relationshipLabel").
			SetAttr("x", fmtCoord(midX)).
			SetAttr("y", fmtCoord(midY)).
			SetAttr("text-anchor", "middle").
			SetAttr("dominant-baseline", "middle").
			SetAttr("font-family", r.cfg.FontFamily).
			SetAttr("font-size", fmtNum(labelSize)).
			SetText(rel.Role)
	}
	return nil
}
