package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/errors"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// Attribute rows use a slightly smaller font than the entity title.
const attrFontScale = 0.85

// labelPadding is the gap between a role label and its backing rect.
const labelPadding = 3.0

// Column indices within an attribute row. The key column only exists for
// entities where at least one attribute carries key tags.
const (
	colType = iota
	colName
	colKey
)

// colSuffixes maps column index to the id suffix of the cell's text element.
var colSuffixes = [...]string{"type", "name", "key"}

// rowLayout is the computed geometry of one attribute row.
type rowLayout struct {
	index  int      // 1-based attribute insertion index
	cells  []string // cell text, one entry per table column ("" pads absent values)
	height float64
}

// tableLayout is the computed geometry of one entity box: title row plus
// uniform attribute rows. Positions are zero until placement assigns them.
type tableLayout struct {
	entity *er.Entity
	id     string // deterministic entity group id

	title          string
	titleID        string
	titleRowHeight float64

	columns   int // 0 (no attributes), 2 (type+name), or 3 (+key)
	colWidths []float64
	rows      []rowLayout

	x, y          float64
	width, height float64
}

// centerX returns the horizontal center of the placed box.
func (t *tableLayout) centerX() float64 { return t.x + t.width/2 }

// centerY returns the vertical center of the placed box.
func (t *tableLayout) centerY() float64 { return t.y + t.height/2 }

// rowCenterY returns the absolute vertical center of the named attribute's
// row, or false when the entity has no such attribute.
func (t *tableLayout) rowCenterY(attrName string) (float64, bool) {
	idx := t.entity.Attributes.Index(attrName)
	if idx < 0 {
		return 0, false
	}
	y := t.y + t.titleRowHeight
	for i, row := range t.rows {
		if i == idx {
			return y + row.height/2, true
		}
		y += row.height
	}
	return 0, false
}

// buildTable measures the entity title and every attribute cell and derives
// the box geometry: column count, per-column widths, per-row heights, and the
// overall box size. Measurement failures abort the render pass.
func buildTable(cfg Config, m svg.Measurer, e *er.Entity) (*tableLayout, error) {
	t := &tableLayout{
		entity:  e,
		id:      GenerateID(e.Name, "entity"),
		title:   e.Label(),
		titleID: GenerateID(e.Name, "text-entity"),
	}

	titleMetrics, err := m.Measure(t.title, cfg.FontFamily, cfg.FontSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMeasurement, err, "measure title of %q", e.Name)
	}
	t.titleRowHeight = titleMetrics.Height + 2*cfg.EntityPadding

	t.columns = columnCount(e)
	attrSize := cfg.FontSize * attrFontScale

	maxCell := make([]float64, t.columns)
	for i, name := range e.Attributes.Keys() {
		a, _ := e.Attributes.Get(name)
		cells := cellTexts(a, t.columns)

		row := rowLayout{index: i + 1, cells: cells, height: cfg.MinRowHeight}
		for c, text := range cells {
			metrics, err := m.Measure(text, cfg.FontFamily, attrSize)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMeasurement, err,
					"measure attribute %q of %q", a.Name, e.Name)
			}
			maxCell[c] = math.Max(maxCell[c], metrics.Width)
			row.height = math.Max(row.height, metrics.Height+cfg.EntityPadding)
		}
		t.rows = append(t.rows, row)
	}

	t.colWidths = make([]float64, t.columns)
	var tableWidth float64
	for c := range maxCell {
		t.colWidths[c] = maxCell[c] + cfg.EntityPadding
		tableWidth += t.colWidths[c]
	}

	t.width = math.Max(cfg.MinEntityWidth,
		math.Max(titleMetrics.Width+2*cfg.EntityPadding, tableWidth))
	if t.columns > 0 && tableWidth < t.width {
		// Widen the name column so the rows span the full box.
		t.colWidths[colName] += t.width - tableWidth
	}

	t.height = t.titleRowHeight
	for _, row := range t.rows {
		t.height += row.height
	}
	if len(t.rows) == 0 && t.height < cfg.MinEntityHeight {
		t.height = cfg.MinEntityHeight
		t.titleRowHeight = t.height
	}
	return t, nil
}

// columnCount decides the uniform column count for one entity: no columns
// without attributes, type+name otherwise, plus the key column as soon as a
// single attribute of this entity carries key tags.
func columnCount(e *er.Entity) int {
	if e.Attributes.Len() == 0 {
		return 0
	}
	for _, name := range e.Attributes.Keys() {
		if a, _ := e.Attributes.Get(name); len(a.Keys) > 0 {
			return 3
		}
	}
	return 2
}

// cellTexts renders the attribute into exactly columns cells. Absent values
// become empty strings, never omitted cells, so every row of one entity has
// the same cell count.
func cellTexts(a *er.Attribute, columns int) []string {
	cells := make([]string, columns)
	cells[colType] = a.Type
	cells[colName] = a.Name
	if columns > colKey {
		cells[colKey] = strings.Join(a.Keys, ",")
	}
	return cells
}

// placeTables assigns absolute positions using a sequential, non-overlapping
// flow in the configured direction, wrapping when the flow axis exceeds the
// canvas constraint. It returns the total extent of the placed content.
func placeTables(cfg Config, tables []*tableLayout) (width, height float64) {
	pad := cfg.DiagramPadding
	flowPos := pad  // position along the flow axis
	bandPos := pad  // position of the current band on the cross axis
	bandMax := 0.0  // thickest box seen in the current band

	limit := cfg.CanvasWidth
	if cfg.LayoutDirection == DirectionTB {
		limit = cfg.CanvasHeight
	}

	for _, t := range tables {
		extent := t.width
		thickness := t.height
		if cfg.LayoutDirection == DirectionTB {
			extent, thickness = t.height, t.width
		}

		if flowPos > pad && flowPos+extent > limit {
			flowPos = pad
			bandPos += bandMax + pad
			bandMax = 0
		}

		if cfg.LayoutDirection == DirectionTB {
			t.x, t.y = bandPos, flowPos
		} else {
			t.x, t.y = flowPos, bandPos
		}

		flowPos += extent + pad
		bandMax = math.Max(bandMax, thickness)

		width = math.Max(width, t.x+t.width)
		height = math.Max(height, t.y+t.height)
	}
	return width + pad, height + pad
}

// point is a 2D coordinate in user units.
type point struct{ x, y float64 }

// boundaryPoint returns where the ray from the box center toward target
// crosses the box boundary. Degenerate rays (coincident centers) fall back to
// the box center.
func (t *tableLayout) boundaryPoint(target point) point {
	cx, cy := t.centerX(), t.centerY()
	dx, dy := target.x-cx, target.y-cy
	if dx == 0 && dy == 0 {
		return point{cx, cy}
	}

	scale := math.Inf(1)
	if dx != 0 {
		scale = math.Min(scale, (t.width/2)/math.Abs(dx))
	}
	if dy != 0 {
		scale = math.Min(scale, (t.height/2)/math.Abs(dy))
	}
	return point{cx + dx*scale, cy + dy*scale}
}

func fmtCoord(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
