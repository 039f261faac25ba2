package render

import (
	"fmt"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// Marker names form a closed vocabulary: one start/end pair per cardinality
// kind plus the parent pair for hierarchical relationships. Element ids are
// the names scoped by the diagram root id (see MarkerID), so edge endpoints
// reference them with url(#ROOT_NAME) and two diagrams inlined into one host
// page keep their defs separate.
const (
	MarkerParentStart     = "MD_PARENT_START"
	MarkerParentEnd       = "MD_PARENT_END"
	MarkerOnlyOneStart    = "ONLY_ONE_START"
	MarkerOnlyOneEnd      = "ONLY_ONE_END"
	MarkerZeroOrOneStart  = "ZERO_OR_ONE_START"
	MarkerZeroOrOneEnd    = "ZERO_OR_ONE_END"
	MarkerOneOrMoreStart  = "ONE_OR_MORE_START"
	MarkerOneOrMoreEnd    = "ONE_OR_MORE_END"
	MarkerZeroOrMoreStart = "ZERO_OR_MORE_START"
	MarkerZeroOrMoreEnd   = "ZERO_OR_MORE_END"
)

// MarkerDef is one endpoint-marker definition: a small fixed vector shape
// with a stable viewport and an anchor point used when attaching to an edge.
type MarkerDef struct {
	Name          string
	Width, Height float64
	RefX, RefY    float64 // Anchor point within the viewport
	Path          string  // Single drawable path primitive
}

// Markers returns the full catalog in fixed order. The catalog is stateless;
// each call returns the same ten definitions.
func Markers() []MarkerDef {
	return []MarkerDef{
		{Name: MarkerParentStart, Width: 12, Height: 18, RefX: 0, RefY: 9,
			Path: "M0,9 L12,0 L12,18 Z"},
		{Name: MarkerParentEnd, Width: 12, Height: 18, RefX: 12, RefY: 9,
			Path: "M12,9 L0,0 L0,18 Z"},
		{Name: MarkerOnlyOneStart, Width: 18, Height: 18, RefX: 0, RefY: 9,
			Path: "M9,0 L9,18 M15,0 L15,18"},
		{Name: MarkerOnlyOneEnd, Width: 18, Height: 18, RefX: 18, RefY: 9,
			Path: "M3,0 L3,18 M9,0 L9,18"},
		{Name: MarkerZeroOrOneStart, Width: 30, Height: 18, RefX: 0, RefY: 9,
			Path: "M27,9 a6,6 0 1,0 -12,0 a6,6 0 1,0 12,0 M9,0 L9,18"},
		{Name: MarkerZeroOrOneEnd, Width: 30, Height: 18, RefX: 30, RefY: 9,
			Path: "M3,9 a6,6 0 1,0 12,0 a6,6 0 1,0 -12,0 M21,0 L21,18"},
		{Name: MarkerOneOrMoreStart, Width: 27, Height: 18, RefX: 18, RefY: 18,
			Path: "M0,18 L18,9 L0,0 M27,0 L27,18"},
		{Name: MarkerOneOrMoreEnd, Width: 27, Height: 18, RefX: 9, RefY: 18,
			Path: "M27,18 L9,9 L27,0 M0,0 L0,18"},
		{Name: MarkerZeroOrMoreStart, Width: 39, Height: 18, RefX: 18, RefY: 18,
			Path: "M0,18 L18,9 L0,0 M33,9 a6,6 0 1,0 -12,0 a6,6 0 1,0 12,0"},
		{Name: MarkerZeroOrMoreEnd, Width: 39, Height: 18, RefX: 21, RefY: 18,
			Path: "M39,18 L21,9 L39,0 M18,9 a6,6 0 1,0 -12,0 a6,6 0 1,0 12,0"},
	}
}

// EnsureMarkers makes sure every catalog definition exists below root,
// creating a single <defs> element on first use. The operation is idempotent:
// repeated calls for the same root never create duplicate definitions.
func EnsureMarkers(root *svg.Element) {
	var defs *svg.Element
	for _, c := range root.Children {
		if c.Tag == "defs" {
			defs = c
			break
		}
	}
	if defs == nil {
		defs = root.NewChild("defs")
	}

	for _, def := range Markers() {
		id := MarkerID(root.ID(), def.Name)
		if defs.FindByID(id) != nil {
			continue
		}
		m := defs.NewChild("marker").
			SetAttr("id", id).
			SetAttr("refX", fmtNum(def.RefX)).
			SetAttr("refY", fmtNum(def.RefY)).
			SetAttr("markerWidth", fmtNum(def.Width)).
			SetAttr("markerHeight", fmtNum(def.Height)).
			SetAttr("markerUnits", "userSpaceOnUse").
			SetAttr("orient", "auto")
		m.NewChild("path").
			SetAttr("d", def.Path).
			SetAttr("fill", "none").
			SetAttr("stroke", "gray")
	}
}

// MarkerID scopes a catalog marker name to one diagram root. An empty root
// id leaves the name unscoped.
func MarkerID(rootID, name string) string {
	if rootID == "" {
		return name
	}
	return rootID + "_" + name
}

// markerName resolves a cardinality to its marker name for the given edge end.
func markerName(c er.Cardinality, atStart bool) string {
	switch c {
	case er.MDParent:
		if atStart {
			return MarkerParentStart
		}
		return MarkerParentEnd
	case er.ExactlyOne:
		if atStart {
			return MarkerOnlyOneStart
		}
		return MarkerOnlyOneEnd
	case er.ZeroOrOne:
		if atStart {
			return MarkerZeroOrOneStart
		}
		return MarkerZeroOrOneEnd
	case er.OneOrMore:
		if atStart {
			return MarkerOneOrMoreStart
		}
		return MarkerOneOrMoreEnd
	default: // er.ZeroOrMore
		if atStart {
			return MarkerZeroOrMoreStart
		}
		return MarkerZeroOrMoreEnd
	}
}

func fmtNum(f float64) string {
	return fmt.Sprintf("%g", f)
}
