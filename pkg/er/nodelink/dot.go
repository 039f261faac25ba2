package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/schemaviz/schemaviz/pkg/er"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes attribute rows in node labels.
	// When false, only the entity label is shown.
	Detailed bool

	// Direction is the Graphviz rankdir, "TB" or "LR". Empty means "TB".
	Direction string
}

// ToDOT converts a diagram to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or
// [RenderPNG].
//
// Non-identifying relationships are drawn with dashed edges. Cardinalities map
// to Graphviz arrow shapes (crow for many, tee for one, odot for optional).
func ToDOT(d *er.Diagram, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph ER {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=honeydew, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	ents := d.Entities()
	for _, name := range ents.Keys() {
		e, _ := ents.Get(name)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", e.Name, fmtLabel(e, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, rel := range d.Relationships() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", rel.EntityA, rel.EntityB,
			strings.Join(edgeAttrs(rel), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e *er.Entity, detailed bool) string {
	if !detailed || e.Attributes.Len() == 0 {
		return e.Label()
	}

	parts := []string{e.Label()}
	for _, name := range e.Attributes.Keys() {
		a, _ := e.Attributes.Get(name)
		line := a.Name
		if a.Type != "" {
			line = a.Type + " " + line
		}
		if len(a.Keys) > 0 {
			line += " [" + strings.Join(a.Keys, ",") + "]"
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(rel er.Relationship) []string {
	attrs := []string{
		"dir=both",
		fmt.Sprintf("arrowtail=%s", arrowShape(rel.Spec.CardA)),
		fmt.Sprintf("arrowhead=%s", arrowShape(rel.Spec.CardB)),
	}
	if rel.Role != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", rel.Role))
	}
	if rel.Spec.Identification == er.NonIdentifying {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// arrowShape approximates crow's-foot markers with Graphviz arrow primitives.
func arrowShape(c er.Cardinality) string {
	switch c {
	case er.ZeroOrOne:
		return "teeodot"
	case er.ZeroOrMore:
		return "crowodot"
	case er.OneOrMore:
		return "crowtee"
	case er.ExactlyOne:
		return "teetee"
	case er.MDParent:
		return "none"
	}
	return "none"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [RenderPDF] or [RenderPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and rsvg-convert.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and rsvg-convert.
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
