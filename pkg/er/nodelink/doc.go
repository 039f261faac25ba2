// Package nodelink renders entity-relationship models as Graphviz node-link
// diagrams.
//
// # Overview
//
// This package is an alternative to the table renderer in [er/render]: instead
// of laying out attribute tables itself, it emits DOT source and lets Graphviz
// place the entities. Crow's-foot cardinalities are approximated with Graphviz
// arrow shapes.
//
// # Usage
//
// Convert a diagram to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
