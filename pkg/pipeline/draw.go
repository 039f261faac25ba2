package pipeline

import (
	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/er/render"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// drawSVG runs the layout and draw engine and serializes the resulting root
// element.
func drawSVG(d *er.Diagram, opts Options) ([]byte, error) {
	ropts := []render.Option{render.WithLogger(opts.Logger)}
	if opts.Measurer != nil {
		ropts = append(ropts, render.WithMeasurer(opts.Measurer))
	}
	renderer, err := render.NewRenderer(opts.RenderConfig(), ropts...)
	if err != nil {
		return nil, err
	}

	doc := svg.NewDocument()
	if err := renderer.Draw(doc, opts.TargetID, opts.Version, d); err != nil {
		return nil, err
	}

	ids := doc.IDs()
	root, _ := doc.Lookup(ids[0])
	return []byte(root.String()), nil
}
