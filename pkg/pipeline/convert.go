package pipeline

import (
	"fmt"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/er/nodelink"
)

// convertArtifacts derives every requested format from the rendered SVG and
// the parsed model.
func convertArtifacts(svgData []byte, d *er.Diagram, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[format] = svgData

		case FormatJSON:
			data, err := marshalModel(d)
			if err != nil {
				return nil, fmt.Errorf("export model: %w", err)
			}
			artifacts[format] = data

		case FormatDOT:
			dot := nodelink.ToDOT(d, nodelink.Options{
				Detailed:  opts.Detailed,
				Direction: opts.Direction,
			})
			artifacts[format] = []byte(dot)

		case FormatPNG:
			data, err := nodelink.ToPNG(svgData, opts.Scale)
			if err != nil {
				return nil, fmt.Errorf("convert png: %w", err)
			}
			artifacts[format] = data

		case FormatPDF:
			data, err := nodelink.ToPDF(svgData)
			if err != nil {
				return nil, fmt.Errorf("convert pdf: %w", err)
			}
			artifacts[format] = data

		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}

	return artifacts, nil
}
