// Package pkg provides the core libraries for schemaviz diagram rendering.
//
// # Overview
//
// Schemaviz turns erDiagram text notation into rendered entity-relationship
// diagrams. The pkg directory is organized into these areas:
//
//  1. [er] - The diagram model, parser, attribute-table renderer, and
//     Graphviz node-link view
//  2. [svg] - SVG element tree and font-metrics text measurement
//  3. [erio] - JSON serialization of the diagram model
//  4. [pipeline] - Orchestration (parse → draw → convert) with caching
//  5. [cache] - Content-addressed caching of models, diagrams, and artifacts
//
// # Architecture
//
// The typical data flow through schemaviz:
//
//	erDiagram source text
//	         ↓
//	    [er/parse] package (statement parsing into the model)
//	         ↓
//	    [er/render] package (measurement, layout, SVG drawing)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
// Render a diagram through the pipeline:
//
//	import (
//	    "context"
//	    "github.com/schemaviz/schemaviz/pkg/cache"
//	    "github.com/schemaviz/schemaviz/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Source:  source,
//	    Formats: []string{"svg", "json"},
//	})
//
// Or use the packages directly:
//
//	diagram, err := parse.Parse(source)
//	renderer, err := render.NewRenderer(render.DefaultConfig())
//	doc := svg.NewDocument()
//	err = renderer.Draw(doc, "", "", diagram)
package pkg
