// Package pipeline provides the core rendering pipeline for Schemaviz.
//
// This package implements the complete parse → draw → convert pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read the erDiagram notation into an entity-relationship model
//  2. Draw: Measure text, lay out entity tables, and generate SVG markup
//  3. Convert: Derive additional artifacts (JSON, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  source,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	d, err := runner.Parse(ctx, opts)
//
//	// Draw with an existing model
//	svg, err := runner.Draw(ctx, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemaviz/schemaviz/pkg/cache"
	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/er/render"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier. 2.0 produces images
	// suitable for high-DPI displays.
	DefaultScale = 2.0

	// DefaultTargetID is used when the caller does not name the root <svg>
	// element. Empty means a fresh id is generated per render.
	DefaultTargetID = ""
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidDirections is the set of supported layout directions.
var ValidDirections = map[string]bool{
	string(render.DirectionTB): true,
	string(render.DirectionLR): true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source  string `json:"source"`
	Refresh bool   `json:"refresh,omitempty"`

	// Draw options
	TargetID    string  `json:"target_id,omitempty"`
	Version     string  `json:"version,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	UseMaxWidth bool    `json:"use_max_width,omitempty"`

	// Convert options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // attribute rows in DOT node labels

	// Runtime options (not serialized)
	Logger   *log.Logger  `json:"-"`
	Measurer svg.Measurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the parsed entity-relationship model.
	Diagram *er.Diagram

	// ModelHash is the content hash of the serialized model.
	ModelHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int           `json:"entity_count"`
	RelationshipCount int           `json:"relationship_count"`
	ParseTime         time.Duration `json:"parse_time"`
	DrawTime          time.Duration `json:"draw_time"`
	ConvertTime       time.Duration `json:"convert_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit   bool `json:"parse_hit"`   // Whether the parsed model came from cache
	DrawHit    bool `json:"draw_hit"`    // Whether the SVG came from cache
	ConvertHit bool `json:"convert_hit"` // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks that a layout direction is valid.
func ValidateDirection(dir string) error {
	if dir != "" && !ValidDirections[dir] {
		return fmt.Errorf("invalid direction: %q (must be TB or LR)", dir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForDraw(); err != nil {
		return err
	}
	if err := o.ValidateForConvert(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Source == "" {
		return fmt.Errorf("source is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetDrawDefaults sets default values for the draw stage.
func (o *Options) SetDrawDefaults() {
	if o.Direction == "" {
		o.Direction = string(render.DirectionTB)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForDraw validates and sets defaults for the draw stage.
func (o *Options) ValidateForDraw() error {
	o.SetDrawDefaults()
	return ValidateDirection(o.Direction)
}

// SetConvertDefaults sets default values for artifact conversion.
func (o *Options) SetConvertDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForConvert validates and sets defaults for artifact conversion.
func (o *Options) ValidateForConvert() error {
	o.SetConvertDefaults()
	return ValidateFormats(o.Formats)
}

// RenderConfig builds the layout configuration from the draw options.
func (o *Options) RenderConfig() render.Config {
	cfg := render.DefaultConfig()
	if o.Direction != "" {
		cfg.LayoutDirection = render.Direction(o.Direction)
	}
	if o.FontFamily != "" {
		cfg.FontFamily = o.FontFamily
	}
	if o.FontSize > 0 {
		cfg.FontSize = o.FontSize
	}
	cfg.UseMaxWidth = o.UseMaxWidth
	return cfg
}

// DiagramKeyOpts returns cache key options for the draw stage.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Direction:   o.Direction,
		FontFamily:  o.FontFamily,
		FontSize:    o.FontSize,
		UseMaxWidth: o.UseMaxWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact conversion.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
