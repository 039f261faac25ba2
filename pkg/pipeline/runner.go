package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemaviz/schemaviz/pkg/cache"
	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/er/parse"
	"github.com/schemaviz/schemaviz/pkg/erio"
	"github.com/schemaviz/schemaviz/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → draw → convert pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	d, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Diagram = d
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.EntityCount = d.Entities().Len()
	result.Stats.RelationshipCount = len(d.Relationships())
	result.CacheInfo.ParseHit = parseHit

	// Compute model hash for cache keys and API responses
	if modelData, err := marshalModel(d); err == nil {
		result.ModelHash = cache.Hash(modelData)
	}

	r.Logger.Info("parsed diagram",
		"entities", result.Stats.EntityCount,
		"relationships", result.Stats.RelationshipCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Draw
	drawStart := time.Now()
	svgData, drawHit, err := r.DrawWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	result.Stats.DrawTime = time.Since(drawStart)
	result.CacheInfo.DrawHit = drawHit

	r.Logger.Info("generated markup",
		"bytes", len(svgData),
		"duration", result.Stats.DrawTime)

	// Stage 3: Convert
	convertStart := time.Now()
	artifacts, convertHit, err := r.ConvertWithCacheInfo(ctx, svgData, d, opts)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ConvertTime = time.Since(convertStart)
	result.CacheInfo.ConvertHit = convertHit

	r.Logger.Info("produced artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ConvertTime)

	return result, nil
}

// ParseWithCacheInfo parses the source with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*er.Diagram, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	sourceHash := cache.Hash([]byte(opts.Source))
	cacheKey := r.Keyer.ModelKey(sourceHash)

	observability.Pipeline().OnParseStart(ctx, sourceHash)
	start := time.Now()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if d, err := erio.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				observability.Pipeline().OnParseComplete(ctx, sourceHash, d.Entities().Len(), time.Since(start), nil)
				return d, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	d, err := parse.Parse(opts.Source)
	observability.Pipeline().OnParseComplete(ctx, sourceHash, countEntities(d), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := marshalModel(d); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLModel)
			observability.Cache().OnCacheSet(ctx, "model", len(data))
		}
	}

	return d, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*er.Diagram, error) {
	d, _, err := r.ParseWithCacheInfo(ctx, opts)
	return d, err
}

// DrawWithCacheInfo generates SVG markup with caching and returns cache hit info.
func (r *Runner) DrawWithCacheInfo(ctx context.Context, d *er.Diagram, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForDraw(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from model content
	modelData, err := marshalModel(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize model for cache key: %w", err)
	}
	modelHash := cache.Hash(modelData)
	cacheKey := r.Keyer.DiagramKey(modelHash, opts.DiagramKeyOpts())

	observability.Pipeline().OnDrawStart(ctx, opts.Direction, d.Entities().Len())
	start := time.Now()

	// Renders with an explicit target id are not cached because the id is
	// baked into the markup.
	cacheable := opts.TargetID == DefaultTargetID && !opts.Refresh
	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "diagram")
			observability.Pipeline().OnDrawComplete(ctx, opts.Direction, time.Since(start), nil)
			return data, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}

	data, err := drawSVG(d, opts)
	observability.Pipeline().OnDrawComplete(ctx, opts.Direction, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram)
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}

	return data, false, nil // Cache miss
}

// Draw is a convenience wrapper that calls DrawWithCacheInfo and discards the cache hit info.
func (r *Runner) Draw(ctx context.Context, d *er.Diagram, opts Options) ([]byte, error) {
	data, _, err := r.DrawWithCacheInfo(ctx, d, opts)
	return data, err
}

// ConvertWithCacheInfo derives artifacts with caching and returns cache hit info.
func (r *Runner) ConvertWithCacheInfo(ctx context.Context, svgData []byte, d *er.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForConvert(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	diagramHash := cache.Hash(svgData)

	observability.Pipeline().OnConvertStart(ctx, opts.Formats)
	start := time.Now()

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		if format == FormatSVG {
			artifacts[format] = svgData
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Pipeline().OnConvertComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := convertArtifacts(svgData, d, opts)
	observability.Pipeline().OnConvertComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each derived format
	for format, data := range rendered {
		if format == FormatSVG {
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Convert is a convenience wrapper that calls ConvertWithCacheInfo and discards the cache hit info.
func (r *Runner) Convert(ctx context.Context, svgData []byte, d *er.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ConvertWithCacheInfo(ctx, svgData, d, opts)
	return artifacts, err
}

// CachedDiagram returns the cached SVG for a previously rendered model hash.
// It returns [cache.ErrCacheMiss] when no entry exists, which the server maps
// to a 404.
func (r *Runner) CachedDiagram(ctx context.Context, modelHash string, opts Options) ([]byte, error) {
	opts.SetDrawDefaults()
	cacheKey := r.Keyer.DiagramKey(modelHash, opts.DiagramKeyOpts())
	data, hit, err := r.Cache.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, cache.ErrCacheMiss
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// marshalModel serializes a diagram to its canonical JSON form.
func marshalModel(d *er.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := erio.WriteJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func countEntities(d *er.Diagram) int {
	if d == nil {
		return 0
	}
	return d.Entities().Len()
}
