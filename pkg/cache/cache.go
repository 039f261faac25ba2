// Package cache provides pluggable byte caches and cache-key derivation for
// the render pipeline.
//
// Three key families exist, one per pipeline stage: model keys for parsed
// diagrams, diagram keys for rendered SVG markup, and artifact keys for
// converted outputs (PNG, PDF, DOT). Keys are derived from SHA-256 hashes so
// identical inputs always hit the same entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with TTL support. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the cached data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default TTLs per pipeline stage. Parsed models are cheap to rebuild, so
// they expire first; artifacts are the most expensive and live longest.
const (
	TTLModel    = 1 * time.Hour
	TTLDiagram  = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// DiagramKeyOpts are the render options that affect SVG output and therefore
// participate in the diagram cache key.
type DiagramKeyOpts struct {
	Direction   string
	FontFamily  string
	FontSize    float64
	UseMaxWidth bool
}

// ArtifactKeyOpts are the conversion options that affect a derived artifact.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// ModelKey returns the key for a parsed model, derived from the hash of
	// the diagram source text.
	ModelKey(sourceHash string) string

	// DiagramKey returns the key for rendered SVG markup.
	DiagramKey(modelHash string, opts DiagramKeyOpts) string

	// ArtifactKey returns the key for a converted artifact.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer derives keys as prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ModelKey generates a key for parsed model caching.
func (k *DefaultKeyer) ModelKey(sourceHash string) string {
	return "model:" + sourceHash
}

// DiagramKey generates a key for rendered SVG caching.
func (k *DefaultKeyer) DiagramKey(modelHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", modelHash, opts)
}

// ArtifactKey generates a key for converted artifact caching.
func (k *DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
