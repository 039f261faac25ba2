package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaviz/schemaviz/pkg/cache"
	"github.com/schemaviz/schemaviz/pkg/svg"
)

const sampleSource = `erDiagram
title Order handling
CUSTOMER["Customer Account"] {
    int id PK
    string name
}
ORDER {
    int id PK
    int customer_id FK
}
CUSTOMER ||--o{ ORDER : places`

// fixedMeasurer keeps pipeline tests independent of real font metrics.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(text, _ string, size float64) (svg.TextMetrics, error) {
	return svg.TextMetrics{
		Width:  float64(len(text)) * size * 0.6,
		Height: size * 1.2,
	}, nil
}

func testOptions(formats ...string) Options {
	return Options{
		Source:   sampleSource,
		Formats:  formats,
		Measurer: fixedMeasurer{},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if tt.wantErr {
			assert.Error(t, err, "format %q", tt.format)
		} else {
			assert.NoError(t, err, "format %q", tt.format)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	assert.NoError(t, ValidateFormats([]string{"svg", "png"}))
	assert.Error(t, ValidateFormats([]string{"svg", "invalid"}))
	// Empty slice is valid
	assert.NoError(t, ValidateFormats(nil))
}

func TestValidateDirection(t *testing.T) {
	assert.NoError(t, ValidateDirection("TB"))
	assert.NoError(t, ValidateDirection("LR"))
	assert.NoError(t, ValidateDirection(""))
	assert.Error(t, ValidateDirection("RL"))
	assert.Error(t, ValidateDirection("tb"))
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := testOptions()
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, "TB", opts.Direction)
	assert.Equal(t, []string{FormatSVG}, opts.Formats)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.NotNil(t, opts.Logger)

	// Idempotent
	require.NoError(t, opts.ValidateAndSetDefaults())
}

func TestValidateRequiresSource(t *testing.T) {
	opts := Options{}
	assert.Error(t, opts.ValidateAndSetDefaults())
}

func TestExecuteProducesArtifacts(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), testOptions("svg", "json", "dot"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.EntityCount)
	assert.Equal(t, 1, result.Stats.RelationshipCount)
	assert.NotEmpty(t, result.ModelHash)

	svgOut := string(result.Artifacts[FormatSVG])
	assert.Contains(t, svgOut, "data-entity-name=\"CUSTOMER\"")
	assert.Contains(t, svgOut, "Customer Account")

	jsonOut := string(result.Artifacts[FormatJSON])
	assert.Contains(t, jsonOut, `"title": "Order handling"`)

	dotOut := string(result.Artifacts[FormatDOT])
	assert.Contains(t, dotOut, "digraph ER {")
}

func TestExecuteParseError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := testOptions()
	opts.Source = "not a diagram"
	_, err := runner.Execute(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestExecuteInvalidFormat(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), testOptions("gif"))
	assert.Error(t, err)
}

func TestExecuteCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := testOptions("svg", "dot")

	first, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.ParseHit)
	assert.False(t, first.CacheInfo.DrawHit)
	assert.False(t, first.CacheInfo.ConvertHit)

	second, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.ParseHit)
	assert.True(t, second.CacheInfo.DrawHit)
	assert.True(t, second.CacheInfo.ConvertHit)
	assert.Equal(t, first.ModelHash, second.ModelHash)
	assert.Equal(t, first.Artifacts[FormatDOT], second.Artifacts[FormatDOT])
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := testOptions()
	_, err = runner.Execute(ctx, opts)
	require.NoError(t, err)

	opts.Refresh = true
	result, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, result.CacheInfo.ParseHit)
	assert.False(t, result.CacheInfo.DrawHit)
}

func TestExplicitTargetIDNotCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := testOptions()
	opts.TargetID = "my-diagram"

	first, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(first.Artifacts[FormatSVG]), `id="my-diagram"`))

	second, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, second.CacheInfo.DrawHit)
}

func TestCachedDiagram(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := testOptions()
	result, err := runner.Execute(ctx, opts)
	require.NoError(t, err)

	data, err := runner.CachedDiagram(ctx, result.ModelHash, opts)
	require.NoError(t, err)
	assert.Equal(t, result.Artifacts[FormatSVG], data)

	_, err = runner.CachedDiagram(ctx, "deadbeef", opts)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
