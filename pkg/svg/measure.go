package svg

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextMetrics is the bounding box of a rendered text run.
type TextMetrics struct {
	Width  float64
	Height float64
}

// Measurer reports the rendered bounding box of a text run. Layout code calls
// this before any geometry exists to compute minimum box dimensions.
//
// Implementations may fail when no usable font face is available; callers
// treat a measurement failure as fatal for the whole render pass.
type Measurer interface {
	Measure(text, fontFamily string, fontSize float64) (TextMetrics, error)
}

// FontMeasurer measures text using the embedded Go Regular typeface. The
// fontFamily argument is carried through to the emitted markup but does not
// change the metrics; a single embedded face keeps measurement deterministic
// across platforms.
//
// FontMeasurer is safe for concurrent use.
type FontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer parses the embedded typeface and returns a ready measurer.
func NewFontMeasurer() (*FontMeasurer, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{font: fnt, faces: make(map[float64]font.Face)}, nil
}

// Measure returns the width of the text advance and the line height at the
// given size. An empty string measures zero wide but still one line high.
func (m *FontMeasurer) Measure(text, fontFamily string, fontSize float64) (TextMetrics, error) {
	face, err := m.face(fontSize)
	if err != nil {
		return TextMetrics{}, err
	}

	metrics := face.Metrics()
	height := float64(metrics.Ascent+metrics.Descent) / 64

	width := float64(font.MeasureString(face, text)) / 64

	return TextMetrics{Width: width, Height: height}, nil
}

func (m *FontMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}
