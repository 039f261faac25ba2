package render

// Direction controls the flow of sequential entity placement.
type Direction string

const (
	// DirectionTB places entities top-to-bottom, wrapping into new columns.
	DirectionTB Direction = "TB"
	// DirectionLR places entities left-to-right, wrapping into new rows.
	DirectionLR Direction = "LR"
)

// Config is the read-only configuration snapshot consumed by one draw pass.
// Zero values are replaced by the corresponding Default* constant; use
// [DefaultConfig] as a starting point and override individual fields.
type Config struct {
	FontFamily      string    `toml:"font_family"`
	FontSize        float64   `toml:"font_size"`
	EntityPadding   float64   `toml:"entity_padding"`
	MinEntityWidth  float64   `toml:"min_entity_width"`
	MinEntityHeight float64   `toml:"min_entity_height"`
	MinRowHeight    float64   `toml:"min_row_height"`
	Stroke          string    `toml:"stroke"`
	Fill            string    `toml:"fill"`
	LayoutDirection Direction `toml:"layout_direction"`
	DiagramPadding  float64   `toml:"diagram_padding"`
	TitleTopMargin  float64   `toml:"title_top_margin"`
	UseMaxWidth     bool      `toml:"use_max_width"`

	// CanvasWidth and CanvasHeight bound the placement flow: the wrap axis
	// limit for LR is CanvasWidth, for TB it is CanvasHeight.
	CanvasWidth  float64 `toml:"canvas_width"`
	CanvasHeight float64 `toml:"canvas_height"`
}

// Default configuration values.
const (
	DefaultFontFamily      = "helvetica"
	DefaultFontSize        = 12.0
	DefaultEntityPadding   = 15.0
	DefaultMinEntityWidth  = 100.0
	DefaultMinEntityHeight = 75.0
	DefaultMinRowHeight    = 25.0
	DefaultStroke          = "gray"
	DefaultFill            = "honeydew"
	DefaultDiagramPadding  = 20.0
	DefaultTitleTopMargin  = 25.0
	DefaultCanvasWidth     = 1200.0
	DefaultCanvasHeight    = 1200.0
)

// DefaultConfig returns the default render configuration.
func DefaultConfig() Config {
	return Config{
		FontFamily:      DefaultFontFamily,
		FontSize:        DefaultFontSize,
		EntityPadding:   DefaultEntityPadding,
		MinEntityWidth:  DefaultMinEntityWidth,
		MinEntityHeight: DefaultMinEntityHeight,
		MinRowHeight:    DefaultMinRowHeight,
		Stroke:          DefaultStroke,
		Fill:            DefaultFill,
		LayoutDirection: DirectionTB,
		DiagramPadding:  DefaultDiagramPadding,
		TitleTopMargin:  DefaultTitleTopMargin,
		UseMaxWidth:     true,
		CanvasWidth:     DefaultCanvasWidth,
		CanvasHeight:    DefaultCanvasHeight,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.EntityPadding == 0 {
		c.EntityPadding = d.EntityPadding
	}
	if c.MinEntityWidth == 0 {
		c.MinEntityWidth = d.MinEntityWidth
	}
	if c.MinEntityHeight == 0 {
		c.MinEntityHeight = d.MinEntityHeight
	}
	if c.MinRowHeight == 0 {
		c.MinRowHeight = d.MinRowHeight
	}
	if c.Stroke == "" {
		c.Stroke = d.Stroke
	}
	if c.Fill == "" {
		c.Fill = d.Fill
	}
	if c.LayoutDirection == "" {
		c.LayoutDirection = d.LayoutDirection
	}
	if c.DiagramPadding == 0 {
		c.DiagramPadding = d.DiagramPadding
	}
	if c.TitleTopMargin == 0 {
		c.TitleTopMargin = d.TitleTopMargin
	}
	if c.CanvasWidth == 0 {
		c.CanvasWidth = d.CanvasWidth
	}
	if c.CanvasHeight == 0 {
		c.CanvasHeight = d.CanvasHeight
	}
	return c
}
