package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/schemaviz/schemaviz/pkg/pipeline"
)

// fileConfig holds render defaults loaded from a TOML file. Values only apply
// where the corresponding flag was not set, so flags always win.
//
//	direction = "LR"
//	font_size = 14.0
//	use_max_width = true
//	formats = ["svg", "json"]
type fileConfig struct {
	Direction   string   `toml:"direction"`
	FontFamily  string   `toml:"font_family"`
	FontSize    float64  `toml:"font_size"`
	UseMaxWidth bool     `toml:"use_max_width"`
	Scale       float64  `toml:"scale"`
	Formats     []string `toml:"formats"`
	Detailed    bool     `toml:"detailed"`
}

// loadConfig decodes the TOML config file at path.
func loadConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return fc, nil
}

// apply copies config values onto unset pipeline options.
func (fc fileConfig) apply(opts *pipeline.Options) {
	if opts.Direction == "" {
		opts.Direction = fc.Direction
	}
	if opts.FontFamily == "" {
		opts.FontFamily = fc.FontFamily
	}
	if opts.FontSize == 0 {
		opts.FontSize = fc.FontSize
	}
	if !opts.UseMaxWidth {
		opts.UseMaxWidth = fc.UseMaxWidth
	}
	if opts.Scale == 0 {
		opts.Scale = fc.Scale
	}
	if len(opts.Formats) <= 1 && len(fc.Formats) > 0 {
		// A bare "svg" is the flag default; an explicit config list wins.
		if len(opts.Formats) == 0 || opts.Formats[0] == pipeline.FormatSVG {
			opts.Formats = fc.Formats
		}
	}
	if !opts.Detailed {
		opts.Detailed = fc.Detailed
	}
}
