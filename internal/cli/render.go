package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemaviz/schemaviz/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file path (or base path for multiple formats)
	direction  string  // layout direction: "TB" or "LR"
	fontFamily string  // font family written on text elements
	fontSize   float64 // title font size in points
	maxWidth   bool    // emit width="100%" with a max-width style
	scale      float64 // PNG resolution multiplier
	detailed   bool    // attribute rows in DOT node labels
	targetID   string  // id of the root <svg> element
	config     string  // optional TOML config file
	noCache    bool    // disable the file cache
	refresh    bool    // bypass cached entries
}

// renderCommand creates the render command for generating diagrams.
// It reads erDiagram notation from a file (or stdin with "-") and writes the
// requested formats next to the input or to --output.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an erDiagram file to SVG and other formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "layout direction: TB (default), LR")
	cmd.Flags().StringVar(&opts.fontFamily, "font-family", "", "font family for diagram text")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "title font size in points")
	cmd.Flags().BoolVar(&opts.maxWidth, "max-width", false, "size the diagram to its container")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG resolution multiplier (default 2.0)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include attribute rows in DOT node labels")
	cmd.Flags().StringVar(&opts.targetID, "target-id", "", "id of the root svg element")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file with render defaults")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// runRender reads the source, executes the pipeline, and writes every artifact.
func (c *CLI) runRender(cmd *cobra.Command, input string, formats []string, opts *renderOpts) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Source:      source,
		Formats:     formats,
		TargetID:    opts.targetID,
		Direction:   opts.direction,
		FontFamily:  opts.fontFamily,
		FontSize:    opts.fontSize,
		UseMaxWidth: opts.maxWidth,
		Scale:       opts.scale,
		Detailed:    opts.detailed,
		Refresh:     opts.refresh,
	}
	if opts.config != "" {
		fc, err := loadConfig(opts.config)
		if err != nil {
			return err
		}
		fc.apply(&popts)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(cmd.Context(), "Rendering diagram...")
	spin.Start()
	result, err := runner.Execute(cmd.Context(), popts)
	spin.Stop()
	if err != nil {
		if spin.Cancelled() {
			return cmd.Context().Err()
		}
		printError("Render failed: %v", err)
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d entities", result.Stats.EntityCount))

	printStats(result.Stats.EntityCount, result.Stats.RelationshipCount, result.CacheInfo.DrawHit)

	base := basePath(opts.output, input)
	for _, format := range formats {
		path := outputPath(base, opts.output, format, len(formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printSuccess("Done")
	return nil
}

// readSource reads the diagram text from path, or from stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output ends in a
// known format extension, that extension is stripped. Stdin input falls back
// to "diagram".
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath builds the file path for one artifact. A single format with an
// explicit --output keeps that path verbatim; everything else gets base.format.
func outputPath(base, output, format string, formatCount int) string {
	if formatCount == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}
