package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/pipeline"
)

// renderFlags holds the flag values shared by render, layout and visualize.
// They are applied on top of the config file only when set explicitly.
type renderFlags struct {
	output      string
	formats     string
	noCache     bool
	refresh     bool
	width       float64
	height      float64
	edges       string
	maxTicks    int
	scale       float64
	transparent bool
	noGlow      bool
	noCaption   bool
	detailed    bool
}

func (f *renderFlags) addLayoutFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&f.width, "width", 0, "canvas width (default 1200)")
	fs.Float64Var(&f.height, "height", 0, "canvas height (default 600)")
	fs.StringVar(&f.edges, "edges", "", "repeated edges: preserve (default), collapse")
	fs.IntVar(&f.maxTicks, "max-ticks", 0, "tick budget for the headless simulation")
}

func (f *renderFlags) addRenderFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	fs.Float64Var(&f.scale, "scale", 0, "PNG resolution multiplier (default 2)")
	fs.BoolVar(&f.transparent, "transparent", false, "omit the background")
	fs.BoolVar(&f.noGlow, "no-glow", false, "disable the neon glow filter")
	fs.BoolVar(&f.noCaption, "no-caption", false, "omit the route caption")
	fs.BoolVar(&f.detailed, "detailed", false, "label DOT nodes with group and position")
}

func (f *renderFlags) addCacheFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// apply overlays explicitly set flags onto opts.
func (f *renderFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) {
	if fs.Changed("width") {
		opts.Force.Width = f.width
	}
	if fs.Changed("height") {
		opts.Force.Height = f.height
	}
	if fs.Changed("edges") {
		opts.EdgePolicy = f.edges
	}
	if fs.Changed("max-ticks") {
		opts.MaxTicks = f.maxTicks
	}
	if formats := parseFormats(f.formats); formats != nil {
		opts.Formats = formats
	}
	if fs.Changed("scale") {
		opts.Scale = f.scale
	}
	if fs.Changed("transparent") {
		opts.Transparent = f.transparent
	}
	if fs.Changed("no-glow") {
		opts.NoGlow = f.noGlow
	}
	if fs.Changed("no-caption") {
		opts.NoCaption = f.noCaption
	}
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
}

// options loads the config file and overlays the flags.
func (c *CLI) options(cmd *cobra.Command, f *renderFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.FromConfig(cfg)
	f.apply(cmd.Flags(), &opts)
	opts.Logger = c.Logger
	return opts, nil
}

// renderCommand creates the render command: route in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [path|route.json|-] [word...]",
		Short: "Render a word path to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a word path as a force-directed diagram.

The path can be given as words (cat cot cog dog), as one argument
("cat → cot → cog → dog" or "cat,cot,cog,dog"), as a route JSON file, or
as JSON on stdin with "-". The simulation runs headless until it comes to
rest and the resting layout is drawn.

Results are cached locally for faster subsequent runs.`,
		Example: `  wordpath render cat cot cog dog
  wordpath render route.json -f svg,png -o ladder
  echo '["cat","cot","dog"]' | wordpath render - -f dot -o -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Route, err = pipeline.ParseArgs(args, c.in)
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), opts, input, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	flags.addRenderFlags(cmd.Flags())
	flags.addLayoutFlags(cmd.Flags())
	flags.addCacheFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, input string, flags *renderFlags) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Simulating %s...", plural(len(opts.Route.Path), "word")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.printError("Render failed")
		return err
	}
	prog.done("render finished", "formats", len(result.Artifacts))

	return c.writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
		ticks:     result.Stats.Ticks,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	edges     int
	ticks     int
	cacheHit  bool
}

// writeArtifacts writes each artifact to disk, or a single one to stdout
// when the output is "-".
func (c *CLI) writeArtifacts(p artifactWriteParams) error {
	if p.output == "-" {
		if len(p.formats) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "-o - needs exactly one format, got %d", len(p.formats))
		}
		_, err := c.out.Write(p.artifacts[p.formats[0]])
		return err
	}

	paths := outputPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote artifact", "path", path, "bytes", len(p.artifacts[format]))
	}

	c.printSuccess("Rendered %s", plural(len(p.formats), "file"))
	for _, format := range p.formats {
		c.printFile(paths[format])
	}
	c.printStats(p.nodes, p.edges, p.ticks, p.cacheHit)
	return nil
}

// outputPaths maps formats to file names. A single format with -o uses the
// name as given; otherwise every file is base.format.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
