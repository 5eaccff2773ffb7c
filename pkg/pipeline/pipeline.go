// Package pipeline runs word paths through the headless
// route → simulate → render path shared by the CLI and the HTTP server.
//
// The pipeline has two stages:
//
//  1. Layout: build the graph and run the force simulation to rest
//  2. Render: draw the resting layout as SVG, PNG, PDF, DOT or JSON
//
// A [Runner] wraps both stages with a [cache.Cache]. Layouts are keyed by
// the route and the force constants; artifacts by the layout and the
// render options, so a cached layout can be re-rendered in a new format
// without simulating again.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Route:   graph.Route{Path: []string{"cat", "cot", "dog"}},
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordpath/pkg/cache"
	"github.com/matzehuels/wordpath/pkg/config"
	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/force"
	"github.com/matzehuels/wordpath/pkg/graph"
)

const (
	// DefaultMaxTicks bounds a headless run. With the default cooling a
	// simulation rests after about 300 ticks; the margin covers a raised
	// alpha target in a config file.
	DefaultMaxTicks = 1000

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatDOT:  "text/vnd.graphviz",
	FormatJSON: "application/json",
}

// Options contains all configuration for one pipeline run.
// The JSON form is the body of the HTTP render endpoint.
type Options struct {
	Route graph.Route `json:"route"`

	// Layout options
	Force      force.Config `json:"force"`
	EdgePolicy string       `json:"edge_policy,omitempty"`
	MaxTicks   int          `json:"max_ticks,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Transparent bool     `json:"transparent,omitempty"`
	NoGlow      bool     `json:"no_glow,omitempty"`
	NoCaption   bool     `json:"no_caption,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"` // DOT labels include group and position

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// FromConfig returns options seeded from a configuration file.
func FromConfig(cfg config.Config) Options {
	return Options{
		Force:       cfg.Force,
		EdgePolicy:  cfg.Render.EdgePolicy,
		MaxTicks:    cfg.Render.MaxTicks,
		Formats:     append([]string(nil), cfg.Render.Formats...),
		Scale:       cfg.Render.Scale,
		Transparent: cfg.Render.Transparent,
		NoGlow:      cfg.Render.NoGlow,
		NoCaption:   cfg.Render.NoCaption,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Ticks      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
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

// SetLayoutDefaults fills zero layout options.
func (o *Options) SetLayoutDefaults() {
	if o.Force == (force.Config{}) {
		o.Force = force.DefaultConfig()
	}
	o.Force.SetDefaults()
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates the route and the
// force constants.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidatePathEntries(o.Route.Path); err != nil {
		return err
	}
	if _, err := graph.ParseEdgePolicy(o.EdgePolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid edge policy")
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_ticks must not be negative")
	}
	if err := o.Force.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid force constants")
	}
	return nil
}

// SetRenderDefaults fills zero render options.
func (o *Options) SetRenderDefaults() {
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

// ValidateForRender sets render defaults and validates formats and scale.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 8], got %g", o.Scale)
	}
	return nil
}

// ValidateAndSetDefaults prepares options for a full run. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Policy returns the parsed edge policy. Call after validation.
func (o *Options) Policy() graph.EdgePolicy {
	p, _ := graph.ParseEdgePolicy(o.EdgePolicy)
	return p
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	forceHash, _ := cache.HashJSON(o.Force)
	return cache.LayoutKeyOpts{
		Width:      o.Force.Width,
		Height:     o.Force.Height,
		EdgePolicy: string(o.Policy()),
		MaxTicks:   o.MaxTicks,
		ForceHash:  forceHash,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Transparent: o.Transparent,
		NoGlow:      o.NoGlow,
		Caption:     !o.NoCaption,
	}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatDOT:
		k.Detailed = o.Detailed
	}
	return k
}
