package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a saved layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout without simulating",
		Long: `Render a computed layout without simulating.

The visualize command takes a layout.json file (produced by 'layout') and
draws it in the requested formats. Positions are used as stored.

Use 'render' as a shortcut to go directly from a word path to output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	flags.addRenderFlags(cmd.Flags())
	flags.addCacheFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, flags *renderFlags) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering...")
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("visualize: %w", err)
	}

	return c.writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     strings.TrimSuffix(input, ".layout.json") + ".json",
		output:    flags.output,
		nodes:     len(l.Nodes),
		edges:     len(l.Edges),
		ticks:     l.Ticks,
		cacheHit:  cacheHit,
	})
}
