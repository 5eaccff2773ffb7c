package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/pipeline"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

// layoutCommand creates the layout command for computing resting positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "layout [path|route.json|-] [word...]",
		Short: "Simulate a word path to rest and write the layout as JSON",
		Long: `Simulate a word path to rest and write the layout as JSON.

The output is a layout.json file (same format as 'render -f json') that
can be drawn with 'visualize' without simulating again.

Results are cached locally for faster subsequent runs.`,
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
			return c.runLayout(cmd.Context(), opts, input, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.json) or - for stdout")
	flags.addLayoutFlags(cmd.Flags())
	flags.addCacheFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, input string, flags *renderFlags) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Simulating...")
	spinner.Start()
	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	spinner.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("compute layout: %w", err)
	}

	if flags.output == "-" {
		data, err := sink.RenderJSON(l)
		if err != nil {
			return err
		}
		_, err = c.out.Write(data)
		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	c.printSuccess("Layout complete")
	c.printFile(outputPath)
	c.printStats(len(l.Nodes), len(l.Edges), l.Ticks, cacheHit)
	if !l.Converged && len(l.Nodes) > 0 {
		c.printWarning("Simulation stopped after %d ticks before coming to rest", l.Ticks)
	}
	c.printNewline()
	c.printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
