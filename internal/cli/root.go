package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Run builds the command tree and executes it with args. Logs go to
// stderr at info level, or debug with -v.
func Run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var verbose bool

	c := New(stderr, LogInfo)
	c.out = stdout
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
