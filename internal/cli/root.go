// Package cli implements the atlantis-todos command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// streams bundles the standard streams so commands can be tested without
// touching os.Stdin/os.Stdout.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// NewRootCommand builds the full command tree.
func NewRootCommand(version string, in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	std := streams{in: in, out: out, err: errOut}

	rootCmd := &cobra.Command{
		Use:   "atlantis-todos",
		Short: "A task list with pluggable storage",
		Long: `atlantis-todos keeps a newest-first task list and persists the whole list
under a single key after every change.

Storage is chosen with --backend or TODO_STORAGE_BACKEND: json (default),
sqlite, postgres, neo4j or memory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	addGlobalFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		newAddCmd(opts, std),
		newToggleCmd(opts, std),
		newRemoveCmd(opts, std),
		newEditCmd(opts, std),
		newClearCompletedCmd(opts, std),
		newListCmd(opts, std),
		newStatsCmd(opts, std),
		newApplyCmd(opts, std),
		newServeCmd(opts, std),
		newMCPCmd(opts, std, version),
		newShellCmd(opts, std),
	)

	return rootCmd
}

// Run executes the command tree with args and returns the process exit code.
//
// SIGINT and SIGTERM cancel the command context.
func Run(version string, args []string, in io.Reader, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(version, in, out, errOut)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
