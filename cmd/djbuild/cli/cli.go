// Package cli wires the djbuild command tree, following the same
// root-command-plus-subcommand shape the teacher's corpus uses for
// small CLI tools (accented-ai-pgtofu's internal/cli).
package cli

import (
	"github.com/spf13/cobra"
)

// Execute builds and runs the djbuild root command against os.Args.
func Execute() error {
	root := newRootCommand()
	root.AddCommand(newNodeCommand(), newSQLCommand())
	return root.Execute()
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "djbuild",
		Short: "Build a backend SQL query from a metric DAG",
		Long: `djbuild loads a catalog snapshot from a YAML file and runs a single
build against it, printing the resulting database id and SQL text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
