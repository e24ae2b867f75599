package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/scanner"
	"github.com/spf13/cobra"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported document formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range scanner.Formats() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the outline commands available to the API and LSP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range commands.Default().List() {
				fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Description)
			}
			return w.Flush()
		},
	}
}
