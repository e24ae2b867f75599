package cli

import (
	"fmt"

	"github.com/dgallion1/docnav/internal/render"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search FILE QUERY",
		Short: "Fuzzy-search the headings of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			results := s.Search(args[1])
			if len(results) == 0 {
				return fmt.Errorf("no heading matches %q", args[1])
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Search(results, a.renderOptions()))
			return nil
		},
	}
}
