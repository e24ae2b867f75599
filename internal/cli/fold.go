package cli

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/render"
	"github.com/spf13/cobra"
)

func newFoldCmd(a *app) *cobra.Command {
	var line, depth int
	var table bool
	var tag string

	cmd := &cobra.Command{
		Use:   "fold FILE",
		Short: "Print the line ranges folding would hide",
		Long: "Print the section around --line (optionally at --depth), or with --table\n" +
			"the ranges folding the document down to its headings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !table && line < 1 {
				return errors.New("either --line or --table is required")
			}
			s, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			var ranges []fold.Range
			if table {
				ranges = s.TableRanges(tag)
			} else if r, ok := s.SectionAt(line-1, depth); ok {
				ranges = []fold.Range{r}
			}
			if len(ranges) == 0 {
				return errors.New("nothing to fold")
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Folds(ranges))
			return nil
		},
	}
	cmd.Flags().IntVar(&line, "line", 0, "Line inside the section (1-based)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Fold the enclosing section at this depth; 0 is the innermost")
	cmd.Flags().BoolVar(&table, "table", false, "Fold every section")
	cmd.Flags().StringVar(&tag, "tag", "", "With --table, only sections tagged info, success, warning or error")
	return cmd
}
