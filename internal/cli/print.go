package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/docnav/internal/render"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/spf13/cobra"
)

func newPrintCmd(a *app) *cobra.Command {
	var cursors []int
	var viewport string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "print FILE",
		Short: "Print the outline of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			for _, line := range cursors {
				if line < 1 {
					return fmt.Errorf("--cursor lines start at 1, got %d", line)
				}
				if _, err := s.AddCursor(line - 1); err != nil {
					return err
				}
			}
			if viewport != "" {
				top, bot, err := parseSpan(viewport)
				if err != nil {
					return fmt.Errorf("--viewport: %w", err)
				}
				if err := s.SetViewport(top, bot); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s.Snapshot())
			}
			fmt.Fprint(out, render.Outline(s.Forest(), a.renderOptions()))
			printCursors(cmd, s.Cursors())
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&cursors, "cursor", nil, "Cursor line (1-based); repeatable")
	cmd.Flags().StringVar(&viewport, "viewport", "", "Visible lines as FIRST:LAST (1-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session snapshot as JSON")
	return cmd
}

func printCursors(cmd *cobra.Command, cursors []session.CursorState) {
	if len(cursors) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, c := range cursors {
		fmt.Fprintf(out, "%d: %s\n", c.Row+1, render.Breadcrumb(c.Breadcrumb))
	}
}

// parseSpan parses a 1-based "FIRST:LAST" line span into 0-based rows.
func parseSpan(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected FIRST:LAST, got %q", s)
	}
	top, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("bad first line %q", a)
	}
	bot, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("bad last line %q", b)
	}
	if top < 1 || bot < 1 {
		return 0, 0, fmt.Errorf("lines start at 1, got %q", s)
	}
	return top - 1, bot - 1, nil
}
