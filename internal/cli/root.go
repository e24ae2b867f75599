// Package cli implements the docnav command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/render"
	"github.com/dgallion1/docnav/internal/scanner"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand.
type app struct {
	format      string
	displayFile string
	width       int
	rows        bool
	verbose     bool

	cfg     config.Config
	log     *slog.Logger
	display config.DisplayState
}

// Execute is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "docnav",
		Short:         "Live document outlines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.format, "format", "", "Document format (default: from the file extension)")
	root.PersistentFlags().StringVar(&a.displayFile, "display", "", "Display preferences file (default: $DOCNAV_DISPLAY_FILE)")
	root.PersistentFlags().IntVar(&a.width, "width", 0, "Output width; 0 disables truncation")
	root.PersistentFlags().BoolVar(&a.rows, "rows", false, "Show line numbers")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging on stderr")

	root.AddCommand(
		newPrintCmd(a),
		newSearchCmd(a),
		newFoldCmd(a),
		newWatchCmd(a),
		newLSPCmd(a),
		newFormatsCmd(),
		newCommandsCmd(),
	)
	return root
}

// setup loads configuration and logs to stderr; stdout carries output
// and, for the lsp command, the protocol.
func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	a.cfg = config.Load()

	if a.displayFile == "" {
		a.displayFile = a.cfg.DisplayFile
	}
	st, err := config.LoadDisplayFile(a.displayFile)
	if err != nil {
		return err
	}
	if a.cfg.MarkLines {
		st.Markers = true
	}
	a.display = st
	return nil
}

func (a *app) renderOptions() render.Options {
	return render.Options{Display: a.display, Width: a.width, Rows: a.rows}
}

func (a *app) sessionOptions() session.Options {
	return session.OptionsFromConfig(a.cfg)
}

// open reads path into a new session and waits for the first outline.
func (a *app) open(ctx context.Context, path string) (*session.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, err := scanner.Resolve(a.format, path)
	if err != nil {
		return nil, err
	}
	s, err := session.New(filepath.Base(path), format, data, a.sessionOptions(), a.log)
	if err != nil {
		return nil, err
	}
	if err := s.Sync(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Snapshot().Error; err != "" {
		s.Close()
		return nil, fmt.Errorf("scan %s: %s", path, err)
	}
	return s, nil
}
