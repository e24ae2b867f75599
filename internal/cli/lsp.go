package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/lsp"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/spf13/cobra"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Serve outlines over the Language Server Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions := session.NewManager(a.sessionOptions(), a.cfg.SessionTTL, a.log)
			sessions.Start(ctx)
			defer sessions.Stop()

			display := config.NewDisplay(a.display)
			if a.displayFile != "" {
				cancel := display.Subscribe(func(st config.DisplayState) {
					if err := config.SaveDisplayFile(a.displayFile, st); err != nil {
						a.log.Error("save display file failed", "path", a.displayFile, "error", err)
					}
				})
				defer cancel()
			}

			srv := lsp.NewServer(sessions, display, commands.Default(), a.log)
			a.log.Info("lsp server starting")
			err := srv.Serve(ctx, lsp.Stdio())
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
