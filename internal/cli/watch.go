package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/render"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Print the outline again whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(ctx, path)
			if err != nil {
				return err
			}
			defer s.Close()

			p := &printer{out: cmd.OutOrStdout(), opts: a.renderOptions()}
			p.print(s.Forest())
			cancel := s.Subscribe(func(u session.Update) { p.print(u.Forest) })
			defer cancel()

			return watchFile(ctx, path, a.log, func(data []byte) {
				if err := s.Update(data); err != nil {
					a.log.Error("update failed", "path", path, "error", err)
				}
			})
		},
	}
}

// printer serializes outline output from the session's notifications.
type printer struct {
	mu   sync.Mutex
	out  io.Writer
	opts render.Options
}

func (p *printer) print(forest []*outline.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "--- %s\n", time.Now().Format(time.TimeOnly))
	fmt.Fprint(p.out, render.Outline(forest, p.opts))
}

// watchFile calls reload with the new content after every write to path.
// The directory is watched so editors that save by renaming a temp file
// over path are picked up too.
func watchFile(ctx context.Context, path string, log *slog.Logger, reload func([]byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				log.Warn("reload failed", "path", path, "error", err)
				continue
			}
			log.Debug("file changed", "path", path, "op", event.Op.String())
			reload(data)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}
