package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/canvas"
	"github.com/matzehuels/whiteboard/pkg/document"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

// watchDebounce coalesces the burst of events one editor save produces.
const watchDebounce = 150 * time.Millisecond

type replayOptions struct {
	events string // events JSON file
	pages  string // optional document loaded before the events
	output string
	width  int
	height int
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		opts  replayOptions
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "replay <events.json>",
		Short: "Replay recorded input events onto a canvas and write a PNG",
		Long: `Replay a JSON array of input events onto a fresh canvas and write the
result as PNG.

Events have the same shape as the body of POST /sessions/{id}/events:

  [{"type":"pointerdown","x":10,"y":10},{"type":"pointermove","x":90,"y":40}]

With --watch the canvas is rendered again whenever the events or pages
file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.events = args[0]
			if opts.output == "" {
				opts.output = strings.TrimSuffix(opts.events, filepath.Ext(opts.events)) + ".png"
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			run := func() error {
				prog := newProgress(logger)
				st, n, err := replay(opts)
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Replayed %d events", n))
				printSuccess("Rendered %dx%d canvas", st.Width, st.Height)
				if st.PageCount > 0 {
					printDetail("page %d of %d", st.Page+1, st.PageCount)
				}
				printFile(opts.output)
				return nil
			}

			if err := run(); err != nil && !watch {
				return err
			} else if err != nil {
				printError("%s", errors.UserMessage(err))
			}
			if !watch {
				return nil
			}

			files := []string{opts.events}
			if opts.pages != "" {
				files = append(files, opts.pages)
			}
			printInfo("Watching %s (Ctrl+C to stop)", strings.Join(files, ", "))
			return watchFiles(ctx, files, func() {
				if err := run(); err != nil {
					printError("%s", errors.UserMessage(err))
				}
			})
		},
	}

	cmd.Flags().StringVar(&opts.pages, "pages", "",
		"document whose pages are loaded before the events ("+strings.Join(document.Extensions(), ", ")+")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG (default: events file with .png)")
	cmd.Flags().IntVar(&opts.width, "width", 1280, "canvas width")
	cmd.Flags().IntVar(&opts.height, "height", 720, "canvas height")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "render again when the input files change")

	return cmd
}

// replay renders opts.events onto a new raster, writes the PNG and returns
// the final session state and the number of events applied.
func replay(opts replayOptions) (board.State, int, error) {
	if opts.width < 1 || opts.height < 1 || opts.width > board.MaxSurfaceSide || opts.height > board.MaxSurfaceSide {
		return board.State{}, 0, errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d out of range (1..%d)",
			opts.width, opts.height, board.MaxSurfaceSide)
	}

	f, err := os.Open(opts.events)
	if err != nil {
		return board.State{}, 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.events)
	}
	events, err := board.ReadEvents(f)
	f.Close()
	if err != nil {
		return board.State{}, 0, err
	}

	var sessionOpts []board.Option
	if opts.pages != "" {
		data, err := os.ReadFile(opts.pages)
		if err != nil {
			return board.State{}, 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.pages)
		}
		pages, err := document.Extract(filepath.Base(opts.pages), data)
		if err != nil {
			return board.State{}, 0, err
		}
		sessionOpts = append(sessionOpts, board.WithPages(pages))
	}

	raster := canvas.NewRaster(opts.width, opts.height)
	s := board.NewSession(raster, board.NewViewport(opts.width, opts.height), sessionOpts...)
	if err := s.ApplyAll(events); err != nil {
		return board.State{}, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: %s", opts.events, errors.UserMessage(err))
	}

	if err := writePNG(opts.output, raster); err != nil {
		return board.State{}, 0, err
	}
	return s.State(), len(events), nil
}

// writePNG writes the raster through a temp file so watchers of the output
// never see a partial image.
func writePNG(path string, raster *canvas.Raster) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".replay-*.png")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create output in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if err := raster.EncodePNG(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// watchFiles calls onChange after any of files is written, created or
// renamed into place, until ctx is done. Directories are watched rather
// than the files, since many editors save by replacing the file.
func watchFiles(ctx context.Context, files []string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	logger := loggerFromContext(ctx)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, _ := filepath.Abs(ev.Name)
			if !watched[abs] {
				continue
			}
			logger.Debug("File changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "err", err)
		}
	}
}
