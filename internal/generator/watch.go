package generator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/basuapi/adaptergen/internal/config"
	"github.com/basuapi/adaptergen/internal/errors"
)

// DefaultDebounce is how long Watch waits for the application folder to
// settle before regenerating.
const DefaultDebounce = 300 * time.Millisecond

// Watch regenerates whenever the application folder changes, until ctx is
// done. Each regeneration skips the installer. onRun receives the outcome of
// every run; a failed run does not stop watching.
//
// Parameters:
//   - ctx: Context; cancelling it stops the watch
//   - cfg: Resolved configuration
//   - debounce: Quiet period before a rerun (zero means DefaultDebounce)
//   - onRun: Callback for each run's report and error (may be nil)
//
// Returns:
//   - error: IO error when the folder cannot be watched; nil once ctx is done
func (g *Generator) Watch(ctx context.Context, cfg config.Generation, debounce time.Duration, onRun func(*Report, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cfg.SkipInstall = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.CodeIO, "start watcher", err)
	}
	defer watcher.Close()

	appDir := g.resolve(cfg.ApplicationFolder)
	// the adapter folder may sit inside the application folder
	output := g.resolve(cfg.Folder)
	if err := addTree(watcher, appDir, output); err != nil {
		return errors.Wrapf(errors.CodeIO, "watch application folder", err, "cannot watch %s", appDir)
	}
	g.logger.Info("watching for changes", "folder", appDir)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if within(event.Name, output) {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name, output); err != nil {
						g.logger.Warn("cannot watch new directory", "path", event.Name, "error", err.Error())
					}
				}
			}
			g.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watcher error", "error", err.Error())

		case <-timer.C:
			report, err := g.Run(ctx, cfg)
			if onRun != nil {
				onRun(report, err)
			}
		}
	}
}

// addTree watches root and every directory below it except exclude;
// fsnotify is not recursive.
func addTree(watcher *fsnotify.Watcher, root, exclude string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if within(path, exclude) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
