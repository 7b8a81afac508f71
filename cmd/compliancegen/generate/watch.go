package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

// Debounce is how long Watch waits for changes to settle before regenerating.
var Debounce = 200 * time.Millisecond

// Watch generates code, then generates it again whenever an input or the
// config file changes, until ctx is done. Failed runs are reported and
// do not stop watching. loadConfig is called before every run.
func Watch(ctx context.Context, cliOpts *config.GenerateOptions, loadConfig func() (*config.Options, error), inPaths []string, logger *zap.Logger) error {
	for _, p := range inPaths {
		if p == "-" {
			return fmt.Errorf("the standard input cannot be watched")
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := append([]string(nil), inPaths...)
	if cliOpts.ConfigPath != "" && cliOpts.ConfigPath != "-" {
		watched = append(watched, cliOpts.ConfigPath)
	}

	dirs, err := watchDirs(watched, cliOpts.Recursive)
	if err != nil {
		return err
	}

	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("failed to watch %v: %w", d, err)
		}
	}

	run := func() {
		options, err := loadConfig()
		if err == nil {
			err = Generate(ctx, cliOpts, options, inPaths, logger)
		}
		if err != nil {
			cli.Failuref("Generation failed: %v\n", err)
			return
		}
		cli.Infof("Watching %v for changes.\n", inPaths)
	}

	run()

	timer := time.NewTimer(Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(ev.Name, watched) {
				continue
			}
			logger.Debug("input changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			cli.Warningln("Watch error: ", err)
		case <-timer.C:
			run()
		}
	}
}

// watchDirs returns the directories to watch for paths. Files are
// watched through their directory, editors often replace them on save.
func watchDirs(paths []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	add := func(d string) {
		d = filepath.Clean(d)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}

		if !recursive {
			add(p)
			continue
		}

		err = filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

// relevant reports whether a change of name concerns one of the watched
// paths, which are either files or directories.
func relevant(name string, watched []string) bool {
	name = filepath.Clean(name)

	for _, p := range watched {
		p = filepath.Clean(p)
		if name == p {
			return true
		}

		rel, err := filepath.Rel(p, name)
		if err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return true
		}
	}

	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
