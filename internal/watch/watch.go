package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// Watch calls run whenever the file at path changes, at most once per
// delay, until ctx is done. The parent directory is watched so that editors
// replacing the file are noticed too.
func Watch(ctx context.Context, path string, delay time.Duration, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if nil != err {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); nil != err {
		return fmt.Errorf("unable to watch %v: %w", path, err)
	}

	debounced := debounce.New(delay)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			debounced(run)
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Println("watcher:", werr)
		}
	}
}
