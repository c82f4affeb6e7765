package codebase

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls a set of files for modifications. The first poll only
// records modification times.
type FileWatcher struct {
	list         func() ([]string, error)
	onChange     func(ctx context.Context, paths []string)
	pollInterval time.Duration
	modTimes     map[string]time.Time
}

// NewFileWatcher watches the files returned by list, which is called on
// every poll so new files are picked up.
func NewFileWatcher(list func() ([]string, error), onChange func(ctx context.Context, paths []string)) *FileWatcher {
	return &FileWatcher{
		list:         list,
		onChange:     onChange,
		pollInterval: 1 * time.Second,
	}
}

func (w *FileWatcher) SetInterval(d time.Duration) {
	if d > 0 {
		w.pollInterval = d
	}
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	if _, err := w.Poll(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := w.Poll()
			if err != nil {
				log.Warningf("poll: %s", err)
				continue
			}
			if len(changed) == 0 {
				continue
			}
			w.onChange(ctx, changed)
			// The callback may rewrite the files it was given.
			w.refresh(changed)
		}
	}
}

// Poll returns the files that appeared or were modified since the previous
// poll.
func (w *FileWatcher) Poll() ([]string, error) {
	paths, err := w.list()
	if err != nil {
		return nil, err
	}

	first := w.modTimes == nil
	current := make(map[string]time.Time, len(paths))
	var changed []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = info.ModTime()
		if first {
			continue
		}
		lastMod, known := w.modTimes[path]
		if !known || !info.ModTime().Equal(lastMod) {
			changed = append(changed, path)
		}
	}
	for path := range w.modTimes {
		if _, ok := current[path]; !ok {
			log.Debugf("%s removed", path)
		}
	}
	w.modTimes = current
	return changed, nil
}

func (w *FileWatcher) refresh(paths []string) {
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			w.modTimes[path] = info.ModTime()
		}
	}
}
