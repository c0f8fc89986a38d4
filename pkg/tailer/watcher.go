package tailer

import (
	"path/filepath"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/fsnotify/fsnotify"
)

// Watcher delivers fsnotify events for a tailed path's directory.
// Watching the directory (not the file) is what lets a rename-away +
// create-new-file rotation still be observed. The Agent Loop does not
// use it: pkg/agent's Run ticks on a fixed interval.
type Watcher struct {
	fsw *fsnotify.Watcher
}

// NewWatcher starts watching the directory containing path.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, types.Wrap(types.KindPermanentIO, "create fsnotify watcher", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, types.Wrap(types.KindPermanentIO, "watch tailed file directory", err)
	}
	return &Watcher{fsw: fsw}, nil
}

// Events returns the channel of filesystem events relevant to the
// tailed directory. The caller filters by basename if it cares which
// file changed; for a single-file Agent, any event is a wake signal.
func (w *Watcher) Events() <-chan fsnotify.Event { return w.fsw.Events }

// Errors returns the watcher's error channel.
func (w *Watcher) Errors() <-chan error { return w.fsw.Errors }

// Close stops watching.
func (w *Watcher) Close() error { return w.fsw.Close() }
