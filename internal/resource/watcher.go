package resource

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/foxwhite25/maabridge/internal/event"
)

// Watcher reloads an Index when its file changes on disk, for example after
// the resource updater replaced it.
type Watcher struct {
	watcher *fsnotify.Watcher
	index   *Index
	fs      afero.Fs
	bus     *event.Bus
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex
}

// NewWatcher watches the directory holding idx. Reloads read through fs and
// are announced on bus.
func NewWatcher(idx *Index, fs afero.Fs, bus *event.Bus) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Updaters replace the file by rename, which drops a watch on the file itself.
	if err := w.Add(filepath.Dir(idx.Path())); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{
		watcher: w,
		index:   idx,
		fs:      fs,
		bus:     bus,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	target := filepath.Clean(w.index.Path())
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("item index watcher error")
		}
	}
}

func (w *Watcher) reload() {
	if err := w.index.Reload(w.fs); err != nil {
		log.Warn().Err(err).Str("path", w.index.Path()).Msg("item index reload failed, keeping previous contents")
		return
	}

	log.Info().Int("items", w.index.Len()).Msg("item index reloaded")
	if w.bus != nil {
		w.bus.PublishSync(event.Event{
			Type: event.ItemsReloaded,
			Data: event.ItemsReloadedData{Path: w.index.Path(), Count: w.index.Len()},
		})
	}
}

// Stop stops the watcher and waits for it to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	if started {
		<-w.doneCh
	}

	return w.watcher.Close()
}
