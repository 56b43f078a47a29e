package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/tomz197/containment/internal/game"
)

// reloadDebounce is the quiet period after the last write before a reload.
const reloadDebounce = 100 * time.Millisecond

// TuningWatcher reloads a tuning file whenever it changes on disk.
// Valid reloads are delivered on Configs; failures on Errors.
type TuningWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	Configs chan game.Config
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchTuning starts watching path. The containing directory is watched so
// that editors which replace the file on save are handled.
func WatchTuning(path string) (*TuningWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	tw := &TuningWatcher{
		path:    filepath.Clean(path),
		watcher: w,
		Configs: make(chan game.Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go tw.run()
	return tw, nil
}

// Close stops the watcher. Safe to call more than once.
func (tw *TuningWatcher) Close() error {
	var err error
	tw.once.Do(func() {
		close(tw.closeCh)
		err = tw.watcher.Close()
		<-tw.done
		close(tw.Configs)
		close(tw.Errors)
	})
	return err
}

func (tw *TuningWatcher) run() {
	defer close(tw.done)
	reload := time.NewTimer(reloadDebounce)
	reload.Stop()
	defer reload.Stop()

	for {
		select {
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload.Reset(reloadDebounce)
		case <-reload.C:
			cfg, err := LoadTuning(tw.path)
			if err != nil {
				tw.sendErr(err)
				continue
			}
			select {
			case tw.Configs <- cfg:
			case <-tw.closeCh:
				return
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.sendErr(err)
		case <-tw.closeCh:
			return
		}
	}
}

func (tw *TuningWatcher) sendErr(err error) {
	select {
	case tw.Errors <- err:
	default:
	}
}

// LoadAndWatch loads the tuning file at path and, when path is set, watches
// it. Reload errors are logged; valid reloads arrive on updates. stop
// releases the watcher. With an empty path the defaults are returned and
// updates is nil.
func LoadAndWatch(path string, logger *log.Logger) (cfg game.Config, updates <-chan game.Config, stop func(), err error) {
	cfg, err = LoadTuning(path)
	if err != nil {
		return game.Config{}, nil, nil, err
	}
	if path == "" {
		return cfg, nil, func() {}, nil
	}

	tw, err := WatchTuning(path)
	if err != nil {
		return game.Config{}, nil, nil, err
	}
	logger.Info("Watching tuning file", "path", path)

	go func() {
		for err := range tw.Errors {
			logger.Warn("Tuning reload failed", "path", path, "err", err)
		}
	}()
	return cfg, tw.Configs, func() { _ = tw.Close() }, nil
}
