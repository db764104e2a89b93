package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher waits for a burst of events to end before
// reloading.
const settle = 50 * time.Millisecond

// Watcher reloads the settings file when it changes on disk.
type Watcher struct {
	fw       *fsnotify.Watcher
	path     string
	onChange func(Settings)
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching path. onChange runs on the watcher goroutine with
// every valid new version of the file; invalid versions are logged and
// skipped. The directory is watched rather than the file because editors
// and Save replace the file instead of writing it in place.
func Watch(path string, onChange func(Settings)) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}
	w := &Watcher{fw: fw, path: filepath.Clean(path), onChange: onChange, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending = time.After(settle)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("Settings watcher error: %v", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		log.Printf("Failed to reload settings. %v", err)
		return
	}
	s, err := decode(data)
	if err != nil {
		log.Printf("Ignoring invalid settings. %v", err)
		return
	}
	log.Printf("Reloaded settings from %s.", w.path)
	w.onChange(s)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fw.Close()
		<-w.done
	})
	return err
}
