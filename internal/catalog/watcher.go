package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the catalog when its data files change on disk. Limit-year
// updates are plain YAML edits; a long-running host picks them up without a
// restart. Reloads that fail validation are reported and the previous catalog
// stays in effect.
type Watcher struct {
	dir      string
	log      *zap.SugaredLogger
	fs       *fsnotify.Watcher
	catalogs chan *Catalog
	done     chan struct{}
}

// Watch starts watching dir for catalog edits. The caller owns Close.
func Watch(dir string, log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		dir:      dir,
		log:      log,
		fs:       fw,
		catalogs: make(chan *Catalog, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Catalogs delivers each successfully reloaded catalog.
func (w *Watcher) Catalogs() <-chan *Catalog { return w.catalogs }

// Close stops the watcher and releases the inotify handle.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	// Editors fire several events per save; coalesce within a short window.
	var pending *time.Timer
	reload := make(chan struct{}, 1)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".yaml") {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debugw("catalog file changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			c, err := Load(w.dir)
			if err != nil {
				w.log.Warnw("catalog reload rejected", "dir", w.dir, "error", err)
				continue
			}
			w.log.Infow("catalog reloaded", "dir", w.dir, "tax_year", c.TaxYear)
			select {
			case w.catalogs <- c:
			default:
				// Drop stale catalog the consumer never drained.
				select {
				case <-w.catalogs:
				default:
				}
				w.catalogs <- c
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warnw("catalog watcher error", "error", err)
		}
	}
}
