package content

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// KeyResolver maps a path relative to the watched root to a content Key.
// Returning an invalid Key skips the event.
type KeyResolver func(rel string) Key

// DefaultKeyResolver resolves keys by file extension: .tex -> texture,
// .lua/.luac -> script, everything else -> data.
func DefaultKeyResolver(rel string) Key {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".tex":
		return NewKey(TypeTexture, filepath.ToSlash(rel))
	case ".lua", ".luac":
		return NewKey(TypeScript, filepath.ToSlash(rel))
	default:
		return NewKey(TypeData, filepath.ToSlash(rel))
	}
}

// ChangeNotifier watches the content root recursively and converts file
// system events into ChangeEvents. Events are buffered; the Manager drains
// them during Poll.
type ChangeNotifier struct {
	root    string
	resolve KeyResolver
	watcher *fsnotify.Watcher
	events  chan ChangeEvent
	logger  *zap.Logger
	quit    chan struct{}
}

// NewChangeNotifier watches root and every directory below it.
func NewChangeNotifier(root string, resolve KeyResolver, logger *zap.Logger) (*ChangeNotifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if resolve == nil {
		resolve = DefaultKeyResolver
	}
	n := &ChangeNotifier{
		root:    root,
		resolve: resolve,
		watcher: w,
		events:  make(chan ChangeEvent, 256),
		logger:  logger,
		quit:    make(chan struct{}),
	}
	if err := n.addRecursive(root); err != nil {
		w.Close()
		return nil, err
	}
	go n.run()
	return n, nil
}

func (n *ChangeNotifier) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return n.watcher.Add(path)
		}
		return nil
	})
}

func (n *ChangeNotifier) run() {
	for {
		select {
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.handle(ev)
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.Warn("content watcher error", zap.Error(err))
		case <-n.quit:
			return
		}
	}
}

func (n *ChangeNotifier) handle(ev fsnotify.Event) {
	// New directories need their own watch for recursion to hold.
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := n.watcher.Add(ev.Name); err != nil {
				n.logger.Warn("watch add failed", zap.String("dir", ev.Name), zap.Error(err))
			}
			return
		}
	}
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return
	}

	rel, err := filepath.Rel(n.root, ev.Name)
	if err != nil {
		return
	}
	key := n.resolve(rel)
	if !key.IsValid() {
		return
	}

	select {
	case n.events <- ChangeEvent{Old: key, New: key, At: time.Now()}:
	default:
		n.logger.Warn("change event dropped, queue full", zap.Stringer("key", key))
	}
}

// Events returns the buffered change stream.
func (n *ChangeNotifier) Events() <-chan ChangeEvent { return n.events }

// Close stops the watcher.
func (n *ChangeNotifier) Close() error {
	close(n.quit)
	return n.watcher.Close()
}
