package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// Extensions lists the description file extensions, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.ActorLoader and ports.Watchable over a directory
// of YAML or JSON descriptions. Actor IDs are slash separated paths relative
// to the directory, without extension.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// Option configures the Loader.
type Option func(*Loader)

// WithLogger sets the logger used by the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader rooted at dir.
func New(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetActor reads the description of id.
func (l *Loader) GetActor(id string) ([]byte, error) {
	for _, ext := range Extensions {
		data, err := os.ReadFile(filepath.Join(l.dir, filepath.FromSlash(id)+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read actor %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrActorNotFound, id)
}

// ListActors walks the directory for descriptions.
func (l *Loader) ListActors() ([]string, error) {
	seen := make(map[string]string)
	var ids []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		id, ok := l.idOf(path)
		if !ok {
			return nil
		}
		if existing, dup := seen[id]; dup {
			return fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, path)
		}
		seen[id] = path
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list actors in %s: %w", l.dir, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) idOf(path string) (string, bool) {
	ext := filepath.Ext(path)
	known := false
	for _, e := range Extensions {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}
	rel, err := filepath.Rel(l.dir, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ext)), true
}

// Watch implements ports.Watchable using fsnotify.
// New subdirectories are added to the watch as they appear.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("Watcher error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						if err := watcher.Add(evt.Name); err != nil {
							l.logger.Warn("Failed to watch directory", "path", evt.Name, "error", err)
						}
						continue
					}
				}
				if evt.Op == fsnotify.Chmod {
					continue
				}
				id, ok := l.idOf(evt.Name)
				if !ok {
					continue
				}
				l.logger.Debug("Actor description changed", "id", id, "op", evt.Op.String())
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
