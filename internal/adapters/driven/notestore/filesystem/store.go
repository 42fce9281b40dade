// Package filesystem implements the NoteStore port over a local
// directory tree. Every *.md file under the vault root (hidden files
// and directories excluded) is a note; paths are vault-relative and
// slash-separated so they stay stable across platforms.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

// Store reads markdown notes from a directory on the local filesystem.
type Store struct {
	root string

	mu     sync.Mutex
	closed bool
}

// Ensure Store implements the NoteStore port.
var _ driven.NoteStore = (*Store)(nil)

// New creates a filesystem note store rooted at the given directory.
// The root is not validated until an operation touches it.
func New(root string) *Store {
	return &Store{root: root}
}

// ListAll walks the vault and returns every markdown note with content.
func (s *Store) ListAll(ctx context.Context) ([]domain.Note, error) {
	if err := validateRoot(s.root); err != nil {
		return nil, err
	}

	var notes []domain.Note
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if isHidden(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(rel) || !isMarkdown(path) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read note %q: %w", rel, readErr)
		}

		notes = append(notes, domain.Note{
			Path:       filepath.ToSlash(rel),
			Content:    string(content),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	return notes, nil
}

// Get reads a single note by its vault-relative path.
func (s *Store) Get(ctx context.Context, path string) (*domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs := filepath.Join(s.root, filepath.FromSlash(path))
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("note %q: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat note %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("note %q: %w", path, domain.ErrNotFound)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read note %q: %w", path, err)
	}

	return &domain.Note{
		Path:       filepath.ToSlash(filepath.Clean(filepath.FromSlash(path))),
		Content:    string(content),
		ModifiedAt: info.ModTime(),
	}, nil
}

// Watch emits note change events until ctx is cancelled. fsnotify
// watches are not recursive, so the root and every subdirectory are
// registered individually and directories created later are added as
// their create events arrive.
func (s *Store) Watch(ctx context.Context) (<-chan domain.NoteEvent, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("note store is closed")
	}

	if err := validateRoot(s.root); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addRecursive(watcher, s.root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch vault: %w", err)
	}

	events := make(chan domain.NoteEvent)
	go s.watchLoop(ctx, watcher, events)
	return events, nil
}

// Close marks the store closed. Subsequent Watch calls fail; running
// watch loops stop through their context. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.NoteEvent) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.maybeWatchNewDir(watcher, ev)

			change := s.handleFsEvent(ev)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("vault watch error: %v", err)
		}
	}
}

// maybeWatchNewDir registers a freshly created directory so events
// inside it are observed.
func (s *Store) maybeWatchNewDir(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if rel, err := filepath.Rel(s.root, ev.Name); err == nil && isHidden(rel) {
		return
	}
	if err := s.addRecursive(watcher, ev.Name); err != nil {
		logger.Debug("watch new directory %q: %v", ev.Name, err)
	}
}

// handleFsEvent maps a filesystem event to a note event. It returns
// nil for events the synchroniser does not care about: directories,
// hidden paths, non-markdown files and chmod-only changes.
func (s *Store) handleFsEvent(ev fsnotify.Event) *domain.NoteEvent {
	rel, err := filepath.Rel(s.root, ev.Name)
	if err != nil {
		return nil
	}
	if isHidden(rel) || !isMarkdown(ev.Name) {
		return nil
	}
	path := filepath.ToSlash(rel)

	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return nil
		}
		return &domain.NoteEvent{Path: path, Type: domain.NoteCreated}

	case ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return nil
		}
		return &domain.NoteEvent{Path: path, Type: domain.NoteUpdated}

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// The old path is gone either way; a rename target shows up
		// as a separate create event.
		return &domain.NoteEvent{Path: path, Type: domain.NoteDeleted}
	}

	return nil
}

// addRecursive registers dir and all non-hidden subdirectories.
func (s *Store) addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && isHidden(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func validateRoot(root string) error {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("vault root %q does not exist", root)
	}
	if err != nil {
		return fmt.Errorf("stat vault root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root %q is not a directory", root)
	}
	return nil
}

// isHidden reports whether any segment of the path starts with a dot.
// The current and parent directory entries do not count as hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
