package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	t.Run("creates store with root path", func(t *testing.T) {
		store := New("/tmp/vault")

		require.NotNil(t, store)
		assert.Equal(t, "/tmp/vault", store.root)
	})

	t.Run("implements NoteStore interface", func(t *testing.T) {
		store := New("/tmp/vault")
		var _ driven.NoteStore = store
	})
}

func TestStore_ListAll(t *testing.T) {
	t.Run("lists markdown notes with content", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-list-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "alpha.md"), []byte("# Alpha"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "beta.md"), []byte("# Beta"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "attachment.txt"), []byte("not a note"), 0644))

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, notes, 2)

		byPath := make(map[string]domain.Note)
		for _, n := range notes {
			byPath[n.Path] = n
		}
		assert.Equal(t, "# Alpha", byPath["alpha.md"].Content)
		assert.Equal(t, "# Beta", byPath["beta.md"].Content)
		assert.False(t, byPath["alpha.md"].ModifiedAt.IsZero())
	})

	t.Run("walks nested directories with slash paths", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-nested-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		nested := filepath.Join(tempDir, "daily", "2026")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "today.md"), []byte("log"), 0644))

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "daily/2026/today.md", notes[0].Path)
	})

	t.Run("skips hidden files", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-hidden-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "visible.md"), []byte("visible"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".hidden.md"), []byte("hidden"), 0644))

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "visible.md", notes[0].Path)
	})

	t.Run("skips hidden directories", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-hiddendir-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		hiddenDir := filepath.Join(tempDir, ".obsidian")
		require.NoError(t, os.Mkdir(hiddenDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(hiddenDir, "workspace.md"), []byte("config"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "note.md"), []byte("note"), 0644))

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "note.md", notes[0].Path)
	})

	t.Run("matches extension case-insensitively", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-ext-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "UPPER.MD"), []byte("upper"), 0644))

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "UPPER.MD", notes[0].Path)
	})

	t.Run("empty vault yields no notes", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-empty-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		notes, err := store.ListAll(context.Background())

		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("returns error for non-existent root", func(t *testing.T) {
		store := New("/non/existent/vault")

		notes, err := store.ListAll(context.Background())

		assert.Error(t, err)
		assert.Nil(t, notes)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("returns error when root is a file", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-rootfile-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		filePath := filepath.Join(tempDir, "file.md")
		require.NoError(t, os.WriteFile(filePath, []byte("content"), 0644))

		store := New(filePath)
		_, err = store.ListAll(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("handles cancelled context", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-listcancel-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "note.md"), []byte("note"), 0644))

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = store.ListAll(ctx)

		assert.Error(t, err)
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("reads note by path", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-get-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "idea.md"), []byte("# Idea"), 0644))

		store := New(tempDir)
		note, err := store.Get(context.Background(), "idea.md")

		require.NoError(t, err)
		require.NotNil(t, note)
		assert.Equal(t, "idea.md", note.Path)
		assert.Equal(t, "# Idea", note.Content)
		assert.False(t, note.ModifiedAt.IsZero())
	})

	t.Run("reads nested note by slash path", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-getnested-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		nested := filepath.Join(tempDir, "projects")
		require.NoError(t, os.Mkdir(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "plan.md"), []byte("plan"), 0644))

		store := New(tempDir)
		note, err := store.Get(context.Background(), "projects/plan.md")

		require.NoError(t, err)
		assert.Equal(t, "projects/plan.md", note.Path)
		assert.Equal(t, "plan", note.Content)
	})

	t.Run("returns ErrNotFound for missing note", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-getmissing-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		note, err := store.Get(context.Background(), "gone.md")

		assert.Nil(t, note)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("returns ErrNotFound for directory path", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-getdir-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.Mkdir(filepath.Join(tempDir, "folder.md"), 0755))

		store := New(tempDir)
		_, err = store.Get(context.Background(), "folder.md")

		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestStore_Watch(t *testing.T) {
	t.Run("emits create events", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := store.Watch(ctx)
		require.NoError(t, err)
		require.NotNil(t, events)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "fresh.md"), []byte("content"), 0644)
		}()

		select {
		case ev := <-events:
			assert.Equal(t, domain.NoteCreated, ev.Type)
			assert.Equal(t, "fresh.md", ev.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for create event")
		}

		cancel()
		store.Close()
	})

	t.Run("emits update events", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-mod-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		testFile := filepath.Join(tempDir, "note.md")
		require.NoError(t, os.WriteFile(testFile, []byte("initial"), 0644))

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := store.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(testFile, []byte("modified"), 0644)
		}()

		select {
		case ev := <-events:
			assert.Equal(t, domain.NoteUpdated, ev.Type)
			assert.Equal(t, "note.md", ev.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for update event")
		}

		cancel()
		store.Close()
	})

	t.Run("emits delete events", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-del-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		testFile := filepath.Join(tempDir, "doomed.md")
		require.NoError(t, os.WriteFile(testFile, []byte("delete me"), 0644))

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := store.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Remove(testFile)
		}()

		select {
		case ev := <-events:
			assert.Equal(t, domain.NoteDeleted, ev.Type)
			assert.Equal(t, "doomed.md", ev.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for delete event")
		}

		cancel()
		store.Close()
	})

	t.Run("ignores non-markdown files", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-filter-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := store.Watch(ctx)
		require.NoError(t, err)

		// Write a non-note first; the only event that arrives must be
		// for the markdown file written after it.
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "image.png"), []byte{0x89}, 0644)
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "real.md"), []byte("note"), 0644)
		}()

		select {
		case ev := <-events:
			assert.Equal(t, "real.md", ev.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for markdown event")
		}

		cancel()
		store.Close()
	})

	t.Run("watches directories created after start", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-newdir-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := store.Watch(ctx)
		require.NoError(t, err)

		newDir := filepath.Join(tempDir, "projects")
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Mkdir(newDir, 0755)
			time.Sleep(150 * time.Millisecond)
			os.WriteFile(filepath.Join(newDir, "inside.md"), []byte("nested"), 0644)
		}()

		select {
		case ev := <-events:
			assert.Equal(t, domain.NoteCreated, ev.Type)
			assert.Equal(t, "projects/inside.md", ev.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for event from new directory")
		}

		cancel()
		store.Close()
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		store := New("/non/existent/vault")
		ctx := context.Background()

		events, err := store.Watch(ctx)

		assert.Error(t, err)
		assert.Nil(t, events)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("returns error when store is closed", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-closed-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		store.Close()

		events, err := store.Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, events)
		assert.Contains(t, err.Error(), "closed")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-test-watch-cancel-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		store := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())

		events, err := store.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-events:
			if ok {
				for range events {
				}
			}
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}

		store.Close()
	})
}

func TestStore_Close(t *testing.T) {
	t.Run("close succeeds", func(t *testing.T) {
		store := New("/tmp/vault")

		assert.NoError(t, store.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := New("/tmp/vault")

		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name         string
		setupFile    bool
		setupDir     bool
		fileName     string
		operation    fsnotify.Op
		expectEvent  bool
		expectedType domain.NoteEventType
	}{
		{
			name:         "create note event",
			setupFile:    true,
			fileName:     "note.md",
			operation:    fsnotify.Create,
			expectEvent:  true,
			expectedType: domain.NoteCreated,
		},
		{
			name:         "write note event",
			setupFile:    true,
			fileName:     "note.md",
			operation:    fsnotify.Write,
			expectEvent:  true,
			expectedType: domain.NoteUpdated,
		},
		{
			name:         "remove note event",
			fileName:     "note.md",
			operation:    fsnotify.Remove,
			expectEvent:  true,
			expectedType: domain.NoteDeleted,
		},
		{
			name:         "rename note event",
			fileName:     "note.md",
			operation:    fsnotify.Rename,
			expectEvent:  true,
			expectedType: domain.NoteDeleted,
		},
		{
			name:        "chmod event is skipped",
			setupFile:   true,
			fileName:    "note.md",
			operation:   fsnotify.Chmod,
			expectEvent: false,
		},
		{
			name:        "directory create is skipped",
			setupDir:    true,
			fileName:    "folder.md",
			operation:   fsnotify.Create,
			expectEvent: false,
		},
		{
			name:        "hidden note is skipped",
			setupFile:   true,
			fileName:    ".hidden.md",
			operation:   fsnotify.Create,
			expectEvent: false,
		},
		{
			name:        "non-markdown file is skipped",
			setupFile:   true,
			fileName:    "photo.png",
			operation:   fsnotify.Create,
			expectEvent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir, err := os.MkdirTemp("", "vaultsync-event-*")
			require.NoError(t, err)
			defer os.RemoveAll(tempDir)

			eventPath := filepath.Join(tempDir, tt.fileName)
			if tt.setupDir {
				require.NoError(t, os.Mkdir(eventPath, 0755))
			} else if tt.setupFile {
				require.NoError(t, os.WriteFile(eventPath, []byte("content"), 0644))
			}

			store := New(tempDir)
			change := store.handleFsEvent(fsnotify.Event{Name: eventPath, Op: tt.operation})

			if tt.expectEvent {
				require.NotNil(t, change, "expected event but got nil")
				assert.Equal(t, tt.expectedType, change.Type)
				assert.Equal(t, tt.fileName, change.Path)
			} else {
				assert.Nil(t, change, "expected no event but got one")
			}
		})
	}

	t.Run("combined operations", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "vaultsync-event-combined-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		testFile := filepath.Join(tempDir, "note.md")
		require.NoError(t, os.WriteFile(testFile, []byte("content"), 0644))

		store := New(tempDir)
		change := store.handleFsEvent(fsnotify.Event{
			Name: testFile,
			Op:   fsnotify.Write | fsnotify.Chmod,
		})

		require.NotNil(t, change)
		assert.Equal(t, domain.NoteUpdated, change.Type)
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{".obsidian/workspace.md", true},
		{"dir/.git/config", true},
		{"note.md", false},
		{"path/to/note.md", false},
		{".", false},
		{"..", false},
		{"path/./note.md", false},
		{"", false},
		{"file.hidden", false},
		{"directory.name/note.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"note.md", true},
		{"NOTE.MD", true},
		{"nested/dir/note.md", true},
		{"note.markdown", false},
		{"note.txt", false},
		{"note", false},
		{"md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isMarkdown(tt.path))
		})
	}
}
