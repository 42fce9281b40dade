// Package dropbox implements the NoteStore port over a Dropbox folder.
// Notes are *.md files anywhere under the configured folder; paths are
// folder-relative and slash-separated. Change detection is cursor based:
// Watch polls list_folder/continue on an interval instead of holding a
// longpoll connection open.
package dropbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"golang.org/x/oauth2"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

// MaxContentSize caps how much of a single note is downloaded (5MB).
// Larger notes are truncated at the cap so one runaway file cannot
// exhaust memory during a sweep.
const MaxContentSize = 5 * 1024 * 1024

// DefaultPollInterval is how often Watch asks Dropbox for changes.
const DefaultPollInterval = 30 * time.Second

// dropboxEndpoint is the OAuth2 endpoint pair for Dropbox. Only the
// token URL is exercised here; authorisation happens out of band and
// the refresh token arrives through configuration.
var dropboxEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

// Config carries the credentials and vault location for a Dropbox store.
type Config struct {
	// AppKey and AppSecret identify the Dropbox app.
	AppKey    string
	AppSecret string

	// RefreshToken is the long-lived token obtained during app linking.
	// Access tokens are minted from it on demand.
	RefreshToken string

	// Folder is the vault folder inside the Dropbox account, for
	// example "/Notes". Empty means the account root.
	Folder string
}

// apiClient is the slice of the Dropbox files API the store depends on.
// files.Client satisfies it; tests substitute their own.
type apiClient interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	ListFolderGetLatestCursor(arg *files.ListFolderArg) (*files.ListFolderGetLatestCursorResult, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// Store reads markdown notes from a Dropbox folder.
type Store struct {
	client       apiClient
	folder       string
	pollInterval time.Duration

	mu     sync.Mutex
	closed bool
}

// Ensure Store implements the NoteStore port.
var _ driven.NoteStore = (*Store)(nil)

// New creates a Dropbox note store. The underlying HTTP client refreshes
// access tokens transparently from the configured refresh token.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.AppKey == "" || cfg.AppSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("dropbox credentials: %w", domain.ErrNotConfigured)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.AppKey,
		ClientSecret: cfg.AppSecret,
		Endpoint:     dropboxEndpoint,
	}
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	dbxCfg := dropbox.Config{
		Client:   oauth2.NewClient(ctx, source),
		LogLevel: dropbox.LogOff,
	}

	return &Store{
		client:       files.New(dbxCfg),
		folder:       normaliseFolder(cfg.Folder),
		pollInterval: DefaultPollInterval,
	}, nil
}

// ListAll lists the vault folder recursively and downloads every
// markdown note. Folder and deleted entries in the listing are skipped.
func (s *Store) ListAll(ctx context.Context) ([]domain.Note, error) {
	arg := files.NewListFolderArg(s.folder)
	arg.Recursive = true

	res, err := s.client.ListFolder(arg)
	if err != nil {
		return nil, fmt.Errorf("list dropbox folder %q: %w", s.folder, err)
	}

	var notes []domain.Note
	for {
		for _, entry := range res.Entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			md, ok := entry.(*files.FileMetadata)
			if !ok {
				continue
			}
			rel := s.relPath(md.PathDisplay)
			if !isMarkdown(md.Name) || isHidden(rel) {
				continue
			}

			content, err := s.download(md.PathLower)
			if err != nil {
				return nil, err
			}
			notes = append(notes, domain.Note{
				Path:       rel,
				Content:    content,
				ModifiedAt: md.ServerModified,
			})
		}

		if !res.HasMore {
			break
		}
		res, err = s.client.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, fmt.Errorf("continue dropbox listing: %w", err)
		}
	}

	return notes, nil
}

// Get downloads a single note by its folder-relative path.
func (s *Store) Get(ctx context.Context, path string) (*domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	md, body, err := s.client.Download(files.NewDownloadArg(s.fullPath(path)))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("note %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("download note %q: %w", path, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxContentSize))
	if err != nil {
		return nil, fmt.Errorf("read note %q: %w", path, err)
	}

	return &domain.Note{
		Path:       path,
		Content:    string(data),
		ModifiedAt: md.ServerModified,
	}, nil
}

// Watch polls Dropbox for changes since the cursor taken at call time
// and emits note events until ctx is cancelled. A stale or rejected
// cursor is replaced with a fresh one; anything missed in between is
// picked up by the next full reconciliation.
func (s *Store) Watch(ctx context.Context) (<-chan domain.NoteEvent, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("note store is closed")
	}

	cursor, err := s.latestCursor()
	if err != nil {
		return nil, fmt.Errorf("acquire dropbox cursor: %w", err)
	}

	events := make(chan domain.NoteEvent)
	go s.watchLoop(ctx, cursor, events)
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

func (s *Store) watchLoop(ctx context.Context, cursor string, out chan<- domain.NoteEvent) {
	defer close(out)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			next, events, err := s.pollChanges(cursor)
			if err != nil {
				logger.Warn("dropbox change poll failed: %v", err)
				if fresh, cerr := s.latestCursor(); cerr == nil {
					cursor = fresh
				}
				continue
			}
			cursor = next

			for _, ev := range events {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// pollChanges drains everything Dropbox has recorded since cursor and
// returns the advanced cursor together with the mapped note events.
func (s *Store) pollChanges(cursor string) (string, []domain.NoteEvent, error) {
	var events []domain.NoteEvent
	for {
		res, err := s.client.ListFolderContinue(files.NewListFolderContinueArg(cursor))
		if err != nil {
			return cursor, nil, fmt.Errorf("continue dropbox listing: %w", err)
		}
		for _, entry := range res.Entries {
			if ev := s.entryEvent(entry); ev != nil {
				events = append(events, *ev)
			}
		}
		cursor = res.Cursor
		if !res.HasMore {
			break
		}
	}
	return cursor, events, nil
}

// entryEvent maps a listing entry to a note event. Dropbox reports the
// latest state of a path, not the operation, so live files map to an
// update and tombstones to a delete. Folders and non-notes map to nil.
func (s *Store) entryEvent(entry files.IsMetadata) *domain.NoteEvent {
	switch md := entry.(type) {
	case *files.FileMetadata:
		rel := s.relPath(md.PathDisplay)
		if !isMarkdown(md.Name) || isHidden(rel) {
			return nil
		}
		return &domain.NoteEvent{Path: rel, Type: domain.NoteUpdated}

	case *files.DeletedMetadata:
		rel := s.relPath(md.PathDisplay)
		if !isMarkdown(md.Name) || isHidden(rel) {
			return nil
		}
		return &domain.NoteEvent{Path: rel, Type: domain.NoteDeleted}
	}
	return nil
}

func (s *Store) latestCursor() (string, error) {
	arg := files.NewListFolderArg(s.folder)
	arg.Recursive = true

	res, err := s.client.ListFolderGetLatestCursor(arg)
	if err != nil {
		return "", err
	}
	return res.Cursor, nil
}

func (s *Store) download(path string) (string, error) {
	_, body, err := s.client.Download(files.NewDownloadArg(path))
	if err != nil {
		return "", fmt.Errorf("download %q: %w", path, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxContentSize))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return string(data), nil
}

// relPath strips the vault folder prefix from a display path. Dropbox
// paths are case-insensitive, so the prefix comparison is too.
func (s *Store) relPath(pathDisplay string) string {
	p := pathDisplay
	if s.folder != "" &&
		len(p) > len(s.folder) &&
		strings.EqualFold(p[:len(s.folder)], s.folder) &&
		p[len(s.folder)] == '/' {
		p = p[len(s.folder):]
	}
	return strings.TrimPrefix(p, "/")
}

// fullPath joins a folder-relative note path back into a Dropbox path.
func (s *Store) fullPath(path string) string {
	return s.folder + "/" + strings.TrimPrefix(path, "/")
}

// normaliseFolder cleans a configured folder to "" for the account root
// or "/Name/Sub" otherwise.
func normaliseFolder(folder string) string {
	f := strings.TrimSpace(folder)
	f = strings.TrimSuffix(f, "/")
	if f == "" {
		return ""
	}
	if !strings.HasPrefix(f, "/") {
		f = "/" + f
	}
	return f
}

// isNotFound reports whether err is a Dropbox path lookup miss.
func isNotFound(err error) bool {
	var apiErr files.DownloadAPIError
	if !errors.As(err, &apiErr) {
		return false
	}
	ep := apiErr.EndpointError
	return ep != nil && ep.Path != nil && ep.Path.Tag == files.LookupErrorNotFound
}

// isHidden reports whether any segment of the path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isMarkdown(name string) bool {
	return strings.EqualFold(path.Ext(name), ".md")
}
