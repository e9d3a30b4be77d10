// Package filesystem provides a connector that ingests documents from
// a local directory tree. It is the only connector Caderno ships.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// channelBuffer is the buffer size for sync and watch channels.
const channelBuffer = 64

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads documents from a directory tree.
// Hidden files and directories (dot-prefixed) are skipped.
type Connector struct {
	sourceID string
	rootPath string

	mu      sync.Mutex
	cursor  string
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a filesystem connector for the given source.
func New(sourceID, rootPath string) *Connector {
	return &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// SourceID returns the source this connector serves.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", c.rootPath)
	}
	return nil
}

// FullSync walks the directory tree and emits every readable file.
// Per-file read failures go to the error channel and do not stop the
// walk.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsCh := make(chan domain.RawDocument, channelBuffer)
	errsCh := make(chan error, channelBuffer)

	go func() {
		defer close(docsCh)
		defer close(errsCh)

		start := time.Now()

		if err := c.Validate(ctx); err != nil {
			sendErr(ctx, errsCh, err)
			return
		}

		err := c.walk(ctx, func(path string, info fs.FileInfo) bool {
			doc, err := c.readDocument(path, info)
			if err != nil {
				sendErr(ctx, errsCh, fmt.Errorf("%w: %s: %v", domain.ErrSourceRead, path, err))
				return true
			}

			select {
			case docsCh <- *doc:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil {
			sendErr(ctx, errsCh, err)
			return
		}

		c.setCursor(start)
	}()

	return docsCh, errsCh
}

// IncrementalSync walks the tree and emits files modified at or after
// the cursor in state. An empty cursor behaves like a full sync.
func (c *Connector) IncrementalSync(ctx context.Context, state domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error) {
	changesCh := make(chan domain.RawDocumentChange, channelBuffer)
	errsCh := make(chan error, channelBuffer)

	go func() {
		defer close(changesCh)
		defer close(errsCh)

		start := time.Now()

		since, err := parseCursor(state.Cursor)
		if err != nil {
			sendErr(ctx, errsCh, err)
			return
		}

		if err := c.Validate(ctx); err != nil {
			sendErr(ctx, errsCh, err)
			return
		}

		walkErr := c.walk(ctx, func(path string, info fs.FileInfo) bool {
			// Files touched at exactly the cursor time are included,
			// so nothing at the sync boundary is missed.
			if !since.IsZero() && info.ModTime().Before(since) {
				return true
			}

			doc, err := c.readDocument(path, info)
			if err != nil {
				sendErr(ctx, errsCh, fmt.Errorf("%w: %s: %v", domain.ErrSourceRead, path, err))
				return true
			}

			select {
			case changesCh <- domain.RawDocumentChange{Type: domain.ChangeUpdated, Document: *doc}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if walkErr != nil {
			sendErr(ctx, errsCh, walkErr)
			return
		}

		c.setCursor(start)
	}()

	return changesCh, errsCh
}

// Watch emits change events as files change under the root until ctx
// is cancelled. Subdirectories are watched recursively; directories
// created while watching are added to the watcher.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, <-chan error) {
	changesCh := make(chan domain.RawDocumentChange, channelBuffer)
	errsCh := make(chan error, channelBuffer)

	watcher, err := c.startWatcher()
	if err != nil {
		go func() {
			sendErr(ctx, errsCh, err)
			close(changesCh)
			close(errsCh)
		}()
		return changesCh, errsCh
	}

	go func() {
		defer close(changesCh)
		defer close(errsCh)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}

				select {
				case changesCh <- *change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				sendErr(ctx, errsCh, fmt.Errorf("%w: %v", domain.ErrSourceRead, err))
			}
		}
	}()

	return changesCh, errsCh
}

// Cursor returns the cursor recorded by the last completed sync.
func (c *Connector) Cursor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Close releases the watcher if one is running. Safe to call multiple
// times.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// startWatcher creates the fsnotify watcher and registers the root
// plus every existing subdirectory.
func (c *Connector) startWatcher() (*fsnotify.Watcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector is closed")
	}

	if err := c.Validate(context.Background()); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(c.rootPath, path); relErr == nil && path != c.rootPath && isHidden(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching directory tree: %w", err)
	}

	c.watcher = watcher
	return watcher, nil
}

// handleFsEvent maps an fsnotify event to a document change.
// Returns nil for events that should be ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil {
		rel = event.Name
	}
	if isHidden(rel) {
		return nil
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// New directories get watched; they are not documents.
			c.mu.Lock()
			if c.watcher != nil {
				_ = c.watcher.Add(event.Name)
			}
			c.mu.Unlock()
			return nil
		}

		doc, err := c.readDocument(event.Name, info)
		if err != nil {
			return nil
		}
		return &domain.RawDocumentChange{Type: domain.ChangeCreated, Document: *doc}

	case event.Op&fsnotify.Write == fsnotify.Write:
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}

		doc, err := c.readDocument(event.Name, info)
		if err != nil {
			return nil
		}
		return &domain.RawDocumentChange{Type: domain.ChangeUpdated, Document: *doc}

	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		return &domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				SourceID: c.sourceID,
				URI:      event.Name,
			},
		}

	default:
		return nil
	}
}

// walk visits every non-hidden regular file under the root.
// The visitor returns false to stop the walk.
func (c *Connector) walk(ctx context.Context, visit func(path string, info fs.FileInfo) bool) error {
	return filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}

		// Hidden checks use the path relative to the root, so a root
		// that itself lives under a dot-directory still syncs.
		rel, relErr := filepath.Rel(c.rootPath, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != c.rootPath && isHidden(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(rel) || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // vanished mid-walk, skip
		}

		if !visit(path, info) {
			return filepath.SkipAll
		}
		return nil
	})
}

// readDocument reads a file into a raw document.
func (c *Connector) readDocument(path string, info fs.FileInfo) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")

	return &domain.RawDocument{
		SourceID: c.sourceID,
		URI:      path,
		MIMEType: detectMIMEType(filename),
		Content:  content,
		Metadata: map[string]any{
			"filename":  filename,
			"extension": ext,
			"modified":  info.ModTime().UTC().Format(time.RFC3339),
			"size":      info.Size(),
		},
	}, nil
}

// setCursor records the completion time of a sync pass.
func (c *Connector) setCursor(t time.Time) {
	c.mu.Lock()
	c.cursor = strconv.FormatInt(t.UnixNano(), 10)
	c.mu.Unlock()
}

// parseCursor converts a persisted cursor back into a time.
// An empty cursor yields the zero time, meaning everything matches.
func parseCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}

	nanos, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cursor format %q: %w", cursor, err)
	}
	return time.Unix(0, nanos), nil
}

// sendErr delivers an error unless the context is done.
func sendErr(ctx context.Context, errsCh chan<- error, err error) {
	select {
	case errsCh <- err:
	case <-ctx.Done():
	}
}

// fallbackMIMETypes maps extensions the platform mime database often
// misses or reports inconsistently.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".pdf":      "application/pdf",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
}

// detectMIMEType determines the MIME type from the file extension.
// Files without an extension are treated as plain text.
func detectMIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "text/plain"
	}

	if mimeType, ok := fallbackMIMETypes[ext]; ok {
		return mimeType
	}

	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		// Strip parameters like "; charset=utf-8"
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = strings.TrimSpace(mimeType[:idx])
		}
		return mimeType
	}

	return "application/octet-stream"
}

// isHidden reports whether any path component is dot-prefixed.
// The "." and ".." components are not considered hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
