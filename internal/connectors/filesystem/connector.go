// Package filesystem provides a connector that ingests documentation from a
// local directory tree and can watch it for changes.
//
// Files are streamed with paths relative to the root, forward-slashed, and
// versioned by the SHA-256 of their content so unchanged files can be skipped
// on re-ingestion. Hidden entries and common build or dependency directories
// (.git, node_modules, vendor, ...) are never descended into.
//
// Watching is built on fsnotify. Newly created subdirectories are added to the
// watch set on the fly; removals and renames are reported as deletions carrying
// only the relative path.
package filesystem

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// DefaultMaxFileSize caps individual files at 1 MiB.
const DefaultMaxFileSize = 1 << 20

// skipDirs are directory names the connector never descends into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
}

// Config holds the filesystem connector configuration.
type Config struct {
	// IncludeCode enables ingestion of recognised source files in
	// addition to markdown and reStructuredText.
	IncludeCode bool

	// MaxFileSize is the maximum file size in bytes. Larger files are
	// skipped. Defaults to DefaultMaxFileSize.
	MaxFileSize int64
}

func (c *Config) applyDefaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// Connector reads documentation files from a local directory.
type Connector struct {
	repo     domain.RepositoryID
	rootPath string
	config   Config

	mu     sync.Mutex
	closed bool
}

var _ driven.Connector = (*Connector)(nil)

// New creates a filesystem connector rooted at rootPath. The path is
// resolved to an absolute path so that URIs and watch events are stable
// regardless of the working directory.
func New(repo domain.RepositoryID, rootPath string, cfg Config) *Connector {
	cfg.applyDefaults()
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}
	return &Connector{
		repo:     repo,
		rootPath: rootPath,
		config:   cfg,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Repo returns the repository this connector is bound to.
func (c *Connector) Repo() domain.RepositoryID {
	return c.repo
}

// Root returns the absolute directory the connector reads from.
func (c *Connector) Root() string {
	return c.rootPath
}

// Capabilities reports what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        true,
		RequiresAuth:         false,
		SupportsRateLimiting: false,
	}
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: root path %s does not exist", domain.ErrInvalidInput, c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat root path %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path %s is not a directory", domain.ErrInvalidInput, c.rootPath)
	}
	return ctx.Err()
}

// List returns every entry under the root without reading contents.
// Hidden entries and skipped directories are left out, matching the
// walk performed by Files.
func (c *Connector) List(ctx context.Context) ([]domain.TreeEntry, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	var entries []domain.TreeEntry
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == c.rootPath {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
		} else if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		entries = append(entries, domain.TreeEntry{
			Path:  c.relPath(path),
			IsDir: d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list root path %s: %w", c.rootPath, err)
	}
	return entries, nil
}

// Files walks the tree under the root and streams ingestable files.
// Unreadable entries are reported on the error channel without stopping
// the walk; a missing root is fatal. Both channels close when the walk
// finishes. Callers must receive from both channels until both close.
func (c *Connector) Files(ctx context.Context) (<-chan domain.RepoFile, <-chan error) {
	files := make(chan domain.RepoFile)
	errs := make(chan error)

	go func() {
		defer close(files)
		defer close(errs)

		if err := c.checkClosed(); err != nil {
			sendErr(ctx, errs, err)
			return
		}
		c.walk(ctx, files, errs)
	}()

	return files, errs
}

func (c *Connector) walk(ctx context.Context, files chan<- domain.RepoFile, errs chan<- error) {
	_ = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == c.rootPath {
				sendErr(ctx, errs, fmt.Errorf("walk root path %s: %w", c.rootPath, err))
				return filepath.SkipAll
			}
			sendErr(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
			return nil
		}
		if d.IsDir() {
			if path != c.rootPath && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !domain.IsIngestablePath(path, c.config.IncludeCode) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("stat %s: %w", path, err))
			return nil
		}
		if info.Size() > c.config.MaxFileSize {
			return nil
		}

		file, ok, err := c.loadFile(path)
		if err != nil {
			sendErr(ctx, errs, err)
			return nil
		}
		if !ok {
			return nil
		}

		select {
		case files <- file:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

// loadFile reads path and builds a RepoFile. The second return value is
// false when the file should be silently skipped.
func (c *Connector) loadFile(path string) (domain.RepoFile, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RepoFile{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	// Extension filters miss binary content in text-named files.
	if !utf8.Valid(data) {
		return domain.RepoFile{}, false, nil
	}
	return domain.RepoFile{
		Path:    c.relPath(path),
		Content: string(data),
		SHA:     fmt.Sprintf("%x", sha256.Sum256(data)),
		Size:    int64(len(data)),
		URI:     buildFileURI(path),
	}, true, nil
}

// Watch streams file changes under the root until ctx is cancelled.
// Candidate files that appear, change, or disappear are reported; newly
// created subdirectories are picked up automatically. The returned
// channel closes when the watch ends.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("watch root path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addWatchTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan domain.FileChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.handleEvent(ctx, watcher, event, changes)
			case _, ok := <-watcher.Errors:
				// Transient notification failures are not actionable here.
				if !ok {
					return
				}
			}
		}
	}()

	return changes, nil
}

// addWatchTree registers the root and every non-skipped subdirectory.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (c *Connector) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, changes chan<- domain.FileChange) {
	name := event.Name
	base := filepath.Base(name)

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if !skipDir(base) {
				// Watches are not recursive; track new subdirectories.
				_ = watcher.Add(name)
			}
			return
		}
		c.emitChange(ctx, changes, domain.ChangeCreated, name)
	case event.Op.Has(fsnotify.Write):
		c.emitChange(ctx, changes, domain.ChangeUpdated, name)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if strings.HasPrefix(base, ".") || !domain.IsIngestablePath(name, c.config.IncludeCode) {
			return
		}
		change := domain.FileChange{
			Type: domain.ChangeDeleted,
			File: domain.RepoFile{Path: c.relPath(name)},
		}
		select {
		case changes <- change:
		case <-ctx.Done():
		}
	}
}

// emitChange loads the file at path and sends a create or update event.
// Files that vanished or turned out not to be candidates are ignored.
func (c *Connector) emitChange(ctx context.Context, changes chan<- domain.FileChange, changeType domain.ChangeType, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if !domain.IsIngestablePath(path, c.config.IncludeCode) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > c.config.MaxFileSize {
		return
	}
	file, ok, err := c.loadFile(path)
	if err != nil || !ok {
		return
	}
	select {
	case changes <- domain.FileChange{Type: changeType, File: file}:
	case <-ctx.Done():
	}
}

// Close marks the connector as closed. Active watches are stopped by
// cancelling their context.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

func (c *Connector) relPath(path string) string {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func skipDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".")
}

// sendErr delivers err unless ctx is already cancelled. It reports
// whether the send happened.
func sendErr(ctx context.Context, errs chan<- error, err error) bool {
	select {
	case errs <- err:
		return true
	case <-ctx.Done():
		return false
	}
}

func buildFileURI(absPath string) string {
	return "file://" + filepath.ToSlash(absPath)
}
