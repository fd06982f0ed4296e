package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexandro/vproject-mcp/config"
	"github.com/lexandro/vproject-mcp/ignore"
	"github.com/lexandro/vproject-mcp/language"
	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/lexandro/vproject-mcp/watcher"
)

// mirror loads a directory on disk into a project and keeps it up to date.
// Only files that came from disk are tracked; files written through the tools are left alone.
// A tracked file deleted through the tools stays out of the project until its disk copy changes.
type mirror struct {
	rootDir       string
	project       *project.Project
	ignoreMatcher *ignore.Matcher
	logger        *slog.Logger

	mu       sync.Mutex
	modTimes map[string]time.Time // key: canonical path
	dropped  map[string]time.Time // deleted through the tools; value is the disk ModTime at the time
}

func newMirror(rootDir string, p *project.Project, ignoreMatcher *ignore.Matcher, logger *slog.Logger) *mirror {
	return &mirror{
		rootDir:       rootDir,
		project:       p,
		ignoreMatcher: ignoreMatcher,
		logger:        logger,
		modTimes:      make(map[string]time.Time),
		dropped:       make(map[string]time.Time),
	}
}

// load walks the root directory and writes all eligible files into the project.
// Returns the number of files loaded and total bytes processed.
func (m *mirror) load() (int, int64) {
	var loadedCount int
	var totalSize int64
	var mu sync.Mutex

	// Use a bounded worker pool for parallel file reading
	const workerCount = 8
	type loadJob struct {
		path string
		info os.FileInfo
	}
	jobs := make(chan loadJob, 100)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				canonical, err := m.loadFile(job.path, job.info)
				if err != nil {
					m.logger.Debug("skipped file", "path", job.path, "error", err)
					continue
				}
				m.logger.Debug("loaded file", "path", canonical)
				mu.Lock()
				loadedCount++
				totalSize += job.info.Size()
				mu.Unlock()
			}
		}()
	}

	m.walk(func(path string, info os.FileInfo) {
		jobs <- loadJob{path: path, info: info}
	})

	close(jobs)
	wg.Wait()
	return loadedCount, totalSize
}

// walk calls visit for every file under the root that passes the ignore rules.
func (m *mirror) walk(visit func(path string, info os.FileInfo)) {
	filepath.WalkDir(m.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != m.rootDir && m.ignoreMatcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.IsIgnoreFile(d.Name()) || d.Name() == config.FileName || m.ignoreMatcher.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if m.ignoreMatcher.IsFileTooLarge(info.Size()) {
			return nil
		}
		visit(path, info)
		return nil
	})
}

// canonicalPath maps an absolute path under the root to its project path.
func (m *mirror) canonicalPath(absolutePath string) (string, error) {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	return m.project.Normalize("/" + filepath.ToSlash(relativePath))
}

// loadFile reads one file and writes it into the project with an inferred kind.
func (m *mirror) loadFile(absolutePath string, info os.FileInfo) (string, error) {
	canonical, err := m.canonicalPath(absolutePath)
	if err != nil {
		return "", err
	}

	content, err := readFileWithRetry(absolutePath)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if language.IsBinaryContent(content) {
		return "", fmt.Errorf("binary file")
	}

	if _, err := m.project.WriteFile(canonical, string(content), vfs.KindUnknown); err != nil {
		return "", fmt.Errorf("writing %s: %w", canonical, err)
	}

	m.mu.Lock()
	m.modTimes[canonical] = info.ModTime()
	delete(m.dropped, canonical)
	m.mu.Unlock()
	return canonical, nil
}

// remove deletes a mirrored file from the project.
func (m *mirror) remove(canonical string) {
	m.mu.Lock()
	delete(m.modTimes, canonical)
	delete(m.dropped, canonical)
	m.mu.Unlock()

	if _, err := m.project.DeleteFile(canonical); err != nil {
		m.logger.Debug("remove failed", "path", canonical, "error", err)
	}
}

// tracked returns a copy of the mirrored paths and their disk modification times.
func (m *mirror) tracked() map[string]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]time.Time, len(m.modTimes))
	for path, modTime := range m.modTimes {
		result[path] = modTime
	}
	return result
}

func (m *mirror) isTracked(canonical string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.modTimes[canonical]
	return ok
}

// untrack records that canonical was deleted from the project through the tools.
// Sync and watcher events leave it out until the disk file is modified.
func (m *mirror) untrack(canonical string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	modTime, ok := m.modTimes[canonical]
	if !ok {
		return
	}
	delete(m.modTimes, canonical)
	m.dropped[canonical] = modTime
}

// isDropped reports whether canonical was deleted through the tools and its disk copy
// still has the same ModTime.
func (m *mirror) isDropped(canonical string, modTime time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	droppedAt, ok := m.dropped[canonical]
	return ok && droppedAt.Equal(modTime)
}

// forget drops every tracked path. Used after the project has been reset.
func (m *mirror) forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modTimes = make(map[string]time.Time)
	m.dropped = make(map[string]time.Time)
}

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows when editors are saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// handleWatcherEvents applies debounced file system events to the project until the
// watcher stops or ctx is done.
func (m *mirror) handleWatcherEvents(ctx context.Context, fileWatcher *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case events, ok := <-fileWatcher.Events():
			if !ok {
				return
			}
			m.applyEvents(events)
		}
	}
}

func (m *mirror) applyEvents(events []watcher.DebouncedEvent) {
	for _, event := range events {
		canonical, err := m.canonicalPath(event.Path)
		if err != nil {
			m.logger.Debug("skipped event outside project", "path", event.Path, "error", err)
			continue
		}

		baseName := filepath.Base(event.Path)
		if ignore.IsIgnoreFile(baseName) {
			m.ignoreMatcher.Reload()
			m.logger.Info("reloaded ignore rules", "trigger", baseName, "op", event.Op)
			continue
		}
		if baseName == config.FileName {
			continue
		}

		switch event.Op {
		case watcher.OpRemove, watcher.OpRename:
			if !m.isTracked(canonical) {
				m.mu.Lock()
				delete(m.dropped, canonical)
				m.mu.Unlock()
				continue
			}
			m.remove(canonical)
			m.logger.Debug("removed from project", "path", canonical)

		case watcher.OpCreate, watcher.OpWrite:
			if m.ignoreMatcher.ShouldIgnore(event.Path) {
				continue
			}

			info, err := os.Stat(event.Path)
			if err != nil || info.IsDir() {
				continue
			}
			if m.ignoreMatcher.IsFileTooLarge(info.Size()) || m.isDropped(canonical, info.ModTime()) {
				continue
			}

			if _, err := m.loadFile(event.Path, info); err != nil {
				m.logger.Debug("skipped file update", "path", canonical, "error", err)
				continue
			}
			m.logger.Debug("updated project", "path", canonical, "op", event.Op)
		}
	}
}
