package vfs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/vproject-mcp/language"
	"github.com/lexandro/vproject-mcp/vpath"
)

// Store is the in-memory source of truth for the project tree.
// It uses a map for O(1) path lookups and a sorted slice for deterministic listing.
type Store struct {
	mu          sync.RWMutex
	files       map[string]*FileRecord // key: canonical path
	sortedPaths []string               // sorted for consistent iteration
	writeCounts map[string]int         // survives Delete so versions keep counting
	now         func() time.Time
}

// NewStore creates a new empty store.
func NewStore() *Store {
	return &Store{
		files:       make(map[string]*FileRecord),
		sortedPaths: make([]string, 0),
		writeCounts: make(map[string]int),
		now:         time.Now,
	}
}

// Write creates or overwrites the record at path and returns the new record.
// The path must already be canonical; anything else is rejected unchanged.
func (s *Store) Write(path string, content string, kind Kind) (FileRecord, error) {
	if !vpath.IsFilePath(path) {
		return FileRecord{}, &vpath.InvalidPathError{Raw: path, Reason: "not a canonical file path"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCounts[path]++
	record := &FileRecord{
		Path:      path,
		Content:   content,
		Kind:      kind,
		Version:   s.writeCounts[path],
		Language:  language.DetectLanguage(path),
		SizeBytes: int64(len(content)),
		LineCount: strings.Count(content, "\n") + 1,
		ModTime:   s.now(),
	}

	_, exists := s.files[path]
	s.files[path] = record

	if !exists {
		idx := sort.SearchStrings(s.sortedPaths, path)
		s.sortedPaths = append(s.sortedPaths, "")
		copy(s.sortedPaths[idx+1:], s.sortedPaths[idx:])
		s.sortedPaths[idx] = path
	}

	return *record, nil
}

// Read returns the record at path. The boolean is false when no record exists.
func (s *Store) Read(path string) (FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.files[path]
	if !ok {
		return FileRecord{}, false
	}
	return *record, true
}

// Exists reports whether a record exists at path.
func (s *Store) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok
}

// Delete removes the record at path and reports whether it existed.
// Files importing path are not touched; they become unresolved on the next resolution.
func (s *Store) Delete(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[path]; !exists {
		return false
	}

	delete(s.files, path)

	idx := sort.SearchStrings(s.sortedPaths, path)
	if idx < len(s.sortedPaths) && s.sortedPaths[idx] == path {
		s.sortedPaths = append(s.sortedPaths[:idx], s.sortedPaths[idx+1:]...)
	}
	return true
}

// List returns all paths in lexicographic order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, len(s.sortedPaths))
	copy(paths, s.sortedPaths)
	return paths
}

// AllFiles returns every record in path order.
func (s *Store) AllFiles() []FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]FileRecord, 0, len(s.sortedPaths))
	for _, path := range s.sortedPaths {
		if record, ok := s.files[path]; ok {
			result = append(result, *record)
		}
	}
	return result
}

// FileCount returns the number of records.
func (s *Store) FileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// TotalSizeBytes returns the total content size of all records.
func (s *Store) TotalSizeBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalSize int64
	for _, record := range s.files {
		totalSize += record.SizeBytes
	}
	return totalSize
}

// KindCounts returns a map of kind -> record count.
func (s *Store) KindCounts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Kind]int)
	for _, record := range s.files {
		counts[record.Kind]++
	}
	return counts
}

// LanguageCounts returns a map of language -> record count.
func (s *Store) LanguageCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, record := range s.files {
		counts[record.Language]++
	}
	return counts
}

// SearchByGlob returns records whose path matches a doublestar glob pattern.
// Patterns are matched against the path without its leading slash, so "**/*.jsx"
// and "components/*.jsx" work as they would in a checkout.
func (s *Store) SearchByGlob(pattern string, maxResults int) ([]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 50
	}

	pattern = strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []FileRecord
	for _, path := range s.sortedPaths {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, strings.TrimPrefix(path, "/"))
		if err != nil || !matched {
			continue
		}
		if record, ok := s.files[path]; ok {
			results = append(results, *record)
		}
	}

	return results, nil
}

// Clear removes every record and forgets write counts.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = make(map[string]*FileRecord)
	s.sortedPaths = make([]string, 0)
	s.writeCounts = make(map[string]int)
}
