package vfs

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
)

// ContentIndex provides full-text search over file contents using a Bleve in-memory index.
// Raw content is not duplicated: line extraction reads records back from the Store.
type ContentIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	store *Store
}

// NewContentIndex creates a new in-memory Bleve content index backed by store.
func NewContentIndex(store *Store) (*ContentIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	return &ContentIndex{
		index: bleveIndex,
		store: store,
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Language string `json:"language"`
}

// buildIndexMapping creates the Bleve index mapping for project files.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Store = false // content lives in the Store
	contentFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	kindFieldMapping := bleve.NewKeywordFieldMapping()
	kindFieldMapping.Store = true
	kindFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("kind", kindFieldMapping)

	langFieldMapping := bleve.NewKeywordFieldMapping()
	langFieldMapping.Store = true
	langFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexFile adds or updates a record in the search index.
func (ci *ContentIndex) IndexFile(record FileRecord) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	doc := bleveDocument{
		Content:  record.Content,
		Path:     record.Path,
		Kind:     record.Kind.String(),
		Language: record.Language,
	}
	if err := ci.index.Index(record.Path, doc); err != nil {
		return fmt.Errorf("indexing file %s: %w", record.Path, err)
	}
	return nil
}

// RemoveFile removes a path from the search index.
func (ci *ContentIndex) RemoveFile(path string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Delete(path); err != nil {
		return fmt.Errorf("removing file %s from index: %w", path, err)
	}
	return nil
}

// ContentSearchResult holds the matches within one file.
type ContentSearchResult struct {
	Path    string
	Kind    Kind
	Matches []LineMatch
}

// LineMatch represents a single line match within a file.
type LineMatch struct {
	LineNumber    int
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// SearchOptions configures a content search.
type SearchOptions struct {
	Query        string
	FilePath     string // Exact canonical path (overrides FileGlob)
	FileGlob     string
	Kind         Kind // KindUnknown means any kind
	MaxResults   int
	ContextLines int
}

// Search performs a full-text search across all indexed files.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query
func (ci *ContentIndex) Search(options SearchOptions) ([]ContentSearchResult, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if options.ContextLines < 0 {
		options.ContextLines = 0
	}

	lineMatcher, err := newLineMatcher(options.Query)
	if err != nil {
		return nil, 0, err
	}

	bleveQuery := buildQuery(options.Query, options.Kind)
	searchRequest := bleve.NewSearchRequest(bleveQuery)
	searchRequest.Size = options.MaxResults * 5 // over-fetch, results are filtered below
	searchRequest.Fields = []string{"path", "kind"}

	searchResults, err := ci.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var results []ContentSearchResult
	totalMatches := 0
	fileGlob := strings.TrimPrefix(strings.ReplaceAll(options.FileGlob, "\\", "/"), "/")

	for _, hit := range searchResults.Hits {
		record, ok := ci.store.Read(hit.ID)
		if !ok {
			continue
		}

		if options.FilePath != "" {
			if record.Path != options.FilePath {
				continue
			}
		} else if fileGlob != "" {
			matched, matchErr := doublestar.Match(fileGlob, strings.TrimPrefix(record.Path, "/"))
			if matchErr != nil || !matched {
				continue
			}
		}

		lineMatches := findMatchingLines(record.Content, lineMatcher, options.ContextLines)
		if len(lineMatches) == 0 {
			continue
		}

		totalMatches += len(lineMatches)
		results = append(results, ContentSearchResult{
			Path:    record.Path,
			Kind:    record.Kind,
			Matches: lineMatches,
		})

		if len(results) >= options.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// buildQuery parses the query string into a Bleve query, optionally restricted to a kind.
func buildQuery(queryString string, kind Kind) query.Query {
	queryString = strings.TrimSpace(queryString)

	var contentQuery query.Query
	switch {
	case isDelimited(queryString, "/"):
		contentQuery = bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
	case isDelimited(queryString, "\""):
		contentQuery = bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
	default:
		contentQuery = bleve.NewMatchQuery(queryString)
	}

	if kind == KindUnknown {
		return contentQuery
	}
	kindQuery := bleve.NewTermQuery(kind.String())
	kindQuery.SetField("kind")
	return bleve.NewConjunctionQuery(contentQuery, kindQuery)
}

func isDelimited(s string, delim string) bool {
	return len(s) > 2 && strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim)
}

// newLineMatcher returns a predicate that finds the lines a query hit.
// Plain queries match any of their words case-insensitively.
func newLineMatcher(queryString string) (func(string) bool, error) {
	queryString = strings.TrimSpace(queryString)

	switch {
	case isDelimited(queryString, "/"):
		re, err := regexp.Compile("(?i)" + queryString[1:len(queryString)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid regex query: %w", err)
		}
		return re.MatchString, nil
	case isDelimited(queryString, "\""):
		phrase := strings.ToLower(queryString[1 : len(queryString)-1])
		return func(line string) bool {
			return strings.Contains(strings.ToLower(line), phrase)
		}, nil
	default:
		terms := strings.Fields(strings.ToLower(queryString))
		return func(line string) bool {
			lower := strings.ToLower(line)
			for _, term := range terms {
				if strings.Contains(lower, term) {
					return true
				}
			}
			return false
		}, nil
	}
}

// findMatchingLines returns LineMatch entries with context lines.
func findMatchingLines(content string, matches func(string) bool, contextLines int) []LineMatch {
	lines := strings.Split(content, "\n")

	var result []LineMatch
	for lineIdx, line := range lines {
		if !matches(line) {
			continue
		}

		match := LineMatch{
			LineNumber: lineIdx + 1, // 1-based
			LineText:   line,
		}
		if contextLines > 0 {
			start := max(lineIdx-contextLines, 0)
			end := min(lineIdx+contextLines+1, len(lines))
			match.ContextBefore = append(match.ContextBefore, lines[start:lineIdx]...)
			match.ContextAfter = append(match.ContextAfter, lines[lineIdx+1:end]...)
		}
		result = append(result, match)
	}
	return result
}

// DocumentCount returns the number of documents in the Bleve index.
func (ci *ContentIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ci *ContentIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}

// Clear drops all documents by recreating the index.
func (ci *ContentIndex) Clear() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}

	newIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}
	ci.index = newIndex
	return nil
}
