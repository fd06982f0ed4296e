package project

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexandro/vproject-mcp/graph"
	"github.com/lexandro/vproject-mcp/language"
	"github.com/lexandro/vproject-mcp/resolve"
	"github.com/lexandro/vproject-mcp/validate"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/lexandro/vproject-mcp/vpath"
)

// Config holds the path and validation rules of a project session.
type Config struct {
	AliasPrefix string   // empty means vpath.DefaultAliasPrefix
	Suffixes    []string // empty means resolve.DefaultSuffixes
	Validation  validate.Config
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() Config {
	return Config{
		AliasPrefix: vpath.DefaultAliasPrefix,
		Suffixes:    append([]string(nil), resolve.DefaultSuffixes...),
		Validation:  validate.DefaultConfig(),
	}
}

// Project is one generation session: the file store, its import graph and the
// full-text index, kept in step behind a single writer lock.
type Project struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time

	config     Config
	normalizer vpath.Normalizer
	store      *vfs.Store
	content    *vfs.ContentIndex
	graph      *graph.Graph
	logger     *slog.Logger
}

// Stats is a point-in-time summary of a project.
type Stats struct {
	SessionID        string
	CreatedAt        time.Time
	FileCount        int
	TotalSizeBytes   int64
	EdgeCount        int
	CycleCount       int
	IndexedDocuments uint64
	KindCounts       map[vfs.Kind]int
	LanguageCounts   map[string]int
}

// New creates an empty project.
func New(config Config, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := vfs.NewStore()
	content, err := vfs.NewContentIndex(store)
	if err != nil {
		return nil, fmt.Errorf("creating content index: %w", err)
	}

	normalizer := vpath.NewNormalizer(config.AliasPrefix)
	config.AliasPrefix = normalizer.AliasPrefix
	resolver := resolve.NewResolver(store, language.ImportExtractor{}, resolve.Options{
		AliasPrefix: config.AliasPrefix,
		Suffixes:    config.Suffixes,
	})

	return &Project{
		id:         uuid.NewString(),
		createdAt:  time.Now(),
		config:     config,
		normalizer: normalizer,
		store:      store,
		content:    content,
		graph:      graph.New(store, resolver),
		logger:     logger,
	}, nil
}

// ID returns the session id. It changes on Reset.
func (p *Project) ID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id
}

// Config returns the configuration the project was created with.
func (p *Project) Config() Config {
	return p.config
}

// Normalize canonicalizes a caller path against the project root.
func (p *Project) Normalize(rawPath string) (string, error) {
	return p.normalizer.Normalize(rawPath, vpath.Root)
}

// InferKind maps a file extension to the kind a caller most likely meant.
func InferKind(path string) vfs.Kind {
	switch language.KindHint(path) {
	case language.HintComponent:
		return vfs.KindComponent
	case language.HintModule:
		return vfs.KindModule
	default:
		return vfs.KindAsset
	}
}

// WriteFile creates or overwrites a file. A zero kind is inferred from the extension.
// Paths that cannot be canonicalized are rejected with *vpath.InvalidPathError and
// leave the project untouched.
func (p *Project) WriteFile(rawPath string, content string, kind vfs.Kind) (vfs.FileRecord, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return vfs.FileRecord{}, err
	}
	if kind == vfs.KindUnknown {
		kind = InferKind(path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	change := graph.Modified
	if !p.store.Exists(path) {
		change = graph.Created
	}

	record, err := p.store.Write(path, content, kind)
	if err != nil {
		return vfs.FileRecord{}, err
	}
	p.graph.Invalidate(path, change)

	if err := p.content.IndexFile(record); err != nil {
		p.logger.Warn("content index update failed", "path", path, "error", err)
	}

	p.logger.Debug("file written", "path", path, "kind", kind, "version", record.Version)
	return record, nil
}

// ReadFile returns the record at rawPath, or an error wrapping vfs.ErrNotFound.
func (p *Project) ReadFile(rawPath string) (vfs.FileRecord, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return vfs.FileRecord{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.store.Read(path)
	if !ok {
		return vfs.FileRecord{}, fmt.Errorf("%s: %w", path, vfs.ErrNotFound)
	}
	return record, nil
}

// DeleteFile removes a file and reports whether it existed.
// Importers of the path are not touched; their imports surface as unresolved on
// the next query.
func (p *Project) DeleteFile(rawPath string) (bool, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.store.Delete(path) {
		return false, nil
	}
	p.graph.Invalidate(path, graph.Deleted)

	if err := p.content.RemoveFile(path); err != nil {
		p.logger.Warn("content index removal failed", "path", path, "error", err)
	}

	p.logger.Debug("file deleted", "path", path)
	return true, nil
}

// ListFiles returns every canonical path in lexicographic order.
func (p *Project) ListFiles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.List()
}

// Files returns a snapshot of every record in path order.
func (p *Project) Files() []vfs.FileRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.AllFiles()
}

// Validate checks the project against the configured rules.
func (p *Project) Validate() validate.Report {
	return p.ValidateWith(p.config.Validation)
}

// ValidateWith checks the project against cfg. It never mutates the project.
func (p *Project) ValidateWith(cfg validate.Config) validate.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := time.Now()
	report := validate.Validate(snapshot{Store: p.store, Graph: p.graph}, cfg)
	p.logger.Debug("project validated",
		"files", report.FileCount,
		"diagnostics", len(report.Diagnostics),
		"passed", report.Passed(),
		"elapsed", time.Since(start),
	)
	return report
}

// EdgesFrom returns the import edges of one file.
func (p *Project) EdgesFrom(rawPath string) ([]resolve.ImportEdge, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.store.Exists(path) {
		return nil, fmt.Errorf("%s: %w", path, vfs.ErrNotFound)
	}
	return p.graph.EdgesFrom(path), nil
}

// AllEdges returns every import edge, grouped by importing path.
func (p *Project) AllEdges() []resolve.ImportEdge {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.AllEdges()
}

// Importers returns the files that import rawPath.
func (p *Project) Importers(rawPath string) ([]string, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.Importers(path), nil
}

// Cycles returns every import cycle in the project.
func (p *Project) Cycles() [][]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.DetectCycles()
}

// ReachableFrom returns the files reachable from rawPath, including itself.
func (p *Project) ReachableFrom(rawPath string) ([]string, error) {
	path, err := p.Normalize(rawPath)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.store.Exists(path) {
		return nil, fmt.Errorf("%s: %w", path, vfs.ErrNotFound)
	}
	return p.graph.ReachableFrom(path), nil
}

// Search runs a full-text search over file contents.
func (p *Project) Search(options vfs.SearchOptions) ([]vfs.ContentSearchResult, int, error) {
	if options.FilePath != "" {
		path, err := p.Normalize(options.FilePath)
		if err != nil {
			return nil, 0, err
		}
		options.FilePath = path
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content.Search(options)
}

// Glob returns the records whose path matches a doublestar pattern.
func (p *Project) Glob(pattern string, maxResults int) ([]vfs.FileRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.SearchByGlob(pattern, maxResults)
}

// Stats returns a summary of the project.
func (p *Project) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Stats{
		SessionID:        p.id,
		CreatedAt:        p.createdAt,
		FileCount:        p.store.FileCount(),
		TotalSizeBytes:   p.store.TotalSizeBytes(),
		EdgeCount:        p.graph.EdgeCount(),
		CycleCount:       len(p.graph.DetectCycles()),
		IndexedDocuments: p.content.DocumentCount(),
		KindCounts:       p.store.KindCounts(),
		LanguageCounts:   p.store.LanguageCounts(),
	}
}

// Reset discards every file and starts a new session.
func (p *Project) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.id
	p.store.Clear()
	p.graph.Reset()
	if err := p.content.Clear(); err != nil {
		return fmt.Errorf("clearing content index: %w", err)
	}
	p.id = uuid.NewString()
	p.createdAt = time.Now()

	p.logger.Info("project reset", "previousSession", previous, "session", p.id)
	return nil
}

// Close releases the content index.
func (p *Project) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content.Close()
}

// snapshot is the read view handed to the validator. Callers hold p.mu for reading.
type snapshot struct {
	*vfs.Store
	*graph.Graph
}
