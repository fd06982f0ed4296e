package resolve

import (
	"strings"

	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/lexandro/vproject-mcp/vpath"
)

// DefaultSuffixes are tried, in order, after the literal path fails to match.
var DefaultSuffixes = []string{".jsx", ".tsx", ".js", ".ts"}

// ImportEdge is one import found in From. An empty To means the import is unresolved.
type ImportEdge struct {
	From      string
	Specifier string
	To        string
	External  bool  // package or URL import, never resolved against the store
	Err       error // normalization failure, e.g. a root escape
}

// Unresolved reports whether a local import failed to resolve.
func (e ImportEdge) Unresolved() bool {
	return !e.External && e.To == ""
}

// SpecifierExtractor returns the import specifiers contained in a file.
type SpecifierExtractor interface {
	Specifiers(path string, content string) []string
}

// FileSource is the read side of the store the resolver looks files up in.
type FileSource interface {
	Read(path string) (vfs.FileRecord, bool)
	Exists(path string) bool
}

// Options configures a Resolver.
type Options struct {
	AliasPrefix string
	Suffixes    []string
}

// Resolver maps import specifiers to canonical paths in a FileSource.
type Resolver struct {
	files      FileSource
	extractor  SpecifierExtractor
	normalizer vpath.Normalizer
	suffixes   []string
}

// Resolution is the outcome of resolving one specifier.
// Tried lists every candidate path checked, up to and including the winning one.
type Resolution struct {
	Edge  ImportEdge
	Tried []string
}

// NewResolver creates a resolver over files using extractor to find specifiers.
func NewResolver(files FileSource, extractor SpecifierExtractor, options Options) *Resolver {
	suffixes := options.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	return &Resolver{
		files:      files,
		extractor:  extractor,
		normalizer: vpath.NewNormalizer(options.AliasPrefix),
		suffixes:   suffixes,
	}
}

// ResolveImportsOf returns the edges of every import in the file at path, in specifier order.
// A missing file has no edges.
func (r *Resolver) ResolveImportsOf(path string) []ImportEdge {
	resolutions := r.ResolveAll(path)
	if resolutions == nil {
		return nil
	}
	edges := make([]ImportEdge, 0, len(resolutions))
	for _, resolution := range resolutions {
		edges = append(edges, resolution.Edge)
	}
	return edges
}

// ResolveAll is ResolveImportsOf with the candidate paths of each resolution.
func (r *Resolver) ResolveAll(path string) []Resolution {
	record, ok := r.files.Read(path)
	if !ok {
		return nil
	}
	specifiers := r.extractor.Specifiers(record.Path, record.Content)
	resolutions := make([]Resolution, 0, len(specifiers))
	for _, specifier := range specifiers {
		resolutions = append(resolutions, r.Resolve(path, specifier))
	}
	return resolutions
}

// Resolve resolves a single specifier as imported from the file at from.
// The fallback chain is fixed: literal path, then each suffix, then index files.
func (r *Resolver) Resolve(from string, specifier string) Resolution {
	edge := ImportEdge{From: from, Specifier: specifier}

	if !r.isLocal(specifier) {
		edge.External = true
		return Resolution{Edge: edge}
	}

	target, err := r.normalizer.Normalize(specifier, from)
	if err != nil {
		edge.Err = err
		return Resolution{Edge: edge}
	}

	candidates := r.candidates(target)
	for i, candidate := range candidates {
		if r.files.Exists(candidate) {
			edge.To = candidate
			return Resolution{Edge: edge, Tried: candidates[:i+1]}
		}
	}
	return Resolution{Edge: edge, Tried: candidates}
}

// candidates lists the lookup order for a normalized target.
func (r *Resolver) candidates(target string) []string {
	candidates := make([]string, 0, 1+2*len(r.suffixes))
	if target != vpath.Root {
		candidates = append(candidates, target)
		for _, suffix := range r.suffixes {
			candidates = append(candidates, target+suffix)
		}
	}
	indexBase := strings.TrimSuffix(target, "/") + "/index"
	for _, suffix := range r.suffixes {
		candidates = append(candidates, indexBase+suffix)
	}
	return candidates
}

// isLocal reports whether a specifier points into the project rather than at a package.
func (r *Resolver) isLocal(specifier string) bool {
	alias := r.normalizer.AliasPrefix
	switch {
	case alias != "" && strings.HasPrefix(specifier, alias):
		return true
	case strings.HasPrefix(specifier, "/") && !strings.HasPrefix(specifier, "//"):
		return true
	case specifier == "." || specifier == "..":
		return true
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return true
	}
	return false
}
