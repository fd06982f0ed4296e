package graph

import (
	"sort"
	"sync"

	"github.com/lexandro/vproject-mcp/resolve"
)

// Change describes what happened to a path in the store.
type Change int

const (
	// Modified means the content of an existing path changed.
	Modified Change = iota
	// Created means the path did not exist before the write.
	Created
	// Deleted means the path was removed.
	Deleted
)

// PathSource reports which paths currently exist.
type PathSource interface {
	Exists(path string) bool
}

// Graph is the derived import graph of the project.
//
// Mutations only mark paths dirty. Dirty paths are re-resolved on the next query, and
// cycle and reachability results are cached until the next mutation.
type Graph struct {
	mu       sync.Mutex
	files    PathSource
	resolver *resolve.Resolver

	edges    map[string][]resolve.ImportEdge // key: importing path
	watchers map[string]map[string]struct{}  // candidate path -> importers that tried it
	tried    map[string][]string             // importer -> candidates it registered
	dirty    map[string]struct{}

	cycles      [][]string
	cyclesValid bool
	reach       map[string][]string
}

// New creates an empty graph resolving imports with resolver.
func New(files PathSource, resolver *resolve.Resolver) *Graph {
	g := &Graph{files: files, resolver: resolver}
	g.clear()
	return g
}

func (g *Graph) clear() {
	g.edges = make(map[string][]resolve.ImportEdge)
	g.watchers = make(map[string]map[string]struct{})
	g.tried = make(map[string][]string)
	g.dirty = make(map[string]struct{})
	g.invalidateCaches()
}

func (g *Graph) invalidateCaches() {
	g.cycles = nil
	g.cyclesValid = false
	g.reach = make(map[string][]string)
}

// Invalidate records a store mutation of path.
// The path itself is always re-resolved; when the set of paths changed, every importer
// whose fallback chain passed through path is re-resolved too.
func (g *Graph) Invalidate(path string, change Change) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dirty[path] = struct{}{}
	if change != Modified {
		for importer := range g.watchers[path] {
			g.dirty[importer] = struct{}{}
		}
	}
	g.invalidateCaches()
}

// DirtyCount returns the number of paths waiting for re-resolution.
func (g *Graph) DirtyCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.dirty)
}

// flush re-resolves dirty paths. Callers hold g.mu.
func (g *Graph) flush() {
	if len(g.dirty) == 0 {
		return
	}
	for path := range g.dirty {
		g.unregister(path)
		if !g.files.Exists(path) {
			delete(g.edges, path)
			continue
		}

		resolutions := g.resolver.ResolveAll(path)
		edges := make([]resolve.ImportEdge, 0, len(resolutions))
		var tried []string
		for _, resolution := range resolutions {
			edges = append(edges, resolution.Edge)
			tried = append(tried, resolution.Tried...)
		}
		g.edges[path] = edges
		g.register(path, tried)
	}
	g.dirty = make(map[string]struct{})
}

func (g *Graph) register(importer string, candidates []string) {
	g.tried[importer] = candidates
	for _, candidate := range candidates {
		set, ok := g.watchers[candidate]
		if !ok {
			set = make(map[string]struct{})
			g.watchers[candidate] = set
		}
		set[importer] = struct{}{}
	}
}

func (g *Graph) unregister(importer string) {
	for _, candidate := range g.tried[importer] {
		set := g.watchers[candidate]
		delete(set, importer)
		if len(set) == 0 {
			delete(g.watchers, candidate)
		}
	}
	delete(g.tried, importer)
}

// EdgesFrom returns the import edges of path in specifier order.
func (g *Graph) EdgesFrom(path string) []resolve.ImportEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	edges := g.edges[path]
	if edges == nil {
		return nil
	}
	result := make([]resolve.ImportEdge, len(edges))
	copy(result, edges)
	return result
}

// AllEdges returns every edge, grouped by importing path in lexicographic order.
func (g *Graph) AllEdges() []resolve.ImportEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	var result []resolve.ImportEdge
	for _, from := range g.sortedNodes() {
		result = append(result, g.edges[from]...)
	}
	return result
}

// EdgeCount returns the total number of import edges, including external ones.
func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	count := 0
	for _, edges := range g.edges {
		count += len(edges)
	}
	return count
}

// Importers returns the paths with a resolved import of path, sorted.
func (g *Graph) Importers(path string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	var importers []string
	for _, from := range g.sortedNodes() {
		for _, edge := range g.edges[from] {
			if edge.To == path {
				importers = append(importers, from)
				break
			}
		}
	}
	return importers
}

// Reset drops all edges and caches.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

// sortedNodes returns every importing path in lexicographic order. Callers hold g.mu.
func (g *Graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.edges))
	for path := range g.edges {
		nodes = append(nodes, path)
	}
	sort.Strings(nodes)
	return nodes
}

// neighbours returns the distinct resolved targets of path, sorted. Callers hold g.mu.
func (g *Graph) neighbours(path string) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, edge := range g.edges[path] {
		if edge.External || edge.To == "" || seen[edge.To] {
			continue
		}
		seen[edge.To] = true
		targets = append(targets, edge.To)
	}
	sort.Strings(targets)
	return targets
}
