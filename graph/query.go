package graph

import "sort"

type color int

const (
	white color = iota // unvisited
	gray               // on the traversal stack
	black              // done
)

// DetectCycles returns every import cycle found by a depth-first traversal.
// Each cycle starts at the node the back edge points to and ends at the node that
// closes the loop; the closing edge from the last path to the first is implicit.
// Cycles are reported only; the store is never changed to break them.
func (g *Graph) DetectCycles() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	if !g.cyclesValid {
		g.cycles = g.findCycles()
		g.cyclesValid = true
	}
	return copyCycles(g.cycles)
}

// findCycles runs a three-color DFS over all nodes in lexicographic order. Callers hold g.mu.
func (g *Graph) findCycles() [][]string {
	colors := make(map[string]color, len(g.edges))
	var stack []string
	var cycles [][]string

	var visit func(path string)
	visit = func(path string) {
		colors[path] = gray
		stack = append(stack, path)

		for _, next := range g.neighbours(path) {
			switch colors[next] {
			case white:
				visit(next)
			case gray:
				// Back edge: the cycle is the stack suffix starting at next
				start := len(stack) - 1
				for start >= 0 && stack[start] != next {
					start--
				}
				cycle := make([]string, len(stack)-start)
				copy(cycle, stack[start:])
				cycles = append(cycles, cycle)
			}
		}

		stack = stack[:len(stack)-1]
		colors[path] = black
	}

	for _, path := range g.sortedNodes() {
		if colors[path] == white {
			visit(path)
		}
	}
	return cycles
}

// ReachableFrom returns every path reachable from path through resolved imports,
// including path itself when it exists. The result is sorted.
func (g *Graph) ReachableFrom(path string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flush()

	if cached, ok := g.reach[path]; ok {
		return append([]string(nil), cached...)
	}

	var reachable []string
	if _, exists := g.edges[path]; exists {
		visited := map[string]bool{path: true}
		queue := []string{path}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			reachable = append(reachable, current)
			for _, next := range g.neighbours(current) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(reachable)
	}

	g.reach[path] = reachable
	return append([]string(nil), reachable...)
}

func copyCycles(cycles [][]string) [][]string {
	if cycles == nil {
		return nil
	}
	result := make([][]string, len(cycles))
	for i, cycle := range cycles {
		result[i] = append([]string(nil), cycle...)
	}
	return result
}
