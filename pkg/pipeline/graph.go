package pipeline

import (
	"sort"
	"sync"
)

// Graph records which source files each file depends on, for example the
// stylesheets an @import pulls in. It is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		outgoing: map[string]map[string]struct{}{},
		incoming: map[string]map[string]struct{}{},
	}
}

// Add replaces the dependencies of from
func (g *Graph) Add(from string, deps []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.unlink(from)
	if len(deps) == 0 {
		return
	}
	out := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		if dep == from {
			continue
		}
		out[dep] = struct{}{}
		if g.incoming[dep] == nil {
			g.incoming[dep] = map[string]struct{}{}
		}
		g.incoming[dep][from] = struct{}{}
	}
	g.outgoing[from] = out
}

// Remove drops from and its outgoing edges. Files depending on from keep
// their edges so a recreated file still invalidates them.
func (g *Graph) Remove(from string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlink(from)
}

// Retain removes every file not in keep
func (g *Graph) Retain(keep []string) {
	set := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		set[p] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for from := range g.outgoing {
		if _, ok := set[from]; !ok {
			g.unlink(from)
		}
	}
}

func (g *Graph) unlink(from string) {
	for dep := range g.outgoing[from] {
		delete(g.incoming[dep], from)
		if len(g.incoming[dep]) == 0 {
			delete(g.incoming, dep)
		}
	}
	delete(g.outgoing, from)
}

// Dependencies returns the direct dependencies of from, sorted
func (g *Graph) Dependencies(from string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.outgoing[from])
}

// Dependents returns every file that directly or transitively depends on
// path, sorted. These are the files to rebuild when path changes.
func (g *Graph) Dependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[string]struct{}{}
	queue := []string{path}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for from := range g.incoming[cur] {
			if _, ok := seen[from]; ok || from == path {
				continue
			}
			seen[from] = struct{}{}
			queue = append(queue, from)
		}
	}
	return sortedKeys(seen)
}

// Len returns the number of files with recorded dependencies
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.outgoing)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
