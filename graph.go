package injection

import "sync"

// DependencyGraph records which recipes were built to satisfy which others.
// Edges appear as resolutions succeed, so the graph reflects what actually
// ran, not what was declared. Debug extensions read it; resolution never
// does.
type DependencyGraph struct {
	// Adjacency lists in both directions for cheap traversal either way.
	downstream map[Key][]Key // dependency -> dependents
	upstream   map[Key][]Key // dependent -> dependencies
	mu         sync.RWMutex
}

func newDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		downstream: make(map[Key][]Key),
		upstream:   make(map[Key][]Key),
	}
}

func (g *DependencyGraph) addEdge(dependent, dependency Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.downstream[dependency] = appendUnique(g.downstream[dependency], dependent)
	g.upstream[dependent] = appendUnique(g.upstream[dependent], dependency)
}

// DependenciesOf returns the direct dependencies built for a key.
func (g *DependencyGraph) DependenciesOf(key Key) []Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if deps, exists := g.upstream[key]; exists {
		result := make([]Key, len(deps))
		copy(result, deps)
		return result
	}
	return nil
}

// DirectDependents returns the keys that were built on top of a key.
func (g *DependencyGraph) DirectDependents(key Key) []Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if deps, exists := g.downstream[key]; exists {
		result := make([]Key, len(deps))
		copy(result, deps)
		return result
	}
	return nil
}

// Dependents walks the graph iteratively and returns every transitive
// dependent of a key. An explicit stack keeps deep graphs off the call stack.
func (g *DependencyGraph) Dependents(start Key) []Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stack := make([]Key, 0, 32)
	stack = append(stack, start)

	dependents := make([]Key, 0, 32)
	visited := make(map[Key]bool, 32)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		if current != start {
			dependents = append(dependents, current)
		}

		for _, dep := range g.downstream[current] {
			if !visited[dep] {
				stack = append(stack, dep)
			}
		}
	}

	return dependents
}

func appendUnique[T comparable](slice []T, item T) []T {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}
