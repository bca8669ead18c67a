package extensions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m1gwings/treedrawer/tree"

	injection "github.com/soon-app/go-injection"
)

// RecipeName tags a recipe with a display name for debug output.
var RecipeName = injection.NewTag[string]("recipe.name")

// GraphDebugExtension logs a rendering of the observed dependency graph when
// a recipe build fails.
//
// Usage:
//
//	// Human-readable formatted output
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	// Structured JSON logging
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	// Silent (for testing)
//	ext := extensions.NewGraphDebugExtension(extensions.NewSilentHandler())
type GraphDebugExtension struct {
	injection.BaseExtension
	logger *slog.Logger

	// Track keys as they build
	mu     sync.Mutex
	built  map[injection.Key]bool
	failed map[injection.Key]error
}

// NewGraphDebugExtension creates a new graph debug extension.
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: injection.NewBaseExtension("graph-debug"),
		logger:        slog.New(logHandler),
		built:         make(map[injection.Key]bool),
		failed:        make(map[injection.Key]error),
	}
}

// Wrap tracks build outcomes for later rendering.
func (e *GraphDebugExtension) Wrap(ctx context.Context, next func() (any, error), op *injection.Operation) (any, error) {
	result, err := next()

	e.mu.Lock()
	if err == nil {
		e.built[op.Key] = true
	} else {
		e.failed[op.Key] = err
	}
	e.mu.Unlock()

	return result, err
}

// OnError logs the dependency graph when a build fails.
func (e *GraphDebugExtension) OnError(err error, op *injection.Operation, reg *injection.Registry) {
	e.logger.Error("Dependency Build Error",
		"recipe", e.recipeName(op),
		"error", err.Error(),
		"operation", string(op.Kind),
		"dependency_graph", e.renderGraph(reg, op.Key),
	)
}

func (e *GraphDebugExtension) recipeName(op *injection.Operation) string {
	if op.Recipe != nil {
		if name, ok := RecipeName.Get(op.Recipe); ok {
			return name
		}
	}
	return op.Key.String()
}

// renderGraph draws the failed key's observed dependency subtree.
func (e *GraphDebugExtension) renderGraph(reg *injection.Registry, root injection.Key) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := tree.NewTree(tree.NodeString(e.describeLocked(root)))
	e.addChildrenLocked(t, reg.Graph(), root, map[injection.Key]bool{root: true})
	return fmt.Sprint(t)
}

func (e *GraphDebugExtension) addChildrenLocked(t *tree.Tree, g *injection.DependencyGraph, key injection.Key, seen map[injection.Key]bool) {
	deps := g.DependenciesOf(key)
	for i, dep := range deps {
		if seen[dep] {
			t.AddChild(tree.NodeString(e.describeLocked(dep) + " (cycle)"))
			continue
		}
		seen[dep] = true
		t.AddChild(tree.NodeString(e.describeLocked(dep)))
		if child, err := t.Child(i); err == nil {
			e.addChildrenLocked(child, g, dep, seen)
		}
	}
}

func (e *GraphDebugExtension) describeLocked(key injection.Key) string {
	switch {
	case e.built[key]:
		return key.String() + " ok"
	case e.failed[key] != nil:
		return fmt.Sprintf("%s FAILED (%v)", key, e.failed[key])
	default:
		return key.String()
	}
}
