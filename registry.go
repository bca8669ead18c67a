package injection

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry binds lookup keys to recipes and owns the name scope used by
// forward references. It is explicit state with a documented lifecycle:
// created empty, populated by registration calls, read at call time. Nothing
// in this package reaches for an ambient global.
type Registry struct {
	mu         sync.RWMutex
	recipes    map[Key]*Recipe
	names      map[string]Key
	ambiguous  map[string]bool
	extensions []Extension
	graph      *DependencyGraph
}

// RegistryOption configures a registry at construction.
type RegistryOption func(*Registry)

// WithExtension returns an option that registers an extension.
func WithExtension(ext Extension) RegistryOption {
	return func(reg *Registry) {
		if err := reg.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	reg := &Registry{
		recipes:   make(map[Key]*Recipe),
		names:     make(map[string]Key),
		ambiguous: make(map[string]bool),
		graph:     newDependencyGraph(),
	}

	for _, opt := range opts {
		opt(reg)
	}

	return reg
}

// UseExtension registers an extension. Extensions run ordered by Order().
func (reg *Registry) UseExtension(ext Extension) error {
	reg.mu.Lock()
	reg.extensions = append(reg.extensions, ext)
	sort.SliceStable(reg.extensions, func(i, j int) bool {
		return reg.extensions[i].Order() < reg.extensions[j].Order()
	})
	reg.mu.Unlock()

	return ext.Init(reg)
}

// Graph returns the observed dependency graph.
func (reg *Registry) Graph() *DependencyGraph {
	return reg.graph
}

// Dispose notifies extensions that the registry is going away. The recipe
// cache itself needs no teardown.
func (reg *Registry) Dispose() error {
	for _, ext := range reg.snapshotExtensions() {
		if err := ext.Dispose(reg); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}
	return nil
}

// ── name scope ────────────────────────────────────────────────────────────────

// DeclareName declares a forward-reference name in the registry's name scope
// without registering a recipe. Registration declares names implicitly; this
// covers types that exist in the declaring scope but are not injectable.
func (reg *Registry) DeclareName(name string, ann Annotation) error {
	keys, err := ann.registrationKeys(reg)
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return fmt.Errorf("%w: name %q must map to exactly one key", ErrInvalidTarget, name)
	}

	reg.mu.Lock()
	reg.names[name] = keys[0]
	delete(reg.ambiguous, name)
	reg.mu.Unlock()
	return nil
}

func (reg *Registry) lookupName(name string) (Key, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	key, ok := reg.names[name]
	return key, ok
}

// declareTypeName adds a registered type to the name scope, under both its
// base name and its package-qualified name. A base name claimed by two
// distinct types becomes ambiguous and stops resolving; the qualified names
// and an explicit DeclareName still work.
func (reg *Registry) declareTypeName(key Key) {
	t := key.Type()
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.declareNameLocked(t.Name(), key)
	if qualified := t.String(); qualified != t.Name() {
		reg.declareNameLocked(qualified, key)
	}
}

func (reg *Registry) declareNameLocked(name string, key Key) {
	if existing, ok := reg.names[name]; ok && existing != key {
		delete(reg.names, name)
		reg.ambiguous[name] = true
		return
	}
	if reg.ambiguous[name] {
		return
	}
	reg.names[name] = key
}

// ── bindings ──────────────────────────────────────────────────────────────────

// register inserts a binding. Rebinding a key to a different recipe is a
// conflict; re-registering the identical recipe is a no-op.
func (reg *Registry) register(key Key, r *Recipe) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.recipes[key]; ok {
		if existing == r {
			return nil
		}
		return &ConflictError{Reason: fmt.Sprintf("key %s already bound to a different recipe", key)}
	}

	reg.recipes[key] = r
	return nil
}

// lookup tries candidate keys in order and returns the first matching recipe.
// It runs at the moment of need, so recipes registered after a consumer was
// wrapped are found.
func (reg *Registry) lookup(keys []Key) (*Recipe, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, key := range keys {
		if r, ok := reg.recipes[key]; ok {
			return r, true
		}
	}
	return nil, false
}

// RecipeFor returns the recipe an annotation currently resolves to, without
// building it.
func (reg *Registry) RecipeFor(ann Annotation) (*Recipe, error) {
	keys, err := ann.candidates(reg)
	if err != nil {
		return nil, err
	}
	r, ok := reg.lookup(keys)
	if !ok {
		return nil, &ResolutionError{Keys: keys}
	}
	return r, nil
}

// ── building ──────────────────────────────────────────────────────────────────

func (reg *Registry) snapshotExtensions() []Extension {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	exts := make([]Extension, len(reg.extensions))
	copy(exts, reg.extensions)
	return exts
}

// buildRecipe runs a recipe build through the extension chain and records the
// observed dependency edge.
func (reg *Registry) buildRecipe(rc *resolveContext, r *Recipe) (any, error) {
	exts := reg.snapshotExtensions()

	op := &Operation{
		Kind:     OpBuild,
		Key:      r.key,
		Recipe:   r,
		Registry: reg,
	}

	next := func() (any, error) {
		return r.build(rc)
	}

	// Last registered wraps first, like middleware.
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(rc.ctx, currentNext, op)
		}
	}

	result, err := next()
	if err != nil {
		for _, ext := range exts {
			ext.OnError(err, op, reg)
		}
		return nil, err
	}

	if rc.current != nil {
		reg.graph.addEdge(rc.current.key, r.key)
	}

	return result, nil
}

// resolveAnnotation drives annotation -> candidate keys -> recipe -> value
// for one injection-eligible parameter. param is used only for error context.
func (reg *Registry) resolveAnnotation(rc *resolveContext, ann Annotation, param string) (any, error) {
	keys, err := ann.candidates(reg)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &ResolutionError{Param: param}
	}

	r, ok := reg.lookup(keys)
	if !ok {
		return nil, &ResolutionError{Param: param, Keys: keys}
	}

	return reg.buildRecipe(rc, r)
}

// ── typed entry points ────────────────────────────────────────────────────────

// Resolve builds the recipe registered for T on the synchronous call path.
func Resolve[T any](reg *Registry) (T, error) {
	return resolveTyped[T](&resolveContext{ctx: context.Background(), registry: reg})
}

// ResolveContext builds the recipe registered for T on the
// suspension-capable call path.
func ResolveContext[T any](ctx context.Context, reg *Registry) (T, error) {
	return resolveTyped[T](&resolveContext{ctx: ctx, registry: reg, async: true})
}

func resolveTyped[T any](rc *resolveContext) (T, error) {
	var zero T
	val, err := rc.registry.resolveAnnotation(rc, Type[T](), "")
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: recipe for %s produced %T", ErrResolution, KeyOf[T](), val)
	}
	return typed, nil
}
