package injection

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Recipe is the construction unit bound to a lookup key: a producer whose own
// parameters are injected the same way, an asynchronous flag, and a
// build-once cache. A recipe built once returns the identical value forever.
type Recipe struct {
	key      Key
	producer *Wrapped // nil for instance recipes
	async    bool
	tags     map[any]any

	mu    sync.RWMutex
	built bool
	value any
	group singleflight.Group
}

// Key returns the recipe's natural lookup key.
func (r *Recipe) Key() Key { return r.key }

// Async reports whether the producer must run on the suspension-capable call
// path.
func (r *Recipe) Async() bool { return r.async }

// Built reports whether the recipe's value has been constructed.
func (r *Recipe) Built() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.built
}

// Value returns the cached value without triggering a build.
func (r *Recipe) Value() (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.built
}

// GetTag retrieves a metadata value from the recipe.
func (r *Recipe) GetTag(tag any) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	val, ok := r.tags[tag]
	return val, ok
}

// SetTag stores a metadata value on the recipe.
func (r *Recipe) SetTag(tag any, val any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag] = val
}

// build constructs the recipe's value, or returns the cached one. Concurrent
// builds of the same not-yet-built recipe collapse into a single producer
// run; losers observe the winner's result. A build abandoned by caller
// cancellation never marks the recipe built.
func (r *Recipe) build(rc *resolveContext) (any, error) {
	r.mu.RLock()
	if r.built {
		v := r.value
		r.mu.RUnlock()
		return v, nil
	}
	r.mu.RUnlock()

	if r.async && !rc.async {
		return nil, &AsyncRequiredError{Key: r.key}
	}
	if rc.inChain(r.key) {
		chain := make([]Key, 0, len(rc.chain)+1)
		chain = append(chain, rc.chain...)
		chain = append(chain, r.key)
		return nil, &DependencyCycleError{Chain: chain}
	}

	v, err, _ := r.group.Do("build", func() (any, error) {
		// Losers of the race land here after the winner stored the value.
		r.mu.RLock()
		built, val := r.built, r.value
		r.mu.RUnlock()
		if built {
			return val, nil
		}

		out, err := r.producer.invoke(rc.child(r), nil)
		if err != nil {
			return nil, err
		}
		if err := rc.ctx.Err(); err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.built, r.value = true, out[0]
		r.mu.Unlock()
		return out[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// resolveContext threads one invocation's call path through the resolution
// recursion: the deadline-carrying context, which calling convention is in
// effect, and the chain of recipes currently building (for cycle reporting).
type resolveContext struct {
	ctx      context.Context
	registry *Registry
	async    bool
	chain    []Key
	current  *Recipe // recipe whose producer is running, nil at the top
}

func (rc *resolveContext) child(r *Recipe) *resolveContext {
	chain := make([]Key, 0, len(rc.chain)+1)
	chain = append(chain, rc.chain...)
	chain = append(chain, r.key)
	return &resolveContext{
		ctx:      rc.ctx,
		registry: rc.registry,
		async:    rc.async,
		chain:    chain,
		current:  r,
	}
}

func (rc *resolveContext) inChain(k Key) bool {
	for _, c := range rc.chain {
		if c == k {
			return true
		}
	}
	return false
}
