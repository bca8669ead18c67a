package injection

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Wrapped intercepts calls to a callable: on every invocation it partitions
// parameters into caller-supplied and injection-eligible, resolves the latter
// through the registry in declaration order, merges, and delegates. A wrapped
// callable with no injectable parameters is a pure pass-through.
//
// Two calling conventions exist. Call is the direct/blocking path and fails
// with ErrAsyncRequired if any transitively required recipe is asynchronous.
// CallContext is the suspension-capable path and satisfies such chains.
type Wrapped struct {
	registry *Registry
	fn       reflect.Value
	fnType   reflect.Type
	params   []paramDescriptor
	force    bool

	tagMu sync.RWMutex
	tags  map[any]any

	bindMu  sync.Mutex
	binding bindingState
}

// Wrap builds the parameter descriptors for fn once and returns its
// interceptor. Resolution failures surface at call time, never here, so
// dependencies may be registered after wrapping.
func (reg *Registry) Wrap(fn any, opts ...WrapOption) (*Wrapped, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil callable", ErrInvalidTarget)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidTarget, fn)
	}

	cfg := &wrapConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	params, err := introspect(v.Type(), cfg)
	if err != nil {
		return nil, err
	}

	return &Wrapped{
		registry: reg,
		fn:       v,
		fnType:   v.Type(),
		params:   params,
		force:    cfg.force,
		tags:     make(map[any]any),
	}, nil
}

// MustWrap is Wrap, panicking on error.
func (reg *Registry) MustWrap(fn any, opts ...WrapOption) *Wrapped {
	w, err := reg.Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

// NamedArg supplies a value for a parameter by name.
type NamedArg struct {
	Name  string
	Value any
}

// Arg names a caller-supplied argument.
func Arg(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// GetTag retrieves a metadata value from the wrapped callable.
func (w *Wrapped) GetTag(tag any) (any, bool) {
	w.tagMu.RLock()
	defer w.tagMu.RUnlock()
	val, ok := w.tags[tag]
	return val, ok
}

// SetTag stores a metadata value on the wrapped callable.
func (w *Wrapped) SetTag(tag any, val any) {
	w.tagMu.Lock()
	defer w.tagMu.Unlock()
	w.tags[tag] = val
}

// Call invokes the callable on the synchronous path. Plain values fill
// parameters positionally, each claiming the first open parameter it is
// assignable to; NamedArg values fill by name. Caller-supplied values take
// precedence over injection unless the wrapper was built with WithForce.
func (w *Wrapped) Call(args ...any) ([]any, error) {
	w.markDirectUse()
	rc := &resolveContext{ctx: context.Background(), registry: w.registry}
	return w.invoke(rc, args)
}

// CallContext invokes the callable on the suspension-capable path, feeding
// ctx to context-aware parameters and asynchronous producers along the chain.
func (w *Wrapped) CallContext(ctx context.Context, args ...any) ([]any, error) {
	w.markDirectUse()
	rc := &resolveContext{ctx: ctx, registry: w.registry, async: true}
	return w.invoke(rc, args)
}

// markDirectUse locks in the unbound calling convention. Binding a callable
// to an owner after it has been invoked directly is a conflict.
func (w *Wrapped) markDirectUse() {
	w.bindMu.Lock()
	if !w.binding.bound {
		w.binding.usedUnbound = true
	}
	w.bindMu.Unlock()
}

func (w *Wrapped) invoke(rc *resolveContext, args []any) ([]any, error) {
	frame := frames.acquire(len(w.params))
	defer frames.release(frame)

	extra, err := w.distribute(frame, args)
	if err != nil {
		return nil, err
	}
	if err := w.resolveFrame(rc, frame); err != nil {
		return nil, err
	}

	in, err := w.assemble(frame, extra)
	if err != nil {
		return nil, err
	}

	out := w.fn.Call(in)
	return splitError(out)
}

// distribute partitions caller-supplied arguments onto the frame: named
// arguments by descriptor name, plain values by position. A positional value
// claims the first open parameter it is assignable to, scanning forward in
// declaration order; parameters it cannot fill stay open for injection.
// Positionals reaching the variadic collector overflow into it.
func (w *Wrapped) distribute(frame *callFrame, args []any) ([]any, error) {
	var extra []any

	// Slots a positional may claim, in declaration order; context parameters
	// are invisible to callers.
	slots := make([]int, 0, len(w.params))
	for i, d := range w.params {
		if !d.isContext {
			slots = append(slots, i)
		}
	}

	cursor := 0
	for pos, a := range args {
		if na, ok := a.(NamedArg); ok {
			idx := -1
			for i, d := range w.params {
				if d.name == na.Name {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, &ArgumentError{Param: na.Name, Reason: "no such parameter"}
			}
			d := w.params[idx]
			if d.isContext || d.variadic {
				return nil, &ArgumentError{Param: na.Name, Reason: "parameter cannot be supplied by name"}
			}
			if frame.supplied[idx] {
				return nil, &ArgumentError{Param: na.Name, Reason: "multiple values"}
			}
			rv, err := coerce(d.typ, na.Value, d.name)
			if err != nil {
				return nil, err
			}
			frame.in[idx] = rv
			frame.supplied[idx] = true
			continue
		}

		idx, overflow := w.claimSlot(frame, slots, &cursor, a)
		if overflow {
			extra = append(extra, a)
			continue
		}
		if idx < 0 {
			return nil, &ArgumentError{Reason: fmt.Sprintf("no parameter left for positional argument %d", pos)}
		}
		d := w.params[idx]
		rv, err := coerce(d.typ, a, d.name)
		if err != nil {
			return nil, err
		}
		frame.in[idx] = rv
		frame.supplied[idx] = true
	}

	return extra, nil
}

// claimSlot finds the slot a positional argument lands on. The cursor is
// monotonic: a slot skipped or claimed is never revisited, so positionals
// keep declaration order among themselves.
func (w *Wrapped) claimSlot(frame *callFrame, slots []int, cursor *int, val any) (int, bool) {
	for *cursor < len(slots) {
		i := slots[*cursor]
		d := &w.params[i]
		if d.variadic {
			// Stay here: every further positional overflows too.
			return -1, true
		}
		*cursor++
		if frame.supplied[i] {
			continue
		}
		if acceptsPositional(d.typ, val) {
			return i, false
		}
	}
	return -1, false
}

// acceptsPositional reports whether a positional value can fill a parameter
// of the given type.
func acceptsPositional(param reflect.Type, val any) bool {
	if val == nil {
		switch param.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(val).AssignableTo(param)
}

// resolveFrame fills the injection-eligible parameters the caller left open,
// in declaration order. With force mode, injection overwrites caller-supplied
// values for eligible parameters.
func (w *Wrapped) resolveFrame(rc *resolveContext, frame *callFrame) error {
	ownerType, ownerByType := w.classOwner()

	for i := range w.params {
		d := &w.params[i]
		if d.isContext {
			frame.in[i] = reflect.ValueOf(rc.ctx)
			continue
		}
		if d.variadic {
			continue
		}
		if frame.supplied[i] && !(w.force && d.annotation != nil) {
			continue
		}

		if d.receiver && ownerByType {
			rv, err := coerce(d.typ, ownerType, d.name)
			if err != nil {
				return err
			}
			frame.in[i] = rv
			frame.supplied[i] = true
			continue
		}

		if d.annotation == nil {
			if frame.supplied[i] {
				continue
			}
			return &MissingArgumentError{Param: d.name}
		}

		keys, err := d.annotation.candidates(w.registry)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			// The annotation yields no candidates: not injectable.
			if frame.supplied[i] {
				continue
			}
			return &MissingArgumentError{Param: d.name}
		}

		recipe, ok := w.registry.lookup(keys)
		if !ok {
			return &ResolutionError{Param: d.name, Keys: keys}
		}
		val, err := w.registry.buildRecipe(rc, recipe)
		if err != nil {
			return err
		}
		rv, err := coerce(d.typ, val, d.name)
		if err != nil {
			return err
		}
		frame.in[i] = rv
		frame.supplied[i] = true
	}

	return nil
}

func (w *Wrapped) classOwner() (reflect.Type, bool) {
	w.bindMu.Lock()
	defer w.bindMu.Unlock()
	if w.binding.bound && w.binding.mode == BindClass {
		return w.binding.owner.Type(), true
	}
	return nil, false
}

func (w *Wrapped) assemble(frame *callFrame, extra []any) ([]reflect.Value, error) {
	variadic := w.fnType.IsVariadic()
	fixed := len(w.params)
	if variadic {
		fixed--
	}

	in := make([]reflect.Value, 0, fixed+len(extra))
	in = append(in, frame.in[:fixed]...)

	if variadic {
		elem := w.params[fixed].typ.Elem()
		for _, a := range extra {
			rv, err := coerce(elem, a, w.params[fixed].name)
			if err != nil {
				return nil, err
			}
			in = append(in, rv)
		}
	} else if len(extra) > 0 {
		return nil, &ArgumentError{Reason: "too many positional arguments"}
	}

	return in, nil
}

// coerce turns a supplied or resolved value into a reflect.Value assignable
// to the parameter type.
func coerce(param reflect.Type, val any, name string) (reflect.Value, error) {
	if val == nil {
		switch param.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
			return reflect.Zero(param), nil
		default:
			return reflect.Value{}, &ArgumentError{Param: name, Reason: "nil value for non-nilable " + typeName(param)}
		}
	}

	rv := reflect.ValueOf(val)
	if !rv.Type().AssignableTo(param) {
		return reflect.Value{}, &ArgumentError{
			Param:  name,
			Reason: fmt.Sprintf("%s is not assignable to %s", typeName(rv.Type()), typeName(param)),
		}
	}
	return rv, nil
}

// splitError separates a trailing error result from the remaining returns.
func splitError(out []reflect.Value) ([]any, error) {
	n := len(out)
	if n > 0 && out[n-1].Type() == errorType {
		errVal := out[n-1]
		results := valuesToAny(out[:n-1])
		if !errVal.IsNil() {
			return results, errVal.Interface().(error)
		}
		return results, nil
	}
	return valuesToAny(out), nil
}

func valuesToAny(vals []reflect.Value) []any {
	if len(vals) == 0 {
		return nil
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Interface()
	}
	return out
}
