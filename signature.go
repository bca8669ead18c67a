package injection

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// paramDescriptor describes one parameter of a wrapped callable. Descriptors
// are computed once at wrap time and reused on every call.
type paramDescriptor struct {
	name       string
	index      int
	typ        reflect.Type
	annotation Annotation // nil marks the parameter non-injectable
	variadic   bool
	isContext  bool
	receiver   bool // owner slot, set by the binding coordinator
}

type wrapConfig struct {
	force       bool
	names       []string
	annotations map[int]Annotation
	noInject    map[int]bool
}

// WrapOption refines what Go reflection alone can say about a callable.
type WrapOption func(*wrapConfig)

// WithForce makes injection overwrite caller-supplied values for eligible
// parameters instead of yielding to them.
func WithForce() WrapOption {
	return func(cfg *wrapConfig) { cfg.force = true }
}

// WithParamNames names the callable's parameters, in declaration order.
// Unnamed parameters keep their positional default.
func WithParamNames(names ...string) WrapOption {
	return func(cfg *wrapConfig) { cfg.names = names }
}

// WithAnnotation replaces the default plain-type annotation of the parameter
// at index with an explicit shape (union, forward reference, generic, ...).
func WithAnnotation(index int, ann Annotation) WrapOption {
	return func(cfg *wrapConfig) {
		if cfg.annotations == nil {
			cfg.annotations = make(map[int]Annotation)
		}
		cfg.annotations[index] = ann
	}
}

// WithoutInjection marks the parameter at index as caller-supplied only.
func WithoutInjection(index int) WrapOption {
	return func(cfg *wrapConfig) {
		if cfg.noInject == nil {
			cfg.noInject = make(map[int]bool)
		}
		cfg.noInject[index] = true
	}
}

// introspect extracts parameter descriptors from a callable's type. Variadic
// collectors and context parameters are pass-through, never injection
// targets; other parameters default to a plain-type annotation derived from
// their Go type, except built-in scalars, which stay caller-supplied.
func introspect(fnType reflect.Type, cfg *wrapConfig) ([]paramDescriptor, error) {
	numIn := fnType.NumIn()
	if len(cfg.names) > numIn {
		return nil, fmt.Errorf("%w: %d parameter names for %d parameters", ErrInvalidTarget, len(cfg.names), numIn)
	}
	for idx := range cfg.annotations {
		if idx < 0 || idx >= numIn {
			return nil, fmt.Errorf("%w: annotation index %d out of range", ErrInvalidTarget, idx)
		}
	}

	params := make([]paramDescriptor, numIn)
	for i := 0; i < numIn; i++ {
		typ := fnType.In(i)
		d := paramDescriptor{
			name:  fmt.Sprintf("arg%d", i),
			index: i,
			typ:   typ,
		}
		if i < len(cfg.names) && cfg.names[i] != "" {
			d.name = cfg.names[i]
		}

		switch {
		case fnType.IsVariadic() && i == numIn-1:
			d.variadic = true
		case typ == contextType:
			d.isContext = true
		case cfg.noInject[i]:
			// caller-supplied only
		case cfg.annotations[i] != nil:
			d.annotation = cfg.annotations[i]
		default:
			d.annotation = defaultAnnotation(typ)
		}

		if d.variadic && cfg.annotations[i] != nil {
			return nil, fmt.Errorf("%w: variadic parameter %q cannot be annotated", ErrInvalidTarget, d.name)
		}

		params[i] = d
	}

	return params, nil
}

// defaultAnnotation derives the implicit annotation for a parameter type.
// Built-in scalars (booleans, numbers, strings) are caller-supplied data, not
// dependencies: they stay non-injectable unless annotated explicitly with
// WithAnnotation.
func defaultAnnotation(t reflect.Type) Annotation {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return nil
	default:
		return TypeOf(t)
	}
}
