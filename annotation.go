package injection

import (
	"reflect"
	"strings"
)

// Annotation is the declared shape of an injectable parameter. Shapes are an
// explicit tagged variant (plain type, forward reference, union, optional,
// metadata wrapper, parameterized generic) normalized into an ordered list
// of candidate lookup keys, most specific first.
//
// An annotation that yields no candidates marks its parameter as
// non-injectable.
type Annotation interface {
	// candidates returns the ordered lookup keys to try against a registry.
	candidates(scope nameScope) ([]Key, error)

	// registrationKeys returns the keys a recipe registered on this
	// annotation binds to. Unlike candidates it never includes directional
	// fallbacks: registering on Generic[F](X) must not also claim F.
	registrationKeys(scope nameScope) ([]Key, error)

	String() string
}

// nameScope resolves forward-reference names. The registry implements it.
type nameScope interface {
	lookupName(name string) (Key, bool)
}

// ── plain type ────────────────────────────────────────────────────────────────

type typeAnnotation struct {
	t reflect.Type
}

// Type returns the plain-type annotation for T.
func Type[T any]() Annotation {
	return typeAnnotation{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOf returns the plain-type annotation for a reflect.Type.
func TypeOf(t reflect.Type) Annotation {
	return typeAnnotation{t: t}
}

func (a typeAnnotation) candidates(nameScope) ([]Key, error) {
	return []Key{KeyFor(a.t)}, nil
}

func (a typeAnnotation) registrationKeys(scope nameScope) ([]Key, error) {
	return a.candidates(scope)
}

func (a typeAnnotation) String() string { return typeName(a.t) }

// ── forward reference ─────────────────────────────────────────────────────────

type nameAnnotation struct {
	name string
}

// Name returns a textual forward-reference annotation. The name is evaluated
// against the registry's name scope at resolution time, so it may refer to a
// type declared or registered after the consumer was wrapped.
func Name(name string) Annotation {
	return nameAnnotation{name: name}
}

func (a nameAnnotation) candidates(scope nameScope) ([]Key, error) {
	key, ok := scope.lookupName(a.name)
	if !ok {
		return nil, &NameResolutionError{Name: a.name}
	}
	return []Key{key}, nil
}

func (a nameAnnotation) registrationKeys(scope nameScope) ([]Key, error) {
	return a.candidates(scope)
}

func (a nameAnnotation) String() string { return "\"" + a.name + "\"" }

// ── union / optional ──────────────────────────────────────────────────────────

type unionAnnotation struct {
	alts []Annotation
}

// Union returns an annotation whose candidates are the concatenation of each
// alternative's candidates, in declaration order. Alternatives that yield no
// candidates (Absent, TypeParam) are simply skipped.
func Union(alts ...Annotation) Annotation {
	return unionAnnotation{alts: alts}
}

// Optional marks an annotation as possibly absent. The absent alternative
// never yields a candidate, so Optional(a) resolves exactly like a.
func Optional(a Annotation) Annotation {
	return unionAnnotation{alts: []Annotation{a, Absent()}}
}

func (a unionAnnotation) candidates(scope nameScope) ([]Key, error) {
	var keys []Key
	for _, alt := range a.alts {
		ks, err := alt.candidates(scope)
		if err != nil {
			return nil, err
		}
		keys = append(keys, ks...)
	}
	return keys, nil
}

func (a unionAnnotation) registrationKeys(scope nameScope) ([]Key, error) {
	var keys []Key
	for _, alt := range a.alts {
		ks, err := alt.registrationKeys(scope)
		if err != nil {
			return nil, err
		}
		keys = append(keys, ks...)
	}
	return keys, nil
}

func (a unionAnnotation) String() string {
	parts := make([]string, len(a.alts))
	for i, alt := range a.alts {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

// ── absent alternative ────────────────────────────────────────────────────────

type absentAnnotation struct{}

// Absent is the "no value" union alternative. It yields no candidates.
func Absent() Annotation { return absentAnnotation{} }

func (absentAnnotation) candidates(nameScope) ([]Key, error)       { return nil, nil }
func (absentAnnotation) registrationKeys(nameScope) ([]Key, error) { return nil, nil }
func (absentAnnotation) String() string                            { return "<absent>" }

// ── unbound type parameter ────────────────────────────────────────────────────

type typeParamAnnotation struct {
	name string
}

// TypeParam denotes an unbound type parameter inside a union. It yields no
// candidates; the concrete alternatives of the union carry the resolution.
func TypeParam(name string) Annotation {
	return typeParamAnnotation{name: name}
}

func (typeParamAnnotation) candidates(nameScope) ([]Key, error)       { return nil, nil }
func (typeParamAnnotation) registrationKeys(nameScope) ([]Key, error) { return nil, nil }
func (a typeParamAnnotation) String() string                          { return a.name }

// ── metadata wrapper ──────────────────────────────────────────────────────────

type taggedAnnotation struct {
	inner Annotation
	meta  []any
}

// Tagged wraps an annotation with auxiliary metadata. Resolution unwraps to
// the underlying annotation; the metadata is ignored by the resolver and kept
// only for collaborators that want to read it back.
func Tagged(inner Annotation, meta ...any) Annotation {
	return taggedAnnotation{inner: inner, meta: meta}
}

// Metadata returns the auxiliary values attached with Tagged, or nil when the
// annotation carries none.
func Metadata(a Annotation) []any {
	if t, ok := a.(taggedAnnotation); ok {
		return t.meta
	}
	return nil
}

func (a taggedAnnotation) candidates(scope nameScope) ([]Key, error) {
	return a.inner.candidates(scope)
}

func (a taggedAnnotation) registrationKeys(scope nameScope) ([]Key, error) {
	return a.inner.registrationKeys(scope)
}

func (a taggedAnnotation) String() string {
	return "Tagged(" + a.inner.String() + ")"
}

// ── parameterized generic ─────────────────────────────────────────────────────

type genericAnnotation struct {
	origin reflect.Type
	args   []reflect.Type
}

// Parameterized returns the annotation for origin specialized with concrete
// type arguments. The primary candidate is the exact (origin, args) key; the
// unparameterized origin key is offered second as a fallback. The fallback is
// directional: requesting the plain origin never matches a recipe registered
// only under a specialization.
func Parameterized(origin reflect.Type, args ...reflect.Type) Annotation {
	return genericAnnotation{origin: origin, args: args}
}

// Generic is Parameterized with the origin given as a type parameter.
func Generic[T any](args ...reflect.Type) Annotation {
	return genericAnnotation{
		origin: reflect.TypeOf((*T)(nil)).Elem(),
		args:   args,
	}
}

func (a genericAnnotation) candidates(nameScope) ([]Key, error) {
	exact := ParameterizedKey(a.origin, a.args...)
	if !exact.IsParameterized() {
		return []Key{exact}, nil
	}
	return []Key{exact, exact.Origin()}, nil
}

func (a genericAnnotation) registrationKeys(nameScope) ([]Key, error) {
	return []Key{ParameterizedKey(a.origin, a.args...)}, nil
}

func (a genericAnnotation) String() string {
	return ParameterizedKey(a.origin, a.args...).String()
}
