package injection

import (
	"reflect"
	"strings"
)

// Key is the normalized identity a recipe is registered under: an origin type
// plus an optional tuple of type arguments. Keys are immutable value types and
// usable as map keys; two keys are equal iff origin and argument tuple match
// exactly.
type Key struct {
	origin reflect.Type
	args   string // canonical rendering of the type-argument tuple, "" when unparameterized
}

// KeyOf returns the unparameterized key for T.
func KeyOf[T any]() Key {
	return KeyFor(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyFor returns the unparameterized key for a reflect.Type.
func KeyFor(t reflect.Type) Key {
	return Key{origin: t}
}

// ParameterizedKey returns the key for origin specialized with the given type
// arguments. With no arguments it is equivalent to KeyFor(origin).
func ParameterizedKey(origin reflect.Type, args ...reflect.Type) Key {
	return Key{origin: origin, args: canonicalArgs(args)}
}

// Origin strips the type arguments, yielding the unparameterized key.
// Fallback is directional: a parameterized key falls back to its origin,
// never the reverse.
func (k Key) Origin() Key {
	return Key{origin: k.origin}
}

// IsParameterized reports whether the key carries type arguments.
func (k Key) IsParameterized() bool { return k.args != "" }

// IsZero reports whether the key identifies nothing.
func (k Key) IsZero() bool { return k.origin == nil }

// Type returns the origin type.
func (k Key) Type() reflect.Type { return k.origin }

func (k Key) String() string {
	if k.origin == nil {
		return "<nil>"
	}
	if k.args == "" {
		return typeName(k.origin)
	}
	return typeName(k.origin) + "[" + k.args + "]"
}

func canonicalArgs(args []reflect.Type) string {
	if len(args) == 0 {
		return ""
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = typeName(a)
	}
	return strings.Join(names, ",")
}

// typeName renders a type unambiguously enough to serve as a tuple element:
// package path qualified when available, reflect's own rendering otherwise.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}
