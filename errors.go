package injection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolution is the sentinel for "no registered recipe matches any
	// candidate key". Surfaced at call time, never at wrap time.
	ErrResolution = errors.New("injection: no recipe matches")

	// ErrNameResolution is the sentinel for a forward reference naming an
	// identifier absent from the registry's name scope.
	ErrNameResolution = errors.New("injection: unknown name")

	// ErrConflict is the sentinel for duplicate bindings: a key rebound to a
	// different recipe, or a wrapped callable bound to a second owner.
	ErrConflict = errors.New("injection: conflicting binding")

	// ErrAsyncRequired is the sentinel for a synchronous call path reaching
	// an asynchronous-only recipe.
	ErrAsyncRequired = errors.New("injection: asynchronous context required")

	// ErrMissingArgument is the sentinel for a non-injectable parameter the
	// caller did not supply.
	ErrMissingArgument = errors.New("injection: missing argument")

	// ErrInvalidTarget is the sentinel for wrapping or providing something
	// that is not a usable callable.
	ErrInvalidTarget = errors.New("injection: invalid target")

	// ErrArgument is the sentinel for malformed caller-supplied arguments:
	// unknown names, duplicate values, too many positionals, type mismatches.
	ErrArgument = errors.New("injection: invalid argument")
)

// ArgumentError reports a caller-supplied argument the wrapped callable
// cannot accept.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("injection: invalid argument %q: %s", e.Param, e.Reason)
	}
	return "injection: invalid argument: " + e.Reason
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// ResolutionError reports that no recipe matched any of the candidate keys
// tried for a parameter or a direct lookup.
type ResolutionError struct {
	Param string // parameter name, empty for direct lookups
	Keys  []Key  // candidates tried, most specific first
}

func (e *ResolutionError) Error() string {
	names := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		names[i] = k.String()
	}
	tried := strings.Join(names, ", ")
	if e.Param != "" {
		return fmt.Sprintf("injection: no recipe matches parameter %q (tried %s)", e.Param, tried)
	}
	return fmt.Sprintf("injection: no recipe matches (tried %s)", tried)
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }

// NameResolutionError reports a textual forward reference whose name is not
// declared in the registry's name scope.
type NameResolutionError struct {
	Name string
}

func (e *NameResolutionError) Error() string {
	return fmt.Sprintf("injection: unknown name %q", e.Name)
}

func (e *NameResolutionError) Unwrap() error { return ErrNameResolution }

// ConflictError reports a duplicate binding: registry key collisions and
// owner-binding violations both surface through it.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "injection: conflicting binding: " + e.Reason
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AsyncRequiredError reports that an asynchronous-only recipe was reached
// from the synchronous call path.
type AsyncRequiredError struct {
	Key Key
}

func (e *AsyncRequiredError) Error() string {
	return fmt.Sprintf("injection: recipe %s requires an asynchronous context", e.Key)
}

func (e *AsyncRequiredError) Unwrap() error { return ErrAsyncRequired }

// MissingArgumentError reports a parameter that is neither injectable nor
// supplied by the caller.
type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("injection: missing argument %q", e.Param)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// DependencyCycleError reports a recipe that transitively depends on itself.
// It unwraps to ErrResolution since the cycle makes the key unresolvable.
type DependencyCycleError struct {
	Chain []Key
}

func (e *DependencyCycleError) Error() string {
	names := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		names[i] = k.String()
	}
	return "injection: dependency cycle: " + strings.Join(names, " -> ")
}

func (e *DependencyCycleError) Unwrap() error { return ErrResolution }
