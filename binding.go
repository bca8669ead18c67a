package injection

import "fmt"

// BindingMode selects how an owner is attached to a bound callable.
type BindingMode int

const (
	// BindInstance fills the first parameter with an owner instance,
	// resolved from the registry when the caller does not pass one.
	BindInstance BindingMode = iota

	// BindClass fills the first parameter with the owner's reflect.Type.
	BindClass

	// BindStatic attaches the callable to an owner without a receiver
	// parameter. Conflict rules still apply.
	BindStatic
)

func (m BindingMode) String() string {
	switch m {
	case BindInstance:
		return "instance"
	case BindClass:
		return "class"
	case BindStatic:
		return "static"
	default:
		return fmt.Sprintf("BindingMode(%d)", int(m))
	}
}

// bindingState is the per-callable state machine: unbound, locked unbound by
// a direct invocation, or bound to exactly one owner. The only legal
// transition is unbound to bound, once.
type bindingState struct {
	usedUnbound bool
	bound       bool
	owner       Key
	mode        BindingMode
}

// BindTo attaches the wrapped callable to an owning type as a method. The
// calling convention is fixed by whichever happens first: binding, or a
// direct unbound invocation. Rebinding to the same owner and mode is a
// no-op; anything else conflicts.
func (w *Wrapped) BindTo(owner Annotation, mode BindingMode) error {
	keys, err := owner.registrationKeys(w.registry)
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return fmt.Errorf("%w: owner annotation must denote exactly one key", ErrInvalidTarget)
	}
	key := keys[0]

	w.bindMu.Lock()
	defer w.bindMu.Unlock()

	if w.binding.bound {
		if w.binding.owner == key && w.binding.mode == mode {
			return nil
		}
		return &ConflictError{Reason: fmt.Sprintf(
			"callable already bound to %s (%s); cannot rebind to %s (%s)",
			w.binding.owner, w.binding.mode, key, mode,
		)}
	}
	if w.binding.usedUnbound {
		return &ConflictError{Reason: fmt.Sprintf(
			"callable already invoked unbound; cannot bind to %s", key,
		)}
	}

	if mode != BindStatic {
		if len(w.params) == 0 {
			return fmt.Errorf("%w: callable has no parameter to receive the owner", ErrInvalidTarget)
		}
		recv := &w.params[0]
		if recv.isContext || recv.variadic {
			return fmt.Errorf("%w: first parameter %q cannot receive the owner", ErrInvalidTarget, recv.name)
		}
		recv.receiver = true
		if mode == BindInstance {
			recv.annotation = owner
		} else {
			recv.annotation = nil
		}
	}

	w.binding = bindingState{bound: true, owner: key, mode: mode}
	return nil
}

// Owner reports the owner key and mode of a bound callable.
func (w *Wrapped) Owner() (Key, BindingMode, bool) {
	w.bindMu.Lock()
	defer w.bindMu.Unlock()
	return w.binding.owner, w.binding.mode, w.binding.bound
}
