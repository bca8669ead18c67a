package injection

import "context"

// Extension provides hooks around recipe builds. Extensions observe and wrap
// construction; they cannot alter what a key resolves to.
type Extension interface {
	// Name returns the extension's name.
	Name() string

	// Order determines extension execution order (lower = earlier).
	Order() int

	// Init is called when the extension is registered to a registry.
	Init(reg *Registry) error

	// Wrap intercepts a recipe build. next runs the remaining chain and the
	// build itself; the extension decides whether and when to call it.
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError is notified after a build fails.
	OnError(err error, op *Operation, reg *Registry)

	// Dispose is called when the registry is disposed.
	Dispose(reg *Registry) error
}

// BaseExtension provides default implementations for Extension methods.
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name.
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(reg *Registry) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, reg *Registry) {
}

func (e *BaseExtension) Dispose(reg *Registry) error {
	return nil
}

// Operation describes the build an extension is observing.
type Operation struct {
	Kind     OperationKind
	Key      Key
	Recipe   *Recipe
	Registry *Registry
}

// OperationKind represents the type of operation.
type OperationKind string

const (
	// OpBuild indicates a recipe construction.
	OpBuild OperationKind = "build"
)
