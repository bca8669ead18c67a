package injection

import (
	"fmt"
	"reflect"
)

type provideConfig struct {
	ons     []Annotation
	methods []*Wrapped
	tags    map[any]any
}

// ProvideOption configures a registration.
type ProvideOption func(*provideConfig)

// On registers the recipe under an additional key, letting a concrete
// implementation stand in for an abstract or specialized annotation. The
// recipe is registered under its natural key as well when that key is still
// free; a natural key already bound to another recipe stays with it.
func On(ann Annotation) ProvideOption {
	return func(cfg *provideConfig) { cfg.ons = append(cfg.ons, ann) }
}

// WithMethods binds wrapped callables to the registered type as instance
// methods. A callable already bound elsewhere, or already invoked unbound,
// makes the registration fail with a conflict.
func WithMethods(ws ...*Wrapped) ProvideOption {
	return func(cfg *provideConfig) { cfg.methods = append(cfg.methods, ws...) }
}

// WithRecipeTag attaches metadata to the recipe at registration.
func WithRecipeTag[T any](tag Tag[T], val T) ProvideOption {
	return func(cfg *provideConfig) {
		if cfg.tags == nil {
			cfg.tags = make(map[any]any)
		}
		cfg.tags[tag] = val
	}
}

// Provide registers a factory as an injectable. The natural lookup key is the
// factory's first return type; a trailing error return is allowed. A factory
// whose first parameter is a context.Context is asynchronous: it can only be
// built on the suspension-capable call path. Remaining parameters are
// injected recursively.
func (reg *Registry) Provide(factory any, opts ...ProvideOption) (*Recipe, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil factory", ErrInvalidTarget)
	}
	v := reflect.ValueOf(factory)
	t := v.Type()
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidTarget, factory)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return nil, fmt.Errorf("%w: factory must return a value and an optional error", ErrInvalidTarget)
	}
	if t.Out(0) == errorType {
		return nil, fmt.Errorf("%w: factory's first return must be a value, not error", ErrInvalidTarget)
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, fmt.Errorf("%w: factory's second return must be error", ErrInvalidTarget)
	}

	cfg := &provideConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	producer, err := reg.Wrap(factory)
	if err != nil {
		return nil, err
	}

	recipe := &Recipe{
		key:      KeyFor(t.Out(0)),
		producer: producer,
		async:    t.NumIn() > 0 && t.In(0) == contextType,
		tags:     recipeTags(cfg),
	}

	if err := reg.install(recipe, cfg); err != nil {
		return nil, err
	}
	return recipe, nil
}

// ProvideInstance registers an already-built value. The recipe is born built;
// every resolution returns the identical instance.
func (reg *Registry) ProvideInstance(value any, opts ...ProvideOption) (*Recipe, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil instance", ErrInvalidTarget)
	}

	cfg := &provideConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	recipe := &Recipe{
		key:   KeyFor(reflect.TypeOf(value)),
		tags:  recipeTags(cfg),
		built: true,
		value: value,
	}

	if err := reg.install(recipe, cfg); err != nil {
		return nil, err
	}
	return recipe, nil
}

// MustProvide is Provide, panicking on error.
func (reg *Registry) MustProvide(factory any, opts ...ProvideOption) *Recipe {
	r, err := reg.Provide(factory, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// MustProvideInstance is ProvideInstance, panicking on error.
func (reg *Registry) MustProvideInstance(value any, opts ...ProvideOption) *Recipe {
	r, err := reg.ProvideInstance(value, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func recipeTags(cfg *provideConfig) map[any]any {
	if cfg.tags != nil {
		return cfg.tags
	}
	return make(map[any]any)
}

// install binds the recipe under its natural key, declares the type's name
// for forward references, applies override keys, and binds methods. With
// override keys present the natural key is opportunistic: a recipe already
// bound there keeps it, and the override keys alone carry the registration.
func (reg *Registry) install(recipe *Recipe, cfg *provideConfig) error {
	if err := reg.register(recipe.key, recipe); err != nil {
		if len(cfg.ons) == 0 {
			return err
		}
	} else {
		reg.declareTypeName(recipe.key)
	}

	for _, ann := range cfg.ons {
		keys, err := ann.registrationKeys(reg)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := reg.register(key, recipe); err != nil {
				return err
			}
		}
	}

	ownerAnn := TypeOf(recipe.key.Type())
	for _, w := range cfg.methods {
		if err := w.BindTo(ownerAnn, BindInstance); err != nil {
			return err
		}
	}

	return nil
}
