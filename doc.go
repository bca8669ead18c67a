// Package injection provides a registry-driven dependency injection core for Go.
//
// # Overview
//
// The package organizes code around three concepts:
//
//  1. Recipes: units of construction registered under typed lookup keys
//  2. Annotations: declared parameter shapes normalized into candidate keys
//  3. Wrapped callables: call interceptors that fill missing parameters
//
// # Basic Usage
//
// Register injectables and wrap consumers:
//
//	reg := injection.NewRegistry()
//
//	reg.MustProvide(func() *Config {
//	    return &Config{Port: 8080}
//	})
//
//	serve := reg.MustWrap(func(cfg *Config) error {
//	    return listen(cfg.Port)
//	})
//
//	_, err := serve.Call()
//
// Every parameter of a wrapped callable defaults to a plain-type annotation
// derived from its Go type, except built-in scalars (strings, numbers,
// booleans), which are treated as caller-supplied data. Positional values
// claim parameters in declaration order, each landing on the first open
// parameter it is assignable to, so callers can pass just the data arguments
// and leave the injectable slots alone. Caller-supplied arguments always
// pre-empt injection:
//
//	serve.Call(&Config{Port: 9090}) // uses the supplied config
//
// # Annotation Shapes
//
// Annotations go beyond plain types. Unions try alternatives in declaration
// order, optionals drop the absent alternative, forward references evaluate a
// name against the registry's scope at call time, and parameterized generics
// fall back from the exact specialization to the plain origin, never the
// reverse:
//
//	reg.MustWrap(fetch,
//	    injection.WithParamNames("store"),
//	    injection.WithAnnotation(0, injection.Union(
//	        injection.TypeParam("T"),
//	        injection.Type[*Store](),
//	    )),
//	)
//
//	reg.MustWrap(load,
//	    injection.WithAnnotation(0, injection.Name("Store")), // forward reference
//	)
//
// # Recipes and Caching
//
// A recipe builds at most once: repeated resolutions of the same key return
// the identical instance, and concurrent builds of a not-yet-built recipe
// collapse into a single producer run. Registration order is free: a
// dependency registered after a consumer was wrapped, but before its first
// call, is found normally. A missing dependency surfaces at call time as a
// resolution error; nothing resolves to a default value silently.
//
// # Asynchronous Recipes
//
// A factory whose first parameter is a context.Context is asynchronous. It
// can only build on the suspension-capable call path:
//
//	reg.MustProvide(func(ctx context.Context) (*Conn, error) {
//	    return dial(ctx)
//	})
//
//	w := reg.MustWrap(func(c *Conn) { ... })
//
//	_, err := w.Call()                          // ErrAsyncRequired
//	_, err = w.CallContext(context.Background()) // builds the Conn
//
// The requirement propagates transitively: any chain containing an
// asynchronous recipe, at any depth, forces CallContext at the top.
//
// # Method Binding
//
// A wrapped callable can be attached to an owning type as a method. The first
// parameter receives the owner, resolved from the registry when the caller
// does not pass one:
//
//	greet := reg.MustWrap((*Service).Greet)
//	reg.MustProvide(NewService, injection.WithMethods(greet))
//
//	greet.Call()         // owner injected
//	greet.Call(svc)      // owner supplied
//
// A callable binds to at most one owner, and the calling convention is fixed
// at first use: invoking a callable unbound and binding it afterwards is a
// conflict, as is rebinding to a different owner. BindClass passes the
// owner's reflect.Type instead of an instance; BindStatic skips the receiver
// but keeps the conflict rules.
//
// # Extensions
//
// Extensions hook recipe builds for cross-cutting concerns:
//
//	type timing struct {
//	    injection.BaseExtension
//	}
//
//	func (e *timing) Wrap(ctx context.Context, next func() (any, error), op *injection.Operation) (any, error) {
//	    start := time.Now()
//	    defer func() { log.Printf("%s took %v", op.Key, time.Since(start)) }()
//	    return next()
//	}
//
//	reg := injection.NewRegistry(injection.WithExtension(&timing{
//	    BaseExtension: injection.NewBaseExtension("timing"),
//	}))
//
// # Errors
//
// Failures are local, synchronous, and typed: ErrResolution for unmatched
// keys, ErrNameResolution for unknown forward references, ErrConflict for
// duplicate registry or owner bindings, ErrAsyncRequired for asynchronous
// recipes reached synchronously. Use errors.Is against the sentinels or
// errors.As against the concrete types.
//
// # Thread Safety
//
// Registries, recipes, and wrapped callables are safe for concurrent use.
// Recipe builds are serialized per recipe: one producer run, fan-out result.
package injection
