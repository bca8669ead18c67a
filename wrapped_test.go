package injection

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ prefix string }

func (g *greeter) greet(name string) string { return g.prefix + name }

type translator struct{}

func TestWrap_PassThroughWithoutInjectables(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(a, b int) int { return a + b })

	out, err := w.Call(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{5}, out)
}

func TestWrap_InjectsUnsuppliedParameters(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "hi "} })

	w := reg.MustWrap(func(g *greeter, name string) string {
		return g.greet(name)
	})

	out, err := w.Call("bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"hi bob"}, out)
}

func TestWrap_PositionalsSkipUnassignableSlots(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "a "} })
	reg.MustProvide(func() *translator { return &translator{} })

	w := reg.MustWrap(func(g *greeter, tr *translator, name string) string {
		if tr == nil {
			return "no translator"
		}
		return g.greet(name)
	})

	// The string skips both injectable slots; both get injected.
	out, err := w.Call("bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"a bob"}, out)

	// An assignable positional still claims its slot in declaration order.
	out, err = w.Call(&greeter{prefix: "b "}, "eve")
	require.NoError(t, err)
	assert.Equal(t, []any{"b eve"}, out)
}

func TestWrap_ScalarParametersAreNotInjectedImplicitly(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvideInstance("registered string")

	// A plain string parameter never consults the registry.
	w := reg.MustWrap(func(s string) string { return s })
	_, err := w.Call()
	assert.ErrorIs(t, err, ErrMissingArgument)

	// An explicit annotation opts it in.
	opted := reg.MustWrap(func(s string) string { return s },
		WithAnnotation(0, Type[string]()))
	out, err := opted.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"registered string"}, out)
}

func TestWrap_CallerSuppliedTakesPrecedence(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "injected "} })

	w := reg.MustWrap(func(g *greeter) string { return g.prefix })

	out, err := w.Call(&greeter{prefix: "mine "})
	require.NoError(t, err)
	assert.Equal(t, []any{"mine "}, out)
}

func TestWrap_ForceOverwritesSuppliedValues(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "injected "} })

	w := reg.MustWrap(func(g *greeter) string { return g.prefix }, WithForce())

	out, err := w.Call(&greeter{prefix: "mine "})
	require.NoError(t, err)
	assert.Equal(t, []any{"injected "}, out)
}

func TestWrap_ForceKeepsSuppliedNonInjectables(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "x "} })

	w := reg.MustWrap(func(g *greeter, name string) string {
		return g.greet(name)
	}, WithForce(), WithoutInjection(1))

	out, err := w.Call(Arg("arg1", "kept"))
	require.NoError(t, err)
	assert.Equal(t, []any{"x kept"}, out)
}

func TestWrap_NamedArguments(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(a, b string) string { return a + b },
		WithParamNames("left", "right"))

	out, err := w.Call(Arg("right", "B"), Arg("left", "A"))
	require.NoError(t, err)
	assert.Equal(t, []any{"AB"}, out)
}

func TestWrap_DefaultParameterNames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(a, b string) string { return a + b })

	out, err := w.Call(Arg("arg1", "B"), Arg("arg0", "A"))
	require.NoError(t, err)
	assert.Equal(t, []any{"AB"}, out)
}

func TestWrap_ArgumentErrors(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(a string) string { return a },
		WithParamNames("a"))

	_, err := w.Call(Arg("nope", "x"))
	assert.ErrorIs(t, err, ErrArgument)

	_, err = w.Call("x", Arg("a", "y"))
	assert.ErrorIs(t, err, ErrArgument)

	_, err = w.Call("x", "y")
	assert.ErrorIs(t, err, ErrArgument)

	_, err = w.Call(42)
	assert.ErrorIs(t, err, ErrArgument)
}

func TestWrap_MissingNonInjectableArgument(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(name string) string { return name })

	_, err := w.Call()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingArgument)

	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "arg0", missing.Param)
}

func TestWrap_VariadicPassThrough(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(sep string, parts ...string) string {
		joined := ""
		for i, p := range parts {
			if i > 0 {
				joined += sep
			}
			joined += p
		}
		return joined
	})

	out, err := w.Call("-", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a-b-c"}, out)

	out, err = w.Call("-")
	require.NoError(t, err)
	assert.Equal(t, []any{""}, out)
}

func TestWrap_VariadicAfterInjectable(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *translator { return &translator{} })

	w := reg.MustWrap(func(tr *translator, parts ...string) int {
		if tr == nil {
			return -1
		}
		return len(parts)
	})

	// The injectable slot comes first, so positionals must fill it before
	// overflowing into the collector.
	out, err := w.Call(&translator{}, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []any{2}, out)

	out, err = w.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{0}, out)
}

func TestWrap_ContextParameterInvisibleToCallers(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	reg := NewRegistry()
	w := reg.MustWrap(func(ctx context.Context, name string) string {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return v + name
		}
		return name
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "from-ctx-")
	out, err := w.CallContext(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"from-ctx-bob"}, out)

	// On the synchronous path the context parameter gets a background context.
	out, err = w.Call("bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"bob"}, out)
}

func TestWrap_CallFailsWhenChainNeedsAsync(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func(ctx context.Context) *greeter { return &greeter{prefix: "async "} })

	w := reg.MustWrap(func(g *greeter) string { return g.prefix })

	_, err := w.Call()
	assert.ErrorIs(t, err, ErrAsyncRequired)

	out, err := w.CallContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"async "}, out)
}

func TestWrap_ExplicitAnnotationOverridesDefault(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *greeter { return &greeter{prefix: "fwd "} })

	w := reg.MustWrap(func(g any) string {
		return g.(*greeter).prefix
	}, WithAnnotation(0, Name("greeter")))

	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"fwd "}, out)
}

func TestWrap_ForwardReferenceRegisteredLate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	// The name is declared but nothing is registered for it yet.
	require.NoError(t, reg.DeclareName("Greeter", Type[*greeter]()))

	w := reg.MustWrap(func(g *greeter) string { return g.prefix },
		WithAnnotation(0, Name("Greeter")))

	_, err := w.Call()
	assert.ErrorIs(t, err, ErrResolution)

	reg.MustProvide(func() *greeter { return &greeter{prefix: "late "} })

	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"late "}, out)
}

func TestWrap_UnknownForwardReferenceFails(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(g *greeter) string { return g.prefix },
		WithAnnotation(0, Name("NoSuchThing")))

	_, err := w.Call()
	assert.ErrorIs(t, err, ErrNameResolution)
}

func TestWrap_UnionFallsBackInOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustProvide(func() *translator { return &translator{} })

	w := reg.MustWrap(func(dep any) string {
		return fmt.Sprintf("%T", dep)
	}, WithAnnotation(0, Union(Type[*greeter](), Type[*translator]())))

	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"*injection.translator"}, out)

	// Once the first alternative registers, it wins.
	reg.MustProvide(func() *greeter { return &greeter{} })
	out, err = w.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"*injection.greeter"}, out)
}

func TestWrap_OptionalUnresolvedStaysMissing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(g *greeter) bool { return g == nil },
		WithAnnotation(0, Optional(Type[*greeter]())))

	_, err := w.Call()
	assert.ErrorIs(t, err, ErrResolution)

	out, err := w.Call(Arg("arg0", nil))
	require.NoError(t, err)
	assert.Equal(t, []any{true}, out)
}

func TestWrap_ErrorReturnSplit(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	w := reg.MustWrap(func(fail bool) (string, error) {
		if fail {
			return "", assert.AnError
		}
		return "ok", nil
	})

	out, err := w.Call(false)
	require.NoError(t, err)
	assert.Equal(t, []any{"ok"}, out)

	out, err = w.Call(true)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []any{""}, out)
}

func TestWrap_RejectsNonCallables(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	_, err := reg.Wrap(nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = reg.Wrap("not a func")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = reg.Wrap(func(a int) {}, WithParamNames("a", "b"))
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = reg.Wrap(func(xs ...int) {}, WithAnnotation(0, Type[*greeter]()))
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
