package injection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{}

type gadget struct{}

func TestKeyOf_MatchesKeyFor(t *testing.T) {
	t.Parallel()

	byGeneric := KeyOf[*widget]()
	byType := KeyFor(reflect.TypeOf(&widget{}))

	assert.Equal(t, byType, byGeneric)
	assert.True(t, byGeneric == byType)
}

func TestKey_EqualityRequiresExactArgs(t *testing.T) {
	t.Parallel()

	origin := reflect.TypeOf(&widget{})
	argA := reflect.TypeOf(widget{})
	argB := reflect.TypeOf(gadget{})

	exact := ParameterizedKey(origin, argA)
	same := ParameterizedKey(origin, argA)
	other := ParameterizedKey(origin, argB)

	assert.True(t, exact == same)
	assert.False(t, exact == other)
	assert.False(t, exact == KeyFor(origin))
}

func TestKey_OriginStripsArguments(t *testing.T) {
	t.Parallel()

	origin := reflect.TypeOf(&widget{})
	exact := ParameterizedKey(origin, reflect.TypeOf(gadget{}))

	require.True(t, exact.IsParameterized())

	plain := exact.Origin()
	assert.False(t, plain.IsParameterized())
	assert.True(t, plain == KeyFor(origin))
}

func TestKey_NoArgsIsUnparameterized(t *testing.T) {
	t.Parallel()

	origin := reflect.TypeOf(widget{})
	assert.True(t, ParameterizedKey(origin) == KeyFor(origin))
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	origin := reflect.TypeOf(widget{})
	arg := reflect.TypeOf(gadget{})

	plain := KeyFor(origin)
	assert.Contains(t, plain.String(), "widget")

	exact := ParameterizedKey(origin, arg)
	assert.Contains(t, exact.String(), "widget")
	assert.Contains(t, exact.String(), "gadget")
}

func TestKey_Zero(t *testing.T) {
	t.Parallel()

	var k Key
	assert.True(t, k.IsZero())
	assert.Equal(t, "<nil>", k.String())
}
