package nlet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceBuilding(t *testing.T) {
	t.Parallel()
	r := This.Up(1).Get("foo").Up(1).Get("bar", "baz")
	assert.Equal(t, 2, r.Ascent())
	assert.Equal(t, []string{"foo", "bar", "baz"}, r.Path())
	assert.Equal(t, "(this << 2).foo.bar.baz", r.String())
	assert.Equal(t, "this.foo", This.Get("foo").String())
	assert.Equal(t, "this", This.String())

	a := This.Get("a")
	b := a.Get("b")
	c := a.Get("c")
	assert.Equal(t, []string{"a", "b"}, b.Path(), "Get does not share storage")
	assert.Equal(t, []string{"a", "c"}, c.Path())

	p := r.Path()
	p[0] = "changed"
	assert.Equal(t, "foo", r.Path()[0])

	assert.Panics(t, func() { This.Up(-1) })
}

func TestParseReference(t *testing.T) {
	t.Parallel()
	for s, want := range map[string]Reference{
		"foo":       This.Get("foo"),
		"^foo":      This.Up(1).Get("foo"),
		"^^foo.bar": This.Up(2).Get("foo", "bar"),
	} {
		got, err := ParseReference(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	for _, s := range []string{"", "^^", "foo..bar", "foo."} {
		_, err := ParseReference(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrDefinition), s)
	}
	assert.Panics(t, func() { MustParseReference("^") })
}
