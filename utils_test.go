package nlet

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func TestConvert(t *testing.T) {
	t.Parallel()
	cases := []struct {
		value any
		to    any
		want  any
	}{
		{1, int64(0), int64(1)},
		{2.0, 0, 2},
		{uint8(3), 0.0, 3.0},
		{"a", label(""), label("a")},
		{[]any{1, 2}, []int(nil), []int{1, 2}},
		{[2]string{"a", "b"}, []label(nil), []label{"a", "b"}},
		{map[string]any{"a": 1}, map[string]int64(nil), map[string]int64{"a": 1}},
		{[]any{nil}, []*int(nil), []*int{nil}},
	}
	for _, tc := range cases {
		v, err := Convert(tc.value, reflect.TypeOf(tc.to))
		require.NoErrorf(t, err, "%T to %T", tc.value, tc.to)
		assert.Equal(t, tc.want, v.Interface())
	}

	v, err := Convert(nil, reflect.TypeOf(map[string]int{}))
	require.NoError(t, err)
	assert.Nil(t, v.Interface())

	for _, tc := range []struct {
		value any
		to    any
	}{
		{nil, 0},
		{2.5, 0},
		{"1", 0},
		{[]any{"x"}, []int(nil)},
		{map[string]any{"a": "b"}, map[string]int(nil)},
		{1, ""},
	} {
		_, err := Convert(tc.value, reflect.TypeOf(tc.to))
		assert.Errorf(t, err, "%T to %T", tc.value, tc.to)
	}
}

func TestSequenceAndMapping(t *testing.T) {
	t.Parallel()
	s, err := asSequence([3]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, s)
	s, err = asSequence(nil)
	require.NoError(t, err)
	assert.Nil(t, s)
	_, err = asSequence("abc")
	assert.Error(t, err)

	m, err := asMapping(map[label]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, m)
	_, err = asMapping(map[int]int{1: 1})
	assert.Error(t, err)
}
