package nlet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrHolder struct {
	Field  string
	hidden string
}

func (a attrHolder) Plain() string { return "plain" }

func (a *attrHolder) Checked() (int, error) {
	if a.hidden == "" {
		return 0, errors.New("hidden is empty")
	}
	return len(a.hidden), nil
}

func (a attrHolder) WithArg(int) string { return "never" }

func TestAttribute(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		ns := MustDefine("attrs", nil)
		lookup := func(value any, name string) (any, error) {
			return attribute(newResolution(), ns, value, name)
		}

		holder := &attrHolder{Field: "f", hidden: "xyz"}
		for name, want := range map[string]any{
			"Field":   "f",
			"field":   "f",
			"Plain":   "plain",
			"plain":   "plain",
			"Checked": 3,
		} {
			v, err := lookup(holder, name)
			require.NoError(t, err, name)
			assert.Equal(t, want, v, name)
		}

		_, err := lookup(&attrHolder{}, "Checked")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConstruction))

		for _, name := range []string{"hidden", "WithArg", "Missing"} {
			_, err = lookup(holder, name)
			require.Error(t, err, name)
			assert.True(t, errors.Is(err, ErrNotFound), name)
		}

		v, err := lookup(map[string]int{"a": 1}, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		_, err = lookup(map[string]int{"a": 1}, "b")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = lookup(nil, "a")
		require.Error(t, err)
		_, err = lookup((*attrHolder)(nil), "Field")
		require.Error(t, err)
		_, err = lookup(3, "a")
		require.Error(t, err)
	})
}
