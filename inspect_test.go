package nlet

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type BaseConfig struct {
	Host string `nlet:"host"`
	Port int    `nlet:"port,default=8080"`
}

type serverConfig struct {
	BaseConfig
	Timeout float64           `nlet:"timeout,default=2.5"`
	Extra   []string          `nlet:"extra,args"`
	Options map[string]string `nlet:"options,kwargs"`
	Ignored string            `nlet:"-"`
	Plain   string
}

type emptyModel struct {
	Plain string
}

type derivedEmpty struct {
	emptyModel
	*emptyLink
}

type emptyLink struct {
	Other string
}

type pointerServer struct {
	*BaseConfig
	Name string `nlet:"name"`
}

type linked struct {
	*linked
	Value int `nlet:"value"`
}

type BaseInit struct {
	Name  string `nlet:"name"`
	Greet string
}

func (b *BaseInit) Init() error {
	b.Greet = "hi " + b.Name
	return nil
}

type derivedInit struct {
	*BaseInit
}

type initModel struct {
	Name   string `nlet:"name"`
	Greet  string
	failed bool
}

func (m *initModel) Init() error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	m.Greet = "hello " + m.Name
	return nil
}

type initOnly struct {
	ready bool
}

func (m *initOnly) Init() error {
	m.ready = true
	return nil
}

func TestInspect(t *testing.T) {
	t.Parallel()
	sig, err := Inspect(serverConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "port", "timeout", "extra", "options"}, sig.Names())

	port, ok := sig.Lookup("port")
	require.True(t, ok)
	assert.True(t, port.HasDefault)
	assert.Equal(t, 8080, port.Default)

	timeout, ok := sig.Lookup("timeout")
	require.True(t, ok)
	assert.Equal(t, 2.5, timeout.Default)

	extra, _ := sig.Lookup("extra")
	assert.Equal(t, VarPositional, extra.Kind)
	options, _ := sig.Lookup("options")
	assert.Equal(t, VarKeyword, options.Kind)

	same, err := Inspect(reflect.TypeOf(&serverConfig{}))
	require.NoError(t, err)
	assert.Equal(t, sig, same)
}

func TestInspectRejects(t *testing.T) {
	t.Parallel()
	type unexported struct {
		name string `nlet:"name"` //nolint:unused
	}
	type badArgs struct {
		Extra string `nlet:"extra,args"`
	}
	type badKwargs struct {
		Options map[int]string `nlet:"options,kwargs"`
	}
	type badDefault struct {
		Port int `nlet:"port,default=eighty"`
	}
	type badOption struct {
		Port int `nlet:"port,sometimes"`
	}
	type twice struct {
		A int `nlet:"a"`
		B int `nlet:"a"`
	}
	for _, model := range []any{
		nil,
		5,
		unexported{},
		badArgs{},
		badKwargs{},
		badDefault{},
		badOption{},
	} {
		_, err := Inspect(model)
		require.Errorf(t, err, "%T", model)
		assert.Truef(t, errors.Is(err, ErrDefinition), "%T", model)
	}
	_, err := Struct(twice{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDefinition))

	type hiddenBase struct {
		Host string `nlet:"host"`
	}
	type hidden struct {
		*hiddenBase
	}
	_, err = Struct(hidden{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDefinition))
	assert.Contains(t, err.Error(), "unexported pointer embedding")
}

func TestStructPointerEmbedding(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		d := MustStruct(&pointerServer{})
		assert.False(t, d.NoOp())
		assert.Equal(t, []string{"host", "port", "name"}, d.Signature().Names())

		ns := MustDefine("pointer", Declarations{
			"host":   "example.com",
			"name":   "api",
			"server": d,
		})
		s, err := Resolve[*pointerServer](ns, "server")
		require.NoError(t, err)
		require.NotNil(t, s.BaseConfig)
		assert.Equal(t, "example.com", s.Host)
		assert.Equal(t, 8080, s.Port)
		assert.Equal(t, "api", s.Name)

		l := MustStruct(linked{})
		assert.Equal(t, []string{"value"}, l.Signature().Names())
	})
}

func TestStructPointerEmbeddedInit(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		d := MustStruct(&derivedInit{})
		assert.False(t, d.NoOp())
		ns := MustDefine("derived", Declarations{
			"name":  "there",
			"model": d,
		})
		m, err := Resolve[*derivedInit](ns, "model")
		require.NoError(t, err)
		assert.Equal(t, "hi there", m.Greet)
	})
}

func TestStructDescriptor(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		d := MustStruct(&serverConfig{})
		assert.Contains(t, d.Name(), "serverConfig")
		assert.Equal(t, reflect.TypeOf(&serverConfig{}), d.Type())
		assert.False(t, d.NoOp())

		ns := MustDefine("server", Declarations{
			"host":    "localhost",
			"options": map[string]any{"mode": "fast"},
			"extra":   []string{"a", "b"},
			"server":  d,
		})
		cfg, err := Resolve[*serverConfig](ns, "server")
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 2.5, cfg.Timeout)
		assert.Equal(t, []string{"a", "b"}, cfg.Extra)
		assert.Equal(t, map[string]string{"mode": "fast"}, cfg.Options)

		cfg, err = Resolve[*serverConfig](ns.MustLet(Declarations{"port": 9000}), "server")
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
	})
}

func TestStructDescriptorByValue(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		ns := MustDefine("byValue", Declarations{
			"host": "example.com",
			"base": MustStruct(BaseConfig{}),
		})
		cfg, err := Resolve[BaseConfig](ns, "base")
		require.NoError(t, err)
		assert.Equal(t, BaseConfig{Host: "example.com", Port: 8080}, cfg)
	})
}

func TestStructMissingCollectors(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		ns := MustDefine("collectors", Declarations{
			"host":   "h",
			"server": MustStruct(serverConfig{}),
		})
		cfg, err := Resolve[serverConfig](ns, "server")
		require.NoError(t, err)
		assert.Empty(t, cfg.Extra)
		assert.NotNil(t, cfg.Options)
		assert.Empty(t, cfg.Options)
	})
}

func TestStructNoOp(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		for _, model := range []any{emptyModel{}, &emptyModel{}, derivedEmpty{}} {
			d := MustStruct(model)
			assert.True(t, d.NoOp())
			assert.Empty(t, d.Signature())
		}
		ns := MustDefine("noop", Declarations{
			"Plain": "never consulted",
			"m":     MustStruct(&emptyModel{}),
		})
		m, err := Resolve[*emptyModel](ns, "m")
		require.NoError(t, err)
		assert.Equal(t, &emptyModel{}, m)
	})
}

func TestStructInit(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		ns := MustDefine("init", Declarations{
			"name":  "world",
			"model": MustStruct(&initModel{}),
		})
		m, err := Resolve[*initModel](ns, "model")
		require.NoError(t, err)
		assert.Equal(t, "hello world", m.Greet)
		assert.False(t, m.failed)

		_, err = ns.MustLet(Declarations{"name": ""}).Resolve("model")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConstruction))
		assert.Contains(t, err.Error(), "name is required")
	})
}

func TestStructInitOnly(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		d := MustStruct(&initOnly{})
		assert.False(t, d.NoOp(), "Init makes it constructible")
		v, err := d.Build(nil, nil)
		require.NoError(t, err)
		assert.True(t, v.(*initOnly).ready)
	})
}

func TestStructTypeMismatch(t *testing.T) {
	wrapTest(t, func(t *testing.T) {
		ns := MustDefine("mismatch", Declarations{
			"host": 42,
			"base": MustStruct(BaseConfig{}),
		})
		_, err := ns.Resolve("base")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConstruction))
		var de *DependencyError
		require.True(t, errors.As(err, &de))
		assert.Contains(t, de.Descriptor, "BaseConfig")
	})
}
