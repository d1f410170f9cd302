package nlet

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Param is one entry of a constructor Signature.
type Param struct {
	Name       string
	Kind       ParamKind
	Default    any
	HasDefault bool
}

// Arg declares a required positional parameter.
func Arg(name string) Param {
	return Param{Name: name}
}

// Opt declares a positional parameter that falls back to value when
// resolving name fails with ErrNotFound.
func Opt(name string, value any) Param {
	return Param{Name: name, Default: value, HasDefault: true}
}

// VarArgs declares the parameter that collects extra positional
// arguments.  The declaration named name, if any, must resolve to a
// slice or an array.
func VarArgs(name string) Param {
	return Param{Name: name, Kind: VarPositional}
}

// KwArgs declares the parameter that collects extra named arguments.
// The declaration named name, if any, must resolve to a map
// with string keys.
func KwArgs(name string) Param {
	return Param{Name: name, Kind: VarKeyword}
}

func (p Param) String() string {
	switch p.Kind {
	case VarPositional:
		return "*" + p.Name
	case VarKeyword:
		return "**" + p.Name
	}
	if p.HasDefault {
		return fmt.Sprintf("%s=%v", p.Name, p.Default)
	}
	return p.Name
}

// Signature is the ordered parameter list of a Descriptor.
type Signature []Param

// Names returns the parameter names in order.
func (s Signature) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a parameter by name.
func (s Signature) Lookup(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// BuildFunc produces an instance from resolved arguments.  kwargs
// is nil when the descriptor has no VarKeyword parameter or when
// nothing was declared for it.
type BuildFunc func(args []any, kwargs map[string]any) (any, error)

// Descriptor is a constructible declaration: a named recipe that
// the resolver instantiates after resolving each of its parameters
// by name.
type Descriptor struct {
	name   string
	params Signature
	build  BuildFunc
	typ    reflect.Type
	noop   bool
}

// Constructor creates a Descriptor from a build function and an
// explicit parameter list.
func Constructor(name string, build BuildFunc, params ...Param) (*Descriptor, error) {
	if build == nil {
		return nil, newError(ErrDefinition, "", name, "descriptor %s has no build function", name)
	}
	if err := validateSignature(name, params); err != nil {
		return nil, err
	}
	return &Descriptor{
		name:   name,
		params: append(Signature(nil), params...),
		build:  build,
	}, nil
}

// MustConstructor calls Constructor and panics on error
func MustConstructor(name string, build BuildFunc, params ...Param) *Descriptor {
	d, err := Constructor(name, build, params...)
	if err != nil {
		panic(err)
	}
	return d
}

// Func creates a Descriptor from a Go function.  The function's
// inputs line up, in order, with params: a VarPositional parameter
// must be last and match the variadic input; a VarKeyword parameter
// must match a map[string]T input.  The function must return T or
// (T, error).
func Func(name string, fn any, params ...Param) (*Descriptor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, newError(ErrDefinition, "", name, "descriptor %s: %T is not a function", name, fn)
	}
	t := v.Type()
	if err := validateSignature(name, params); err != nil {
		return nil, err
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, newError(ErrDefinition, "", name, "descriptor %s: %s must return (T) or (T, error)", name, t)
	}
	if t.NumIn() != len(params) {
		return nil, newError(ErrDefinition, "", name,
			"descriptor %s: %s takes %d inputs but %d parameters were declared", name, t, t.NumIn(), len(params))
	}
	for i, p := range params {
		in := t.In(i)
		lastVariadic := t.IsVariadic() && i == t.NumIn()-1
		switch p.Kind {
		case Positional:
			if lastVariadic {
				return nil, newError(ErrDefinition, "", name,
					"descriptor %s: variadic input of %s must be declared with VarArgs", name, t)
			}
		case VarPositional:
			if !lastVariadic {
				return nil, newError(ErrDefinition, "", name,
					"descriptor %s: %s must be the variadic input of %s", name, p, t)
			}
		case VarKeyword:
			if in.Kind() != reflect.Map || in.Key().Kind() != reflect.String {
				return nil, newError(ErrDefinition, "", name,
					"descriptor %s: %s must be a map with string keys, not %s", name, p, in)
			}
		}
	}
	params = append([]Param(nil), params...)
	build := func(args []any, kwargs map[string]any) (any, error) {
		in := make([]reflect.Value, 0, len(args)+1)
		var used int
		for i, p := range params {
			it := t.In(i)
			switch p.Kind {
			case Positional:
				if used >= len(args) {
					return nil, errors.Errorf("missing argument %s", p.Name)
				}
				rv, err := Convert(args[used], it)
				if err != nil {
					return nil, errors.Wrapf(err, "argument %s", p.Name)
				}
				used++
				in = append(in, rv)
			case VarKeyword:
				rv, err := convertMapping(kwargs, it)
				if err != nil {
					return nil, errors.Wrapf(err, "argument %s", p.Name)
				}
				in = append(in, rv)
			case VarPositional:
				for ; used < len(args); used++ {
					rv, err := Convert(args[used], it.Elem())
					if err != nil {
						return nil, errors.Wrapf(err, "argument %s[%d]", p.Name, used)
					}
					in = append(in, rv)
				}
			}
		}
		if used < len(args) {
			return nil, errors.Errorf("%d arguments given but only %d used", len(args), used)
		}
		out := v.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
	return &Descriptor{
		name:   name,
		params: params,
		build:  build,
		typ:    t.Out(0),
	}, nil
}

// MustFunc calls Func and panics on error
func MustFunc(name string, fn any, params ...Param) *Descriptor {
	d, err := Func(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the name given when the descriptor was created.
func (d *Descriptor) Name() string { return d.name }

// Signature returns a copy of the parameter list.
func (d *Descriptor) Signature() Signature {
	return append(Signature(nil), d.params...)
}

// NoOp reports whether the descriptor needs no construction at all.  Only
// Struct creates no-op descriptors.
func (d *Descriptor) NoOp() bool { return d.noop }

// Type returns the type of the instances, if known.  It is nil for
// descriptors made with Constructor.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Build instantiates the descriptor with explicit arguments,
// bypassing resolution.
func (d *Descriptor) Build(args []any, kwargs map[string]any) (any, error) {
	return d.build(args, kwargs)
}

func (d *Descriptor) String() string {
	return "<descriptor " + d.name + ">"
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
