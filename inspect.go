package nlet

import (
	"reflect"
	"strings"

	"github.com/muir/reflectutils"
	"github.com/pkg/errors"
)

const tagName = "nlet"

// Initializer may be implemented by the pointer type of a struct used
// with Struct.  Init is called after the tagged fields are filled.
type Initializer interface {
	Init() error
}

var initializerType = reflect.TypeOf((*Initializer)(nil)).Elem()

type structField struct {
	param Param
	index []int
	typ   reflect.Type
}

// Inspect derives a Signature from a struct type.  model may be a struct,
// a pointer to a struct, or the reflect.Type of either.
//
// Tagged fields are parameters, in field order, including the fields of
// embedded structs and embedded pointers to structs:
//
//	type Server struct {
//		Addr    string            `nlet:"addr"`
//		Timeout int               `nlet:"timeout,default=30"`
//		Extra   []string          `nlet:"extra,args"`
//		Options map[string]string `nlet:"options,kwargs"`
//	}
//
// A tag with an empty name uses the field name.
func Inspect(model any) (Signature, error) {
	t, _, err := modelType(model)
	if err != nil {
		return nil, err
	}
	fields, err := inspectStruct(t)
	if err != nil {
		return nil, err
	}
	sig := make(Signature, len(fields))
	for i, f := range fields {
		sig[i] = f.param
	}
	return sig, nil
}

func modelType(model any) (reflect.Type, bool, error) {
	t, ok := model.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(model)
	}
	if t == nil {
		return nil, false, newError(ErrDefinition, "", "", "nil is not a struct model")
	}
	var pointer bool
	if t.Kind() == reflect.Ptr {
		pointer = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false, newError(ErrDefinition, "", "", "%s is not a struct", t)
	}
	return t, pointer, nil
}

func inspectStruct(t reflect.Type) ([]structField, error) {
	return inspectEmbedded(t, map[reflect.Type]bool{t: true})
}

// inspectEmbedded follows embedded structs and embedded pointers to
// structs.  A pointer embedding of a type already being walked is not
// followed again.
func inspectEmbedded(t reflect.Type, walking map[reflect.Type]bool) ([]structField, error) {
	var fields []structField
	var firstErr error
	fail := func(format string, args ...any) bool {
		firstErr = newError(ErrDefinition, "", reflectutils.TypeName(t), format, args...)
		return false
	}
	reflectutils.WalkStructElements(t, func(f reflect.StructField) bool {
		if firstErr != nil {
			return false
		}
		tag, ok := f.Tag.Lookup(tagName)
		if tag == "-" {
			return false
		}
		if !ok {
			if !f.Anonymous {
				return false
			}
			if e, ok := embeddedPointer(f.Type); ok && !walking[e] {
				walking[e] = true
				inner, err := inspectEmbedded(e, walking)
				delete(walking, e)
				if err != nil {
					firstErr = err
					return false
				}
				if len(inner) > 0 && f.PkgPath != "" {
					return fail("%s.%s is an unexported pointer embedding with tagged fields", t, f.Name)
				}
				for _, sf := range inner {
					sf.index = append(append([]int{}, f.Index...), sf.index...)
					fields = append(fields, sf)
				}
				return false
			}
			return f.Type.Kind() == reflect.Struct
		}
		if f.PkgPath != "" {
			return fail("%s.%s is tagged but not exported", t, f.Name)
		}
		parts := strings.Split(tag, ",")
		p := Param{Name: parts[0]}
		if p.Name == "" {
			p.Name = f.Name
		}
		for _, opt := range parts[1:] {
			switch {
			case opt == "args":
				if f.Type.Kind() != reflect.Slice {
					return fail("%s.%s must be a slice to collect args", t, f.Name)
				}
				p.Kind = VarPositional
			case opt == "kwargs":
				if f.Type.Kind() != reflect.Map || f.Type.Key().Kind() != reflect.String {
					return fail("%s.%s must be a map with string keys to collect kwargs", t, f.Name)
				}
				p.Kind = VarKeyword
			case strings.HasPrefix(opt, "default="):
				setter, err := reflectutils.MakeStringSetter(f.Type)
				if err != nil {
					return fail("%s.%s default: %s", t, f.Name, err)
				}
				dv := reflect.New(f.Type).Elem()
				if err := setter(dv, strings.TrimPrefix(opt, "default=")); err != nil {
					return fail("%s.%s default: %s", t, f.Name, err)
				}
				p.Default = dv.Interface()
				p.HasDefault = true
			default:
				return fail("%s.%s has unknown option %q", t, f.Name, opt)
			}
		}
		fields = append(fields, structField{
			param: p,
			index: f.Index,
			typ:   f.Type,
		})
		return false
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return fields, nil
}

func embeddedPointer(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		return t.Elem(), true
	}
	return nil, false
}

// settableField is FieldByIndex that allocates nil embedded pointers
// along the way.
func settableField(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// allocEmbedded gives every nil embedded pointer to a struct a zero
// value so that promoted methods can be called.
func allocEmbedded(v reflect.Value, walking map[reflect.Type]bool) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.Anonymous {
			continue
		}
		fv := v.Field(i)
		switch {
		case f.Type.Kind() == reflect.Struct:
			allocEmbedded(fv, walking)
		case f.Type.Kind() == reflect.Ptr && f.Type.Elem().Kind() == reflect.Struct && !walking[f.Type.Elem()]:
			if fv.IsNil() {
				if !fv.CanSet() {
					continue
				}
				fv.Set(reflect.New(f.Type.Elem()))
			}
			walking[f.Type.Elem()] = true
			allocEmbedded(fv.Elem(), walking)
			delete(walking, f.Type.Elem())
		}
	}
}

// Struct creates a Descriptor that fills a new struct from the
// parameters found by Inspect.  When model is a pointer (or a pointer
// type), instances are pointers.  If the pointer type implements
// Initializer, Init is called once the fields are set.
//
// A struct with no tagged fields anywhere in its embedding chain and no
// Init method is a no-op descriptor: it has an empty signature and its
// instances are plain zero values.  Embedded pointers leading to tagged
// fields are allocated when an instance is built.
func Struct(model any) (*Descriptor, error) {
	t, pointer, err := modelType(model)
	if err != nil {
		return nil, err
	}
	name := reflectutils.TypeName(t)
	fields, err := inspectStruct(t)
	if err != nil {
		return nil, err
	}
	sig := make(Signature, len(fields))
	for i, f := range fields {
		sig[i] = f.param
	}
	if err := validateSignature(name, sig); err != nil {
		return nil, err
	}
	hasInit := reflect.PtrTo(t).Implements(initializerType)
	finish := func(v reflect.Value) (any, error) {
		if hasInit {
			allocEmbedded(v, map[reflect.Type]bool{t: true})
			if err := v.Addr().Interface().(Initializer).Init(); err != nil {
				return nil, err
			}
		}
		if pointer {
			return v.Addr().Interface(), nil
		}
		return v.Interface(), nil
	}
	d := &Descriptor{
		name:   name,
		params: sig,
		typ:    t,
	}
	if pointer {
		d.typ = reflect.PtrTo(t)
	}
	if len(fields) == 0 {
		d.noop = !hasInit
		d.build = func(_ []any, _ map[string]any) (any, error) {
			return finish(reflect.New(t).Elem())
		}
		return d, nil
	}
	d.build = func(args []any, kwargs map[string]any) (any, error) {
		v := reflect.New(t).Elem()
		var used int
		for _, f := range fields {
			dst := settableField(v, f.index)
			switch f.param.Kind {
			case Positional:
				if used >= len(args) {
					return nil, errors.Errorf("missing argument %s", f.param.Name)
				}
				rv, err := Convert(args[used], f.typ)
				if err != nil {
					return nil, errors.Wrapf(err, "argument %s", f.param.Name)
				}
				dst.Set(rv)
				used++
			case VarPositional:
				rv, err := Convert(args[used:], f.typ)
				if err != nil {
					return nil, errors.Wrapf(err, "argument %s", f.param.Name)
				}
				dst.Set(rv)
				used = len(args)
			case VarKeyword:
				rv, err := convertMapping(kwargs, f.typ)
				if err != nil {
					return nil, errors.Wrapf(err, "argument %s", f.param.Name)
				}
				dst.Set(rv)
			}
		}
		if used < len(args) {
			return nil, errors.Errorf("%d arguments given but only %d used", len(args), used)
		}
		return finish(v)
	}
	return d, nil
}

// MustStruct calls Struct and panics on error
func MustStruct(model any) *Descriptor {
	d, err := Struct(model)
	if err != nil {
		panic(err)
	}
	return d
}
