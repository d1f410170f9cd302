package nlet

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// attribute reads name from a resolved value.  Namespaces resolve
// the name; maps with string keys are indexed; otherwise a method
// without arguments or an exported field is used.  Lower-case names
// are retried with the first letter upper-cased.
func attribute(res *resolution, from *Namespace, value any, name string) (any, error) {
	if ns, ok := value.(*Namespace); ok {
		return ns.resolve(res, name)
	}
	if value != nil {
		v := reflect.ValueOf(value)
		for _, candidate := range attributeNames(name) {
			found, out, err := attributeOf(v, candidate)
			if err != nil {
				return nil, res.fail(newError(ErrConstruction, from.String(), name,
					"%T.%s", value, candidate).withCause(err))
			}
			if found {
				return out, nil
			}
		}
	}
	return nil, res.fail(newError(ErrNotFound, from.String(), name, "%T has no attribute %q", value, name))
}

func attributeNames(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if !unicode.IsLower(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}

func attributeOf(v reflect.Value, name string) (bool, any, error) {
	if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String {
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			return false, nil, nil
		}
		return true, e.Interface(), nil
	}
	if m := v.MethodByName(name); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 0 && (mt.NumOut() == 1 || mt.NumOut() == 2 && mt.Out(1) == errorType) {
			out := m.Call(nil)
			if len(out) == 2 && !out[1].IsNil() {
				return true, nil, out[1].Interface().(error)
			}
			return true, out[0].Interface(), nil
		}
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false, nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false, nil, nil
	}
	f, ok := v.Type().FieldByName(name)
	if !ok || f.PkgPath != "" {
		return false, nil, nil
	}
	fv, err := v.FieldByIndexErr(f.Index)
	if err != nil {
		return false, nil, nil
	}
	return true, fv.Interface(), nil
}
