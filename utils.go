package nlet

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// Convert adapts a resolved value to the type t.  Assignable values pass
// through, numbers convert between numeric kinds when no precision is lost,
// string kinds convert to each other, and slices and maps convert
// element by element.  nil becomes the zero value of nillable types.
func Convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.Errorf("nil cannot be used as %s", t)
	}
	return convertValue(reflect.ValueOf(value), t)
}

func convertValue(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Kind() == reflect.Interface && !v.IsNil() {
		return convertValue(v.Elem(), t)
	}
	switch {
	case isNumber(v.Kind()) && isNumber(t.Kind()):
		if isFloat(v.Kind()) && !isFloat(t.Kind()) && v.Float() != math.Trunc(v.Float()) {
			return reflect.Value{}, errors.Errorf("%v cannot be used as %s without losing precision", v.Interface(), t)
		}
		return v.Convert(t), nil
	case v.Kind() == reflect.String && t.Kind() == reflect.String:
		return v.Convert(t), nil
	case (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && t.Kind() == reflect.Slice:
		n := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			e, err := convertElement(v.Index(i), t.Elem())
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "element %d", i)
			}
			n.Index(i).Set(e)
		}
		return n, nil
	case v.Kind() == reflect.Map && t.Kind() == reflect.Map:
		n := reflect.MakeMapWithSize(t, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k, err := convertElement(iter.Key(), t.Key())
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "key %v", iter.Key().Interface())
			}
			e, err := convertElement(iter.Value(), t.Elem())
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "value for %v", iter.Key().Interface())
			}
			n.SetMapIndex(k, e)
		}
		return n, nil
	}
	return reflect.Value{}, errors.Errorf("%s cannot be used as %s", v.Type(), t)
}

func convertElement(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Convert(nil, t)
		}
		v = v.Elem()
	}
	return convertValue(v, t)
}

func convertMapping(kwargs map[string]any, t reflect.Type) (reflect.Value, error) {
	if kwargs == nil {
		return reflect.MakeMap(t), nil
	}
	return convertValue(reflect.ValueOf(kwargs), t)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// asSequence spreads a slice or an array into individual values.
func asSequence(value any) ([]any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.([]any); ok {
		return s, nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, errors.Errorf("%T is not a sequence", value)
	}
	s := make([]any, v.Len())
	for i := range s {
		s[i] = v.Index(i).Interface()
	}
	return s, nil
}

// asMapping copies a map with string keys.
func asMapping(value any) (map[string]any, error) {
	if value == nil {
		return nil, nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, errors.Errorf("%T is not a mapping with string keys", value)
	}
	m := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, nil
}
