package nload

import (
	"encoding/json"
	"math"

	"github.com/muir/nlet"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
)

const (
	refKey = "$ref"
	newKey = "$new"
	nsKey  = "$ns"
)

// JSONC reads a namespace from a JSON object.  Comments and trailing
// commas are allowed.  Integers decode as int.
func JSONC(name string, data []byte, opts ...Option) (*nlet.Namespace, error) {
	o := makeOptions(opts)
	var root map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &root); err != nil {
		return nil, errors.Wrap(err, "parsing jsonc")
	}
	decls, err := o.jsonObject(root)
	if err != nil {
		return nil, err
	}
	return o.define(name, decls)
}

func (o options) jsonObject(object map[string]json.RawMessage) (nlet.Declarations, error) {
	decls := make(nlet.Declarations, len(object))
	for name, raw := range object {
		decl, err := o.jsonDeclaration(name, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "declaration %s", name)
		}
		decls[name] = decl
	}
	return decls, nil
}

func (o options) jsonDeclaration(name string, raw json.RawMessage) (any, error) {
	var special map[string]json.RawMessage
	if json.Unmarshal(raw, &special) == nil && len(special) == 1 {
		for key, inner := range special {
			switch key {
			case refKey:
				var s string
				if err := json.Unmarshal(inner, &s); err != nil {
					return nil, errors.Wrapf(err, "%s needs a string", refKey)
				}
				return nlet.ParseReference(s)
			case newKey:
				var s string
				if err := json.Unmarshal(inner, &s); err != nil {
					return nil, errors.Wrapf(err, "%s needs a string", newKey)
				}
				return o.descriptor(s)
			case nsKey:
				var object map[string]json.RawMessage
				if err := json.Unmarshal(inner, &object); err != nil {
					return nil, errors.Wrapf(err, "%s needs an object", nsKey)
				}
				decls, err := o.jsonObject(object)
				if err != nil {
					return nil, err
				}
				return nlet.Define(name, decls)
			}
		}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.WithStack(err)
	}
	return integers(v), nil
}

// integers turns whole float64 values into int so that literals
// compare the way they do when loaded from YAML.
func integers(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int(x)
		}
	case []any:
		for i := range x {
			x[i] = integers(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = integers(x[k])
		}
	}
	return v
}
