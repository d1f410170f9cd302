package nlet

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// maxDepth bounds the resolution stack.  Cycles through freshly bound
// nested namespaces are not caught by the frame check and end here.
const maxDepth = 1024

type frame struct {
	ns   *Namespace
	name string
}

type resolution struct {
	stack []frame
}

func newResolution() *resolution {
	return &resolution{}
}

func (r *resolution) chain() []string {
	chain := make([]string, len(r.stack))
	for i, f := range r.stack {
		chain[i] = f.name
	}
	return chain
}

func (r *resolution) fail(err *DependencyError) *DependencyError {
	if err.Chain == nil {
		err.Chain = r.chain()
	}
	return err
}

func (r *resolution) push(ns *Namespace, name string) error {
	for _, f := range r.stack {
		if f.ns == ns && f.name == name {
			err := newError(ErrCircular, ns.String(), name, "%q depends on itself", name)
			err.Chain = append(r.chain(), name)
			return err
		}
	}
	if len(r.stack) >= maxDepth {
		err := newError(ErrCircular, ns.String(), name, "resolution of %q is more than %d levels deep", name, maxDepth)
		err.Chain = r.chain()
		return err
	}
	r.stack = append(r.stack, frame{ns: ns, name: name})
	return nil
}

func (r *resolution) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

// Resolve returns the value of name: literals as declared, nested
// namespaces enclosed by ns, references followed, and descriptors
// instantiated after resolving each of their parameters in ns.
// Every call recomputes the full object graph.
func (ns *Namespace) Resolve(name string) (any, error) {
	return ns.Lookup(name)
}

// Lookup resolves path[0] in ns and each following element as an
// attribute of the previous value.
func (ns *Namespace) Lookup(path ...string) (any, error) {
	if len(path) == 0 {
		return nil, newError(ErrNotFound, ns.String(), "", "empty path")
	}
	v, err := ns.lookupPath(newResolution(), path)
	if err != nil {
		var de *DependencyError
		if errors.As(err, &de) && de.replay == nil {
			path := append([]string(nil), path...)
			de.replay = func() string {
				return captureResolveDebugging(ns, path)
			}
		}
		return nil, err
	}
	return v, nil
}

// Resolve is a generic helper that resolves name and converts the
// result to T:
//
//	db, err := nlet.Resolve[*Database](ns, "db")
//
// A nil value gives the zero T when T is nillable.
func Resolve[T any](ns *Namespace, name string) (T, error) {
	var zero T
	v, err := ns.Resolve(name)
	if err != nil {
		return zero, err
	}
	if out, ok := v.(T); ok {
		return out, nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	rv, err := Convert(v, t)
	if err != nil {
		return zero, newError(ErrConstruction, ns.String(), name, "%q cannot be used as %s", name, t).withCause(err)
	}
	if !rv.IsValid() {
		return zero, nil
	}
	out, _ := rv.Interface().(T)
	return out, nil
}

func (ns *Namespace) lookupPath(res *resolution, path []string) (any, error) {
	debugln("lookup", ns.String(), strings.Join(path, "."))
	v, err := ns.resolve(res, path[0])
	if err != nil {
		return nil, err
	}
	for _, name := range path[1:] {
		v, err = attribute(res, ns, v, name)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (ns *Namespace) resolve(res *resolution, name string) (any, error) {
	switch name {
	case SelfName:
		return ns, nil
	case LetName:
		return LetFunc(ns.Let), nil
	}
	decl, ok := ns.lookup(name)
	if !ok {
		debugf("%s: %s not found", ns, name)
		return nil, res.fail(newError(ErrNotFound, ns.String(), name, "%s has no attribute %q", ns, name))
	}
	if err := res.push(ns, name); err != nil {
		return nil, err
	}
	defer res.pop()
	switch d := decl.(type) {
	case *Namespace:
		debugf("%s: %s is a nested namespace", ns, name)
		return d.within(ns, name), nil
	case Reference:
		return d.resolveIn(res, ns)
	case *Descriptor:
		if strings.HasSuffix(name, ClassSuffix) {
			debugf("%s: %s is returned unconstructed", ns, name)
			return d, nil
		}
		return ns.construct(res, name, d)
	default:
		debugf("%s: %s is a literal %T", ns, name, decl)
		return decl, nil
	}
}

// construct resolves the parameters of d in ns and builds an instance.
func (ns *Namespace) construct(res *resolution, name string, d *Descriptor) (any, error) {
	var args []any
	var kwargs map[string]any
	if d.noop || len(d.params) == 0 {
		debugf("%s: building %s for %s with no arguments", ns, d.name, name)
		return ns.build(res, name, d, nil, nil)
	}
	for _, p := range d.params {
		declared := ns.Has(p.Name)
		switch p.Kind {
		case Positional:
			v, err := ns.resolve(res, p.Name)
			if err != nil {
				if p.HasDefault && errors.Is(err, ErrNotFound) {
					debugf("%s: %s uses the default %s: %s", ns, d.name, p, err)
					args = append(args, p.Default)
					continue
				}
				return nil, inDescriptor(err, d)
			}
			args = append(args, v)
		case VarPositional:
			if !declared {
				continue
			}
			v, err := ns.resolve(res, p.Name)
			if err != nil {
				return nil, inDescriptor(err, d)
			}
			seq, err := asSequence(v)
			if err != nil {
				return nil, res.fail(newError(ErrConstruction, ns.String(), p.Name,
					"%s: %s", d.name, p).withCause(err).inDescriptor(d))
			}
			args = append(args, seq...)
		case VarKeyword:
			if !declared {
				continue
			}
			v, err := ns.resolve(res, p.Name)
			if err != nil {
				return nil, inDescriptor(err, d)
			}
			m, err := asMapping(v)
			if err != nil {
				return nil, res.fail(newError(ErrConstruction, ns.String(), p.Name,
					"%s: %s", d.name, p).withCause(err).inDescriptor(d))
			}
			kwargs = m
		}
	}
	debugf("%s: building %s for %s with %d arguments and %d keywords", ns, d.name, name, len(args), len(kwargs))
	return ns.build(res, name, d, args, kwargs)
}

func (ns *Namespace) build(res *resolution, name string, d *Descriptor, args []any, kwargs map[string]any) (any, error) {
	v, err := d.build(args, kwargs)
	if err != nil {
		return nil, res.fail(newError(ErrConstruction, ns.String(), name,
			"building %q with %s", name, d.name).withCause(err).inDescriptor(d))
	}
	return v, nil
}

func inDescriptor(err error, d *Descriptor) error {
	var de *DependencyError
	if errors.As(err, &de) {
		de.inDescriptor(d)
	}
	return err
}
