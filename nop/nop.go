/*
Package nop turns plain functions into nlet descriptors whose instances
are deferred calls.

	send := nop.Must("SendEmail", sendEmail, "mailer", "to", "body")
	ns := nlet.MustDefine("signup", nlet.Declarations{
		"mailer": nlet.MustFunc("NewMailer", NewMailer, nlet.Arg("smtp")),
		"send":   send,
		...
	})
	op, err := nlet.Resolve[*nop.Operation](ns, "send")
	result, err := op.Call()

Resolving the name gathers the arguments.  Nothing runs until Call.
*/
package nop

import (
	"fmt"
	"reflect"

	"github.com/muir/nlet"
	"github.com/pkg/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Operation is a function bound to its arguments.
type Operation struct {
	name string
	fn   reflect.Value
	in   []reflect.Value
}

// New creates a descriptor from fn.  params name the inputs of fn in
// order.  When fn is variadic the last name collects the extra
// arguments.  fn may return nothing, T, error, or (T, error).
func New(name string, fn any, params ...string) (*nlet.Descriptor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() {
		return nil, definitionError(name, "nil function")
	}
	t := v.Type()
	if t.Kind() == reflect.Struct || t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		return nil, definitionError(name, "%s is a struct type, use nlet.Struct instead", t)
	}
	if t.Kind() != reflect.Func {
		return nil, definitionError(name, "%s is not a function", t)
	}
	if t.NumIn() != len(params) {
		return nil, definitionError(name, "%s takes %d inputs but %d names were given", t, t.NumIn(), len(params))
	}
	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, definitionError(name, "%s must return nothing, T, error, or (T, error)", t)
	}
	sig := make([]nlet.Param, len(params))
	for i, p := range params {
		sig[i] = nlet.Arg(p)
	}
	if t.IsVariadic() {
		sig[len(sig)-1] = nlet.VarArgs(params[len(params)-1])
	}
	op := func(args []any, _ map[string]any) (any, error) {
		in, err := bind(t, params, args)
		if err != nil {
			return nil, err
		}
		return &Operation{
			name: name,
			fn:   v,
			in:   in,
		}, nil
	}
	return nlet.Constructor(name, op, sig...)
}

func definitionError(name, format string, args ...any) error {
	return errors.Wrapf(nlet.ErrDefinition, "nop %s: "+format, append([]any{name}, args...)...)
}

// Must calls New and panics on error
func Must(name string, fn any, params ...string) *nlet.Descriptor {
	d, err := New(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return d
}

func bind(t reflect.Type, params []string, args []any) ([]reflect.Value, error) {
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed {
		return nil, errors.Errorf("%d arguments given but %d are required", len(args), fixed)
	}
	if !t.IsVariadic() && len(args) > fixed {
		return nil, errors.Errorf("%d arguments given but only %d used", len(args), fixed)
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var it reflect.Type
		var pname string
		if i < fixed {
			it = t.In(i)
			pname = params[i]
		} else {
			it = t.In(fixed).Elem()
			pname = fmt.Sprintf("%s[%d]", params[fixed], i-fixed)
		}
		rv, err := nlet.Convert(arg, it)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", pname)
		}
		in[i] = rv
	}
	return in, nil
}

// Call invokes the function.  Functions that return nothing give
// (nil, nil); functions that return only an error give (nil, err).
func (o *Operation) Call() (any, error) {
	out := o.fn.Call(o.in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if o.fn.Type().Out(0) == errorType {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		if !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

// Name returns the name the operation was created with.
func (o *Operation) Name() string { return o.name }

func (o *Operation) String() string {
	return "<Operation[" + o.name + "] object>"
}
