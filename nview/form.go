package nview

import (
	"net/http"
	"net/url"
	"reflect"

	"github.com/muir/nlet"
	"github.com/muir/reflectutils"
	"github.com/pkg/errors"
)

// Names used by form views.
const (
	FormClassName   = "form_cls"
	FormValidName   = "form_valid"
	FormInvalidName = "form_invalid"
	SuccessURLName  = "success_url"
	FormName        = "form"
	FormErrorName   = "form_error"
)

// Validator may be implemented by forms.  A non-nil error makes the
// form invalid.
type Validator interface {
	Validate() error
}

type formField struct {
	name   string
	index  []int
	setter func(reflect.Value, string) error
}

type formSpec struct {
	typ        reflect.Type
	pointer    bool
	fields     []formField
	successURL string
}

// FormHandler is Handler with form processing.  ns must declare
// form_cls, a descriptor whose type is a struct or a pointer to one.
// Fields tagged `form:"name"` are filled from the request form.
//
// POST and PUT, unless ns declares them itself, decode the form and
// then resolve form_valid, or form_invalid if decoding or Validate
// failed, with form and form_error declared.  If form_valid is not
// declared or resolves to nil and ns declares success_url, the
// response redirects there with 303.  An invalid form without
// form_invalid is answered with 400.
func FormHandler(ns *nlet.Namespace, opts ...Option) (http.Handler, error) {
	h, err := newFormHandler(ns, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// FormView returns ns extended with "as_view", the handler that
// FormHandler would return.
func FormView(ns *nlet.Namespace, opts ...Option) (*nlet.Namespace, error) {
	h, err := FormHandler(ns, opts...)
	if err != nil {
		return nil, err
	}
	return ns.Let(nlet.Declarations{AsViewName: h})
}

func newFormHandler(ns *nlet.Namespace, opts []Option) (*handler, error) {
	d, err := nlet.Resolve[*nlet.Descriptor](ns, FormClassName)
	if err != nil {
		return nil, errors.Wrapf(err, "form view %s", ns)
	}
	if d == nil {
		return nil, errors.Errorf("form view %s: %s is nil", ns, FormClassName)
	}
	form, err := inspectForm(d)
	if err != nil {
		return nil, errors.Wrapf(err, "form view %s", ns)
	}
	if ns.Has(SuccessURLName) {
		form.successURL, err = nlet.Resolve[string](ns, SuccessURLName)
		if err != nil {
			return nil, errors.Wrapf(err, "form view %s", ns)
		}
	}
	return newHandler(ns, form, opts)
}

func inspectForm(d *nlet.Descriptor) (*formSpec, error) {
	t := d.Type()
	if t == nil {
		return nil, errors.Errorf("%s has no type", d)
	}
	form := &formSpec{}
	if t.Kind() == reflect.Ptr {
		form.pointer = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("%s builds %s, not a struct", d, d.Type())
	}
	form.typ = t
	var firstErr error
	reflectutils.WalkStructElements(t, func(f reflect.StructField) bool {
		name, ok := f.Tag.Lookup("form")
		if !ok || name == "-" || firstErr != nil {
			return f.Anonymous && f.Type.Kind() == reflect.Struct
		}
		if name == "" {
			name = f.Name
		}
		setter, err := reflectutils.MakeStringSetter(f.Type)
		if err != nil {
			firstErr = errors.Wrapf(err, "form field %s", f.Name)
			return false
		}
		form.fields = append(form.fields, formField{
			name:   name,
			index:  f.Index,
			setter: setter,
		})
		return false
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return form, nil
}

// decode fills a new form.  The form is returned even when it does
// not validate.
func (f *formSpec) decode(values url.Values) (any, error) {
	v := reflect.New(f.typ)
	var decodeErr error
	for _, field := range f.fields {
		s, ok := values[field.name]
		if !ok || len(s) == 0 {
			continue
		}
		if err := field.setter(v.Elem().FieldByIndex(field.index), s[0]); err != nil && decodeErr == nil {
			decodeErr = errors.Wrapf(err, "field %s", field.name)
		}
	}
	if decodeErr == nil {
		if validator, ok := v.Interface().(Validator); ok {
			decodeErr = validator.Validate()
		}
	}
	if f.pointer {
		return v.Interface(), decodeErr
	}
	return v.Elem().Interface(), decodeErr
}

func (f *formSpec) process(h *handler, w *writer, r *http.Request) (any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, BadRequest(errors.Wrap(err, "parse form"))
	}
	form, formErr := f.decode(r.Form)
	ns, err := h.requestNamespace(w, r, nlet.Declarations{
		FormName:      form,
		FormErrorName: formErr,
	})
	if err != nil {
		return nil, err
	}
	name := FormValidName
	if formErr != nil {
		name = FormInvalidName
	}
	if !ns.Has(name) {
		if formErr != nil {
			return nil, BadRequest(formErr)
		}
		return f.redirect(), nil
	}
	model, err := ns.Resolve(name)
	if err != nil {
		return nil, err
	}
	model, err = call(model)
	if err == nil && model == nil && formErr == nil {
		return f.redirect(), nil
	}
	return model, err
}

// redirect is nil when there is no success_url.
func (f *formSpec) redirect() any {
	if f.successURL == "" {
		return nil
	}
	return http.RedirectHandler(f.successURL, http.StatusSeeOther)
}
