package nview

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/muir/nlet"
	"github.com/pkg/errors"
)

// Methods lists, in dispatch order, the names that are treated as
// HTTP verbs.
var Methods = []string{"get", "post", "put", "patch", "delete", "head", "options", "trace"}

// AsViewName is declared by View and FormView.
const AsViewName = "as_view"

// Request is what "request" resolves to during a request.
type Request struct {
	*http.Request
	// Vars are the gorilla/mux route variables
	Vars map[string]string
	// User is set by the authenticator, if any
	User any
}

type handler struct {
	ns      *nlet.Namespace
	methods map[string]struct{}
	allow   string
	form    *formSpec
	o       options
}

var _ http.Handler = &handler{}

// Handler creates an http.Handler for every verb in Methods that ns
// declares.  It is an error for ns to declare none.
func Handler(ns *nlet.Namespace, opts ...Option) (http.Handler, error) {
	h, err := newHandler(ns, nil, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// View returns ns extended with "as_view", the handler that Handler
// would return.
func View(ns *nlet.Namespace, opts ...Option) (*nlet.Namespace, error) {
	h, err := Handler(ns, opts...)
	if err != nil {
		return nil, err
	}
	return ns.Let(nlet.Declarations{AsViewName: h})
}

// Register adds a route for path to router that accepts only the verbs
// ns declares.  When ns declares form_cls the route is a form view.
func Register(router *mux.Router, path string, ns *nlet.Namespace, opts ...Option) (*mux.Route, error) {
	var h *handler
	var err error
	if ns.Has(FormClassName) {
		h, err = newFormHandler(ns, opts)
	} else {
		h, err = newHandler(ns, nil, opts)
	}
	if err != nil {
		return nil, err
	}
	return router.Handle(path, h).Methods(h.verbs()...), nil
}

func newHandler(ns *nlet.Namespace, form *formSpec, opts []Option) (*handler, error) {
	h := &handler{
		ns:      ns,
		methods: make(map[string]struct{}),
		form:    form,
		o:       makeOptions(opts),
	}
	for _, m := range Methods {
		if ns.Has(m) || form != nil && (m == "post" || m == "put") {
			h.methods[m] = struct{}{}
		}
	}
	if len(h.methods) == 0 {
		return nil, errors.Errorf("%s declares none of %s", ns, strings.Join(Methods, ", "))
	}
	h.allow = strings.Join(h.verbs(), ", ")
	return h, nil
}

// verbs lists the accepted methods, upper-cased, in Methods order.
func (h *handler) verbs() []string {
	verbs := make([]string, 0, len(h.methods))
	for _, m := range Methods {
		if _, ok := h.methods[m]; ok {
			verbs = append(verbs, strings.ToUpper(m))
		}
	}
	return verbs
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tw := &writer{ResponseWriter: w}
	model, err := h.serve(tw, r)
	h.respond(tw, r, model, err)
}

func (h *handler) serve(w *writer, r *http.Request) (model any, err error) {
	defer setErrorOnPanic(&err, h.o.log)
	verb := strings.ToLower(r.Method)
	if _, ok := h.methods[verb]; !ok {
		w.Header().Set("Allow", h.allow)
		return nil, ReturnCode(errors.Errorf("method %s is not allowed", r.Method), http.StatusMethodNotAllowed)
	}
	h.o.log.Debug("Dispatching request", "namespace", h.ns.String(), "method", r.Method, "uri", r.URL.String())
	if h.form != nil && (verb == "post" || verb == "put") && !h.ns.Has(verb) {
		return h.form.process(h, w, r)
	}
	ns, err := h.requestNamespace(w, r, nil)
	if err != nil {
		return nil, err
	}
	model, err = ns.Resolve(verb)
	if err != nil {
		return nil, err
	}
	return call(model)
}

// requestNamespace extends the namespace with the request.
func (h *handler) requestNamespace(w http.ResponseWriter, r *http.Request, extra nlet.Declarations) (*nlet.Namespace, error) {
	var user any
	if h.o.authenticate != nil {
		var err error
		user, err = h.o.authenticate(r)
		if err != nil {
			if GetReturnCode(err) == http.StatusInternalServerError {
				err = Unauthorized(err)
			}
			return nil, err
		}
	}
	vars := mux.Vars(r)
	if vars == nil {
		vars = map[string]string{}
	}
	decls := nlet.Declarations{
		"view":     h,
		"request":  &Request{Request: r, Vars: vars, User: user},
		"response": w,
		"args":     routeArgs(r, vars),
		"kwargs":   vars,
		"user":     nlet.This.Get("request", "User"),
	}
	for k, v := range extra {
		decls[k] = v
	}
	return h.ns.Let(decls)
}

// routeArgs orders the route variables the way they appear in the
// route template.
func routeArgs(r *http.Request, vars map[string]string) []string {
	args := []string{}
	route := mux.CurrentRoute(r)
	if route == nil {
		return args
	}
	names, err := route.GetVarNames()
	if err != nil {
		return args
	}
	for _, name := range names {
		if v, ok := vars[name]; ok {
			args = append(args, v)
		}
	}
	return args
}
