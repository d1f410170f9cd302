package nlet

import (
	"sort"
)

// Namespace is an immutable set of named declarations.  A namespace
// may have one base, the namespace it was derived from, which supplies
// every name it does not declare itself.  A namespace obtained as an
// attribute of another namespace also knows that outer namespace;
// references climb outer links.
type Namespace struct {
	name  string
	label string
	decls Declarations
	base  *Namespace
	outer *Namespace
}

// Define creates a namespace.  At most one parent may be given; the
// parent becomes the base of the new namespace.
//
// Define rejects, with ErrDefinition, anything that can only fail
// later: reserved names ("let" and "c"), magic names like "__x__",
// names containing ".", descriptors that take themselves as a
// parameter, and references with an empty path.
//
// The declarations are copied.
func Define(name string, decls Declarations, parents ...*Namespace) (*Namespace, error) {
	var base *Namespace
	switch len(parents) {
	case 0:
	case 1:
		base = parents[0]
		if base == nil {
			return nil, newError(ErrDefinition, name, "", "nil parent namespace")
		}
	default:
		return nil, newError(ErrDefinition, name, "", "multiple inheritance is not allowed: %d parents given", len(parents))
	}
	if err := validateDeclarations(name, decls); err != nil {
		return nil, err
	}
	ns := &Namespace{
		name:  name,
		decls: make(Declarations, len(decls)),
		base:  base,
	}
	for k, v := range decls {
		ns.decls[k] = v
	}
	if base != nil {
		ns.outer = base.outer
		ns.label = base.label
	}
	debugf("defined %s with %d declarations", ns, len(decls))
	return ns, nil
}

// MustDefine calls Define and panics on error
func MustDefine(name string, decls Declarations, parents ...*Namespace) *Namespace {
	ns, err := Define(name, decls, parents...)
	if err != nil {
		panic(err)
	}
	return ns
}

// Let produces a new namespace where decls override the declarations
// of ns.  ns itself is not modified and can be the base of any number
// of derived namespaces.
func (ns *Namespace) Let(decls Declarations) (*Namespace, error) {
	return Define(ns.name, decls, ns)
}

// MustLet calls Let and panics on error
func (ns *Namespace) MustLet(decls Declarations) *Namespace {
	child, err := ns.Let(decls)
	if err != nil {
		panic(err)
	}
	return child
}

// Name returns the name given to Define.
func (ns *Namespace) Name() string { return ns.name }

// Base returns the namespace ns was derived from, or nil.
func (ns *Namespace) Base() *Namespace { return ns.base }

// Outer returns the namespace ns was resolved from, or nil.
func (ns *Namespace) Outer() *Namespace { return ns.outer }

// Has reports whether name is declared in ns or its base chain.  The
// reserved accessors are always present.
func (ns *Namespace) Has(name string) bool {
	if _, ok := reservedNames[name]; ok {
		return true
	}
	_, ok := ns.lookup(name)
	return ok
}

// Names lists, sorted, every name declared in ns or its base chain.
func (ns *Namespace) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for b := ns; b != nil; b = b.base {
		for name := range b.decls {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Declaration returns the raw declaration for name, without resolving it.
func (ns *Namespace) Declaration(name string) (any, bool) {
	return ns.lookup(name)
}

func (ns *Namespace) String() string {
	if ns.label != "" {
		return ns.label
	}
	if ns.name == "" {
		return "<namespace>"
	}
	return ns.name
}

// lookup finds the raw declaration locally, then along the base chain.
func (ns *Namespace) lookup(name string) (any, bool) {
	for b := ns; b != nil; b = b.base {
		if decl, ok := b.decls[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

// within returns a view of ns enclosed by outer.  The view shares
// declarations and base with ns.
func (ns *Namespace) within(outer *Namespace, attr string) *Namespace {
	view := *ns
	view.outer = outer
	view.label = outer.String() + "." + attr
	return &view
}
