package nlet

import (
	"fmt"
	"strings"
)

// Reference is a deferred declaration: it names an attribute path to be
// resolved, when read, starting some number of outer namespaces up
// from the namespace where the reference is resolved.
//
// References are built from This:
//
//	nlet.This.Get("foo")             // foo in the same namespace
//	nlet.This.Up(1).Get("foo")       // foo in the enclosing namespace
//	nlet.This.Get("request", "User") // the User attribute of request
type Reference struct {
	up   int
	path []string
}

// This is the root reference.  It must be extended with Get before it
// can be declared.
var This = Reference{}

// Up returns a reference that starts n more namespaces up.
func (r Reference) Up(n int) Reference {
	if n < 0 {
		panic(fmt.Sprintf("nlet: negative ascent %d", n))
	}
	return Reference{up: r.up + n, path: r.path}
}

// Get returns a reference with names appended to its path.
func (r Reference) Get(names ...string) Reference {
	path := make([]string, 0, len(r.path)+len(names))
	path = append(path, r.path...)
	path = append(path, names...)
	return Reference{up: r.up, path: path}
}

// Ascent is the number of outer namespaces to climb.
func (r Reference) Ascent() int { return r.up }

// Path returns a copy of the attribute path.
func (r Reference) Path() []string {
	return append([]string(nil), r.path...)
}

func (r Reference) String() string {
	var b strings.Builder
	if r.up == 0 {
		b.WriteString("this")
	} else {
		fmt.Fprintf(&b, "(this << %d)", r.up)
	}
	for _, p := range r.path {
		b.WriteString(".")
		b.WriteString(p)
	}
	return b.String()
}

// ParseReference reads the textual form of a reference: one '^' per
// namespace to climb, followed by a dot-separated path.  "^^foo.bar" is
// This.Up(2).Get("foo", "bar").
func ParseReference(s string) (Reference, error) {
	trimmed := strings.TrimLeft(s, "^")
	r := This.Up(len(s) - len(trimmed))
	if trimmed == "" {
		return Reference{}, newError(ErrDefinition, "", s, "reference %q has an empty path", s)
	}
	parts := strings.Split(trimmed, ".")
	for _, p := range parts {
		if p == "" {
			return Reference{}, newError(ErrDefinition, "", s, "reference %q has an empty path element", s)
		}
	}
	return r.Get(parts...), nil
}

// MustParseReference calls ParseReference and panics on error
func MustParseReference(s string) Reference {
	r, err := ParseReference(s)
	if err != nil {
		panic(err)
	}
	return r
}

// resolveIn climbs r.up outer links from ns, resolves the first path
// element there, and walks the remaining elements as attributes of the
// values found.
func (r Reference) resolveIn(res *resolution, ns *Namespace) (any, error) {
	target := ns
	for i := 0; i < r.up; i++ {
		if target.outer == nil {
			return nil, res.fail(newError(ErrNotFound, ns.name, r.String(),
				"%s climbs %d namespaces but only %d enclose %s", r, r.up, i, ns))
		}
		target = target.outer
	}
	debugf("reference %s from %s starts at %s", r, ns, target)
	return target.lookupPath(res, r.path)
}
