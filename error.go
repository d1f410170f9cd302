package nlet

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrDefinition is the kind of every error returned while a namespace
	// or descriptor is being defined: reserved or malformed names, more than
	// one parent, direct self-reference, and invalid signatures.
	ErrDefinition = errors.New("invalid definition")

	// ErrNotFound is the kind of resolution errors where a name, a
	// required constructor parameter, an ancestor, or an attribute
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCircular is the kind of resolution errors where a name depends,
	// possibly through other names, on itself.
	ErrCircular = errors.New("circular dependency")

	// ErrConstruction is the kind of resolution errors where a descriptor
	// could not build its instance.
	ErrConstruction = errors.New("construction failed")
)

// DependencyError is the only error type returned by this package.
// Use errors.Is with ErrDefinition, ErrNotFound, ErrCircular, or
// ErrConstruction to distinguish the conditions.
type DependencyError struct {
	// Kind is one of the Err* sentinels above
	Kind error
	// Name is the offending declaration or parameter name
	Name string
	// Namespace is the name of the namespace the request was made against
	Namespace string
	// Descriptor is set when a constructible descriptor was involved
	Descriptor string
	// Chain is the stack of names being resolved when the error happened
	Chain []string

	msg    string
	cause  error
	replay func() string
}

func newError(kind error, namespace string, name string, format string, args ...any) *DependencyError {
	return &DependencyError{
		Kind:      kind,
		Name:      name,
		Namespace: namespace,
		msg:       fmt.Sprintf(format, args...),
	}
}

func (e *DependencyError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(": ")
	b.WriteString(e.msg)
	if len(e.Chain) > 1 {
		b.WriteString(" (resolving ")
		b.WriteString(strings.Join(e.Chain, " -> "))
		b.WriteString(")")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Is matches the error kind.
func (e *DependencyError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the error produced by a failing build function, if any.
func (e *DependencyError) Unwrap() error {
	return e.cause
}

func (e *DependencyError) withCause(err error) *DependencyError {
	e.cause = err
	return e
}

func (e *DependencyError) inDescriptor(d *Descriptor) *DependencyError {
	if d != nil && e.Descriptor == "" {
		e.Descriptor = d.name
	}
	return e
}

// DetailedError transforms errors into strings.  If
// the error happens to be an error returned by Resolve()
// or something that called Resolve() then it will return
// a much more detailed error than just calling err.Error():
// the failed resolution is run again with tracing on and the
// trace is included.  Build functions run again too.
func DetailedError(err error) string {
	var de *DependencyError
	if errors.As(err, &de) && de.replay != nil {
		return err.Error() + "\n\n" + de.replay()
	}
	return err.Error()
}
