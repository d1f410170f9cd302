// Obligatory // comment

/*

Package nlet is a name based dependency injection library.  A
Namespace holds named declarations.  Asking a namespace for a name
builds the value: if the declaration is a Descriptor, each of its
parameters is itself resolved by name in the same namespace and the
descriptor is then instantiated.

Declarations

There are four kinds of declaration.

Literal values are returned as they are.

Descriptors (*Descriptor) are recipes.  They are created from a
function with Func, from a struct type with Struct, or from a raw
build function with Constructor:

	type Database struct {
		DSN  string `nlet:"dsn"`
		Pool int    `nlet:"pool,default=4"`
	}

	ns := nlet.MustDefine("app", nlet.Declarations{
		"dsn": "postgres://localhost/app",
		"db":  nlet.MustStruct(&Database{}),
		"repo": nlet.MustFunc("NewRepo", NewRepo, nlet.Arg("db")),
	})

	repo, err := nlet.Resolve[*Repo](ns, "repo")

A parameter with a default uses it when its own resolution ends in
ErrNotFound, whether the name is missing or something it needs is.  A name ending in "_cls" returns the descriptor itself rather
than an instance.

References (Reference) point elsewhere.  They are built from This and
resolved only when read.  Up climbs to enclosing namespaces:

	nlet.This.Up(1).Get("foo")

Nested namespaces (*Namespace) can be declared inside other
namespaces.  When one is resolved, the result knows the namespace it
was resolved from, so the same nested namespace can be used in many
places and its references climb to whichever namespace contains it.

Let

Namespaces never change.  Let derives a new namespace that overrides
some declarations.  Descriptors declared in the original namespace see
the overrides when resolved from the derived one:

	test := ns.MustLet(nlet.Declarations{"dsn": "sqlite://:memory:"})

Errors

Every error is a *DependencyError.  Use errors.Is with ErrDefinition,
ErrNotFound, ErrCircular, and ErrConstruction.  DetailedError replays
a failed resolution with tracing turned on.

Reserved names

"c" resolves to the namespace itself and "let" to its Let method.  Neither
can be declared, and neither can names that start and end with "__" or
names containing ".".

*/
package nlet
