package nlet_test

import (
	"errors"
	"fmt"

	"github.com/muir/nlet"
)

type Database struct {
	DSN  string `nlet:"dsn"`
	Pool int    `nlet:"pool,default=4"`
}

type Repo struct {
	db *Database
}

func NewRepo(db *Database) *Repo {
	return &Repo{db: db}
}

// Values are built from their declarations each time they are
// requested.  Let overrides declarations without changing the
// original namespace.
func Example() {
	app := nlet.MustDefine("app", nlet.Declarations{
		"dsn":  "postgres://localhost/app",
		"db":   nlet.MustStruct(&Database{}),
		"repo": nlet.MustFunc("NewRepo", NewRepo, nlet.Arg("db")),
	})
	test := app.MustLet(nlet.Declarations{"dsn": "sqlite://:memory:", "pool": 1})

	for _, ns := range []*nlet.Namespace{app, test} {
		repo, err := nlet.Resolve[*Repo](ns, "repo")
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(repo.db.DSN, repo.db.Pool)
	}
	// Output: postgres://localhost/app 4
	// sqlite://:memory: 1
}

// Nested namespaces reach the namespace they are resolved from with Up.
func ExampleReference() {
	settings := nlet.MustDefine("Settings", nlet.Declarations{
		"url": nlet.This.Up(1).Get("host"),
	})
	prod := nlet.MustDefine("Prod", nlet.Declarations{
		"host":     "prod.example.com",
		"Settings": settings,
	})
	staging := nlet.MustDefine("Staging", nlet.Declarations{
		"host":     "staging.example.com",
		"Settings": settings,
	})
	for _, ns := range []*nlet.Namespace{prod, staging} {
		url, err := ns.Lookup("Settings", "url")
		fmt.Println(url, err)
	}
	// Output: prod.example.com <nil>
	// staging.example.com <nil>
}

func ExampleDependencyError() {
	ns := nlet.MustDefine("broken", nlet.Declarations{
		"repo": nlet.MustFunc("NewRepo", NewRepo, nlet.Arg("db")),
	})
	_, err := ns.Resolve("repo")
	fmt.Println(errors.Is(err, nlet.ErrNotFound))
	var de *nlet.DependencyError
	if errors.As(err, &de) {
		fmt.Println(de.Name, de.Descriptor)
	}
	// Output: true
	// db NewRepo
}
