/*
Package nload reads nlet namespaces from YAML and JSONC documents.

Literal values decode as usual.  Three forms describe the other kinds
of declaration.  In YAML they are tags:

	host: db.example.com
	url: !ref ^settings.url
	db: !new Database
	Settings: !ns
	  url: !ref ^host

In JSONC they are objects with a single key:

	{
		"host": "db.example.com",
		"url": {"$ref": "^settings.url"},
		"db": {"$new": "Database"},
		"Settings": {"$ns": {"url": {"$ref": "^host"}}},
	}

References use the syntax of nlet.ParseReference.  Descriptors are
looked up by name among those given to WithDescriptors.
*/
package nload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/muir/nlet"
	"github.com/pkg/errors"
)

type options struct {
	descriptors map[string]*nlet.Descriptor
	parent      *nlet.Namespace
}

// Option configures YAML, JSONC, and File.
type Option func(*options)

// WithDescriptors makes descriptors available to !new and $new.  It
// may be given more than once.
func WithDescriptors(descriptors map[string]*nlet.Descriptor) Option {
	return func(o *options) {
		if o.descriptors == nil {
			o.descriptors = make(map[string]*nlet.Descriptor)
		}
		for k, v := range descriptors {
			o.descriptors[k] = v
		}
	}
}

// WithParent derives the loaded namespace from parent.
func WithParent(parent *nlet.Namespace) Option {
	return func(o *options) {
		o.parent = parent
	}
}

func makeOptions(opts []Option) options {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return o
}

func (o options) descriptor(name string) (*nlet.Descriptor, error) {
	d, ok := o.descriptors[name]
	if !ok {
		return nil, errors.Errorf("no descriptor named %q", name)
	}
	return d, nil
}

func (o options) define(name string, decls nlet.Declarations) (*nlet.Namespace, error) {
	if o.parent != nil {
		return nlet.Define(name, decls, o.parent)
	}
	return nlet.Define(name, decls)
}

// File reads path as YAML (.yaml, .yml) or JSONC (.json, .jsonc).
// The namespace is named after the file, without directory or
// extension.
func File(path string, opts ...Option) (*nlet.Namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	name := NameFromPath(path)
	var ns *nlet.Namespace
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		ns, err = YAML(name, data, opts...)
	case ".json", ".jsonc":
		ns, err = JSONC(name, data, opts...)
	default:
		return nil, errors.Errorf("%s: unknown extension %q", path, ext)
	}
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return ns, nil
}

// NameFromPath strips the directory and the extension: "conf/app.yaml"
// is "app".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
