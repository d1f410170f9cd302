package nload

import (
	"strings"

	"github.com/muir/nlet"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	refTag = "!ref"
	newTag = "!new"
	nsTag  = "!ns"
)

// YAML reads a namespace from a YAML mapping.
func YAML(name string, data []byte, opts ...Option) (*nlet.Namespace, error) {
	o := makeOptions(opts)
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return o.define(name, nlet.Declarations{})
		}
		root = root.Content[0]
	}
	decls, err := o.yamlMapping(root)
	if err != nil {
		return nil, err
	}
	return o.define(name, decls)
}

func (o options) yamlMapping(n *yaml.Node) (nlet.Declarations, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: expected a mapping of declarations", n.Line)
	}
	decls := make(nlet.Declarations, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: declaration names must be scalars", key.Line)
		}
		decl, err := o.yamlDeclaration(key.Value, value)
		if err != nil {
			return nil, errors.Wrapf(err, "declaration %s", key.Value)
		}
		decls[key.Value] = decl
	}
	return decls, nil
}

func (o options) yamlDeclaration(name string, n *yaml.Node) (any, error) {
	switch n.Tag {
	case refTag:
		if n.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: %s needs a scalar", n.Line, refTag)
		}
		return nlet.ParseReference(strings.TrimSpace(n.Value))
	case newTag:
		if n.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: %s needs a scalar", n.Line, newTag)
		}
		return o.descriptor(strings.TrimSpace(n.Value))
	case nsTag:
		decls, err := o.yamlMapping(n)
		if err != nil {
			return nil, err
		}
		return nlet.Define(name, decls)
	}
	if err := checkNoTags(n); err != nil {
		return nil, err
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "line %d", n.Line)
	}
	return v, nil
}

// checkNoTags rejects declaration tags inside literals.
func checkNoTags(n *yaml.Node) error {
	switch n.Tag {
	case refTag, newTag, nsTag:
		return errors.Errorf("line %d: %s is only allowed as a declaration", n.Line, n.Tag)
	}
	for _, c := range n.Content {
		if err := checkNoTags(c); err != nil {
			return err
		}
	}
	return nil
}
