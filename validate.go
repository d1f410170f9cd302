package nlet

import "strings"

// validateDeclarations rejects configurations that are certain to fail
// at resolution time.  It runs once per namespace definition.
func validateDeclarations(namespace string, decls Declarations) error {
	for name, decl := range decls {
		if err := validateName(namespace, name); err != nil {
			return err
		}
		switch d := decl.(type) {
		case *Descriptor:
			if d == nil {
				return newError(ErrDefinition, namespace, name, "%q is a nil descriptor", name)
			}
			if _, ok := d.params.Lookup(name); ok {
				return newError(ErrDefinition, namespace, name,
					"%q is a circle dependency in the %s constructor", name, d.name).inDescriptor(d)
			}
		case Reference:
			if len(d.path) == 0 {
				return newError(ErrDefinition, namespace, name, "%q is a reference with an empty path", name)
			}
		case *Namespace:
			if d == nil {
				return newError(ErrDefinition, namespace, name, "%q is a nil namespace", name)
			}
		}
	}
	return nil
}

func validateName(namespace string, name string) error {
	switch {
	case name == "":
		return newError(ErrDefinition, namespace, name, "empty names are not allowed")
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return newError(ErrDefinition, namespace, name, "%q: magic names are not allowed", name)
	case strings.Contains(name, "."):
		return newError(ErrDefinition, namespace, name, "%q: names may not contain '.'", name)
	}
	if _, ok := reservedNames[name]; ok {
		return newError(ErrDefinition, namespace, name, "%q redefinition is not allowed", name)
	}
	return nil
}

func validateSignature(descriptor string, params []Param) error {
	seen := make(map[string]struct{}, len(params))
	var varPositional, varKeyword bool
	for _, p := range params {
		fail := func(format string, args ...any) error {
			return newError(ErrDefinition, "", p.Name, "descriptor %s: "+format,
				append([]any{descriptor}, args...)...)
		}
		if p.Name == "" {
			return fail("parameters must be named")
		}
		if _, ok := seen[p.Name]; ok {
			return fail("parameter %q is declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		switch p.Kind {
		case Positional:
			if varPositional {
				return fail("parameter %q follows the var-positional parameter", p.Name)
			}
		case VarPositional:
			if varPositional {
				return fail("more than one var-positional parameter")
			}
			varPositional = true
		case VarKeyword:
			if varKeyword {
				return fail("more than one var-keyword parameter")
			}
			varKeyword = true
		default:
			return fail("parameter %q has unknown kind %d", p.Name, int(p.Kind))
		}
		if p.HasDefault && p.Kind != Positional {
			return fail("%s parameter %q cannot have a default", p.Kind, p.Name)
		}
	}
	return nil
}
