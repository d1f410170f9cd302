package nlet

// Names with special meaning inside every namespace.
const (
	// LetName resolves to a LetFunc bound to the namespace.
	LetName = "let"

	// SelfName resolves to the namespace itself.
	SelfName = "c"

	// ClassSuffix marks names whose descriptor is returned unconstructed.
	ClassSuffix = "_cls"
)

// Declarations maps names to declarations.  A declaration is a
// *Descriptor, a Reference, a *Namespace, or any other value which
// is then treated as a literal.
type Declarations map[string]any

// LetFunc is what the reserved name "let" resolves to.
type LetFunc func(Declarations) (*Namespace, error)

// ParamKind classifies constructor parameters.
type ParamKind int

const (
	// Positional parameters are resolved by name, one value each
	Positional ParamKind = iota
	// VarPositional collects a sequence of extra positional values
	VarPositional
	// VarKeyword collects a mapping of extra named values
	VarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case Positional:
		return "positional"
	case VarPositional:
		return "var-positional"
	case VarKeyword:
		return "var-keyword"
	default:
		return "unknown"
	}
}

var reservedNames = map[string]struct{}{
	LetName:  {},
	SelfName: {},
}
