package clangast

import (
	"fmt"
	"strconv"
)

// Kind classifies a top-level declaration.
type Kind int

const (
	KindFunction Kind = iota
	KindVar
	KindTypedef
	KindRecord
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindVar:
		return "var"
	case KindTypedef:
		return "typedef"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Enumerator is one enum constant with its evaluated value.
type Enumerator struct {
	Name  string
	Value int64
	// Unsigned marks a value above math.MaxInt64; Value holds its bit pattern.
	Unsigned bool
}

// Literal is the decimal spelling of the value.
func (e Enumerator) Literal() string {
	if e.Unsigned {
		return strconv.FormatUint(uint64(e.Value), 10)
	}
	return strconv.FormatInt(e.Value, 10)
}

// Decl is a top-level declaration in parse order.
type Decl struct {
	Kind Kind
	ID   string
	Name string // empty for anonymous records and enums
	File string
	Line int

	// Type is the clang qualType: the full signature for functions, the variable
	// type for vars and the aliased type for typedefs.
	Type string

	// Functions.
	Result   string
	Params   []Param
	Variadic bool

	// Vars and functions.
	StorageClass string

	// Records and enums: "struct", "union" or "enum".
	Tag         string
	Complete    bool
	Enumerators []Enumerator

	// Typedefs naming a record or enum point at its declaration.
	Aliased *Decl
}

// Anonymous reports whether a record or enum has no tag name.
func (d *Decl) Anonymous() bool {
	return (d.Kind == KindRecord || d.Kind == KindEnum) && d.Name == ""
}

// Header is the decoded umbrella header.
type Header struct {
	Decls []*Decl
	// Files lists every file clang reported a location in, first-seen order.
	Files        []string
	ClangVersion string
}

// Count returns the number of declarations of kind k.
func (h *Header) Count(k Kind) int {
	n := 0
	for _, d := range h.Decls {
		if d.Kind == k {
			n++
		}
	}
	return n
}
