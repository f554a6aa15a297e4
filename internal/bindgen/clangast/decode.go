package clangast

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Decode reads a clang JSON AST dump of a translation unit and returns its
// top-level declarations in parse order. Implicit declarations and declarations
// of other kinds are dropped.
func Decode(r io.Reader) (*Header, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	d := &decoder{byID: make(map[string]*Decl)}
	sawInner := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read AST key: %w", err)
		}
		key, _ := tok.(string)
		if key != "inner" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("skip AST field %q: %w", key, err)
			}
			continue
		}
		sawInner = true
		if err := expectDelim(dec, '['); err != nil {
			return nil, err
		}
		for dec.More() {
			var n node
			if err := dec.Decode(&n); err != nil {
				return nil, fmt.Errorf("decode AST node: %w", err)
			}
			if err := d.topLevel(&n); err != nil {
				return nil, err
			}
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if !sawInner {
		return nil, errors.New("AST dump has no translation unit body")
	}
	return &Header{Decls: d.decls, Files: d.locs.files}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read AST: %w", err)
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("malformed AST: expected %q, got %v", want, tok)
	}
	return nil
}

type decoder struct {
	locs  locTracker
	decls []*Decl
	byID  map[string]*Decl
}

func (d *decoder) topLevel(n *node) error {
	file, line := d.locs.visit(n)
	if n.IsImplicit {
		return nil
	}

	decl := &Decl{ID: n.ID, Name: n.Name, File: file, Line: line, Type: n.qualType()}
	switch n.Kind {
	case "FunctionDecl":
		decl.Kind = KindFunction
		decl.StorageClass = n.StorageClass
		decl.Variadic = n.Variadic
		decl.Result = resultType(decl.Type)
		for _, c := range n.Inner {
			if c.Kind != "ParmVarDecl" {
				continue
			}
			name := c.Name
			if name == "" {
				name = "arg" + strconv.Itoa(len(decl.Params))
			}
			decl.Params = append(decl.Params, Param{Name: name, Type: c.qualType()})
		}
	case "VarDecl":
		decl.Kind = KindVar
		decl.StorageClass = n.StorageClass
	case "TypedefDecl":
		decl.Kind = KindTypedef
		if ref := findTagRef(n.Inner); ref != nil {
			decl.Aliased = d.byID[ref.ID]
		}
	case "RecordDecl":
		decl.Kind = KindRecord
		decl.Tag = n.TagUsed
		decl.Complete = n.CompleteDefinition
	case "EnumDecl":
		decl.Kind = KindEnum
		decl.Tag = "enum"
		decl.Complete = true
		values, err := enumerators(n)
		if err != nil {
			return fmt.Errorf("enum %s at %s:%d: %w", displayName(n.Name), file, line, err)
		}
		decl.Enumerators = values
	default:
		return nil
	}

	if decl.ID != "" {
		d.byID[decl.ID] = decl
	}
	d.decls = append(d.decls, decl)
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}

// findTagRef returns the first record or enum referenced below a typedef.
func findTagRef(nodes []*node) *declRef {
	for _, n := range nodes {
		for _, ref := range []*declRef{n.OwnedTagDecl, n.Decl} {
			if ref != nil && (ref.Kind == "EnumDecl" || ref.Kind == "RecordDecl") {
				return ref
			}
		}
		if ref := findTagRef(n.Inner); ref != nil {
			return ref
		}
	}
	return nil
}

// resultType splits the result type off a function type such as
// "ay_object *(const char *, int)". The parameter list is the last balanced
// parenthesized group.
func resultType(fn string) string {
	fn = strings.TrimSpace(fn)
	if !strings.HasSuffix(fn, ")") {
		return fn
	}
	depth := 0
	for i := len(fn) - 1; i >= 0; i-- {
		switch fn[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return strings.TrimSpace(fn[:i])
			}
		}
	}
	return fn
}
