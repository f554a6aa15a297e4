package bindgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errUnsupported marks C types cgo cannot represent.
var errUnsupported = errors.New("unsupported C type")

// goType is the Go side of a mapped C type.
type goType struct {
	Expr string // type expression in the wrapper signature
	// Conv is the cgo type a value must be converted to before it is passed to C
	// and from which a C result is converted back. Empty when Expr is already
	// the cgo type.
	Conv string
}

// position distinguishes where a type appears. Arrays decay to pointers in
// parameters; variables and pointees keep the array type.
type position int

const (
	posParam position = iota
	posResult
	posVar
	posPointee
)

var builtinTypes = map[string]string{
	"char":                   "C.char",
	"signed char":            "C.schar",
	"unsigned char":          "C.uchar",
	"short":                  "C.short",
	"short int":              "C.short",
	"signed short":           "C.short",
	"unsigned short":         "C.ushort",
	"unsigned short int":     "C.ushort",
	"int":                    "C.int",
	"signed":                 "C.int",
	"signed int":             "C.int",
	"unsigned":               "C.uint",
	"unsigned int":           "C.uint",
	"long":                   "C.long",
	"long int":               "C.long",
	"signed long":            "C.long",
	"unsigned long":          "C.ulong",
	"unsigned long int":      "C.ulong",
	"long long":              "C.longlong",
	"long long int":          "C.longlong",
	"signed long long":       "C.longlong",
	"unsigned long long":     "C.ulonglong",
	"unsigned long long int": "C.ulonglong",
	"float":                  "C.float",
	"double":                 "C.double",
	"_Bool":                  "C._Bool",
}

var unsupportedTokens = []string{"long double", "_Complex", "__int128", "_BitInt", "_Float16", "__fp16", "_Atomic"}

var qualifiers = map[string]bool{
	"const": true, "volatile": true, "restrict": true, "__restrict": true, "__restrict__": true,
}

// typeMap resolves C type spellings against the bindings emitted so far.
type typeMap struct {
	// variants maps a C spelling ("enum ay_color", "ay_result_t") to the variant
	// type emitted for it and its cgo type.
	variants map[string]goType
	// aliases maps a C spelling to an emitted Go alias name.
	aliases map[string]string
}

func newTypeMap() *typeMap {
	return &typeMap{variants: map[string]goType{}, aliases: map[string]string{}}
}

// normalize strips qualifiers and collapses spacing: "const char *const" becomes
// "char *".
func normalize(s string) string {
	s = strings.ReplaceAll(s, "*", " * ")
	var out []string
	for _, f := range strings.Fields(s) {
		if qualifiers[f] {
			continue
		}
		out = append(out, f)
	}
	s = strings.Join(out, " ")
	return strings.ReplaceAll(s, "* *", "**")
}

// resolve maps a clang qualType spelling to its Go representation.
func (m *typeMap) resolve(spelling string, pos position) (goType, error) {
	s := normalize(spelling)
	for _, tok := range unsupportedTokens {
		if strings.Contains(s, tok) {
			return goType{}, fmt.Errorf("%w: %s", errUnsupported, tok)
		}
	}

	if strings.Contains(s, "(") {
		if strings.Contains(s, "( * )(") || strings.Contains(s, "(*)(") {
			return goType{Expr: "*[0]byte"}, nil
		}
		return goType{}, fmt.Errorf("%w: %s", errUnsupported, spelling)
	}

	if strings.HasSuffix(s, "]") {
		open := strings.LastIndex(s, "[")
		if open < 0 {
			return goType{}, fmt.Errorf("%w: %s", errUnsupported, spelling)
		}
		elem, size := strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1:len(s)-1])
		inner, err := m.resolve(elem, posPointee)
		if err != nil {
			return goType{}, err
		}
		if pos == posParam || pos == posResult {
			return pointerTo(inner), nil
		}
		if size == "" {
			return goType{}, fmt.Errorf("%w: incomplete array %s", errUnsupported, spelling)
		}
		n, err := strconv.Atoi(size)
		if err != nil {
			return goType{}, fmt.Errorf("%w: array size %s", errUnsupported, size)
		}
		return goType{Expr: fmt.Sprintf("[%d]%s", n, inner.Expr)}, nil
	}

	if strings.HasSuffix(s, "*") {
		elem := strings.TrimSpace(strings.TrimSuffix(s, "*"))
		if elem == "void" {
			return goType{Expr: "unsafe.Pointer"}, nil
		}
		inner, err := m.resolve(elem, posPointee)
		if err != nil {
			return goType{}, err
		}
		return pointerTo(inner), nil
	}

	if s == "void" {
		if pos == posResult {
			return goType{}, nil
		}
		return goType{}, fmt.Errorf("%w: void value", errUnsupported)
	}
	if c, ok := builtinTypes[s]; ok {
		return goType{Expr: c}, nil
	}

	// Enum variants are only used by value; behind a pointer the C layout applies.
	if v, ok := m.variants[s]; ok {
		if pos == posPointee || pos == posVar {
			return goType{Expr: v.Conv}, nil
		}
		return v, nil
	}
	if a, ok := m.aliases[s]; ok {
		return goType{Expr: a}, nil
	}

	for _, tag := range []string{"struct", "union", "enum"} {
		if name, ok := strings.CutPrefix(s, tag+" "); ok {
			if !isIdent(name) {
				return goType{}, fmt.Errorf("%w: %s", errUnsupported, spelling)
			}
			return goType{Expr: "C." + tag + "_" + name}, nil
		}
	}
	if isIdent(s) {
		return goType{Expr: "C." + s}, nil
	}
	return goType{}, fmt.Errorf("%w: %s", errUnsupported, spelling)
}

func pointerTo(t goType) goType {
	expr := t.Expr
	if t.Conv != "" {
		expr = t.Conv
	}
	return goType{Expr: "*" + expr}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
