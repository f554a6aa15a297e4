package bindgen

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// goName converts a C identifier to an exported Go name: ay_nb_CurveInsertKnot
// becomes AyNbCurveInsertKnot.
func goName(c string) string {
	// A Caser keeps state between calls and is not shared.
	titler := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(c, "_") {
		if part == "" {
			continue
		}
		b.WriteString(titler.String(part))
	}
	if b.Len() == 0 {
		return exportFirst(c)
	}
	return b.String()
}

// exportFirst upper-cases the first rune, keeping the rest of the C name.
func exportFirst(c string) string {
	r, size := utf8.DecodeRuneInString(c)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return c
	}
	if r == '_' {
		return "X" + c
	}
	return string(unicode.ToUpper(r)) + c[size:]
}

// reservedInBody are identifiers generated function bodies refer to.
var reservedInBody = map[string]bool{"C": true, "unsafe": true, "strconv": true}

// namer hands out unique package-level Go identifiers in declaration order.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: map[string]bool{"C": true}}
}

// take returns name if it is free, otherwise name with underscores appended.
func (n *namer) take(name string) string {
	for n.used[name] {
		name += "_"
	}
	n.used[name] = true
	return name
}

// forC names a C declaration: the title-cased form when free, else the C name
// with its first rune upper-cased.
func (n *namer) forC(c string) string {
	if g := goName(c); !n.used[g] {
		n.used[g] = true
		return g
	}
	return n.take(exportFirst(c))
}

// paramName makes a C parameter name usable inside a generated wrapper.
func (n *namer) paramName(c string) string {
	if token.IsKeyword(c) || reservedInBody[c] || n.used[c] {
		return c + "_"
	}
	return c
}

// ValidPackageName reports whether name can be used as the generated package.
func ValidPackageName(name string) bool {
	return token.IsIdentifier(name) && name != "_" && name != "C"
}
