package layout

import (
	"slices"
	"strings"
)

// Define is a single preprocessor symbol, optionally with a value.
type Define struct {
	Name  string
	Value string
}

// Flag renders the define as -DNAME or -DNAME=VALUE.
func (d Define) Flag() string {
	if d.Value == "" {
		return "-D" + d.Name
	}
	return "-D" + d.Name + "=" + d.Value
}

// DefineSet is the ordered list of defines applied to every compile and parse.
type DefineSet []Define

// Flags renders every define.
func (s DefineSet) Flags() []string {
	out := make([]string, 0, len(s))
	for _, d := range s {
		out = append(out, d.Flag())
	}
	return out
}

// DefaultDefines enables the affine math backend of the kernel.
func DefaultDefines() DefineSet {
	return DefineSet{{Name: "AYUSEAFFINE"}}
}

// Profile is the immutable native configuration handed by pointer to both the
// native compiler and the header parser. Both must see the same include paths and
// defines, so it is built once per run and never recomputed.
type Profile struct {
	includes IncludePathSet
	defines  DefineSet
}

// NewProfile builds the profile from a resolved layout and the fixed define set.
func NewProfile(l *Layout) *Profile {
	return NewProfileFrom(l.IncludePaths(), DefaultDefines())
}

// NewProfileFrom builds a profile from explicit values. Inputs are copied.
func NewProfileFrom(includes IncludePathSet, defines DefineSet) *Profile {
	return &Profile{
		includes: includes.Clone(),
		defines:  slices.Clone(defines),
	}
}

// IncludePaths returns a copy of the include path set.
func (p *Profile) IncludePaths() IncludePathSet { return p.includes.Clone() }

// Defines returns a copy of the define set.
func (p *Profile) Defines() DefineSet { return slices.Clone(p.defines) }

// Flags returns the -I flags followed by the -D flags.
func (p *Profile) Flags() []string {
	return append(p.includes.Flags(), p.defines.Flags()...)
}

// String is used in logs and the build report.
func (p *Profile) String() string {
	return strings.Join(p.Flags(), " ")
}

// IncludesFromFlags extracts the -I directories from an argument list. Tests use it
// to compare what each consumer actually received.
func IncludesFromFlags(args []string) IncludePathSet {
	var out IncludePathSet
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-I" && i+1 < len(args):
			out = append(out, args[i+1])
			i++
		case strings.HasPrefix(a, "-I"):
			out = append(out, strings.TrimPrefix(a, "-I"))
		}
	}
	return out
}

// DefinesFromFlags extracts the -D flags (verbatim, without the prefix).
func DefinesFromFlags(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "-D") && len(a) > 2 {
			out = append(out, strings.TrimPrefix(a, "-D"))
		}
	}
	return out
}
