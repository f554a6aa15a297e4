package bindgen

import (
	"fmt"
	"regexp"
)

// DefaultPattern admits every kernel symbol.
const DefaultPattern = "ay_.*"

// Allowlist filters declaration names per kind. Patterns are anchored at both
// ends, so "ay_.*" does not match "lay_out". An empty list admits nothing.
type Allowlist struct {
	Functions []*regexp.Regexp
	Types     []*regexp.Regexp
	Vars      []*regexp.Regexp
}

// DefaultAllowlist applies DefaultPattern to functions, types and variables.
func DefaultAllowlist() Allowlist {
	a, _ := NewAllowlist([]string{DefaultPattern}, []string{DefaultPattern}, []string{DefaultPattern})
	return a
}

// NewAllowlist compiles the patterns of each kind.
func NewAllowlist(functions, types, vars []string) (Allowlist, error) {
	var a Allowlist
	var err error
	if a.Functions, err = compileAll(functions); err != nil {
		return Allowlist{}, err
	}
	if a.Types, err = compileAll(types); err != nil {
		return Allowlist{}, err
	}
	if a.Vars, err = compileAll(vars); err != nil {
		return Allowlist{}, err
	}
	return a, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid allowlist pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (a Allowlist) Function(name string) bool { return name != "" && matchAny(a.Functions, name) }
func (a Allowlist) Type(name string) bool     { return name != "" && matchAny(a.Types, name) }
func (a Allowlist) Var(name string) bool      { return name != "" && matchAny(a.Vars, name) }
