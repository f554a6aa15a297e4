package bindgen

import "git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"

// FileName is the fixed name of the generated module in the output directory.
const FileName = "bindings.go"

// Binding records one emitted declaration.
type Binding struct {
	Kind   clangast.Kind
	CName  string
	GoName string
	File   string
}

// Skipped records an allowlisted declaration that could not be bound.
type Skipped struct {
	Kind   clangast.Kind `json:"-"`
	Name   string        `json:"name"`
	Reason string        `json:"reason"`
}

// Module is the generated binding source with its inventory.
type Module struct {
	Package  string
	Source   []byte
	Bindings []Binding
	Skipped  []Skipped
	// Headers are the project headers the declarations were read from, in
	// first-seen order. Editing any of them changes the module.
	Headers      []string
	ClangVersion string
}

// Count returns the number of bindings of kind k.
func (m *Module) Count(k clangast.Kind) int {
	n := 0
	for _, b := range m.Bindings {
		if b.Kind == k {
			n++
		}
	}
	return n
}

// CNames returns the C names of every binding in emission order.
func (m *Module) CNames() []string {
	out := make([]string, 0, len(m.Bindings))
	for _, b := range m.Bindings {
		out = append(out, b.CName)
	}
	return out
}

// Counts summarizes bindings per kind name for reports and metrics.
func (m *Module) Counts() map[string]int {
	out := make(map[string]int)
	for _, b := range m.Bindings {
		out[b.Kind.String()]++
	}
	return out
}
