package commands

import (
	"fmt"

	"git.home.luguber.info/inful/ayamsys/internal/layout"
)

// SymbolsCmd implements the 'symbols' command. It parses the umbrella header
// and prints what generation would bind without writing anything.
type SymbolsCmd struct {
	Skipped bool `help:"Only list declarations that cannot be bound"`
}

func (c *SymbolsCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}
	mod, err := s.generator().Run(g.context(), layout.NewProfile(s.layout()))
	if err != nil {
		return err
	}

	var rows [][]string
	if !c.Skipped {
		for _, b := range mod.Bindings {
			rows = append(rows, []string{b.Kind.String(), b.CName, b.GoName, "bound"})
		}
	}
	for _, sk := range mod.Skipped {
		rows = append(rows, []string{sk.Kind.String(), sk.Name, "-", "skipped: " + sk.Reason})
	}
	out := g.stdout()
	renderTable(out, []string{"KIND", "C NAME", "GO NAME", "STATUS"}, rows)
	_, err = fmt.Fprintf(out, "\n%d bound, %d skipped (clang %s)\n", len(mod.Bindings), len(mod.Skipped), mod.ClangVersion)
	return err
}
