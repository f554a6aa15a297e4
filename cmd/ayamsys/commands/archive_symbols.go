package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// ArchiveSymbolsCmd implements the 'archive-symbols' command.
type ArchiveSymbolsCmd struct {
	Archive string `arg:"" optional:"" help:"Archive to inspect (default <out-dir>/lib<archive_name>.a)"`
	Names   bool   `help:"Print one symbol name per line"`
}

func (c *ArchiveSymbolsCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}
	path := c.Archive
	if path == "" {
		path = filepath.Join(s.cfg.OutDir, toolchain.FileName(s.cfg.ArchiveName))
	}
	syms, err := s.compiler().ArchiveSymbols(g.context(), path)
	if err != nil {
		return err
	}

	out := g.stdout()
	if c.Names {
		for _, name := range toolchain.SymbolNames(syms) {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}
		return nil
	}
	rows := make([][]string, 0, len(syms))
	for _, sym := range syms {
		rows = append(rows, []string{sym.Name, sym.Type, sym.Object})
	}
	renderTable(out, []string{"SYMBOL", "TYPE", "OBJECT"}, rows)
	return nil
}
