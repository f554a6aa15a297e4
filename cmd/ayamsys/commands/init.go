package commands

import (
	"fmt"

	"git.home.luguber.info/inful/ayamsys/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Configuration written to %s\n", root.Config)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  1. Point project_root at the directory holding ayam/ayam/src")
	_, _ = fmt.Fprintln(out, "  2. Run 'ayamsys check' to verify the kernel tree and toolchain")
	_, _ = fmt.Fprintln(out, "  3. Run 'ayamsys build' to produce the archive and bindings")
	return nil
}
