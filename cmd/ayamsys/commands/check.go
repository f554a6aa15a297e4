package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
)

// CheckCmd implements the 'check' command: it verifies the kernel tree,
// the umbrella header and the toolchain without producing artifacts.
type CheckCmd struct{}

type checkRow struct {
	item   string
	err    error
	detail string
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}
	l := s.layout()

	var rows []checkRow
	for _, dir := range []struct{ name, path string }{
		{"kernel", l.Kernel},
		{"affine include", l.AffineInclude},
		{"nurbs", l.Nurbs},
		{"togl", l.Togl},
	} {
		rows = append(rows, checkRow{item: dir.name, err: checkDir(dir.path), detail: dir.path})
	}

	sel := sources.Select(l)
	rows = append(rows, checkRow{
		item:   "translation units",
		err:    sel.Verify(),
		detail: fmt.Sprintf("%d units", len(sel)),
	})
	rows = append(rows, checkRow{item: "umbrella header", err: checkFile(s.cfg.UmbrellaHeader), detail: s.cfg.UmbrellaHeader})

	tools := s.cfg.Tools()
	for _, tool := range []struct{ role, name string }{{"cc", tools.CC}, {"ar", tools.AR}, {"nm", tools.NM}} {
		row := checkRow{item: tool.role, detail: tool.name}
		if !g.lookPath(tool.name) {
			row.err = errors.ToolchainError("tool not found on PATH").WithContext("tool", tool.name).Build()
		}
		rows = append(rows, row)
	}

	clangRow := checkRow{item: "clang", detail: s.cfg.Toolchain.Clang}
	if v, err := s.parser().Version(g.context()); err != nil {
		clangRow.err = err
	} else {
		clangRow.detail = s.cfg.Toolchain.Clang + " " + v
	}
	rows = append(rows, clangRow)

	var first error
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := "ok"
		detail := r.detail
		if r.err != nil {
			status = "FAIL"
			detail = r.err.Error()
			if first == nil {
				first = r.err
			}
		}
		table = append(table, []string{r.item, status, detail})
	}
	renderTable(g.stdout(), []string{"CHECK", "STATUS", "DETAIL"}, table)
	return first
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil
	}
	return errors.MissingPathError("directory not found").WithContext("path", path).WithCause(err).Build()
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.Mode().IsRegular() {
		return nil
	}
	return errors.MissingPathError("file not found").WithContext("path", path).WithCause(err).Build()
}
