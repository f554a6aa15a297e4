package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"

	"git.home.luguber.info/inful/ayamsys/internal/command"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
)

// ArchiveSymbol is one defined external symbol of an archive member.
type ArchiveSymbol struct {
	Name   string
	Type   string // nm type letter, e.g. T or D
	Object string // archive member that defines it
}

// ArchiveSymbols lists the defined external symbols of the archive at path.
func (c *Compiler) ArchiveSymbols(ctx context.Context, path string) ([]ArchiveSymbol, error) {
	res, err := c.runner.Run(ctx, command.Cmd{Tool: c.tools.NM, Args: []string{"-g", "--defined-only", path}})
	if err != nil {
		if errors.Is(err, command.ErrToolNotFound) {
			return nil, ferrors.ToolchainError("nm not found").WithContext("tool", c.tools.NM).WithCause(err).Build()
		}
		return nil, ferrors.ToolchainError("cannot list archive symbols").
			WithContext("archive", path).
			WithContext("output", res.Output()).
			WithCause(err).
			Build()
	}
	return ParseNM(res.Stdout), nil
}

// ParseNM parses BSD-format nm output. Member headers ("apt.o:") set the object of
// the lines that follow. The result is sorted by name, then object.
func ParseNM(out []byte) []ArchiveSymbol {
	var syms []ArchiveSymbol
	object := ""
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") {
			object = strings.TrimSuffix(line, ":")
			if i := strings.LastIndexByte(object, '('); i >= 0 && strings.HasSuffix(object, ")") {
				object = object[i+1 : len(object)-1]
			}
			continue
		}
		fields := strings.Fields(line)
		var typ, name string
		switch len(fields) {
		case 3:
			typ, name = fields[1], fields[2]
		case 2:
			typ, name = fields[0], fields[1]
		default:
			continue
		}
		if typ == "U" || typ == "w" || typ == "v" {
			continue
		}
		syms = append(syms, ArchiveSymbol{Name: name, Type: typ, Object: object})
	}
	slices.SortFunc(syms, func(a, b ArchiveSymbol) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Object, b.Object)
	})
	return syms
}

// SymbolNames returns the distinct names of syms in order.
func SymbolNames(syms []ArchiveSymbol) []string {
	out := make([]string, 0, len(syms))
	for _, s := range syms {
		if n := len(out); n > 0 && out[n-1] == s.Name {
			continue
		}
		out = append(out, s.Name)
	}
	return out
}
