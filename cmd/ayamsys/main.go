package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ayamsys/cmd/ayamsys/commands"
	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("ayamsys"),
		kong.Description("Build the vendored Ayam NURBS kernel into a static archive and generate its cgo bindings."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global := &commands.Global{Logger: slog.Default(), Ctx: ctx, Stdout: os.Stdout}
	err = kctx.Run(global, cli)
	stop()
	if err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
