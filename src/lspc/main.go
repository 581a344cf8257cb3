package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/uber/lspc/src/lspc/app"
	"github.com/uber/lspc/src/lspc/handler"
	"github.com/uber/lspc/src/lspc/handler/cli"
	"go.uber.org/fx"
	"go.uber.org/multierr"
)

func opts() fx.Option {
	return fx.Options(
		app.Module,
		handler.Module,
	)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts the application, executes one command and stops the application, which shuts down every server it launched.
func run(args []string) (err error) {
	var h cli.Handler
	application := fx.New(opts(), fx.Populate(&h), fx.NopLogger)
	if err := application.Err(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), application.StopTimeout())
		defer stopCancel()
		err = multierr.Append(err, application.Stop(stopCtx))
	}()

	return h.Execute(ctx, args)
}
