package handler

import (
	"github.com/uber/lspc/src/lspc/handler/cli"
	"go.uber.org/fx"
)

// Module provides the command line surface of the client.
var Module = fx.Options(
	fx.Provide(cli.New),
)
