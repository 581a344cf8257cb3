package gateway

import (
	"github.com/uber/lspc/src/lspc/gateway/process"
	"go.uber.org/fx"
)

// Module provides the gateways to out-of-process collaborators.
var Module = fx.Options(
	fx.Provide(process.New),
)
