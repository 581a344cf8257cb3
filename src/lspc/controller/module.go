package controller

import (
	"github.com/uber/lspc/src/lspc/controller/correlation"
	"github.com/uber/lspc/src/lspc/controller/diagnostics"
	sessionmanager "github.com/uber/lspc/src/lspc/controller/session-manager"
	"go.uber.org/fx"
)

// Module provides the controllers that own session and diagnostics state.
var Module = fx.Options(
	fx.Provide(correlation.New),
	fx.Provide(sessionmanager.New),
	fx.Provide(diagnostics.New),
)
