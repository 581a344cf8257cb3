package repository

import (
	"github.com/uber/lspc/src/lspc/repository/connection"
	"github.com/uber/lspc/src/lspc/repository/session"
	"go.uber.org/fx"
)

// Module provides the in-memory stores owned by the session manager.
var Module = fx.Options(
	fx.Provide(session.New),
	fx.Provide(connection.New),
)
