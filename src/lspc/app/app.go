package app

import (
	"context"
	"time"

	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/controller"
	"github.com/uber/lspc/src/lspc/gateway"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/core"
	"github.com/uber/lspc/src/lspc/internal/executor"
	"github.com/uber/lspc/src/lspc/internal/fs"
	"github.com/uber/lspc/src/lspc/repository"
	"go.uber.org/fx"
)

// Module defines the lspc application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	controller.Module,
	repository.Module,
	fs.Module,
	executor.Module,
	clock.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Prefix: "lspc",
			Tags: map[string]string{
				"service": "lspc",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment: EnvLocal,
		}
	}),
)
