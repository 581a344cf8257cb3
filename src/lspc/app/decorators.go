package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/uber/lspc/src/lspc/internal/core"
	"github.com/uber/lspc/src/lspc/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
)

// Context describes where the client is running.
type Context struct {
	Environment string `yaml:"environment"`
}

const (
	// EnvLocal indicates that the client is running on a user's machine.
	EnvLocal = "local"

	// EnvDevelopment indicates that the client is being developed on; logging becomes verbose.
	EnvDevelopment = "development"

	// Environment variables
	_envLspcEnvironment = "LSPC_ENVIRONMENT"
)

func decorateEnvContext(env Context) Context {
	if os.Getenv(_envLspcEnvironment) == EnvDevelopment {
		env.Environment = EnvDevelopment
	} else {
		env.Environment = EnvLocal
	}
	return env
}

// DecorateConfigParams is the set of dependencies required to decorate the config.Provider.
type DecorateConfigParams struct {
	fx.In

	Env Context
	Cfg config.Provider
	FS  fs.LspcFS
}

// decorateConfigProvider includes any steps that modify the config.Provider before it is used, or use its data for any startup related activities.
func decorateConfigProvider(p DecorateConfigParams) (config.Provider, error) {
	combined, err := applyEnvironment(p.Cfg, p.Env)
	if err != nil {
		return nil, fmt.Errorf("applying environment: %v", err)
	}

	combined, err = ensureLogFolder(combined, p.FS)
	if err != nil {
		return nil, fmt.Errorf("ensuring log folder: %v", err)
	}

	return combined, nil
}

// applyEnvironment layers development logging on top of the loaded configuration.
func applyEnvironment(cfg config.Provider, env Context) (config.Provider, error) {
	if env.Environment != EnvDevelopment {
		return cfg, nil
	}

	overrides, err := config.NewStaticProvider(map[string]interface{}{
		"logging": map[string]interface{}{
			"level":       "debug",
			"development": true,
			"encoding":    "console",
		},
	})
	if err != nil {
		return nil, err
	}
	return config.NewProviderGroup(cfg.Name(), cfg, overrides)
}

// Ensure that all configured logging output directories exist or create if necessary.
func ensureLogFolder(cfg config.Provider, fs fs.LspcFS) (config.Provider, error) {
	var c core.LoggingConfig
	if err := cfg.Get("logging").Populate(&c); err != nil {
		return nil, fmt.Errorf("loading logging config: %v", err)
	}

	for _, outputPath := range c.OutputPaths {
		if outputPath == "stdout" || outputPath == "stderr" {
			continue
		}
		dir := filepath.Dir(outputPath)
		if err := fs.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("creating logging directory: %v", err)
		}
	}

	return cfg, nil
}
