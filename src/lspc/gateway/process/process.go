// Package process launches language servers over stdio and carries raw protocol messages to and from them.
package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/executor"
	"github.com/uber/lspc/src/lspc/internal/fs"
	"github.com/uber/lspc/src/lspc/internal/notifier"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey    = "process"
	_serversKey = "servers"
	_gatewayKey = "gateway"

	_defaultStopGrace     = 2 * time.Second
	_defaultMaxReadErrors = 10
)

// Gateway is the boundary to out-of-process language servers.
type Gateway interface {
	CheckAvailable(ctx context.Context, language string) bool
	GetStatus(ctx context.Context, language string) entity.ServerStatus
	// Start launches the server for language in rootPath. Failures are reported in the result.
	Start(ctx context.Context, language string, rootPath string) entity.StartResult
	// Stop terminates the server of a session. Unknown sessions are ignored.
	Stop(ctx context.Context, sessionID string) error
	// Send writes one serialized protocol message to the server of a session.
	Send(ctx context.Context, sessionID string, message []byte) error
	// Subscribe registers handler for every message received from any server.
	Subscribe(handler func(entity.InboundEvent)) (unsubscribe func())
}

// ServerConfig describes how to launch the server for one language.
type ServerConfig struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	Env         []string `yaml:"env"`
	InstallPath string   `yaml:"installPath"`
	DownloadURL string   `yaml:"downloadUrl"`
	LanguageID  string   `yaml:"languageId"`
}

// Config is the "gateway" configuration block.
type Config struct {
	InstallDir    string `yaml:"installDir"`
	StopGraceMs   int    `yaml:"stopGraceMs"`
	MaxReadErrors int    `yaml:"maxReadErrors"`
}

// Params are inbound parameters to initialize a new Gateway.
type Params struct {
	fx.In

	Config    config.Provider
	Logger    *zap.SugaredLogger
	Lifecycle fx.Lifecycle
	Executor  executor.Executor
	FS        fs.LspcFS
	Clock     clock.Clock
}

type gateway struct {
	logger   *zap.SugaredLogger
	executor executor.Executor
	fs       fs.LspcFS
	clock    clock.Clock
	lookPath func(file string) (string, error)

	servers       map[string]ServerConfig
	installDir    string
	stopGrace     time.Duration
	maxReadErrors int

	statuses *statusCache

	mu        sync.Mutex
	processes map[string]*serverProcess
	inbound   *notifier.Registry[entity.InboundEvent]
}

// New creates a new stdio Gateway.
func New(p Params) (Gateway, error) {
	servers := make(map[string]ServerConfig)
	if err := p.Config.Get(_serversKey).Populate(&servers); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _serversKey, err)
	}

	var cfg Config
	if err := p.Config.Get(_gatewayKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _gatewayKey, err)
	}

	logger := p.Logger.With("plugin", _nameKey)
	g := &gateway{
		logger:        logger,
		executor:      p.Executor,
		fs:            p.FS,
		clock:         p.Clock,
		lookPath:      exec.LookPath,
		servers:       servers,
		installDir:    cfg.InstallDir,
		stopGrace:     _defaultStopGrace,
		maxReadErrors: _defaultMaxReadErrors,
		statuses:      newStatusCache(logger),
		processes:     make(map[string]*serverProcess),
		inbound:       notifier.NewRegistry[entity.InboundEvent]("inbound", logger),
	}
	if cfg.StopGraceMs > 0 {
		g.stopGrace = time.Duration(cfg.StopGraceMs) * time.Millisecond
	}
	if cfg.MaxReadErrors > 0 {
		g.maxReadErrors = cfg.MaxReadErrors
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: g.start,
			OnStop:  g.stop,
		})
	}
	return g, nil
}

func (g *gateway) start(ctx context.Context) error {
	if g.installDir == "" {
		cacheDir, err := g.fs.UserCacheDir()
		if err != nil {
			g.logger.Infow("install directory not watched", "error", err)
			return nil
		}
		g.installDir = filepath.Join(cacheDir, "lspc", "servers")
	}
	exists, err := g.fs.DirExists(g.installDir)
	if err != nil || !exists {
		g.logger.Infow("install directory not watched", "dir", g.installDir, "error", err)
		return nil
	}
	if err := g.statuses.watch(g.installDir); err != nil {
		g.logger.Warnw("watching install directory failed", "dir", g.installDir, "error", err)
	}
	return nil
}

// stop terminates any server still running and closes the install directory watcher.
func (g *gateway) stop(ctx context.Context) error {
	g.mu.Lock()
	remaining := make([]*serverProcess, 0, len(g.processes))
	for id, p := range g.processes {
		remaining = append(remaining, p)
		delete(g.processes, id)
	}
	g.mu.Unlock()

	var errs error
	for _, p := range remaining {
		errs = multierr.Append(errs, p.stop(g.clock, g.stopGrace))
	}
	errs = multierr.Append(errs, g.statuses.close())
	if errs != nil {
		g.logger.Warnw("gateway shutdown", "error", errs)
	}
	return nil
}

func (g *gateway) CheckAvailable(ctx context.Context, language string) bool {
	return g.GetStatus(ctx, language).Available
}

func (g *gateway) GetStatus(ctx context.Context, language string) entity.ServerStatus {
	if status, ok := g.statuses.get(language); ok {
		return status
	}

	cfg, ok := g.servers[language]
	if !ok {
		return entity.ServerStatus{}
	}

	status := entity.ServerStatus{
		CanDownload: cfg.DownloadURL != "",
		DownloadURL: cfg.DownloadURL,
	}
	if cfg.InstallPath != "" {
		if exists, err := g.fs.FileExists(cfg.InstallPath); err == nil && exists {
			status.Installed = true
			status.Available = true
			status.InstallPath = cfg.InstallPath
		}
	}
	if !status.Available && cfg.Command != "" {
		if path, err := g.lookPath(cfg.Command); err == nil {
			status.Available = true
			status.InstallPath = path
		}
	}

	g.statuses.set(language, status)
	return status
}

func (g *gateway) Start(ctx context.Context, language string, rootPath string) entity.StartResult {
	cfg, ok := g.servers[language]
	if !ok {
		return entity.StartResult{Error: fmt.Sprintf("no server configured for %q", language)}
	}
	status := g.GetStatus(ctx, language)
	if !status.Available {
		return entity.StartResult{Error: fmt.Sprintf("server for %q is not available", language)}
	}

	cmd := exec.Command(status.InstallPath, cfg.Args...)
	cmd.Dir = rootPath

	var env []string
	if len(cfg.Env) > 0 {
		env = append(os.Environ(), cfg.Env...)
	}

	p, err := startServerProcess(g.executor, cmd, env, g.logger.With("language", language))
	if err != nil {
		return entity.StartResult{Error: err.Error()}
	}

	g.mu.Lock()
	g.processes[p.id] = p
	g.mu.Unlock()

	go p.readLoop(g.maxReadErrors, g.inbound.Publish)

	g.logger.Infow("server started", "session", p.id, "language", language, "root", rootPath)
	return entity.StartResult{SessionID: p.id, Success: true}
}

func (g *gateway) Stop(ctx context.Context, sessionID string) error {
	g.mu.Lock()
	p, ok := g.processes[sessionID]
	delete(g.processes, sessionID)
	g.mu.Unlock()

	if !ok {
		return nil
	}
	return p.stop(g.clock, g.stopGrace)
}

func (g *gateway) Send(ctx context.Context, sessionID string, message []byte) error {
	g.mu.Lock()
	p, ok := g.processes[sessionID]
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("no server process for session %q", sessionID)
	}
	return p.send(ctx, message)
}

func (g *gateway) Subscribe(handler func(entity.InboundEvent)) func() {
	return g.inbound.Subscribe(handler)
}
