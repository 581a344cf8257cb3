// Package sessionmanager owns the lifecycle of language server sessions and the traffic flowing through them.
package sessionmanager

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/controller/correlation"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/gateway/process"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"github.com/uber/lspc/src/lspc/internal/notifier"
	"github.com/uber/lspc/src/lspc/mapper"
	"github.com/uber/lspc/src/lspc/repository/connection"
	"github.com/uber/lspc/src/lspc/repository/session"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	_nameKey     = "session-manager"
	_clientKey   = "client"
	_requestsKey = "requests"

	_defaultClientName      = "lspc"
	_defaultShutdownTimeout = 2 * time.Second
)

// Controller manages sessions with language servers.
type Controller interface {
	// Start returns the session serving language under rootPath, launching and initializing one if needed.
	Start(ctx context.Context, language string, rootPath string) (string, error)
	// Stop shuts the session down. Unknown or already stopping sessions are ignored.
	Stop(ctx context.Context, sessionID string) error
	StopAll(ctx context.Context) error

	OpenDocument(ctx context.Context, sessionID string, filePath string, languageID string, content string) error
	ChangeDocument(ctx context.Context, sessionID string, filePath string, content string) error
	// CloseDocument is best effort and only fails on a session it cannot find.
	CloseDocument(ctx context.Context, sessionID string, filePath string) error

	// Request issues method on a ready session and decodes the response into result, which may be nil.
	Request(ctx context.Context, sessionID string, method string, params interface{}, result interface{}) error
	Hover(ctx context.Context, sessionID string, filePath string, pos protocol.Position) *entity.Hover
	Definition(ctx context.Context, sessionID string, filePath string, pos protocol.Position) []protocol.Location
	References(ctx context.Context, sessionID string, filePath string, pos protocol.Position, includeDeclaration bool) []protocol.Location
	DocumentSymbols(ctx context.Context, sessionID string, filePath string) []entity.Symbol

	// Route finds a session for filePath, falling back to any session for language under rootPath.
	Route(ctx context.Context, filePath string, language string, rootPath string) (string, bool)
	Session(ctx context.Context, sessionID string) (*entity.Session, error)
	Sessions(ctx context.Context) []*entity.Session

	// OnMessage dispatches one raw message received from a server. It never panics on bad input.
	OnMessage(event entity.InboundEvent)
	SubscribeNotifications(handler func(entity.NotificationEvent)) (unsubscribe func())
	SubscribeDiagnostics(handler func(entity.DiagnosticsEvent)) (unsubscribe func())
}

// Params are inbound parameters to initialize a new Controller.
type Params struct {
	fx.In

	Config      config.Provider
	Logger      *zap.SugaredLogger
	Stats       tally.Scope
	Lifecycle   fx.Lifecycle
	Gateway     process.Gateway
	Sessions    session.Repository
	Connections connection.Repository
	Correlation correlation.Engine
	Clock       clock.Clock
}

type controller struct {
	logger      *zap.SugaredLogger
	gateway     process.Gateway
	sessions    session.Repository
	connections connection.Repository
	correlation correlation.Engine
	clock       clock.Clock

	client          entity.ClientIdentity
	shutdownTimeout time.Duration

	starts singleflight.Group

	stoppingMu sync.Mutex
	stopping   map[string]struct{}

	notifications *notifier.Registry[entity.NotificationEvent]
	diagnostics   *notifier.Registry[entity.DiagnosticsEvent]
	malformed     tally.Counter

	unsubscribeInbound func()
}

// New creates a new session manager Controller.
func New(p Params) (Controller, error) {
	client := entity.ClientIdentity{Name: _defaultClientName}
	if err := p.Config.Get(_clientKey).Populate(&client); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _clientKey, err)
	}

	var requests correlation.RequestsConfig
	if err := p.Config.Get(_requestsKey).Populate(&requests); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _requestsKey, err)
	}
	shutdownTimeout := _defaultShutdownTimeout
	if requests.ShutdownTimeoutMs > 0 {
		shutdownTimeout = time.Duration(requests.ShutdownTimeoutMs) * time.Millisecond
	}

	if p.Clock == nil {
		p.Clock = clock.New()
	}

	logger := p.Logger.With("plugin", _nameKey)
	c := &controller{
		logger:          logger,
		gateway:         p.Gateway,
		sessions:        p.Sessions,
		connections:     p.Connections,
		correlation:     p.Correlation,
		clock:           p.Clock,
		client:          client,
		shutdownTimeout: shutdownTimeout,
		stopping:        make(map[string]struct{}),
		notifications:   notifier.NewRegistry[entity.NotificationEvent]("notifications", logger),
		diagnostics:     notifier.NewRegistry[entity.DiagnosticsEvent]("diagnostics", logger),
		malformed:       p.Stats.SubScope("dispatch").Counter("malformed"),
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				c.unsubscribeInbound = c.gateway.Subscribe(c.OnMessage)
				return nil
			},
			OnStop: c.dispose,
		})
	}
	return c, nil
}

// dispose stops every session, fails whatever is still pending and detaches from the gateway.
func (c *controller) dispose(ctx context.Context) error {
	if err := c.StopAll(ctx); err != nil {
		c.logger.Warnw("stopping sessions", "error", err)
	}
	if n := c.correlation.CancelAll(errors.ClientClosedError); n > 0 {
		c.logger.Infow("cancelled pending requests", "count", n)
	}
	if c.unsubscribeInbound != nil {
		c.unsubscribeInbound()
	}
	return nil
}

func (c *controller) Start(ctx context.Context, language string, rootPath string) (string, error) {
	if rootPath != "" {
		rootPath = filepath.Clean(rootPath)
	}

	id, err, _ := c.starts.Do(language+"\x00"+rootPath, func() (interface{}, error) {
		if s, ok := c.sessions.FindByLanguageRoot(ctx, language, rootPath); ok {
			return s.ID, nil
		}
		return c.startSession(ctx, language, rootPath)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func (c *controller) startSession(ctx context.Context, language string, rootPath string) (string, error) {
	logger := c.logger.With("language", language, "root", rootPath)

	if !c.gateway.CheckAvailable(ctx, language) {
		status := c.gateway.GetStatus(ctx, language)
		if status.CanDownload {
			return "", &errors.ServerNotInstalledError{Language: language, DownloadURL: status.DownloadURL}
		}
		return "", &errors.ServerUnavailableError{Language: language}
	}

	started := c.clock.Now()
	logger.Infow("starting session", "state", entity.SessionStateStarting.String())
	result := c.gateway.Start(ctx, language, rootPath)
	if !result.Success {
		return "", &errors.ServerStartError{Language: language, RootPath: rootPath, Reason: result.Error}
	}

	s := &entity.Session{
		ID:        result.SessionID,
		Language:  language,
		RootPath:  rootPath,
		State:     entity.SessionStateInitializing,
		Documents: make(map[uri.URI]int32),
	}
	if err := c.sessions.Set(ctx, s); err != nil {
		c.abandon(ctx, s.ID)
		return "", err
	}

	if err := c.handshake(ctx, s); err != nil {
		c.abandon(ctx, s.ID)
		return "", fmt.Errorf("initializing %s session for %q: %w", language, rootPath, err)
	}

	// A Stop issued during the handshake owns the teardown; it must not be undone here.
	if ready, err := c.sessions.CompareAndSetState(ctx, s.ID, entity.SessionStateInitializing, entity.SessionStateReady); err != nil || !ready {
		logger.Infow("session stopped during start", "session", s.ID)
		return "", &errors.SessionStoppedError{SessionID: s.ID}
	}
	logger.Infow("session ready", "session", s.ID, "elapsed", c.clock.Now().Sub(started))
	return s.ID, nil
}

func (c *controller) handshake(ctx context.Context, s *entity.Session) error {
	params := mapper.RootToInitializeParams(c.client, s.RootPath)
	if _, err := c.request(ctx, s.ID, protocol.MethodInitialize, params, 0); err != nil {
		return err
	}
	return c.notify(ctx, s.ID, protocol.MethodInitialized, &protocol.InitializedParams{})
}

// abandon tears down a session whose start failed. The server gets no shutdown request.
func (c *controller) abandon(ctx context.Context, sessionID string) {
	c.correlation.CancelSession(sessionID, &errors.SessionStoppedError{SessionID: sessionID})
	if err := c.gateway.Stop(ctx, sessionID); err != nil {
		c.logger.Warnw("stopping server after failed start", "session", sessionID, "error", err)
	}
	c.connections.UnregisterBySession(ctx, sessionID)
	c.sessions.Delete(ctx, sessionID)
}

func (c *controller) Stop(ctx context.Context, sessionID string) error {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil
	}

	c.stoppingMu.Lock()
	if _, ok := c.stopping[sessionID]; ok {
		c.stoppingMu.Unlock()
		return nil
	}
	c.stopping[sessionID] = struct{}{}
	c.stoppingMu.Unlock()
	defer func() {
		c.stoppingMu.Lock()
		delete(c.stopping, sessionID)
		c.stoppingMu.Unlock()
	}()

	logger := c.logger.With("session", sessionID)
	if err := c.sessions.SetState(ctx, sessionID, entity.SessionStateShuttingDown); err != nil {
		return nil
	}

	// Servers that never finished the handshake are not asked to shut down.
	if s.State == entity.SessionStateReady {
		if _, err := c.request(ctx, sessionID, protocol.MethodShutdown, nil, c.shutdownTimeout); err != nil {
			logger.Warnw("shutdown request failed", "error", err)
		}
		if err := c.notify(ctx, sessionID, protocol.MethodExit, nil); err != nil {
			logger.Warnw("exit notification failed", "error", err)
		}
	}

	cancelled := c.correlation.CancelSession(sessionID, &errors.SessionStoppedError{SessionID: sessionID})
	if err := c.gateway.Stop(ctx, sessionID); err != nil {
		logger.Warnw("stopping server process", "error", err)
	}
	removed := c.connections.UnregisterBySession(ctx, sessionID)
	c.sessions.Delete(ctx, sessionID)

	logger.Infow("session stopped", "cancelledRequests", cancelled, "removedConnections", removed)
	return nil
}

func (c *controller) StopAll(ctx context.Context) error {
	var g errgroup.Group
	for _, s := range c.sessions.List(ctx) {
		id := s.ID
		g.Go(func() error {
			return c.Stop(ctx, id)
		})
	}
	return g.Wait()
}

func (c *controller) Session(ctx context.Context, sessionID string) (*entity.Session, error) {
	return c.sessions.Get(ctx, sessionID)
}

func (c *controller) Sessions(ctx context.Context) []*entity.Session {
	return c.sessions.List(ctx)
}

func (c *controller) Route(ctx context.Context, filePath string, language string, rootPath string) (string, bool) {
	if conn, ok := c.connections.GetConnection(ctx, filePath); ok {
		return conn.SessionID, true
	}
	if rootPath == "" {
		return "", false
	}
	rootPath = filepath.Clean(rootPath)
	if conn, ok := c.connections.GetConnectionByRoot(ctx, rootPath, language); ok {
		return conn.SessionID, true
	}
	if s, ok := c.sessions.FindByLanguageRoot(ctx, language, rootPath); ok {
		return s.ID, true
	}
	return "", false
}

func (c *controller) Request(ctx context.Context, sessionID string, method string, params interface{}, result interface{}) error {
	if _, err := c.readySession(ctx, sessionID); err != nil {
		return err
	}

	raw, err := c.request(ctx, sessionID, method, params, 0)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if out, ok := result.(*json.RawMessage); ok {
		*out = raw
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// request sends method to the server of sessionID regardless of its state and waits for the response.
// A failed send rejects the pending entry immediately.
func (c *controller) request(ctx context.Context, sessionID string, method string, params interface{}, timeout time.Duration) (json.RawMessage, error) {
	id := c.correlation.NextID()
	raw, err := mapper.RequestToBytes(id, method, params)
	if err != nil {
		return nil, err
	}

	pending := c.correlation.Register(sessionID, id, method, timeout)
	if err := c.gateway.Send(ctx, sessionID, raw); err != nil {
		c.correlation.Reject(id, fmt.Errorf("sending %s: %w", method, err))
	}
	return pending.Wait(ctx)
}

func (c *controller) notify(ctx context.Context, sessionID string, method string, params interface{}) error {
	raw, err := mapper.NotificationToBytes(method, params)
	if err != nil {
		return err
	}
	if err := c.gateway.Send(ctx, sessionID, raw); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}
	return nil
}

func (c *controller) readySession(ctx context.Context, sessionID string) (*entity.Session, error) {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Ready() {
		return nil, &errors.NotInitializedError{SessionID: sessionID, State: s.State.String()}
	}
	return s, nil
}
