// Package correlation matches responses to outstanding requests by id.
package correlation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey        = "correlation"
	_requestsKey    = "requests"
	_defaultTimeout = 30 * time.Second
)

// Engine tracks one pending entry per outstanding request id.
type Engine interface {
	// NextID returns a strictly increasing id that is never reused by this Engine.
	NextID() int32
	// Register stores a pending entry for id and arms its timeout. A zero timeout uses the configured default.
	Register(sessionID string, id int32, method string, timeout time.Duration) *Pending
	// Resolve completes id with result. Unknown ids are logged and dropped.
	Resolve(id int32, result json.RawMessage) bool
	// Reject completes id with err. Unknown ids are logged and dropped.
	Reject(id int32, err error) bool
	// CancelSession rejects every entry registered for sessionID with reason.
	CancelSession(sessionID string, reason error) int
	// CancelAll rejects every pending entry with reason. Calling it again is a no-op.
	CancelAll(reason error) int
	// Method returns the method name of a pending id.
	Method(id int32) (string, bool)
	PendingCount() int
}

// Params are inbound parameters to initialize a new Engine.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	Stats  tally.Scope
	Clock  clock.Clock
}

// RequestsConfig is the "requests" configuration block.
type RequestsConfig struct {
	TimeoutMs         int `yaml:"timeoutMs"`
	ShutdownTimeoutMs int `yaml:"shutdownTimeoutMs"`
}

type outcome struct {
	result json.RawMessage
	err    error
}

// Pending is a single outstanding request. It completes exactly once.
type Pending struct {
	ID        int32
	Method    string
	SessionID string
	Timeout   time.Duration

	done   chan outcome
	timer  clock.Timer
	engine *engine
}

// Wait blocks until the request completes or ctx is done. A cancelled context rejects the entry
// unless a response, timeout or cancellation got there first.
func (p *Pending) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		// The entry may have completed concurrently; its outcome is then already buffered.
		p.engine.complete(p.ID, outcome{err: ctx.Err()})
		o := <-p.done
		return o.result, o.err
	}
}

type engine struct {
	logger         *zap.SugaredLogger
	clock          clock.Clock
	defaultTimeout time.Duration

	lastID  atomic.Int32
	mu      sync.Mutex
	pending map[int32]*Pending

	pendingGauge    tally.Gauge
	timeouts        tally.Counter
	unknownResponse tally.Counter
}

// New creates a new correlation Engine.
func New(p Params) Engine {
	timeout := _defaultTimeout
	if p.Config != nil {
		var cfg RequestsConfig
		if err := p.Config.Get(_requestsKey).Populate(&cfg); err == nil && cfg.TimeoutMs > 0 {
			timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
		}
	}

	stats := p.Stats.SubScope(_nameKey)
	return &engine{
		logger:          p.Logger.With("plugin", _nameKey),
		clock:           p.Clock,
		defaultTimeout:  timeout,
		pending:         make(map[int32]*Pending),
		pendingGauge:    stats.Gauge("pending"),
		timeouts:        stats.Counter("timeouts"),
		unknownResponse: stats.Counter("unknown_responses"),
	}
}

func (e *engine) NextID() int32 {
	return e.lastID.Add(1)
}

func (e *engine) Register(sessionID string, id int32, method string, timeout time.Duration) *Pending {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	p := &Pending{
		ID:        id,
		Method:    method,
		SessionID: sessionID,
		Timeout:   timeout,
		done:      make(chan outcome, 1),
		engine:    e,
	}

	e.mu.Lock()
	if previous, ok := e.pending[id]; ok {
		// Ids come from NextID, so a collision means a caller reused one.
		e.mu.Unlock()
		e.logger.Errorw("duplicate request id", "id", id, "method", method, "previousMethod", previous.Method)
		p.done <- outcome{err: errors.New("duplicate request id")}
		return p
	}
	e.pending[id] = p
	p.timer = e.clock.AfterFunc(timeout, func() { e.expire(id) })
	e.pendingGauge.Update(float64(len(e.pending)))
	e.mu.Unlock()

	return p
}

func (e *engine) Resolve(id int32, result json.RawMessage) bool {
	if !e.complete(id, outcome{result: result}) {
		e.unknown(id)
		return false
	}
	return true
}

func (e *engine) Reject(id int32, err error) bool {
	if !e.complete(id, outcome{err: err}) {
		e.unknown(id)
		return false
	}
	return true
}

func (e *engine) CancelSession(sessionID string, reason error) int {
	return e.cancel(reason, func(p *Pending) bool { return p.SessionID == sessionID })
}

func (e *engine) CancelAll(reason error) int {
	return e.cancel(reason, func(*Pending) bool { return true })
}

func (e *engine) Method(id int32) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pending[id]
	if !ok {
		return "", false
	}
	return p.Method, true
}

func (e *engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *engine) cancel(reason error, match func(*Pending) bool) int {
	e.mu.Lock()
	var cancelled []*Pending
	for id, p := range e.pending {
		if match(p) {
			delete(e.pending, id)
			cancelled = append(cancelled, p)
		}
	}
	e.pendingGauge.Update(float64(len(e.pending)))
	e.mu.Unlock()

	for _, p := range cancelled {
		p.finish(outcome{err: reason})
	}
	return len(cancelled)
}

func (e *engine) expire(id int32) {
	e.mu.Lock()
	p, ok := e.pending[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.pending, id)
	e.pendingGauge.Update(float64(len(e.pending)))
	e.mu.Unlock()

	e.timeouts.Inc(1)
	e.logger.Infow("request timed out", "id", id, "method", p.Method, "session", p.SessionID, "timeout", p.Timeout)
	p.finish(outcome{err: &errors.RequestTimeoutError{Method: p.Method, ID: id, Timeout: p.Timeout}})
}

// complete removes id from the pending set and delivers o. Only the caller that removes the entry delivers.
func (e *engine) complete(id int32, o outcome) bool {
	e.mu.Lock()
	p, ok := e.pending[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	delete(e.pending, id)
	e.pendingGauge.Update(float64(len(e.pending)))
	e.mu.Unlock()

	p.finish(o)
	return true
}

func (e *engine) unknown(id int32) {
	e.unknownResponse.Inc(1)
	e.logger.Warnw("response for unknown request", "id", id)
}

func (p *Pending) finish(o outcome) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.done <- o
}
