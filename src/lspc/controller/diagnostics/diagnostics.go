// Package diagnostics keeps the latest diagnostics per file and running severity counts across all files.
package diagnostics

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/uber-go/tally"
	sessionmanager "github.com/uber/lspc/src/lspc/controller/session-manager"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/mapper"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey = "diagnostics"
	_showKey = "diagnostics.show"
)

// Controller aggregates diagnostics pushed by servers.
type Controller interface {
	// SetDiagnostics replaces the diagnostics stored for docURI.
	SetDiagnostics(ctx context.Context, docURI uri.URI, diagnostics []protocol.Diagnostic)
	// ClearDiagnostics forgets docURI. Files without stored diagnostics are left alone.
	ClearDiagnostics(ctx context.Context, docURI uri.URI)
	ClearAll(ctx context.Context)

	GetDiagnostics(ctx context.Context, filePath string) []entity.Diagnostic
	Counts(ctx context.Context) entity.SeverityCounts
	FileCounts(ctx context.Context, filePath string) entity.SeverityCounts
	// Files lists every file with stored diagnostics, sorted.
	Files(ctx context.Context) []string

	// SetFilter changes which severities are kept by subsequent pushes.
	SetFilter(ctx context.Context, filter entity.SeverityFilter)
	Filter(ctx context.Context) entity.SeverityFilter
}

// Params are inbound parameters to initialize a new Controller.
type Params struct {
	fx.In

	Config    config.Provider
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	Lifecycle fx.Lifecycle
	Sessions  sessionmanager.Controller
}

type severityGauges struct {
	errors   tally.Gauge
	warnings tally.Gauge
	info     tally.Gauge
	hints    tally.Gauge
}

type controller struct {
	logger *zap.SugaredLogger
	gauges severityGauges

	mu        sync.Mutex
	filter    entity.SeverityFilter
	files     map[string][]entity.Diagnostic
	aggregate entity.SeverityCounts

	unsubscribe func()
}

// New creates a new diagnostics Controller.
func New(p Params) (Controller, error) {
	filter := entity.DefaultSeverityFilter()
	if p.Config != nil {
		if err := p.Config.Get(_showKey).Populate(&filter); err != nil {
			return nil, fmt.Errorf("getting configuration for %q: %w", _showKey, err)
		}
	}

	stats := p.Stats.SubScope(_nameKey)
	c := &controller{
		logger: p.Logger.With("plugin", _nameKey),
		gauges: severityGauges{
			errors:   stats.Gauge("errors"),
			warnings: stats.Gauge("warnings"),
			info:     stats.Gauge("info"),
			hints:    stats.Gauge("hints"),
		},
		filter: filter,
		files:  make(map[string][]entity.Diagnostic),
	}

	if p.Lifecycle != nil && p.Sessions != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				c.unsubscribe = p.Sessions.SubscribeDiagnostics(c.onDiagnostics)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if c.unsubscribe != nil {
					c.unsubscribe()
				}
				return nil
			},
		})
	}
	return c, nil
}

func (c *controller) onDiagnostics(e entity.DiagnosticsEvent) {
	c.SetDiagnostics(context.Background(), e.URI, e.Diagnostics)
}

func (c *controller) SetDiagnostics(ctx context.Context, docURI uri.URI, diagnostics []protocol.Diagnostic) {
	key := fileKey(string(docURI))

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := mapper.DiagnosticsToEntity(diagnostics, c.filter)
	before := entity.CountSeverities(c.files[key])
	after := entity.CountSeverities(stored)
	c.aggregate = c.aggregate.Plus(after.Minus(before))

	if len(stored) == 0 {
		delete(c.files, key)
	} else {
		c.files[key] = stored
	}
	c.report()

	c.logger.Debugw("diagnostics updated", "file", key, "received", len(diagnostics), "stored", len(stored))
}

func (c *controller) ClearDiagnostics(ctx context.Context, docURI uri.URI) {
	key := fileKey(string(docURI))

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.files[key]
	if !ok {
		return
	}
	c.aggregate = c.aggregate.Minus(entity.CountSeverities(stored))
	delete(c.files, key)
	c.report()
}

func (c *controller) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = make(map[string][]entity.Diagnostic)
	c.aggregate = entity.SeverityCounts{}
	c.report()
}

func (c *controller) GetDiagnostics(ctx context.Context, filePath string) []entity.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.files[fileKey(filePath)]
	result := make([]entity.Diagnostic, len(stored))
	copy(result, stored)
	return result
}

func (c *controller) Counts(ctx context.Context) entity.SeverityCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aggregate
}

func (c *controller) FileCounts(ctx context.Context, filePath string) entity.SeverityCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return entity.CountSeverities(c.files[fileKey(filePath)])
}

func (c *controller) Files(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make([]string, 0, len(c.files))
	for f := range c.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (c *controller) SetFilter(ctx context.Context, filter entity.SeverityFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
}

func (c *controller) Filter(ctx context.Context) entity.SeverityFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// report must be called with mu held.
func (c *controller) report() {
	c.gauges.errors.Update(float64(c.aggregate.Errors))
	c.gauges.warnings.Update(float64(c.aggregate.Warnings))
	c.gauges.info.Update(float64(c.aggregate.Info))
	c.gauges.hints.Update(float64(c.aggregate.Hints))
}

// fileKey maps a URI or a path to the path diagnostics are stored under.
func fileKey(s string) string {
	if strings.HasPrefix(s, "file://") {
		s = mapper.URIToFilePath(uri.URI(s))
	}
	if s == "" {
		return s
	}
	return filepath.Clean(s)
}
