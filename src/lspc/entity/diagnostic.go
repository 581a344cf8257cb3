package entity

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Severity of a diagnostic in the client's own vocabulary.
type Severity string

const (
	// SeverityError marks a diagnostic as an error.
	SeverityError Severity = "error"
	// SeverityWarning marks a diagnostic as a warning.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks a diagnostic as informational.
	SeverityInfo Severity = "info"
	// SeverityHint marks a diagnostic as a hint.
	SeverityHint Severity = "hint"
)

// Diagnostic is the stable internal shape of a server finding.
type Diagnostic struct {
	ID       string         `json:"id"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Range    protocol.Range `json:"range"`
	Code     string         `json:"code,omitempty"`
	Source   string         `json:"source,omitempty"`
}

// SeverityCounts tallies diagnostics by severity.
type SeverityCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Hints    int `json:"hints"`
}

// CountSeverities tallies a list of diagnostics.
func CountSeverities(diagnostics []Diagnostic) SeverityCounts {
	var c SeverityCounts
	for _, d := range diagnostics {
		c.add(d.Severity, 1)
	}
	return c
}

// Plus returns the element-wise sum of c and o.
func (c SeverityCounts) Plus(o SeverityCounts) SeverityCounts {
	return SeverityCounts{
		Errors:   c.Errors + o.Errors,
		Warnings: c.Warnings + o.Warnings,
		Info:     c.Info + o.Info,
		Hints:    c.Hints + o.Hints,
	}
}

// Minus returns the element-wise difference of c and o.
func (c SeverityCounts) Minus(o SeverityCounts) SeverityCounts {
	return SeverityCounts{
		Errors:   c.Errors - o.Errors,
		Warnings: c.Warnings - o.Warnings,
		Info:     c.Info - o.Info,
		Hints:    c.Hints - o.Hints,
	}
}

// Total returns the number of diagnostics across all severities.
func (c SeverityCounts) Total() int {
	return c.Errors + c.Warnings + c.Info + c.Hints
}

func (c *SeverityCounts) add(s Severity, n int) {
	switch s {
	case SeverityError:
		c.Errors += n
	case SeverityWarning:
		c.Warnings += n
	case SeverityInfo:
		c.Info += n
	case SeverityHint:
		c.Hints += n
	}
}

// SeverityFilter selects which severities are kept when diagnostics are stored.
type SeverityFilter struct {
	Errors   bool `yaml:"errors"`
	Warnings bool `yaml:"warnings"`
	Info     bool `yaml:"info"`
	Hints    bool `yaml:"hints"`
}

// DefaultSeverityFilter shows every severity.
func DefaultSeverityFilter() SeverityFilter {
	return SeverityFilter{Errors: true, Warnings: true, Info: true, Hints: true}
}

// Allows reports whether diagnostics of severity s pass the filter.
func (f SeverityFilter) Allows(s Severity) bool {
	switch s {
	case SeverityError:
		return f.Errors
	case SeverityWarning:
		return f.Warnings
	case SeverityInfo:
		return f.Info
	case SeverityHint:
		return f.Hints
	default:
		return false
	}
}

// DiagnosticsEvent is a publishDiagnostics push from a server.
type DiagnosticsEvent struct {
	SessionID   string
	URI         uri.URI
	Version     uint32
	Diagnostics []protocol.Diagnostic
}
