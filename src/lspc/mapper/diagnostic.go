package mapper

import (
	"fmt"

	"github.com/uber/lspc/src/lspc/entity"
	"go.lsp.dev/protocol"
)

// SeverityFromProtocol maps a protocol severity onto the client's vocabulary.
// An absent severity is treated as an error.
func SeverityFromProtocol(s protocol.DiagnosticSeverity) entity.Severity {
	switch s {
	case 0, protocol.DiagnosticSeverityError:
		return entity.SeverityError
	case protocol.DiagnosticSeverityWarning:
		return entity.SeverityWarning
	case protocol.DiagnosticSeverityInformation:
		return entity.SeverityInfo
	default:
		return entity.SeverityHint
	}
}

// DiagnosticToEntity maps the index-th diagnostic of a push to its internal shape.
func DiagnosticToEntity(index int, d protocol.Diagnostic) entity.Diagnostic {
	result := entity.Diagnostic{
		ID:       fmt.Sprintf("diag-%d-%d-%d", index, d.Range.Start.Line, d.Range.Start.Character),
		Severity: SeverityFromProtocol(d.Severity),
		Message:  d.Message,
		Range:    d.Range,
		Source:   d.Source,
	}
	if d.Code != nil {
		result.Code = fmt.Sprint(d.Code)
	}
	return result
}

// DiagnosticsToEntity maps a push and keeps only the severities that pass filter.
func DiagnosticsToEntity(diagnostics []protocol.Diagnostic, filter entity.SeverityFilter) []entity.Diagnostic {
	result := make([]entity.Diagnostic, 0, len(diagnostics))
	for i, d := range diagnostics {
		mapped := DiagnosticToEntity(i, d)
		if filter.Allows(mapped.Severity) {
			result = append(result, mapped)
		}
	}
	return result
}
