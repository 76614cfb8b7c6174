package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"codec-generator/internal/common"
)

// Codes of the diagnostics the generator reports.
const (
	// CodeBuilder notes a structure parsed through a builder.
	CodeBuilder = "builder"
	// CodeSparseNull warns that a protocol cannot carry the nulls of a sparse
	// container.
	CodeSparseNull = "sparse-null"
	// CodeNoOperations warns about a service without operations.
	CodeNoOperations = "no-operations"
	// CodeUnsupported reports a shape no codec can handle.
	CodeUnsupported = "unsupported"
)

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Shape identifies which shape this relates to (if any).
	Shape string
	// Member identifies which member of Shape this relates to (if any).
	Member string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

func newDiagnostic(severity DiagnosticSeverity, code, message, shape, member string) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		Shape:    shape,
		Member:   member,
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, shape, member string) {
	d.Errors = append(d.Errors, newDiagnostic(DiagnosticError, code, message, shape, member))
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, shape, member string) {
	d.Warnings = append(d.Warnings, newDiagnostic(DiagnosticWarning, code, message, shape, member))
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, shape, member string) {
	d.Infos = append(d.Infos, newDiagnostic(DiagnosticInfo, code, message, shape, member))
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix string

	switch {
	case d.Shape != "" && d.Member != "":
		prefix = d.Shape + "$" + d.Member
	case d.Shape != "":
		prefix = d.Shape
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if prefix != "" {
		return prefix + ": " + msg
	}

	return msg
}
