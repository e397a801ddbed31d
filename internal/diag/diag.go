// Package diag reports compiler and runtime diagnostics with source
// positions, severities, and stable codes.
//
// Grounded on btouchard-gmx/internal/compiler/errors: the
// CompileError/ErrorList shape (a position, a message, a phase tag, and
// a collecting list) is kept, generalized per spec §4.7 into a
// Diagnostic with a Severity, a stable Code (e.g. "PARSE-UNEXPECTED-
// TOKEN"), and optional labeled secondary spans, plus a Reporter whose
// diagnostics each carry their source file name so several files can be
// reported together, even though the teacher only ever dealt with one
// file at a time. A separate file Table (files.go) maps byte offsets
// back to line/column.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Span is a labeled secondary source range attached to a Diagnostic,
// e.g. pointing at a prior declaration in a shadowing warning.
type Span struct {
	File  string
	Line  int
	Col   int
	Label string
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Code     string // stable identifier, e.g. "LEX-BAD-ESCAPE"
	Message  string
	File     string
	Line     int
	Column   int
	Offset   int
	Notes    []Span
}

func (d *Diagnostic) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s [%s] %s:%d:%d: %s", d.Severity, d.Code, d.File, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s [%s] %d:%d: %s", d.Severity, d.Code, d.Line, d.Column, d.Message)
}

// Reporter collects diagnostics across one or more files in the order
// they were reported, then offers a stable sort for display.
type Reporter struct {
	Diagnostics []*Diagnostic
}

// NewReporter constructs an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) add(sev Severity, file string, line, col, offset int, code, msg string, notes ...Span) *Diagnostic {
	d := &Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		File:     file,
		Line:     line,
		Column:   col,
		Offset:   offset,
		Notes:    notes,
	}
	r.Diagnostics = append(r.Diagnostics, d)
	return d
}

// Errorf records an error-severity diagnostic.
func (r *Reporter) Errorf(file string, line, col, offset int, code, format string, args ...interface{}) *Diagnostic {
	return r.add(SeverityError, file, line, col, offset, code, fmt.Sprintf(format, args...))
}

// Warnf records a warning-severity diagnostic.
func (r *Reporter) Warnf(file string, line, col, offset int, code, format string, args ...interface{}) *Diagnostic {
	return r.add(SeverityWarning, file, line, col, offset, code, fmt.Sprintf(format, args...))
}

// Infof records an info-severity diagnostic.
func (r *Reporter) Infof(file string, line, col, offset int, code, format string, args ...interface{}) *Diagnostic {
	return r.add(SeverityInfo, file, line, col, offset, code, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any collected diagnostic is error severity.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sorted returns the diagnostics ordered by file, then line, then column,
// leaving the receiver's original insertion order untouched.
func (r *Reporter) Sorted() []*Diagnostic {
	out := make([]*Diagnostic, len(r.Diagnostics))
	copy(out, r.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// String renders every diagnostic, one per line, in Sorted order.
func (r *Reporter) String() string {
	s := ""
	for _, d := range r.Sorted() {
		s += d.Error() + "\n"
	}
	return s
}
