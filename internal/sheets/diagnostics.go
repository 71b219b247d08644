// Package sheets drives the batch: it recognizes which input drawings
// carry a title block, numbers them, rewrites their fields and collects
// the extracted titles for the contents table.
package sheets

import "fmt"

// Code categorizes a per-file or batch-level condition.
type Code int

const (
	CodeUnknown Code = iota
	CodeConfigError
	CodeOutputDirExhausted
	CodeTitleBlockNotFound
	CodeAmbiguousTitleBlock
	CodeFieldUnresolved
	CodeReadFailure
	CodeWriteFailure
)

// Severity indicates how a condition affects the batch.
type Severity int

const (
	// SeverityWarning conditions leave the file in the batch.
	SeverityWarning Severity = iota
	// SeverityError conditions exclude the file but the batch continues.
	SeverityError
	// SeverityFatal conditions abort the whole run.
	SeverityFatal
)

// String returns a string representation of the Code
func (c Code) String() string {
	switch c {
	case CodeConfigError:
		return "CONFIG_ERROR"
	case CodeOutputDirExhausted:
		return "OUTPUT_DIR_EXHAUSTED"
	case CodeTitleBlockNotFound:
		return "TITLE_BLOCK_NOT_FOUND"
	case CodeAmbiguousTitleBlock:
		return "AMBIGUOUS_TITLE_BLOCK"
	case CodeFieldUnresolved:
		return "FIELD_UNRESOLVED"
	case CodeReadFailure:
		return "READ_FAILURE"
	case CodeWriteFailure:
		return "WRITE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given code
func (c Code) GetSeverity() Severity {
	switch c {
	case CodeConfigError, CodeOutputDirExhausted:
		return SeverityFatal
	case CodeReadFailure, CodeWriteFailure:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Diagnostic is one reported condition, tied to an input file when the
// condition is per-file.
type Diagnostic struct {
	Code    Code
	File    string
	Message string
}

// String formats the diagnostic for the end-of-run summary.
func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("[%s] %s: %s", d.Code, d.File, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// diagnostics accumulates conditions across the batch, never aborting on
// recoverable ones.
type diagnostics []Diagnostic

func (ds *diagnostics) add(code Code, file, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Code: code, File: file, Message: fmt.Sprintf(format, args...)})
}
