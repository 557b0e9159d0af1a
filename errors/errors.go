package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // module loading and section framing
	PhaseAnalyze    Phase = "analyze"    // structural analysis
	PhaseCompress   Phase = "compress"   // .wasm -> .wz transform
	PhaseDecompress Phase = "decompress" // .wz -> .wasm transform
)

// Kind categorizes the error
type Kind string

const (
	KindIoFailure       Kind = "io_failure"
	KindMalformedFormat Kind = "malformed_format"
	KindInvalidVersion  Kind = "invalid_version"
	KindOperatorDecode  Kind = "operator_decode"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// IO creates an I/O failure error for file read, stat, or path resolution
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIoFailure,
		Detail: detail,
		Cause:  cause,
	}
}

// Malformed creates a section framing error
func Malformed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMalformedFormat,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidVersion creates an error for a missing or zero format version
func InvalidVersion(source string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidVersion,
		Detail: fmt.Sprintf("invalid format version in %q", source),
	}
}

// OperatorDecode creates an error for an undecodable function body
func OperatorDecode(funcIdx uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseAnalyze,
		Kind:   KindOperatorDecode,
		Detail: fmt.Sprintf("decode operators of function %d", funcIdx),
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with phase and kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
