// Package errors provides structured error types for module inspection.
//
// Every error carries a Phase (load, analyze, compress, decompress) and a
// Kind (io_failure, malformed_format, invalid_version, operator_decode,
// invalid_input), so callers can match on where and why processing failed
// without parsing message strings:
//
//	if errors.Is(err, &auditerrors.Error{Phase: auditerrors.PhaseLoad, Kind: auditerrors.KindInvalidVersion}) {
//	    // not a wasm file worth retrying
//	}
//
// All errors are terminal to the operation that produced them; there is no
// partial-result recovery.
package errors
