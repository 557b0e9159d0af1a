// Package wasm decomposes WebAssembly binaries into section payloads.
//
// The loader performs one forward pass over the byte buffer, capturing
// each section's content range, item count and raw bytes without
// validating module semantics. Code sections are additionally split
// into per-function-body payloads so callers can decode instruction
// streams. Typed entry readers (ImportEntries, ExportEntries,
// FuncRefElements) decode individual vector-shaped sections on demand.
//
// Both core modules (layer 0) and component binaries (layer 1) are
// recognized; unknown section IDs degrade to KindUnknown payloads
// rather than parse failures.
package wasm
