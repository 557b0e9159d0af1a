// Package analysis produces structural reports over parsed modules:
// per-section byte accounting, the unified function index space, a
// static call graph with dead-function detection, and an operator
// frequency histogram.
//
// All results come from a single forward pass over the module's
// payload sequence; Analyze owns its report exclusively until it
// returns it, so concurrent invocations never share state.
package analysis
