// Package wasmaudit provides structural inspection of WebAssembly binary
// modules: section byte accounting, function index space reconstruction,
// static call graphs, dead-function detection, and operator statistics.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmaudit/           Root package (documentation only)
//	├── wasm/            Binary section framing, payload model, operator decoding
//	├── analysis/        Byte accounting, call graph, dead code, report rendering
//	├── codec/           Placeholder .wasm <-> .wz transforms
//	├── errors/          Structured error types with phase and kind
//	└── cmd/wazm/        Command line interface and interactive report browser
//
// # Quick Start
//
// Load a module and print its structural report:
//
//	m, err := wasm.Load("module.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a, err := analysis.Analyze(m, analysis.Options{
//	    Sections:  true,
//	    Functions: true,
//	    Operators: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(a.Report())
//
// The loader performs a single forward pass over the byte buffer and never
// executes or validates module semantics beyond section framing. The analysis
// engine performs one further pass over the collected payloads.
package wasmaudit
