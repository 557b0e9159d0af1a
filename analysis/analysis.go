package analysis

import (
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-audit/errors"
	"github.com/wippyai/wasm-audit/wasm"
)

// Options select which sub-analyses to perform. Operators requires
// Functions, since operators are only visited while walking function
// bodies.
type Options struct {
	Sections  bool
	Functions bool
	Operators bool
	CallTree  bool
}

// OperatorUsage is one row of the operator frequency table.
type OperatorUsage struct {
	Name  string
	Count uint64
}

// Analysis aggregates the results of a single forward pass over a
// module's payloads. Created by Analyze; read-only afterward.
type Analysis struct {
	opts Options

	// Byte accounting
	Sections          []Section
	SectionsSizeTotal int

	// Function index space
	ImportedFunctions map[uint32]string
	ExportedFunctions map[uint32]string
	ImplementedCount  uint64
	firstCodeIndex    uint32

	// Call graph: caller index -> insertion-ordered deduplicated callees
	Calls           map[uint32][]uint32
	DynamicDispatch []uint32

	// Operator histogram
	OperatorCount   uint64
	SortedOperators []OperatorUsage
	operatorOrder   []string
	operatorCounts  map[string]uint64
}

// Analyze performs the requested sub-analyses over the module in one
// traversal of its payload sequence.
func Analyze(m *wasm.Module, opts Options) (*Analysis, error) {
	if opts.Operators && !opts.Functions {
		return nil, errors.InvalidInput(errors.PhaseAnalyze,
			"operator histogram requires function analysis")
	}

	a := &Analysis{
		opts:              opts,
		ImportedFunctions: make(map[uint32]string),
		ExportedFunctions: make(map[uint32]string),
		Calls:             make(map[uint32][]uint32),
		operatorCounts:    make(map[string]uint64),
	}

	var funcIndex uint32
	for _, p := range m.Payloads {
		var err error
		switch p.Kind {
		case wasm.KindMagicHeader:
			// No tag or length prefix; header size is defined as zero
			a.SectionsSizeTotal += p.Range.Size()
		case wasm.KindCodeEntry:
			err = a.addFunction(p, &funcIndex)
		case wasm.KindImport:
			err = a.addImports(p, &funcIndex)
		case wasm.KindExport:
			err = a.addExports(p)
		case wasm.KindElement:
			err = a.addElements(p)
		default:
			a.addSection(p)
		}
		if err != nil {
			return nil, err
		}
	}

	a.finish()

	Logger().Debug("analysis complete",
		zap.String("source", m.Source),
		zap.Int("payloads", len(m.Payloads)),
		zap.Uint64("implemented_functions", a.ImplementedCount),
		zap.Uint64("operators", a.OperatorCount))

	return a, nil
}

// addSection records one byte accounting row and grows the running
// total by the content size plus the reconstructed header size.
func (a *Analysis) addSection(p wasm.Payload) {
	if !a.opts.Sections {
		return
	}
	size := p.Range.Size()
	headerSize := wasm.SizeLEB128u(uint32(size)) + 1
	a.SectionsSizeTotal += size + headerSize
	a.Sections = append(a.Sections, Section{
		Type:           p.Kind.String(),
		HeaderLocation: p.Range.Start - headerSize,
		ItemCount:      p.Count,
		Range:          p.Range,
		Size:           size,
	})
}

// addImports assigns index space to function-kind imports, continuing
// the unified counter later consumed by code entries.
func (a *Analysis) addImports(p wasm.Payload, funcIndex *uint32) error {
	a.addSection(p)
	if !a.opts.Functions {
		return nil
	}

	entries, err := wasm.ImportEntries(p)
	if err != nil {
		return errors.Wrap(errors.PhaseAnalyze, errors.KindMalformedFormat, err,
			"decode import section")
	}
	for _, e := range entries {
		if e.Kind == wasm.ExtKindFunc {
			a.ImportedFunctions[*funcIndex] = e.Name
			*funcIndex++
		}
	}
	return nil
}

func (a *Analysis) addExports(p wasm.Payload) error {
	a.addSection(p)
	if !a.opts.Functions {
		return nil
	}

	entries, err := wasm.ExportEntries(p)
	if err != nil {
		return errors.Wrap(errors.PhaseAnalyze, errors.KindMalformedFormat, err,
			"decode export section")
	}
	for _, e := range entries {
		if e.Kind == wasm.ExtKindFunc {
			a.ExportedFunctions[e.Index] = e.Name
		}
	}
	return nil
}

// addElements accumulates function indexes from funcref element
// segments across the whole section into the dynamic dispatch set.
func (a *Analysis) addElements(p wasm.Payload) error {
	a.addSection(p)

	indexes, err := wasm.FuncRefElements(p)
	if err != nil {
		return errors.Wrap(errors.PhaseAnalyze, errors.KindMalformedFormat, err,
			"decode element section")
	}
	a.DynamicDispatch = append(a.DynamicDispatch, indexes...)
	return nil
}

// addFunction walks one function body, feeding the call graph and the
// operator histogram from the same instruction stream.
func (a *Analysis) addFunction(p wasm.Payload, funcIndex *uint32) error {
	if !a.opts.Functions {
		return nil
	}
	if a.ImplementedCount == 0 {
		a.firstCodeIndex = *funcIndex
	}

	r, err := wasm.NewBodyReader(p)
	if err != nil {
		return errors.OperatorDecode(*funcIndex, err)
	}
	for {
		op, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.OperatorDecode(*funcIndex, err)
		}

		if callee, ok := op.CallTarget(); ok {
			a.addCall(*funcIndex, callee)
		}
		if a.opts.Operators {
			name := op.Name()
			if _, seen := a.operatorCounts[name]; !seen {
				a.operatorOrder = append(a.operatorOrder, name)
			}
			a.operatorCounts[name]++
			a.OperatorCount++
		}
	}

	a.ImplementedCount++
	*funcIndex++
	return nil
}

// addCall records one caller -> callee edge, collapsing repeats.
func (a *Analysis) addCall(caller, callee uint32) {
	for _, c := range a.Calls[caller] {
		if c == callee {
			return
		}
	}
	a.Calls[caller] = append(a.Calls[caller], callee)
}

// finish sorts the histogram by descending count, stable on first-seen
// order for ties, and normalizes the dynamic dispatch set.
func (a *Analysis) finish() {
	a.SortedOperators = make([]OperatorUsage, 0, len(a.operatorOrder))
	for _, name := range a.operatorOrder {
		a.SortedOperators = append(a.SortedOperators, OperatorUsage{
			Name:  name,
			Count: a.operatorCounts[name],
		})
	}
	sort.SliceStable(a.SortedOperators, func(i, j int) bool {
		return a.SortedOperators[i].Count > a.SortedOperators[j].Count
	})

	a.DynamicDispatch = sortedUnique(a.DynamicDispatch)
}

// CalledFunctions returns every callee of the call graph, ascending
// and deduplicated.
func (a *Analysis) CalledFunctions() []uint32 {
	var called []uint32
	for _, callees := range a.Calls {
		called = append(called, callees...)
	}
	return sortedUnique(called)
}

// UncalledFunctions returns implemented function indexes that appear
// in none of the liveness sources: callee sets, imports, exports, or
// dynamic dispatch tables.
func (a *Analysis) UncalledFunctions() []uint32 {
	called := make(map[uint32]bool)
	for _, c := range a.CalledFunctions() {
		called[c] = true
	}
	dynamic := make(map[uint32]bool)
	for _, d := range a.DynamicDispatch {
		dynamic[d] = true
	}

	var uncalled []uint32
	for i := uint32(0); i < uint32(a.ImplementedCount); i++ {
		idx := a.firstCodeIndex + i
		if called[idx] || dynamic[idx] {
			continue
		}
		if _, ok := a.ImportedFunctions[idx]; ok {
			continue
		}
		if _, ok := a.ExportedFunctions[idx]; ok {
			continue
		}
		uncalled = append(uncalled, idx)
	}
	return uncalled
}

func sortedUnique(indexes []uint32) []uint32 {
	if len(indexes) == 0 {
		return nil
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })
	out := indexes[:1]
	for _, i := range indexes[1:] {
		if i != out[len(out)-1] {
			out = append(out, i)
		}
	}
	return out
}
