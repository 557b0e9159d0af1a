package wasm

import (
	"fmt"
	"io"

	"github.com/wippyai/wasm-audit/wasm/internal/binary"
)

// Operator is one decoded instruction. Immediates are consumed while
// decoding but only the ones the analysis cares about are retained.
type Operator struct {
	Opcode byte
	Sub    uint32 // sub-opcode for prefixed instruction sets
	Index  uint32 // callee index for direct call instructions
}

// CallTarget returns the callee function index when the operator is a
// direct call (call or return_call).
func (o Operator) CallTarget() (uint32, bool) {
	if o.Opcode == OpCall || o.Opcode == OpReturnCall {
		return o.Index, true
	}
	return 0, false
}

// OperatorReader iterates the instruction stream of one function body.
type OperatorReader struct {
	r *binary.Reader
}

// NewBodyReader positions an OperatorReader past the local declarations
// of a KindCodeEntry payload, at the first instruction.
func NewBodyReader(p Payload) (*OperatorReader, error) {
	if p.Kind != KindCodeEntry {
		return nil, fmt.Errorf("payload is %s, not a code entry", p.Kind)
	}
	r := binary.NewReaderAt(p.Data, p.Range.Start)

	declCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < declCount; i++ {
		if _, err := r.ReadU32(); err != nil {
			return nil, err
		}
		if err := skipValType(r); err != nil {
			return nil, err
		}
	}
	return &OperatorReader{r: r}, nil
}

// Read decodes the next operator. It returns io.EOF once the body is
// exhausted.
func (or *OperatorReader) Read() (Operator, error) {
	if or.r.Len() == 0 {
		return Operator{}, io.EOF
	}
	return readOperator(or.r)
}

// readOperator decodes one instruction, consuming all its immediates.
func readOperator(r *binary.Reader) (Operator, error) {
	op, err := r.ReadByte()
	if err != nil {
		return Operator{}, err
	}
	out := Operator{Opcode: op}

	switch op {
	case OpBlock, OpLoop, OpIf, OpTry:
		// Block type (s33)
		_, err = r.ReadS64()

	case OpCatch, OpThrow, OpRethrow, OpDelegate,
		OpBr, OpBrIf,
		OpLocalGet, OpLocalSet, OpLocalTee,
		OpGlobalGet, OpGlobalSet,
		OpTableGet, OpTableSet,
		OpMemorySize, OpMemoryGrow,
		OpRefFunc, OpBrOnNull, OpBrOnNonNull,
		OpCallRef, OpReturnCallRef:
		_, err = r.ReadU32()

	case OpTryTable:
		err = skipTryTable(r)

	case OpBrTable:
		var n uint32
		if n, err = r.ReadU32(); err != nil {
			break
		}
		for i := uint32(0); i <= n; i++ {
			if _, err = r.ReadU32(); err != nil {
				break
			}
		}

	case OpCall, OpReturnCall:
		out.Index, err = r.ReadU32()

	case OpCallIndirect, OpReturnCallIndirect:
		if _, err = r.ReadU32(); err != nil {
			break
		}
		_, err = r.ReadU32()

	case OpI32Const, OpI64Const:
		_, err = r.ReadS64()

	case OpF32Const:
		_, err = r.ReadBytes(4)

	case OpF64Const:
		_, err = r.ReadBytes(8)

	case OpRefNull:
		// Heap type (s33)
		_, err = r.ReadS64()

	case OpSelectType:
		var n uint32
		if n, err = r.ReadU32(); err != nil {
			break
		}
		for i := uint32(0); i < n; i++ {
			if err = skipValType(r); err != nil {
				break
			}
		}

	case OpPrefixMisc:
		out.Sub, err = r.ReadU32()
		if err == nil {
			err = skipMiscImmediates(r, out.Sub)
		}

	case OpPrefixGC:
		out.Sub, err = r.ReadU32()
		if err == nil {
			err = skipGCImmediates(r, out.Sub)
		}

	case OpPrefixSIMD:
		out.Sub, err = r.ReadU32()
		if err == nil {
			err = skipSIMDImmediates(r, out.Sub)
		}

	case OpPrefixAtomic:
		out.Sub, err = r.ReadU32()
		if err == nil {
			if out.Sub == AtomicFence {
				_, err = r.ReadByte()
			} else {
				err = skipMemArg(r)
			}
		}

	default:
		if op >= OpI32Load && op <= OpI64Store32 {
			err = skipMemArg(r)
			break
		}
		if _, ok := opNames[op]; !ok {
			return Operator{}, fmt.Errorf("unknown opcode 0x%02x", op)
		}
		// No immediates
	}

	if err != nil {
		return Operator{}, err
	}
	return out, nil
}

func skipMemArg(r *binary.Reader) error {
	if _, err := r.ReadU32(); err != nil {
		return err
	}
	_, err := r.ReadU64()
	return err
}

func skipValType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b == ValRefNull || b == ValRef {
		// Heap type (s33)
		_, err = r.ReadS64()
	}
	return err
}

func skipTryTable(r *binary.Reader) error {
	if _, err := r.ReadS64(); err != nil { // block type
		return err
	}
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch kind {
		case CatchKindCatch, CatchKindCatchRef:
			if _, err := r.ReadU32(); err != nil { // tag index
				return err
			}
		case CatchKindCatchAll, CatchKindCatchAllRef:
		default:
			return fmt.Errorf("unknown catch clause kind 0x%02x", kind)
		}
		if _, err := r.ReadU32(); err != nil { // label
			return err
		}
	}
	return nil
}

func skipMiscImmediates(r *binary.Reader, sub uint32) error {
	switch sub {
	case MiscI32TruncSatF32S, MiscI32TruncSatF32U,
		MiscI32TruncSatF64S, MiscI32TruncSatF64U,
		MiscI64TruncSatF32S, MiscI64TruncSatF32U,
		MiscI64TruncSatF64S, MiscI64TruncSatF64U:
		return nil
	case MiscMemoryInit, MiscMemoryCopy, MiscTableInit, MiscTableCopy:
		if _, err := r.ReadU32(); err != nil {
			return err
		}
		_, err := r.ReadU32()
		return err
	case MiscDataDrop, MiscMemoryFill, MiscElemDrop,
		MiscTableGrow, MiscTableSize, MiscTableFill, MiscMemoryDiscard:
		_, err := r.ReadU32()
		return err
	default:
		return fmt.Errorf("unknown 0xFC sub-opcode 0x%02x", sub)
	}
}

func skipGCImmediates(r *binary.Reader, sub uint32) error {
	switch sub {
	case GCStructNew, GCStructNewDefault,
		GCArrayNew, GCArrayNewDefault,
		GCArrayGet, GCArrayGetS, GCArrayGetU, GCArraySet, GCArrayFill:
		_, err := r.ReadU32()
		return err
	case GCStructGet, GCStructGetS, GCStructGetU, GCStructSet,
		GCArrayNewFixed, GCArrayNewData, GCArrayNewElem,
		GCArrayCopy, GCArrayInitData, GCArrayInitElem:
		if _, err := r.ReadU32(); err != nil {
			return err
		}
		_, err := r.ReadU32()
		return err
	case GCRefTest, GCRefTestNull, GCRefCast, GCRefCastNull:
		_, err := r.ReadS64() // heap type
		return err
	case GCBrOnCast, GCBrOnCastFail:
		if _, err := r.ReadByte(); err != nil { // cast flags
			return err
		}
		if _, err := r.ReadU32(); err != nil { // label
			return err
		}
		if _, err := r.ReadS64(); err != nil { // source heap type
			return err
		}
		_, err := r.ReadS64() // target heap type
		return err
	case GCArrayLen, GCAnyConvertExtern, GCExternConvertAny,
		GCRefI31, GCI31GetS, GCI31GetU:
		return nil
	default:
		return fmt.Errorf("unknown 0xFB sub-opcode 0x%02x", sub)
	}
}

func skipSIMDImmediates(r *binary.Reader, sub uint32) error {
	switch {
	case sub <= SimdV128Load64Splat || sub == SimdV128Store,
		sub == SimdV128Load32Zero, sub == SimdV128Load64Zero:
		return skipMemArg(r)
	case sub == SimdV128Const, sub == SimdI8x16Shuffle:
		_, err := r.ReadBytes(16)
		return err
	case sub >= SimdI8x16ExtractLaneS && sub <= SimdF64x2ReplaceLane:
		_, err := r.ReadByte() // lane index
		return err
	case sub >= SimdV128Load8Lane && sub <= SimdV128Store64Lane:
		if err := skipMemArg(r); err != nil {
			return err
		}
		_, err := r.ReadByte() // lane index
		return err
	default:
		// Pure vector arithmetic carries no immediates
		return nil
	}
}
