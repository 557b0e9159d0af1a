package wasm

import (
	"fmt"

	"github.com/wippyai/wasm-audit/wasm/internal/binary"
)

// ImportEntry is one import section entry.
type ImportEntry struct {
	Module string
	Name   string
	Kind   byte // ExtKindFunc, ExtKindTable, ...
}

// ImportEntries decodes the entries of a KindImport payload.
func ImportEntries(p Payload) ([]ImportEntry, error) {
	if p.Kind != KindImport {
		return nil, fmt.Errorf("payload is %s, not an import section", p.Kind)
	}
	r := binary.NewReaderAt(p.Data, p.Range.Start)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	entries := make([]ImportEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e ImportEntry
		if e.Module, err = r.ReadName(); err != nil {
			return nil, err
		}
		if e.Name, err = r.ReadName(); err != nil {
			return nil, err
		}
		if e.Kind, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if err = skipImportDesc(r, e.Kind); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func skipImportDesc(r *binary.Reader, kind byte) error {
	switch kind {
	case ExtKindFunc:
		_, err := r.ReadU32() // type index
		return err
	case ExtKindTable:
		if err := skipValType(r); err != nil {
			return err
		}
		return skipLimits(r)
	case ExtKindMemory:
		return skipLimits(r)
	case ExtKindGlobal:
		if err := skipValType(r); err != nil {
			return err
		}
		_, err := r.ReadByte() // mutability
		return err
	case ExtKindTag:
		if _, err := r.ReadByte(); err != nil { // attribute
			return err
		}
		_, err := r.ReadU32() // type index
		return err
	default:
		return fmt.Errorf("unknown import kind 0x%02x", kind)
	}
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	read := func() error {
		if flags&LimitsMemory64 != 0 {
			_, err := r.ReadU64()
			return err
		}
		_, err := r.ReadU32()
		return err
	}
	if err := read(); err != nil { // min
		return err
	}
	if flags&LimitsHasMax != 0 {
		return read()
	}
	return nil
}

// ExportEntry is one export section entry. Index lives in the
// namespace selected by Kind; for ExtKindFunc it is a function index.
type ExportEntry struct {
	Name  string
	Kind  byte
	Index uint32
}

// ExportEntries decodes the entries of a KindExport payload.
func ExportEntries(p Payload) ([]ExportEntry, error) {
	if p.Kind != KindExport {
		return nil, fmt.Errorf("payload is %s, not an export section", p.Kind)
	}
	r := binary.NewReaderAt(p.Data, p.Range.Start)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e ExportEntry
		if e.Name, err = r.ReadName(); err != nil {
			return nil, err
		}
		if e.Kind, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if e.Index, err = r.ReadU32(); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FuncRefElements decodes a KindElement payload and returns the
// function indexes of every segment whose items are a plain
// function-index list of funcref kind. Segments encoded as expression
// lists are skipped; their targets cannot be read without evaluating
// the expressions.
func FuncRefElements(p Payload) ([]uint32, error) {
	if p.Kind != KindElement {
		return nil, fmt.Errorf("payload is %s, not an element section", p.Kind)
	}
	r := binary.NewReaderAt(p.Data, p.Range.Start)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	var indexes []uint32
	for i := uint32(0); i < count; i++ {
		flags, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if flags > 7 {
			return nil, fmt.Errorf("unknown element segment flags %d", flags)
		}

		// Active segments with an explicit table index
		if flags&0b010 != 0 && flags&0b001 == 0 {
			if _, err := r.ReadU32(); err != nil {
				return nil, err
			}
		}
		// Active segments carry an offset expression
		if flags&0b001 == 0 {
			if err := skipConstExpr(r); err != nil {
				return nil, err
			}
		}

		if flags&0b100 == 0 {
			// Function index list; elemkind byte present unless flags == 0
			funcRef := true
			if flags != 0 {
				kind, err := r.ReadByte()
				if err != nil {
					return nil, err
				}
				funcRef = kind == 0x00
			}
			n, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			for j := uint32(0); j < n; j++ {
				idx, err := r.ReadU32()
				if err != nil {
					return nil, err
				}
				if funcRef {
					indexes = append(indexes, idx)
				}
			}
		} else {
			// Expression list; reftype byte present unless flags == 4
			if flags != 4 {
				if err := skipValType(r); err != nil {
					return nil, err
				}
			}
			n, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			for j := uint32(0); j < n; j++ {
				if err := skipConstExpr(r); err != nil {
					return nil, err
				}
			}
		}
	}
	return indexes, nil
}

// skipConstExpr consumes instructions up to and including the
// terminating end opcode. Constant expressions contain no nested
// blocks, so the first end closes the expression.
func skipConstExpr(r *binary.Reader) error {
	for {
		op, err := readOperator(r)
		if err != nil {
			return err
		}
		if op.Opcode == OpEnd {
			return nil
		}
	}
}
