package wasm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wippyai/wasm-audit/errors"
	"github.com/wippyai/wasm-audit/wasm/internal/binary"
)

// Module is the immutable result of loading one binary module.
// Payloads preserve on-disk section order.
type Module struct {
	Source   string
	Version  uint16
	Layer    uint16 // 0 = core module, 1 = component
	FileSize int64
	Payloads []Payload
}

// Load reads the file at path and parses it into a Module.
func Load(path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "resolve path "+path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read "+abs, err)
	}
	return Parse(abs, data)
}

// Parse decomposes data into section payloads in a single forward pass.
// The source string is recorded verbatim for reporting.
func Parse(source string, data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil || magic != Magic {
		return nil, errors.Malformed("missing magic number", err)
	}
	verWord, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.Malformed("missing version word", err)
	}

	m := &Module{
		Source:   source,
		Version:  uint16(verWord),
		Layer:    uint16(verWord >> 16),
		FileSize: int64(len(data)),
	}
	if m.Version == 0 {
		return nil, errors.InvalidVersion(source)
	}

	m.Payloads = append(m.Payloads, Payload{
		Kind:  KindMagicHeader,
		Range: Range{Start: 0, End: 8},
		Data:  data[:8],
	})

	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errors.Malformed("section tag", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, errors.Malformed(fmt.Sprintf("section %d length", id), err)
		}
		start := r.Position()
		content, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.Malformed(fmt.Sprintf("section %d content truncated", id), err)
		}

		kind, counted := classifySection(id, m.Layer)
		p := Payload{
			Kind:  kind,
			Range: Range{Start: start, End: start + int(size)},
			Data:  content,
		}
		if counted {
			count, err := binary.NewReaderAt(content, start).ReadU32()
			if err != nil {
				return nil, errors.Malformed(fmt.Sprintf("%s item count", kind), err)
			}
			p.Count = &count
		}
		m.Payloads = append(m.Payloads, p)

		if kind == KindCodeStart {
			entries, err := splitCodeEntries(content, start, *p.Count)
			if err != nil {
				return nil, err
			}
			m.Payloads = append(m.Payloads, entries...)
		}
	}

	return m, nil
}

// splitCodeEntries decomposes a code section's content into one
// KindCodeEntry payload per function body.
func splitCodeEntries(content []byte, base int, count uint32) ([]Payload, error) {
	r := binary.NewReaderAt(content, base)
	if _, err := r.ReadU32(); err != nil {
		return nil, errors.Malformed("code section count", err)
	}

	entries := make([]Payload, 0, count)
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return nil, errors.Malformed(fmt.Sprintf("code entry %d size", i), err)
		}
		start := r.Position()
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.Malformed(fmt.Sprintf("code entry %d truncated", i), err)
		}
		entries = append(entries, Payload{
			Kind:  KindCodeEntry,
			Range: Range{Start: start, End: start + int(size)},
			Data:  body,
		})
	}
	return entries, nil
}

// classifySection maps a raw section ID to its payload kind and
// whether its content opens with an item count varint. Unknown IDs
// degrade to accounted-but-unclassified payloads rather than failing.
func classifySection(id byte, layer uint16) (SectionKind, bool) {
	if layer == 1 {
		return classifyComponentSection(id)
	}
	switch id {
	case SectionIDCustom:
		return KindCustom, false
	case SectionIDType:
		return KindType, true
	case SectionIDImport:
		return KindImport, true
	case SectionIDFunction:
		return KindFunction, true
	case SectionIDTable:
		return KindTable, true
	case SectionIDMemory:
		return KindMemory, true
	case SectionIDGlobal:
		return KindGlobal, true
	case SectionIDExport:
		return KindExport, true
	case SectionIDStart:
		return KindStart, false
	case SectionIDElement:
		return KindElement, true
	case SectionIDCode:
		return KindCodeStart, true
	case SectionIDData:
		return KindData, true
	case SectionIDDataCount:
		return KindDataCount, true
	case SectionIDTag:
		return KindTag, true
	default:
		return KindUnknown, false
	}
}

func classifyComponentSection(id byte) (SectionKind, bool) {
	switch id {
	case ComponentIDCustom:
		return KindCustom, false
	case ComponentIDCoreModule:
		return KindModule, false
	case ComponentIDCoreInstance:
		return KindInstance, true
	case ComponentIDCoreType:
		return KindCoreType, false
	case ComponentIDComponent:
		return KindComponent, false
	case ComponentIDInstance:
		return KindComponentInstance, false
	case ComponentIDAlias:
		return KindComponentAlias, false
	case ComponentIDType:
		return KindComponentType, false
	case ComponentIDCanonical:
		return KindComponentCanonical, false
	case ComponentIDStart:
		return KindComponentStart, false
	case ComponentIDImport:
		return KindComponentImport, false
	case ComponentIDExport:
		return KindComponentExport, false
	default:
		return KindUnknown, false
	}
}
