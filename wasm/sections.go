package wasm

// SectionKind classifies one payload produced by the loader.
type SectionKind int

const (
	// KindMagicHeader covers the magic number and version word that
	// precede the first section. It has no tag or length prefix.
	KindMagicHeader SectionKind = iota

	KindCustom
	KindType
	KindImport
	KindFunction
	KindTable
	KindMemory
	KindGlobal
	KindExport
	KindStart
	KindElement
	KindCodeStart
	KindCodeEntry
	KindData
	KindDataCount
	KindTag

	// Component model (layer 1) section kinds
	KindModule
	KindInstance
	KindCoreType
	KindComponent
	KindComponentInstance
	KindComponentAlias
	KindComponentType
	KindComponentCanonical
	KindComponentStart
	KindComponentImport
	KindComponentExport

	KindUnknown
)

var sectionKindNames = map[SectionKind]string{
	KindMagicHeader:        "MagicHeader",
	KindCustom:             "CustomSection",
	KindType:               "TypeSection",
	KindImport:             "ImportSection",
	KindFunction:           "FunctionSection",
	KindTable:              "TableSection",
	KindMemory:             "MemorySection",
	KindGlobal:             "GlobalSection",
	KindExport:             "ExportSection",
	KindStart:              "StartSection",
	KindElement:            "ElementSection",
	KindCodeStart:          "CodeSectionStart",
	KindCodeEntry:          "CodeSectionEntry",
	KindData:               "DataSection",
	KindDataCount:          "DataCountSection",
	KindTag:                "TagSection",
	KindModule:             "ModuleSection",
	KindInstance:           "InstanceSection",
	KindCoreType:           "CoreTypeSection",
	KindComponent:          "ComponentSection",
	KindComponentInstance:  "ComponentInstanceSection",
	KindComponentAlias:     "ComponentAliasSection",
	KindComponentType:      "ComponentTypeSection",
	KindComponentCanonical: "ComponentCanonicalSection",
	KindComponentStart:     "ComponentStartSection",
	KindComponentImport:    "ComponentImportSection",
	KindComponentExport:    "ComponentExportSection",
}

// String returns the display label for the section kind.
func (k SectionKind) String() string {
	if name, ok := sectionKindNames[k]; ok {
		return name
	}
	return "UnknownSection"
}

// Range is a half-open [Start, End) byte span within the source buffer.
type Range struct {
	Start int
	End   int
}

// Size returns the number of bytes the range covers.
func (r Range) Size() int {
	return r.End - r.Start
}

// Payload is one classified section framing record. Range covers the
// section content only; the tag byte and length varint precede it in
// the stream. Count is the leading item count for vector-shaped
// sections, nil otherwise. Data aliases the content bytes of the
// source buffer and must not be mutated.
//
// Code sections produce one KindCodeStart payload for the whole
// section followed by one KindCodeEntry payload per function body,
// whose Range and Data cover that body (local declarations included,
// body size varint excluded).
type Payload struct {
	Kind  SectionKind
	Range Range
	Count *uint32
	Data  []byte
}
