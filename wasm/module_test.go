package wasm_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-audit/errors"
	"github.com/wippyai/wasm-audit/wasm"
)

// section frames content as one binary section: tag byte, LEB128
// length, content bytes.
func section(id byte, content []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(id)
	wasm.WriteLEB128u(&buf, uint32(len(content)))
	buf.Write(content)
	return buf.Bytes()
}

func name(s string) []byte {
	var buf bytes.Buffer
	wasm.WriteLEB128u(&buf, uint32(len(s)))
	buf.WriteString(s)
	return buf.Bytes()
}

func vec(items ...[]byte) []byte {
	var buf bytes.Buffer
	wasm.WriteLEB128u(&buf, uint32(len(items)))
	for _, item := range items {
		buf.Write(item)
	}
	return buf.Bytes()
}

// testModule builds a small two-function module:
//
//	#0 imported env.log
//	#1 implemented, exported as "run", calls #2
//	#2 implemented, listed in a funcref element segment
func testModule() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	// type: () -> ()
	buf.Write(section(wasm.SectionIDType, vec([]byte{0x60, 0x00, 0x00})))
	// import: env.log func type 0
	imp := append(append(name("env"), name("log")...), wasm.ExtKindFunc, 0x00)
	buf.Write(section(wasm.SectionIDImport, vec(imp)))
	// function: two bodies of type 0
	buf.Write(section(wasm.SectionIDFunction, vec([]byte{0x00}, []byte{0x00})))
	// export: "run" -> func 1
	exp := append(name("run"), wasm.ExtKindFunc, 0x01)
	buf.Write(section(wasm.SectionIDExport, vec(exp)))
	// element: active funcref segment {2}
	elem := []byte{0x00, wasm.OpI32Const, 0x00, wasm.OpEnd, 0x01, 0x02}
	buf.Write(section(wasm.SectionIDElement, vec(elem)))
	// code: body 1 calls #2, body 2 has two i32 locals
	body1 := []byte{0x00, wasm.OpCall, 0x02, wasm.OpNop, wasm.OpEnd}
	body2 := []byte{0x01, 0x02, 0x7F, wasm.OpI32Const, 0x01, wasm.OpDrop, wasm.OpEnd}
	buf.Write(section(wasm.SectionIDCode, vec(
		append(wasm.EncodeLEB128u(uint32(len(body1))), body1...),
		append(wasm.EncodeLEB128u(uint32(len(body2))), body2...),
	)))
	// trailing custom section
	buf.Write(section(wasm.SectionIDCustom, append(name("meta"), 0xAA, 0xBB)))

	return buf.Bytes()
}

func TestParsePayloadSequence(t *testing.T) {
	data := testModule()
	m, err := wasm.Parse("test.wasm", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.Version != 1 || m.Layer != 0 {
		t.Errorf("version = %d layer = %d, want 1 and 0", m.Version, m.Layer)
	}
	if m.FileSize != int64(len(data)) {
		t.Errorf("FileSize = %d, want %d", m.FileSize, len(data))
	}

	wantKinds := []wasm.SectionKind{
		wasm.KindMagicHeader,
		wasm.KindType, wasm.KindImport, wasm.KindFunction, wasm.KindExport,
		wasm.KindElement, wasm.KindCodeStart,
		wasm.KindCodeEntry, wasm.KindCodeEntry,
		wasm.KindCustom,
	}
	if len(m.Payloads) != len(wantKinds) {
		t.Fatalf("got %d payloads, want %d", len(m.Payloads), len(wantKinds))
	}
	for i, want := range wantKinds {
		if m.Payloads[i].Kind != want {
			t.Errorf("payload %d kind = %s, want %s", i, m.Payloads[i].Kind, want)
		}
	}

	wantCounts := map[wasm.SectionKind]uint32{
		wasm.KindType:      1,
		wasm.KindImport:    1,
		wasm.KindFunction:  2,
		wasm.KindExport:    1,
		wasm.KindElement:   1,
		wasm.KindCodeStart: 2,
	}
	for _, p := range m.Payloads {
		want, counted := wantCounts[p.Kind]
		if counted {
			if p.Count == nil || *p.Count != want {
				t.Errorf("%s count = %v, want %d", p.Kind, p.Count, want)
			}
		} else if p.Count != nil {
			t.Errorf("%s unexpectedly carries count %d", p.Kind, *p.Count)
		}
		if p.Range.Size() != len(p.Data) {
			t.Errorf("%s range size %d != data length %d", p.Kind, p.Range.Size(), len(p.Data))
		}
		if !bytes.Equal(data[p.Range.Start:p.Range.End], p.Data) {
			t.Errorf("%s data does not alias its range", p.Kind)
		}
	}
}

func TestParseErrors(t *testing.T) {
	valid := testModule()

	truncated := make([]byte, len(valid)-3)
	copy(truncated, valid)

	badMagic := append([]byte{}, valid...)
	badMagic[0] = 0xFF

	zeroVersion := append([]byte{}, valid...)
	zeroVersion[4], zeroVersion[5] = 0x00, 0x00

	tests := []struct {
		name string
		data []byte
		want errors.Kind
	}{
		{"empty input", nil, errors.KindMalformedFormat},
		{"bad magic", badMagic, errors.KindMalformedFormat},
		{"truncated section", truncated, errors.KindMalformedFormat},
		{"zero version", zeroVersion, errors.KindInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.Parse("bad.wasm", tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: tt.want}) {
				t.Errorf("error = %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestParseUnknownSection(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	buf.Write(section(0x30, []byte{0x01, 0x02, 0x03}))

	m, err := wasm.Parse("odd.wasm", buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Payloads) != 2 || m.Payloads[1].Kind != wasm.KindUnknown {
		t.Fatalf("payloads = %+v, want magic header then KindUnknown", m.Payloads)
	}
	if m.Payloads[1].Kind.String() != "UnknownSection" {
		t.Errorf("label = %s", m.Payloads[1].Kind)
	}
}

func TestParseComponentLayer(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00})
	buf.Write(section(wasm.ComponentIDCoreModule, []byte{0x00}))
	buf.Write(section(wasm.ComponentIDExport, []byte{0x00}))

	m, err := wasm.Parse("comp.wasm", buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Layer != 1 {
		t.Fatalf("layer = %d, want 1", m.Layer)
	}
	if m.Payloads[1].Kind != wasm.KindModule || m.Payloads[2].Kind != wasm.KindComponentExport {
		t.Errorf("kinds = %s, %s", m.Payloads[1].Kind, m.Payloads[2].Kind)
	}
}

func TestImportEntries(t *testing.T) {
	m, err := wasm.Parse("test.wasm", testModule())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	imports, err := wasm.ImportEntries(m.Payloads[2])
	if err != nil {
		t.Fatalf("ImportEntries: %v", err)
	}
	if len(imports) != 1 {
		t.Fatalf("got %d imports, want 1", len(imports))
	}
	if imports[0].Module != "env" || imports[0].Name != "log" || imports[0].Kind != wasm.ExtKindFunc {
		t.Errorf("import = %+v", imports[0])
	}
}

func TestExportEntries(t *testing.T) {
	m, err := wasm.Parse("test.wasm", testModule())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	exports, err := wasm.ExportEntries(m.Payloads[4])
	if err != nil {
		t.Fatalf("ExportEntries: %v", err)
	}
	if len(exports) != 1 {
		t.Fatalf("got %d exports, want 1", len(exports))
	}
	if exports[0].Name != "run" || exports[0].Kind != wasm.ExtKindFunc || exports[0].Index != 1 {
		t.Errorf("export = %+v", exports[0])
	}
}

func TestFuncRefElements(t *testing.T) {
	m, err := wasm.Parse("test.wasm", testModule())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	indexes, err := wasm.FuncRefElements(m.Payloads[5])
	if err != nil {
		t.Fatalf("FuncRefElements: %v", err)
	}
	if len(indexes) != 1 || indexes[0] != 2 {
		t.Errorf("indexes = %v, want [2]", indexes)
	}
}

func TestFuncRefElementsPassiveSegment(t *testing.T) {
	// Passive funcref segment (flags 1): elemkind 0x00, indexes {0, 1}
	elem := vec([]byte{0x01, 0x00, 0x02, 0x00, 0x01})
	p := wasm.Payload{
		Kind:  wasm.KindElement,
		Range: wasm.Range{Start: 0, End: len(elem)},
		Data:  elem,
	}

	indexes, err := wasm.FuncRefElements(p)
	if err != nil {
		t.Fatalf("FuncRefElements: %v", err)
	}
	if len(indexes) != 2 || indexes[0] != 0 || indexes[1] != 1 {
		t.Errorf("indexes = %v, want [0 1]", indexes)
	}
}
