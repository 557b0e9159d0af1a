package wasm_test

import (
	"io"
	"testing"

	"github.com/wippyai/wasm-audit/wasm"
)

func bodyPayload(data []byte) wasm.Payload {
	return wasm.Payload{
		Kind:  wasm.KindCodeEntry,
		Range: wasm.Range{Start: 0, End: len(data)},
		Data:  data,
	}
}

func readAll(t *testing.T, p wasm.Payload) []wasm.Operator {
	t.Helper()
	r, err := wasm.NewBodyReader(p)
	if err != nil {
		t.Fatalf("NewBodyReader: %v", err)
	}
	var ops []wasm.Operator
	for {
		op, err := r.Read()
		if err == io.EOF {
			return ops
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		ops = append(ops, op)
	}
}

func TestBodyReaderMnemonics(t *testing.T) {
	body := []byte{
		0x01, 0x02, 0x7F, // one local declaration: 2 x i32
		wasm.OpLocalGet, 0x00,
		wasm.OpI32Const, 0x2A,
		0x6A, // i32.add
		wasm.OpCall, 0x03,
		wasm.OpDrop,
		wasm.OpEnd,
	}

	ops := readAll(t, bodyPayload(body))
	want := []string{"local.get", "i32.const", "i32.add", "call", "drop", "end"}
	if len(ops) != len(want) {
		t.Fatalf("got %d operators, want %d", len(ops), len(want))
	}
	for i, w := range want {
		if ops[i].Name() != w {
			t.Errorf("operator %d = %s, want %s", i, ops[i].Name(), w)
		}
	}
}

func TestCallTarget(t *testing.T) {
	body := []byte{
		0x00, // no locals
		wasm.OpCall, 0x05,
		wasm.OpReturnCall, 0x81, 0x01, // callee 129
		wasm.OpNop,
		wasm.OpEnd,
	}

	ops := readAll(t, bodyPayload(body))

	var targets []uint32
	for _, op := range ops {
		if callee, ok := op.CallTarget(); ok {
			targets = append(targets, callee)
		}
	}
	if len(targets) != 2 || targets[0] != 5 || targets[1] != 129 {
		t.Errorf("call targets = %v, want [5 129]", targets)
	}
}

func TestBodyReaderImmediates(t *testing.T) {
	// Each case must decode to exactly the named operators, proving
	// the immediates were consumed with the right widths.
	tests := []struct {
		name string
		body []byte
		want []string
	}{
		{
			name: "memory access",
			body: []byte{0x00, wasm.OpI32Load, 0x02, 0x10, wasm.OpDrop, wasm.OpEnd},
			want: []string{"i32.load", "drop", "end"},
		},
		{
			name: "float constants",
			body: []byte{0x00,
				wasm.OpF32Const, 0x00, 0x00, 0x80, 0x3F,
				wasm.OpF64Const, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F,
				wasm.OpEnd},
			want: []string{"f32.const", "f64.const", "end"},
		},
		{
			name: "br_table",
			body: []byte{0x00, wasm.OpBrTable, 0x02, 0x00, 0x01, 0x02, wasm.OpEnd},
			want: []string{"br_table", "end"},
		},
		{
			name: "misc prefix",
			body: []byte{0x00, wasm.OpPrefixMisc, 0x0B, 0x00, wasm.OpEnd},
			want: []string{"memory.fill", "end"},
		},
		{
			name: "block with type",
			body: []byte{0x00, wasm.OpBlock, 0x40, wasm.OpEnd, wasm.OpEnd},
			want: []string{"block", "end", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := readAll(t, bodyPayload(tt.body))
			if len(ops) != len(tt.want) {
				t.Fatalf("got %d operators, want %d", len(ops), len(tt.want))
			}
			for i, w := range tt.want {
				if ops[i].Name() != w {
					t.Errorf("operator %d = %s, want %s", i, ops[i].Name(), w)
				}
			}
		})
	}
}

func TestBodyReaderTruncated(t *testing.T) {
	body := []byte{0x00, wasm.OpCall} // call with missing index
	r, err := wasm.NewBodyReader(bodyPayload(body))
	if err != nil {
		t.Fatalf("NewBodyReader: %v", err)
	}
	if _, err := r.Read(); err == nil || err == io.EOF {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestBodyReaderUnknownOpcode(t *testing.T) {
	body := []byte{0x00, 0x27, wasm.OpEnd} // 0x27 is unassigned
	r, err := wasm.NewBodyReader(bodyPayload(body))
	if err != nil {
		t.Fatalf("NewBodyReader: %v", err)
	}
	if _, err := r.Read(); err == nil || err == io.EOF {
		t.Errorf("expected unknown opcode error, got %v", err)
	}
}

func TestBodyReaderRejectsNonCodePayload(t *testing.T) {
	p := wasm.Payload{Kind: wasm.KindCustom}
	if _, err := wasm.NewBodyReader(p); err == nil {
		t.Error("expected error for non code-entry payload")
	}
}
