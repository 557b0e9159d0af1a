package wasm

import "fmt"

// Name returns the wat-style mnemonic for the operator. Operators
// without a known mnemonic render as their raw opcode bytes.
func (o Operator) Name() string {
	switch o.Opcode {
	case OpPrefixMisc:
		if name, ok := miscNames[o.Sub]; ok {
			return name
		}
		return fmt.Sprintf("misc.0x%02x", o.Sub)
	case OpPrefixGC:
		if name, ok := gcNames[o.Sub]; ok {
			return name
		}
		return fmt.Sprintf("gc.0x%02x", o.Sub)
	case OpPrefixSIMD:
		if name, ok := simdNames[o.Sub]; ok {
			return name
		}
		return fmt.Sprintf("simd.0x%02x", o.Sub)
	case OpPrefixAtomic:
		if name, ok := atomicNames[o.Sub]; ok {
			return name
		}
		return fmt.Sprintf("atomic.0x%02x", o.Sub)
	}
	if name, ok := opNames[o.Opcode]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", o.Opcode)
}

var opNames = map[byte]string{
	0x00: "unreachable",
	0x01: "nop",
	0x02: "block",
	0x03: "loop",
	0x04: "if",
	0x05: "else",
	0x06: "try",
	0x07: "catch",
	0x08: "throw",
	0x09: "rethrow",
	0x0A: "throw_ref",
	0x0B: "end",
	0x0C: "br",
	0x0D: "br_if",
	0x0E: "br_table",
	0x0F: "return",
	0x10: "call",
	0x11: "call_indirect",
	0x12: "return_call",
	0x13: "return_call_indirect",
	0x14: "call_ref",
	0x15: "return_call_ref",
	0x18: "delegate",
	0x19: "catch_all",
	0x1A: "drop",
	0x1B: "select",
	0x1C: "select",
	0x1F: "try_table",

	0x20: "local.get",
	0x21: "local.set",
	0x22: "local.tee",
	0x23: "global.get",
	0x24: "global.set",
	0x25: "table.get",
	0x26: "table.set",

	0x28: "i32.load",
	0x29: "i64.load",
	0x2A: "f32.load",
	0x2B: "f64.load",
	0x2C: "i32.load8_s",
	0x2D: "i32.load8_u",
	0x2E: "i32.load16_s",
	0x2F: "i32.load16_u",
	0x30: "i64.load8_s",
	0x31: "i64.load8_u",
	0x32: "i64.load16_s",
	0x33: "i64.load16_u",
	0x34: "i64.load32_s",
	0x35: "i64.load32_u",
	0x36: "i32.store",
	0x37: "i64.store",
	0x38: "f32.store",
	0x39: "f64.store",
	0x3A: "i32.store8",
	0x3B: "i32.store16",
	0x3C: "i64.store8",
	0x3D: "i64.store16",
	0x3E: "i64.store32",
	0x3F: "memory.size",
	0x40: "memory.grow",

	0x41: "i32.const",
	0x42: "i64.const",
	0x43: "f32.const",
	0x44: "f64.const",

	0x45: "i32.eqz",
	0x46: "i32.eq",
	0x47: "i32.ne",
	0x48: "i32.lt_s",
	0x49: "i32.lt_u",
	0x4A: "i32.gt_s",
	0x4B: "i32.gt_u",
	0x4C: "i32.le_s",
	0x4D: "i32.le_u",
	0x4E: "i32.ge_s",
	0x4F: "i32.ge_u",

	0x50: "i64.eqz",
	0x51: "i64.eq",
	0x52: "i64.ne",
	0x53: "i64.lt_s",
	0x54: "i64.lt_u",
	0x55: "i64.gt_s",
	0x56: "i64.gt_u",
	0x57: "i64.le_s",
	0x58: "i64.le_u",
	0x59: "i64.ge_s",
	0x5A: "i64.ge_u",

	0x5B: "f32.eq",
	0x5C: "f32.ne",
	0x5D: "f32.lt",
	0x5E: "f32.gt",
	0x5F: "f32.le",
	0x60: "f32.ge",
	0x61: "f64.eq",
	0x62: "f64.ne",
	0x63: "f64.lt",
	0x64: "f64.gt",
	0x65: "f64.le",
	0x66: "f64.ge",

	0x67: "i32.clz",
	0x68: "i32.ctz",
	0x69: "i32.popcnt",
	0x6A: "i32.add",
	0x6B: "i32.sub",
	0x6C: "i32.mul",
	0x6D: "i32.div_s",
	0x6E: "i32.div_u",
	0x6F: "i32.rem_s",
	0x70: "i32.rem_u",
	0x71: "i32.and",
	0x72: "i32.or",
	0x73: "i32.xor",
	0x74: "i32.shl",
	0x75: "i32.shr_s",
	0x76: "i32.shr_u",
	0x77: "i32.rotl",
	0x78: "i32.rotr",

	0x79: "i64.clz",
	0x7A: "i64.ctz",
	0x7B: "i64.popcnt",
	0x7C: "i64.add",
	0x7D: "i64.sub",
	0x7E: "i64.mul",
	0x7F: "i64.div_s",
	0x80: "i64.div_u",
	0x81: "i64.rem_s",
	0x82: "i64.rem_u",
	0x83: "i64.and",
	0x84: "i64.or",
	0x85: "i64.xor",
	0x86: "i64.shl",
	0x87: "i64.shr_s",
	0x88: "i64.shr_u",
	0x89: "i64.rotl",
	0x8A: "i64.rotr",

	0x8B: "f32.abs",
	0x8C: "f32.neg",
	0x8D: "f32.ceil",
	0x8E: "f32.floor",
	0x8F: "f32.trunc",
	0x90: "f32.nearest",
	0x91: "f32.sqrt",
	0x92: "f32.add",
	0x93: "f32.sub",
	0x94: "f32.mul",
	0x95: "f32.div",
	0x96: "f32.min",
	0x97: "f32.max",
	0x98: "f32.copysign",

	0x99: "f64.abs",
	0x9A: "f64.neg",
	0x9B: "f64.ceil",
	0x9C: "f64.floor",
	0x9D: "f64.trunc",
	0x9E: "f64.nearest",
	0x9F: "f64.sqrt",
	0xA0: "f64.add",
	0xA1: "f64.sub",
	0xA2: "f64.mul",
	0xA3: "f64.div",
	0xA4: "f64.min",
	0xA5: "f64.max",
	0xA6: "f64.copysign",

	0xA7: "i32.wrap_i64",
	0xA8: "i32.trunc_f32_s",
	0xA9: "i32.trunc_f32_u",
	0xAA: "i32.trunc_f64_s",
	0xAB: "i32.trunc_f64_u",
	0xAC: "i64.extend_i32_s",
	0xAD: "i64.extend_i32_u",
	0xAE: "i64.trunc_f32_s",
	0xAF: "i64.trunc_f32_u",
	0xB0: "i64.trunc_f64_s",
	0xB1: "i64.trunc_f64_u",
	0xB2: "f32.convert_i32_s",
	0xB3: "f32.convert_i32_u",
	0xB4: "f32.convert_i64_s",
	0xB5: "f32.convert_i64_u",
	0xB6: "f32.demote_f64",
	0xB7: "f64.convert_i32_s",
	0xB8: "f64.convert_i32_u",
	0xB9: "f64.convert_i64_s",
	0xBA: "f64.convert_i64_u",
	0xBB: "f64.promote_f32",
	0xBC: "i32.reinterpret_f32",
	0xBD: "i64.reinterpret_f64",
	0xBE: "f32.reinterpret_i32",
	0xBF: "f64.reinterpret_i64",

	0xC0: "i32.extend8_s",
	0xC1: "i32.extend16_s",
	0xC2: "i64.extend8_s",
	0xC3: "i64.extend16_s",
	0xC4: "i64.extend32_s",

	0xD0: "ref.null",
	0xD1: "ref.is_null",
	0xD2: "ref.func",
	0xD3: "ref.as_non_null",
	0xD4: "ref.eq",
	0xD5: "br_on_null",
	0xD6: "br_on_non_null",
}

var miscNames = map[uint32]string{
	0x00: "i32.trunc_sat_f32_s",
	0x01: "i32.trunc_sat_f32_u",
	0x02: "i32.trunc_sat_f64_s",
	0x03: "i32.trunc_sat_f64_u",
	0x04: "i64.trunc_sat_f32_s",
	0x05: "i64.trunc_sat_f32_u",
	0x06: "i64.trunc_sat_f64_s",
	0x07: "i64.trunc_sat_f64_u",
	0x08: "memory.init",
	0x09: "data.drop",
	0x0A: "memory.copy",
	0x0B: "memory.fill",
	0x0C: "table.init",
	0x0D: "elem.drop",
	0x0E: "table.copy",
	0x0F: "table.grow",
	0x10: "table.size",
	0x11: "table.fill",
	0x12: "memory.discard",
}

var gcNames = map[uint32]string{
	0x00: "struct.new",
	0x01: "struct.new_default",
	0x02: "struct.get",
	0x03: "struct.get_s",
	0x04: "struct.get_u",
	0x05: "struct.set",
	0x06: "array.new",
	0x07: "array.new_default",
	0x08: "array.new_fixed",
	0x09: "array.new_data",
	0x0A: "array.new_elem",
	0x0B: "array.get",
	0x0C: "array.get_s",
	0x0D: "array.get_u",
	0x0E: "array.set",
	0x0F: "array.len",
	0x10: "array.fill",
	0x11: "array.copy",
	0x12: "array.init_data",
	0x13: "array.init_elem",
	0x14: "ref.test",
	0x15: "ref.test_null",
	0x16: "ref.cast",
	0x17: "ref.cast_null",
	0x18: "br_on_cast",
	0x19: "br_on_cast_fail",
	0x1A: "any.convert_extern",
	0x1B: "extern.convert_any",
	0x1C: "ref.i31",
	0x1D: "i31.get_s",
	0x1E: "i31.get_u",
}

var atomicNames = map[uint32]string{
	0x00: "memory.atomic.notify",
	0x01: "memory.atomic.wait32",
	0x02: "memory.atomic.wait64",
	0x03: "atomic.fence",
}

var simdNames = map[uint32]string{
	0x00: "v128.load",
	0x0B: "v128.store",
	0x0C: "v128.const",
	0x0D: "i8x16.shuffle",
	0x0E: "i8x16.swizzle",
	0x0F: "i8x16.splat",
	0x10: "i16x8.splat",
	0x11: "i32x4.splat",
	0x12: "i64x2.splat",
	0x13: "f32x4.splat",
	0x14: "f64x2.splat",
	0x4D: "v128.not",
	0x4E: "v128.and",
	0x50: "v128.or",
	0x51: "v128.xor",
	0x52: "v128.bitselect",
	0x53: "v128.any_true",
	0x6E: "i8x16.add",
	0x71: "i8x16.sub",
}
