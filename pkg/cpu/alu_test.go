package cpu

import (
	"testing"

	"github.com/oisee/z80-core/pkg/bits"
)

// TestFlagTables verifies our precomputed tables match expected values.
func TestFlagTables(t *testing.T) {
	if Sz53Table[0]&FlagZ == 0 {
		t.Error("sz53Table[0] should have Z flag")
	}
	if Sz53pTable[0]&FlagZ == 0 {
		t.Error("sz53pTable[0] should have Z flag")
	}
	if Sz53Table[0x80]&FlagS == 0 {
		t.Error("sz53Table[0x80] should have S flag")
	}
	if Sz53Table[0x28] != Flag3|Flag5 {
		t.Errorf("sz53Table[0x28] = %02X, want 28", Sz53Table[0x28])
	}
	// Even parity sets P.
	if ParityTable[0]&FlagP == 0 {
		t.Error("parityTable[0] should have P flag (even parity)")
	}
	if ParityTable[1]&FlagP != 0 {
		t.Error("parityTable[1] should NOT have P flag (odd parity)")
	}
	if ParityTable[0xFF]&FlagP == 0 {
		t.Error("parityTable[0xFF] should have P flag")
	}
}

// TestAddFlags verifies ADD A, n flag behavior for key cases.
func TestAddFlags(t *testing.T) {
	tests := []struct {
		a, val       uint8
		wantA        uint8
		wantCarry    bool
		wantZero     bool
		wantSign     bool
		wantHalf     bool
		wantOverflow bool
	}{
		{0, 0, 0, false, true, false, false, false},
		{1, 1, 2, false, false, false, false, false},
		{0xFF, 1, 0, true, true, false, true, false},
		{0x0F, 1, 0x10, false, false, false, true, false},
		{0x7F, 1, 0x80, false, false, true, true, true}, // pos + pos = neg
		{0x80, 0x80, 0, true, true, false, false, true}, // neg + neg = pos
	}

	for _, tc := range tests {
		a, f := Add8(tc.a, tc.val, bits.Zero)
		if a != tc.wantA {
			t.Errorf("ADD A=%02X + %02X: got A=%02X, want %02X", tc.a, tc.val, a, tc.wantA)
		}
		if (f&FlagC != 0) != tc.wantCarry {
			t.Errorf("ADD A=%02X + %02X: carry=%v, want %v", tc.a, tc.val, f&FlagC != 0, tc.wantCarry)
		}
		if (f&FlagZ != 0) != tc.wantZero {
			t.Errorf("ADD A=%02X + %02X: zero=%v, want %v", tc.a, tc.val, f&FlagZ != 0, tc.wantZero)
		}
		if (f&FlagS != 0) != tc.wantSign {
			t.Errorf("ADD A=%02X + %02X: sign=%v, want %v", tc.a, tc.val, f&FlagS != 0, tc.wantSign)
		}
		if (f&FlagH != 0) != tc.wantHalf {
			t.Errorf("ADD A=%02X + %02X: half=%v, want %v", tc.a, tc.val, f&FlagH != 0, tc.wantHalf)
		}
		if (f&FlagV != 0) != tc.wantOverflow {
			t.Errorf("ADD A=%02X + %02X: overflow=%v, want %v", tc.a, tc.val, f&FlagV != 0, tc.wantOverflow)
		}
		if f&FlagN != 0 {
			t.Errorf("ADD A=%02X + %02X: N should be clear", tc.a, tc.val)
		}
	}
}

// TestSubFlags verifies SUB flag behavior.
func TestSubFlags(t *testing.T) {
	tests := []struct {
		a, val    uint8
		wantA     uint8
		wantCarry bool
		wantV     bool
	}{
		{5, 3, 2, false, false},
		{0, 1, 0xFF, true, false},   // borrow
		{0x80, 1, 0x7F, false, true}, // neg - pos = pos
	}

	for _, tc := range tests {
		a, f := Sub8(tc.a, tc.val, bits.Zero)
		if a != tc.wantA {
			t.Errorf("SUB A=%02X - %02X: got A=%02X, want %02X", tc.a, tc.val, a, tc.wantA)
		}
		if (f&FlagC != 0) != tc.wantCarry {
			t.Errorf("SUB A=%02X - %02X: carry=%v, want %v", tc.a, tc.val, f&FlagC != 0, tc.wantCarry)
		}
		if (f&FlagV != 0) != tc.wantV {
			t.Errorf("SUB A=%02X - %02X: V=%v, want %v", tc.a, tc.val, f&FlagV != 0, tc.wantV)
		}
		if f&FlagN == 0 {
			t.Errorf("SUB A=%02X - %02X: N should be set", tc.a, tc.val)
		}
	}
}

// TestExhaustiveAddSub verifies ADD/ADC/SUB/SBC results and carries for all operand pairs.
func TestExhaustiveAddSub(t *testing.T) {
	for a := 0; a < 256; a++ {
		for v := 0; v < 256; v++ {
			for c := 0; c < 2; c++ {
				r, f := Add8(uint8(a), uint8(v), bits.Of(c))
				if r != uint8(a+v+c) || (f&FlagC != 0) != (a+v+c > 0xFF) {
					t.Fatalf("ADC %02X + %02X + %d: got %02X F=%02X", a, v, c, r, f)
				}
				if f&flags35 != r&flags35 {
					t.Fatalf("ADC %02X + %02X: bits 3/5 not from result", a, v)
				}

				r, f = Sub8(uint8(a), uint8(v), bits.Of(c))
				if r != uint8(a-v-c) || (f&FlagC != 0) != (a-v-c < 0) {
					t.Fatalf("SBC %02X - %02X - %d: got %02X F=%02X", a, v, c, r, f)
				}
			}
		}
	}
}

// TestCP verifies CP flags match SUB except for bits 3 and 5.
func TestCP(t *testing.T) {
	for a := 0; a < 256; a++ {
		for v := 0; v < 256; v++ {
			_, sf := Sub8(uint8(a), uint8(v), bits.Zero)
			cf := Cp8(uint8(a), uint8(v))
			if cf&^flags35 != sf&^flags35 {
				t.Fatalf("CP %02X, %02X: F=%02X, SUB gives %02X", a, v, cf, sf)
			}
			if cf&flags35 != uint8(v)&flags35 {
				t.Fatalf("CP %02X, %02X: bits 3/5 should come from operand", a, v)
			}
		}
	}
}

// TestAndOrXor verifies logic operations set flags correctly.
func TestAndOrXor(t *testing.T) {
	a, f := And8(0xFF, 0x0F)
	if a != 0x0F {
		t.Errorf("AND: got A=%02X, want 0F", a)
	}
	if f&FlagH == 0 {
		t.Error("AND should set H flag")
	}
	if f&(FlagN|FlagC) != 0 {
		t.Error("AND should clear N and C")
	}

	a, f = Or8(0xF0, 0x0F)
	if a != 0xFF {
		t.Errorf("OR: got A=%02X, want FF", a)
	}
	if f&(FlagH|FlagN|FlagC) != 0 {
		t.Error("OR should clear H, N and C")
	}
	if f&FlagP == 0 {
		t.Error("OR FF should set parity")
	}

	a, f = Xor8(0x42, 0x42)
	if a != 0 || f != FlagZ|FlagP {
		t.Errorf("XOR A,A: got A=%02X F=%02X, want 00/%02X", a, f, FlagZ|FlagP)
	}
}

// TestIncDec verifies INC/DEC flag behavior.
func TestIncDec(t *testing.T) {
	v, f := Inc8(0x7F, 0)
	if v != 0x80 || f&FlagV == 0 {
		t.Errorf("INC 7F: got %02X F=%02X, want 80 with V", v, f)
	}

	v, f = Inc8(0xFF, 0)
	if v != 0 || f&FlagZ == 0 || f&FlagH == 0 {
		t.Errorf("INC FF: got %02X F=%02X, want 00 with Z and H", v, f)
	}

	if _, f = Inc8(0x00, FlagC); f&FlagC == 0 {
		t.Error("INC should preserve carry flag")
	}

	v, f = Dec8(0x80, 0)
	if v != 0x7F || f&FlagV == 0 {
		t.Errorf("DEC 80: got %02X F=%02X, want 7F with V", v, f)
	}
	if f&FlagN == 0 {
		t.Error("DEC should set N flag")
	}

	v, f = Dec8(0x10, FlagC)
	if v != 0x0F || f&FlagH == 0 || f&FlagC == 0 {
		t.Errorf("DEC 10: got %02X F=%02X, want 0F with H and C", v, f)
	}
}

// TestRotates verifies accumulator rotate instructions.
func TestRotates(t *testing.T) {
	keep := FlagS | FlagZ | FlagP

	a, f := Rlca(0x80, keep)
	if a != 0x01 || f&FlagC == 0 || f&keep != keep {
		t.Errorf("RLCA 80: got %02X F=%02X", a, f)
	}

	a, f = Rrca(0x01, 0)
	if a != 0x80 || f&FlagC == 0 {
		t.Errorf("RRCA 01: got %02X F=%02X", a, f)
	}

	a, f = Rla(0x80, 0)
	if a != 0x00 || f&FlagC == 0 {
		t.Errorf("RLA 80 (C=0): got %02X F=%02X", a, f)
	}
	if f&FlagZ != 0 {
		t.Error("RLA must not touch Z")
	}

	a, f = Rra(0x01, FlagC)
	if a != 0x80 || f&FlagC == 0 {
		t.Errorf("RRA 01 (C=1): got %02X F=%02X", a, f)
	}
}

// TestCBRotates verifies CB-prefix rotate/shift instructions.
func TestCBRotates(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(uint8) (uint8, uint8)
		in    uint8
		want  uint8
		carry bool
		zero  bool
	}{
		{"RLC", Rlc, 0x80, 0x01, true, false},
		{"RRC", Rrc, 0x01, 0x80, true, false},
		{"RL C=0", func(v uint8) (uint8, uint8) { return Rl(v, bits.Zero) }, 0x80, 0x00, true, true},
		{"RL C=1", func(v uint8) (uint8, uint8) { return Rl(v, bits.One) }, 0x00, 0x01, false, false},
		{"RR C=1", func(v uint8) (uint8, uint8) { return Rr(v, bits.One) }, 0x01, 0x80, true, false},
		{"SLA", Sla, 0x80, 0x00, true, true},
		{"SRA", Sra, 0x80, 0xC0, false, false},
		{"SLL", Sll, 0x80, 0x01, true, false},
		{"SRL", Srl, 0x81, 0x40, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, f := tc.fn(tc.in)
			if got != tc.want {
				t.Errorf("%s %02X: got %02X want %02X", tc.name, tc.in, got, tc.want)
			}
			if (f&FlagC != 0) != tc.carry {
				t.Errorf("%s %02X: carry=%v want %v", tc.name, tc.in, f&FlagC != 0, tc.carry)
			}
			if (f&FlagZ != 0) != tc.zero {
				t.Errorf("%s %02X: zero=%v want %v", tc.name, tc.in, f&FlagZ != 0, tc.zero)
			}
			if f&(FlagH|FlagN) != 0 {
				t.Errorf("%s %02X: H and N should be clear, F=%02X", tc.name, tc.in, f)
			}
		})
	}
}

// TestSpecialOps verifies CPL, SCF, CCF, NEG.
func TestSpecialOps(t *testing.T) {
	a, f := Cpl(0x55, 0)
	if a != 0xAA || f&FlagH == 0 || f&FlagN == 0 {
		t.Errorf("CPL 55: got %02X F=%02X", a, f)
	}

	if f = Scf(0, 0); f&FlagC == 0 {
		t.Error("SCF should set carry")
	}

	f = Ccf(0, FlagC)
	if f&FlagC != 0 || f&FlagH == 0 {
		t.Errorf("CCF with C=1: F=%02X, want H set and C clear", f)
	}

	a, f = Neg(0x01)
	if a != 0xFF || f&FlagC == 0 || f&FlagN == 0 {
		t.Errorf("NEG 01: got %02X F=%02X", a, f)
	}
	if a, f = Neg(0x80); a != 0x80 || f&FlagV == 0 {
		t.Errorf("NEG 80: got %02X F=%02X, want 80 with V", a, f)
	}
}

// TestDAA verifies DAA for a selection of key cases.
func TestDAA(t *testing.T) {
	tests := []struct {
		a    uint8
		f    uint8 // input flags
		want uint8
		name string
	}{
		{0x15, 0, 0x15, "BCD 15 no adjust"},
		{0x1A, 0, 0x20, "BCD adjust low nibble"},
		{0xA0, 0, 0x00, "BCD adjust high nibble"},
		{0x9A, 0, 0x00, "BCD 9A -> 00"},
		{0x0F, FlagN, 0x09, "after subtract"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, f := Daa(tc.a, tc.f)
			if a != tc.want {
				t.Errorf("DAA A=%02X F=%02X: got A=%02X want %02X (F=%02X)", tc.a, tc.f, a, tc.want, f)
			}
		})
	}
}

// TestBIT verifies BIT n flags and the source of bits 3 and 5.
func TestBIT(t *testing.T) {
	f := BitTest(0, 0x00, 0x00, FlagC)
	if f&FlagZ == 0 || f&FlagP == 0 || f&FlagH == 0 || f&FlagC == 0 {
		t.Errorf("BIT 0 of 00: F=%02X, want Z, P, H and C", f)
	}

	f = BitTest(7, 0x80, 0x80, 0)
	if f&FlagS == 0 || f&FlagZ != 0 {
		t.Errorf("BIT 7 of 80: F=%02X, want S and not Z", f)
	}

	f = BitTest(3, 0x08, 0x20, 0)
	if f&flags35 != Flag5 {
		t.Errorf("BIT 3: bits 3/5 = %02X, want them from the undoc source", f&flags35)
	}
}

func TestAdd16(t *testing.T) {
	r, f := Add16(0x0FFF, 0x0001, FlagS|FlagZ|FlagP)
	if r != 0x1000 || f&FlagH == 0 || f&FlagC != 0 {
		t.Errorf("ADD 0FFF+1: got %04X F=%02X", r, f)
	}
	if f&(FlagS|FlagZ|FlagP) != FlagS|FlagZ|FlagP {
		t.Error("ADD HL should preserve S, Z and P/V")
	}

	r, f = Add16(0xFFFF, 0x0001, 0)
	if r != 0 || f&FlagC == 0 || f&FlagZ != 0 {
		t.Errorf("ADD FFFF+1: got %04X F=%02X", r, f)
	}

	if r, f = Add16(0x2700, 0x0100, 0); f&flags35 != 0x28 {
		t.Errorf("ADD %04X: bits 3/5 = %02X, want 28 from high byte", r, f&flags35)
	}
}

func TestADCHL(t *testing.T) {
	tests := []struct {
		name       string
		hl, v      uint16
		carry      uint8
		want       uint16
		s, z, c, n bool
	}{
		{"no carry", 0x1000, 0x2000, 0, 0x3000, false, false, false, false},
		{"with carry in", 0x10FF, 0x2000, FlagC, 0x3100, false, false, false, false},
		{"overflow to carry", 0xFFFF, 0x0001, 0, 0x0000, false, true, true, false},
		{"doubles into sign", 0x4000, 0x4000, 0, 0x8000, true, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, f := Adc16(tc.hl, tc.v, tc.carry)
			if r != tc.want {
				t.Errorf("result: got HL=%04X, want %04X", r, tc.want)
			}
			if (f&FlagS != 0) != tc.s || (f&FlagZ != 0) != tc.z || (f&FlagC != 0) != tc.c || (f&FlagN != 0) != tc.n {
				t.Errorf("flags: got %02X", f)
			}
		})
	}
	// 0x4000 + 0x4000 overflows into the sign bit.
	if _, f := Adc16(0x4000, 0x4000, 0); f&FlagV == 0 {
		t.Error("ADC HL 4000+4000 should set V")
	}
}

func TestSBCHL(t *testing.T) {
	tests := []struct {
		name  string
		hl, v uint16
		carry uint8
		want  uint16
		z, c  bool
	}{
		{"simple", 0x3000, 0x1000, 0, 0x2000, false, false},
		{"with borrow in", 0x3000, 0x1000, FlagC, 0x1FFF, false, false},
		{"zero", 0x1234, 0x1234, 0, 0x0000, true, false},
		{"underflow", 0x0000, 0x0001, 0, 0xFFFF, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, f := Sbc16(tc.hl, tc.v, tc.carry)
			if r != tc.want {
				t.Errorf("result: got HL=%04X, want %04X", r, tc.want)
			}
			if (f&FlagZ != 0) != tc.z || (f&FlagC != 0) != tc.c || f&FlagN == 0 {
				t.Errorf("flags: got %02X", f)
			}
		})
	}
}

func TestRldRrd(t *testing.T) {
	a, m, f := Rld(0x12, 0x34, FlagC)
	if a != 0x13 || m != 0x42 || f&FlagC == 0 {
		t.Errorf("RLD: got A=%02X (HL)=%02X F=%02X, want 13/42 with C", a, m, f)
	}
	a, m, _ = Rrd(0x12, 0x34, 0)
	if a != 0x14 || m != 0x23 {
		t.Errorf("RRD: got A=%02X (HL)=%02X, want 14/23", a, m)
	}
}

func TestBlockFlags(t *testing.T) {
	// LDI: A+value = 0x0A has bit 3 and bit 1 set.
	f := BlockLoadFlags(0x02, 0x08, 1, FlagZ|FlagC|FlagH|FlagN)
	if f != FlagZ|FlagC|FlagV|Flag3|Flag5 {
		t.Errorf("LDI flags = %02X", f)
	}
	if f = BlockLoadFlags(0, 0, 0, 0); f&FlagV != 0 {
		t.Error("LDI with BC=0 should clear P/V")
	}

	f = BlockCompareFlags(0x42, 0x42, 5, 0)
	if f&FlagZ == 0 || f&FlagV == 0 || f&FlagN == 0 {
		t.Errorf("CPI match flags = %02X", f)
	}
	if f = BlockCompareFlags(0x42, 0x41, 0, FlagC); f&FlagZ != 0 || f&FlagV != 0 || f&FlagC == 0 {
		t.Errorf("CPI mismatch flags = %02X", f)
	}

	f = BlockIOFlags(0x80, 0x90, 0)
	if f&FlagN == 0 || f&FlagC == 0 || f&FlagH == 0 || f&FlagZ == 0 {
		t.Errorf("INI flags = %02X", f)
	}
}

func TestIRFlags(t *testing.T) {
	if f := IRFlags(0x00, FlagC, bits.One); f != FlagC|FlagZ|FlagP {
		t.Errorf("LD A,I with IFF2: F=%02X", f)
	}
	if f := IRFlags(0x80, 0, bits.Zero); f != FlagS {
		t.Errorf("LD A,I without IFF2: F=%02X", f)
	}
}
