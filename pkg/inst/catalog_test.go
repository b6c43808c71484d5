package inst

import (
	"errors"
	"testing"
)

// TestCatalogCompleteness verifies every opcode in every context has an entry.
func TestCatalogCompleteness(t *testing.T) {
	for ctx := Base; ctx < ContextCount; ctx++ {
		for op := 0; op < 256; op++ {
			info := &Catalog[ctx][op]
			if info.Mnemonic == "" {
				t.Errorf("%s %02X has no mnemonic", ctx, op)
			}
			if !info.Prefix && info.TStates == 0 {
				t.Errorf("%s %02X (%s) has 0 T-states", ctx, op, info.Mnemonic)
			}
			if info.TakenTStates != 0 && info.TakenTStates <= info.TStates {
				t.Errorf("%s %02X (%s): taken %d <= not taken %d", ctx, op, info.Mnemonic, info.TakenTStates, info.TStates)
			}
		}
	}
}

// TestTStates spot-checks documented timings.
func TestTStates(t *testing.T) {
	tests := []struct {
		ctx   Context
		op    uint8
		want  int
		taken int
	}{
		{Base, 0x00, 4, 0},   // NOP
		{Base, 0x02, 7, 0},   // LD (BC), A
		{Base, 0x10, 8, 13},  // DJNZ
		{Base, 0x20, 7, 12},  // JR NZ
		{Base, 0x34, 11, 0},  // INC (HL)
		{Base, 0xC0, 5, 11},  // RET NZ
		{Base, 0xC4, 10, 17}, // CALL NZ
		{Base, 0xE3, 19, 0},  // EX (SP), HL
		{CB, 0x06, 15, 0},    // RLC (HL)
		{CB, 0x46, 12, 0},    // BIT 0, (HL)
		{ED, 0x00, 8, 0},     // undefined
		{ED, 0x43, 20, 0},    // LD (nn), BC
		{ED, 0x4A, 15, 0},    // ADC HL, BC
		{ED, 0x6F, 18, 0},    // RLD
		{ED, 0xB0, 16, 21},   // LDIR
		{DD, 0x21, 14, 0},    // LD IX, nn
		{DD, 0x36, 19, 0},    // LD (IX+d), n
		{DD, 0xE3, 23, 0},    // EX (SP), IX
		{DD, 0x00, 8, 0},     // passthrough NOP
		{FD, 0x20, 11, 16},   // passthrough JR NZ
		{DDCB, 0x46, 20, 0},  // BIT 0, (IX+d)
		{FDCB, 0x06, 23, 0},  // RLC (IY+d)
	}
	for _, tc := range tests {
		info := Lookup(tc.ctx, tc.op)
		if info.TStates != tc.want || info.TakenTStates != tc.taken {
			t.Errorf("%s %02X (%s): got %d/%d, want %d/%d",
				tc.ctx, tc.op, info.Mnemonic, info.TStates, info.TakenTStates, tc.want, tc.taken)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		ctx  Context
		op   uint8
		want int
	}{
		{Base, 0x00, 1},
		{Base, 0x3E, 2},
		{Base, 0xC3, 3},
		{CB, 0x00, 2},
		{ED, 0x43, 4},
		{DD, 0x21, 4},
		{DD, 0x36, 4},
		{DD, 0x7E, 3},
		{DDCB, 0xC6, 4},
	}
	for _, tc := range tests {
		if got := Length(tc.ctx, tc.op); got != tc.want {
			t.Errorf("Length(%s, %02X) = %d, want %d", tc.ctx, tc.op, got, tc.want)
		}
	}
}

// TestDisassemble verifies mnemonic generation.
func TestDisassemble(t *testing.T) {
	tests := []struct {
		code    []byte
		pc      uint16
		want    string
		wantLen int
	}{
		{[]byte{0x80}, 0, "ADD A, B", 1},
		{[]byte{0x3E, 0x00}, 0, "LD A, 00h", 2},
		{[]byte{0x3E, 0xFF}, 0, "LD A, 0FFh", 2},
		{[]byte{0xAF}, 0, "XOR A", 1},
		{[]byte{0x00}, 0, "NOP", 1},
		{[]byte{0x21, 0x34, 0x12}, 0, "LD HL, 1234h", 3},
		{[]byte{0xC3, 0x00, 0xC0}, 0, "JP 0C000h", 3},
		{[]byte{0x18, 0xFE}, 0x0100, "JR 0100h", 2},
		{[]byte{0x20, 0x05}, 0x0100, "JR NZ, 0107h", 2},
		{[]byte{0xFF}, 0, "RST 38h", 1},
		{[]byte{0xCB, 0x7E}, 0, "BIT 7, (HL)", 2},
		{[]byte{0xCB, 0x30}, 0, "SLL B", 2},
		{[]byte{0xED, 0xB0}, 0, "LDIR", 2},
		{[]byte{0xED, 0x4B, 0x00, 0x80}, 0, "LD BC, (8000h)", 4},
		{[]byte{0xDD, 0x7E, 0x05}, 0, "LD A, (IX+05h)", 3},
		{[]byte{0xFD, 0x77, 0xFE}, 0, "LD (IY-02h), A", 3},
		{[]byte{0xDD, 0x36, 0x01, 0x42}, 0, "LD (IX+01h), 42h", 4},
		{[]byte{0xDD, 0x65}, 0, "LD IXH, IXL", 2},
		{[]byte{0xDD, 0xCB, 0x03, 0x46}, 0, "BIT 0, (IX+03h)", 4},
		{[]byte{0xFD, 0xCB, 0x80, 0x00}, 0, "RLC (IY-80h), B", 4},
		{[]byte{0xDD, 0x41}, 0, "LD B, C", 2},
		{[]byte{0xDD, 0xED, 0x44}, 0, "NEG", 3},
	}

	for _, tc := range tests {
		got, n, err := Disassemble(tc.code, tc.pc)
		if err != nil {
			t.Errorf("Disassemble(% X): %v", tc.code, err)
			continue
		}
		if got != tc.want || n != tc.wantLen {
			t.Errorf("Disassemble(% X): got %q/%d want %q/%d", tc.code, got, n, tc.want, tc.wantLen)
		}
	}
}

func TestDecodeSkippedPrefix(t *testing.T) {
	d, err := Decode([]byte{0xFD, 0xDD, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if d.Context != Base || d.Opcode != 0x00 || d.Skipped != 2 {
		t.Errorf("got %+v", d)
	}
	if d.TStates() != 12 {
		t.Errorf("TStates = %d, want 12", d.TStates())
	}
}

func TestDecodeTruncated(t *testing.T) {
	for _, code := range [][]byte{
		{},
		{0xC3, 0x00},
		{0xED},
		{0xDD, 0xCB, 0x01},
		{0xFD},
	} {
		if _, err := Decode(code); !errors.Is(err, ErrTruncated) {
			t.Errorf("Decode(% X) = %v, want ErrTruncated", code, err)
		}
	}
}

func TestUndocumented(t *testing.T) {
	undocumented := []struct {
		ctx Context
		op  uint8
	}{
		{CB, 0x30}, {ED, 0x4C}, {ED, 0x70}, {ED, 0x71}, {DD, 0x24}, {DDCB, 0x00},
	}
	for _, tc := range undocumented {
		if !Lookup(tc.ctx, tc.op).Undocumented {
			t.Errorf("%s %02X (%s) should be undocumented", tc.ctx, tc.op, Lookup(tc.ctx, tc.op).Mnemonic)
		}
	}
	documented := []struct {
		ctx Context
		op  uint8
	}{
		{Base, 0x00}, {CB, 0x00}, {ED, 0x44}, {ED, 0x4D}, {DD, 0x21}, {DDCB, 0x06},
	}
	for _, tc := range documented {
		if Lookup(tc.ctx, tc.op).Undocumented {
			t.Errorf("%s %02X (%s) should be documented", tc.ctx, tc.op, Lookup(tc.ctx, tc.op).Mnemonic)
		}
	}
}
