package cpu

import "github.com/oisee/z80-core/pkg/bits"

// Bank is one set of the eight 8-bit general registers. The 16-bit pairs are
// views over the same cells: writing a pair writes both bytes and writing a
// byte is visible through its pair immediately.
type Bank struct {
	A, F, B, C, D, E, H, L uint8
}

func (b *Bank) AF() uint16 { return bits.Word(b.A, b.F) }
func (b *Bank) BC() uint16 { return bits.Word(b.B, b.C) }
func (b *Bank) DE() uint16 { return bits.Word(b.D, b.E) }
func (b *Bank) HL() uint16 { return bits.Word(b.H, b.L) }

func (b *Bank) SetAF(v uint16) { b.A, b.F = bits.High(v), bits.Low(v) }
func (b *Bank) SetBC(v uint16) { b.B, b.C = bits.High(v), bits.Low(v) }
func (b *Bank) SetDE(v uint16) { b.D, b.E = bits.High(v), bits.Low(v) }
func (b *Bank) SetHL(v uint16) { b.H, b.L = bits.High(v), bits.Low(v) }

// Flag returns the flag selected by mask (one of the Flag constants).
func (b *Bank) Flag(mask uint8) bits.Bit {
	return b.F&mask != 0
}

// SetFlag writes the flag selected by mask, leaving every other bit of F alone.
func (b *Bank) SetFlag(mask uint8, v bits.Bit) {
	if v {
		b.F |= mask
	} else {
		b.F &^= mask
	}
}

func (b *Bank) CF() bits.Bit { return b.Flag(FlagC) }
func (b *Bank) NF() bits.Bit { return b.Flag(FlagN) }
func (b *Bank) PF() bits.Bit { return b.Flag(FlagP) }
func (b *Bank) HF() bits.Bit { return b.Flag(FlagH) }
func (b *Bank) ZF() bits.Bit { return b.Flag(FlagZ) }
func (b *Bank) SF() bits.Bit { return b.Flag(FlagS) }

// Registers is the complete Z80 register file.
type Registers struct {
	Bank      // main register set
	Alt  Bank // alternate set, reachable through EX AF,AF' and EXX

	IX, IY uint16
	SP, PC uint16

	I uint8 // interrupt vector base
	R uint8 // memory refresh

	IFF1, IFF2 bits.Bit
}

// ExAF swaps AF with AF'.
func (r *Registers) ExAF() {
	r.A, r.Alt.A = r.Alt.A, r.A
	r.F, r.Alt.F = r.Alt.F, r.F
}

// Exx swaps BC, DE and HL with their alternates.
func (r *Registers) Exx() {
	r.B, r.Alt.B = r.Alt.B, r.B
	r.C, r.Alt.C = r.Alt.C, r.C
	r.D, r.Alt.D = r.Alt.D, r.D
	r.E, r.Alt.E = r.Alt.E, r.E
	r.H, r.Alt.H = r.Alt.H, r.H
	r.L, r.Alt.L = r.Alt.L, r.L
}

// Reset loads the power-on values.
func (r *Registers) Reset() {
	for _, b := range []*Bank{&r.Bank, &r.Alt} {
		b.SetAF(0xFFFF)
		b.SetBC(0xFFFF)
		b.SetDE(0xFFFF)
		b.SetHL(0xFFFF)
	}
	r.IX = 0xFFFF
	r.IY = 0xFFFF
	r.SP = 0xFFFF
	r.PC = 0
	r.I = 0
	r.R = 0
	r.IFF1 = bits.Zero
	r.IFF2 = bits.Zero
}

// incR advances the 7-bit refresh counter, keeping bit 7.
func (r *Registers) incR() {
	r.R = r.R&0x80 | (r.R+1)&0x7F
}
