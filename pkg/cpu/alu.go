package cpu

import "github.com/oisee/z80-core/pkg/bits"

// The ALU functions are pure: they take operands and the current F and return
// the result together with the new F. Flag rules follow remogatto/z80 and
// fuse, including the undocumented bits 3 and 5.

// lookup8 packs bit 3 (or bit 7 when shifted) of the two operands and the
// result into the index used by the half-carry and overflow tables.
func lookup8(a, v uint8, r uint16) uint8 {
	return ((a & 0x88) >> 3) | ((v & 0x88) >> 2) | uint8((r&0x88)>>1)
}

// Add8 implements ADD/ADC A, v.
func Add8(a, v uint8, carry bits.Bit) (uint8, uint8) {
	sum := uint16(a) + uint16(v) + uint16(carry.Byte())
	lookup := lookup8(a, v, sum)
	r := uint8(sum)
	return r, bsel(sum&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[r]
}

// Sub8 implements SUB/SBC A, v.
func Sub8(a, v uint8, carry bits.Bit) (uint8, uint8) {
	diff := uint16(a) - uint16(v) - uint16(carry.Byte())
	lookup := lookup8(a, v, diff)
	r := uint8(diff)
	return r, bsel(diff&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		Sz53Table[r]
}

// Cp8 implements CP v. A is unchanged; bits 3 and 5 come from the operand.
func Cp8(a, v uint8) uint8 {
	diff := uint16(a) - uint16(v)
	lookup := lookup8(a, v, diff)
	return bsel(diff&0x100 != 0, FlagC, bsel(diff != 0, 0, FlagZ)) |
		FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		(v & flags35) |
		uint8(diff&uint16(FlagS))
}

func And8(a, v uint8) (uint8, uint8) {
	r := a & v
	return r, FlagH | Sz53pTable[r]
}

func Or8(a, v uint8) (uint8, uint8) {
	r := a | v
	return r, Sz53pTable[r]
}

func Xor8(a, v uint8) (uint8, uint8) {
	r := a ^ v
	return r, Sz53pTable[r]
}

// Inc8 implements INC r. Carry is preserved.
func Inc8(v, f uint8) (uint8, uint8) {
	v++
	return v, (f & FlagC) |
		bsel(v == 0x80, FlagV, 0) |
		bsel(v&0x0F != 0, 0, FlagH) |
		Sz53Table[v]
}

// Dec8 implements DEC r. Carry is preserved.
func Dec8(v, f uint8) (uint8, uint8) {
	nf := (f & FlagC) | bsel(v&0x0F != 0, 0, FlagH) | FlagN
	v--
	return v, nf | bsel(v == 0x7F, FlagV, 0) | Sz53Table[v]
}

// Daa adjusts A after a BCD addition or subtraction.
func Daa(a, f uint8) (uint8, uint8) {
	var add uint8
	carry := f & FlagC
	if f&FlagH != 0 || a&0x0F > 9 {
		add = 6
	}
	if carry != 0 || a > 0x99 {
		add |= 0x60
	}
	if a > 0x99 {
		carry = FlagC
	}
	var r, nf uint8
	if f&FlagN != 0 {
		r, nf = Sub8(a, add, bits.Zero)
	} else {
		r, nf = Add8(a, add, bits.Zero)
	}
	return r, nf&^(FlagC|FlagP) | carry | ParityTable[r]
}

func Cpl(a, f uint8) (uint8, uint8) {
	a ^= 0xFF
	return a, (f & (FlagC | FlagP | FlagZ | FlagS)) | (a & flags35) | FlagN | FlagH
}

// Neg implements NEG as 0 - A.
func Neg(a uint8) (uint8, uint8) {
	return Sub8(0, a, bits.Zero)
}

func Scf(a, f uint8) uint8 {
	return (f & (FlagP | FlagZ | FlagS)) | (a & flags35) | FlagC
}

// Ccf complements carry; H receives the previous carry.
func Ccf(a, f uint8) uint8 {
	return (f & (FlagP | FlagZ | FlagS)) | (a & flags35) |
		bsel(f&FlagC != 0, FlagH, FlagC)
}

// Accumulator rotates keep S, Z and P/V.

func Rlca(a, f uint8) (uint8, uint8) {
	a = (a << 1) | (a >> 7)
	return a, (f & (FlagP | FlagZ | FlagS)) | (a & (FlagC | flags35))
}

func Rrca(a, f uint8) (uint8, uint8) {
	c := a & FlagC
	a = (a >> 1) | (a << 7)
	return a, (f & (FlagP | FlagZ | FlagS)) | c | (a & flags35)
}

func Rla(a, f uint8) (uint8, uint8) {
	r := (a << 1) | (f & FlagC)
	return r, (f & (FlagP | FlagZ | FlagS)) | (r & flags35) | (a >> 7)
}

func Rra(a, f uint8) (uint8, uint8) {
	r := (a >> 1) | (f << 7)
	return r, (f & (FlagP | FlagZ | FlagS)) | (r & flags35) | (a & FlagC)
}

// CB-prefix rotates and shifts. They replace F entirely.

func Rlc(v uint8) (uint8, uint8) {
	v = (v << 1) | (v >> 7)
	return v, (v & FlagC) | Sz53pTable[v]
}

func Rrc(v uint8) (uint8, uint8) {
	c := v & FlagC
	v = (v >> 1) | (v << 7)
	return v, c | Sz53pTable[v]
}

func Rl(v uint8, carry bits.Bit) (uint8, uint8) {
	r := (v << 1) | carry.Byte()
	return r, (v >> 7) | Sz53pTable[r]
}

func Rr(v uint8, carry bits.Bit) (uint8, uint8) {
	r := (v >> 1) | carry.Byte()<<7
	return r, (v & FlagC) | Sz53pTable[r]
}

func Sla(v uint8) (uint8, uint8) {
	r := v << 1
	return r, (v >> 7) | Sz53pTable[r]
}

func Sra(v uint8) (uint8, uint8) {
	r := (v & 0x80) | (v >> 1)
	return r, (v & FlagC) | Sz53pTable[r]
}

// Sll is the undocumented shift left that sets bit 0.
func Sll(v uint8) (uint8, uint8) {
	r := (v << 1) | 0x01
	return r, (v >> 7) | Sz53pTable[r]
}

func Srl(v uint8) (uint8, uint8) {
	r := v >> 1
	return r, (v & FlagC) | Sz53pTable[r]
}

// BitTest implements BIT n. Bits 3 and 5 are copied from undoc, which is the
// operand for registers, the value for (HL) and the high byte of the
// effective address for indexed forms.
func BitTest(n int, v, undoc, f uint8) uint8 {
	nf := (f & FlagC) | FlagH | (undoc & flags35)
	if !bits.Test(v, n) {
		nf |= FlagP | FlagZ
	}
	if n == 7 && v&0x80 != 0 {
		nf |= FlagS
	}
	return nf
}

// Add16 implements ADD HL/IX/IY, rr. S, Z and P/V are preserved; H is the
// carry out of bit 11 and bits 3/5 come from the high byte of the result.
func Add16(a, v uint16, f uint8) (uint16, uint8) {
	sum := uint32(a) + uint32(v)
	hc := (a & 0x0FFF) + (v & 0x0FFF)
	r := uint16(sum)
	return r, (f & (FlagS | FlagZ | FlagP)) |
		bsel(hc&0x1000 != 0, FlagH, 0) |
		bsel(sum&0x10000 != 0, FlagC, 0) |
		(bits.High(r) & flags35)
}

// Adc16 implements ADC HL, rr.
func Adc16(hl, v uint16, f uint8) (uint16, uint8) {
	sum := uint32(hl) + uint32(v) + uint32(f&FlagC)
	lookup := uint8(((uint32(hl) & 0x8800) >> 11) | ((uint32(v) & 0x8800) >> 10) | ((sum & 0x8800) >> 9))
	r := uint16(sum)
	h := bits.High(r)
	return r, bsel(sum&0x10000 != 0, FlagC, 0) |
		OverflowAddTable[lookup>>4] |
		(h & (flags35 | FlagS)) |
		HalfcarryAddTable[lookup&0x07] |
		bsel(r != 0, 0, FlagZ)
}

// Sbc16 implements SBC HL, rr.
func Sbc16(hl, v uint16, f uint8) (uint16, uint8) {
	diff := uint32(hl) - uint32(v) - uint32(f&FlagC)
	lookup := uint8(((uint32(hl) & 0x8800) >> 11) | ((uint32(v) & 0x8800) >> 10) | ((diff & 0x8800) >> 9))
	r := uint16(diff)
	h := bits.High(r)
	return r, bsel(diff&0x10000 != 0, FlagC, 0) |
		FlagN |
		OverflowSubTable[lookup>>4] |
		(h & (flags35 | FlagS)) |
		HalfcarrySubTable[lookup&0x07] |
		bsel(r != 0, 0, FlagZ)
}

// Rld rotates the low nibble of A and the byte m left by four bits.
// It returns the new A, the new m and the new F.
func Rld(a, m, f uint8) (uint8, uint8, uint8) {
	nm := (m << 4) | (a & 0x0F)
	na := (a & 0xF0) | (m >> 4)
	return na, nm, (f & FlagC) | Sz53pTable[na]
}

// Rrd rotates the low nibble of A and the byte m right by four bits.
func Rrd(a, m, f uint8) (uint8, uint8, uint8) {
	nm := (a << 4) | (m >> 4)
	na := (a & 0xF0) | (m & 0x0F)
	return na, nm, (f & FlagC) | Sz53pTable[na]
}

// InFlags is the flag result of IN r,(C).
func InFlags(v, f uint8) uint8 {
	return (f & FlagC) | Sz53pTable[v]
}

// IRFlags is the flag result of LD A,I and LD A,R: P/V mirrors IFF2.
func IRFlags(v, f uint8, iff2 bits.Bit) uint8 {
	return (f & FlagC) | Sz53Table[v] | bsel(iff2.Bool(), FlagP, 0)
}

// BlockLoadFlags is the flag result of LDI/LDD for the transferred value and
// the decremented BC. Bits 3 and 5 come from bits 3 and 1 of value+A.
func BlockLoadFlags(a, value uint8, bc uint16, f uint8) uint8 {
	n := value + a
	return (f & (FlagC | FlagZ | FlagS)) |
		bsel(bc != 0, FlagV, 0) |
		(n & Flag3) |
		bsel(n&0x02 != 0, Flag5, 0)
}

// BlockCompareFlags is the flag result of CPI/CPD for the compared value and
// the decremented BC.
func BlockCompareFlags(a, value uint8, bc uint16, f uint8) uint8 {
	diff := a - value
	lookup := ((a & 0x08) >> 3) | ((value & 0x08) >> 2) | ((diff & 0x08) >> 1)
	nf := (f & FlagC) |
		bsel(bc != 0, FlagV|FlagN, FlagN) |
		HalfcarrySubTable[lookup] |
		bsel(diff != 0, 0, FlagZ) |
		(diff & FlagS)
	if nf&FlagH != 0 {
		diff--
	}
	return nf | (diff & Flag3) | bsel(diff&0x02 != 0, Flag5, 0)
}

// BlockIOFlags is the flag result of INI/IND/OUTI/OUTD. value is the byte
// transferred, addend the byte it is summed with (C±1 for input, L after the
// HL update for output) and b the decremented B.
func BlockIOFlags(value, addend, b uint8) uint8 {
	k := uint16(value) + uint16(addend)
	return bsel(value&0x80 != 0, FlagN, 0) |
		bsel(k > 0xFF, FlagH|FlagC, 0) |
		ParityTable[(uint8(k)&0x07)^b] |
		Sz53Table[b]
}
