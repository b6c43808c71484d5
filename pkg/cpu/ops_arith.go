package cpu

import "github.com/oisee/z80-core/pkg/bits"

// ALU operation selected by bits 5-3 of 80-BF and C6-FE.
const (
	aluADD uint8 = iota
	aluADC
	aluSUB
	aluSBC
	aluAND
	aluXOR
	aluOR
	aluCP
)

// alu applies an 8-bit accumulator operation.
func (p *Processor) alu(op, v uint8) {
	switch op {
	case aluADD:
		p.A, p.F = Add8(p.A, v, bits.Zero)
	case aluADC:
		p.A, p.F = Add8(p.A, v, p.CF())
	case aluSUB:
		p.A, p.F = Sub8(p.A, v, bits.Zero)
	case aluSBC:
		p.A, p.F = Sub8(p.A, v, p.CF())
	case aluAND:
		p.A, p.F = And8(p.A, v)
	case aluXOR:
		p.A, p.F = Xor8(p.A, v)
	case aluOR:
		p.A, p.F = Or8(p.A, v)
	default:
		p.F = Cp8(p.A, v)
	}
}

// 8-bit and 16-bit arithmetic, logic and accumulator rotates.
func buildArith() {
	for op := 0x80; op < 0xC0; op++ {
		kind, src := uint8(op>>3)&7, uint8(op)&7
		t := 4
		if src == 6 {
			t = 7
		}
		baseTable[op] = func(p *Processor) int {
			p.fetchFinished()
			p.alu(kind, p.reg8(src))
			return t
		}
	}

	for kind := uint8(0); kind < 8; kind++ {
		// ALU A, n
		baseTable[0xC6|kind<<3] = func(p *Processor) int {
			n := p.fetchByte()
			p.fetchFinished()
			p.alu(kind, n)
			return 7
		}
	}

	for r := uint8(0); r < 8; r++ {
		t := 4
		if r == 6 {
			t = 11
		}
		baseTable[0x04|r<<3] = func(p *Processor) int { // INC r
			p.fetchFinished()
			var v uint8
			v, p.F = Inc8(p.reg8(r), p.F)
			p.setReg8(r, v)
			return t
		}
		baseTable[0x05|r<<3] = func(p *Processor) int { // DEC r
			p.fetchFinished()
			var v uint8
			v, p.F = Dec8(p.reg8(r), p.F)
			p.setReg8(r, v)
			return t
		}
	}

	for rp := uint8(0); rp < 4; rp++ {
		baseTable[0x03|rp<<4] = func(p *Processor) int { // INC rr
			p.fetchFinished()
			p.setRP(rp, p.rp(rp)+1)
			return 6
		}
		baseTable[0x0B|rp<<4] = func(p *Processor) int { // DEC rr
			p.fetchFinished()
			p.setRP(rp, p.rp(rp)-1)
			return 6
		}
		baseTable[0x09|rp<<4] = func(p *Processor) int { // ADD HL, rr
			p.fetchFinished()
			var hl uint16
			hl, p.F = Add16(p.HL(), p.rp(rp), p.F)
			p.SetHL(hl)
			return 11
		}
		edTable[0x4A|rp<<4] = func(p *Processor) int { // ADC HL, rr
			p.fetchFinished()
			var hl uint16
			hl, p.F = Adc16(p.HL(), p.rp(rp), p.F)
			p.SetHL(hl)
			return 15
		}
		edTable[0x42|rp<<4] = func(p *Processor) int { // SBC HL, rr
			p.fetchFinished()
			var hl uint16
			hl, p.F = Sbc16(p.HL(), p.rp(rp), p.F)
			p.SetHL(hl)
			return 15
		}
	}

	// NEG and its seven undocumented mirrors.
	for i := uint8(0); i < 8; i++ {
		edTable[0x44|i<<3] = func(p *Processor) int {
			p.fetchFinished()
			p.A, p.F = Neg(p.A)
			return 8
		}
	}

	baseTable[0x27] = func(p *Processor) int { // DAA
		p.fetchFinished()
		p.A, p.F = Daa(p.A, p.F)
		return 4
	}
	baseTable[0x2F] = func(p *Processor) int { // CPL
		p.fetchFinished()
		p.A, p.F = Cpl(p.A, p.F)
		return 4
	}
	baseTable[0x37] = func(p *Processor) int { // SCF
		p.fetchFinished()
		p.F = Scf(p.A, p.F)
		return 4
	}
	baseTable[0x3F] = func(p *Processor) int { // CCF
		p.fetchFinished()
		p.F = Ccf(p.A, p.F)
		return 4
	}
	baseTable[0x07] = func(p *Processor) int { // RLCA
		p.fetchFinished()
		p.A, p.F = Rlca(p.A, p.F)
		return 4
	}
	baseTable[0x0F] = func(p *Processor) int { // RRCA
		p.fetchFinished()
		p.A, p.F = Rrca(p.A, p.F)
		return 4
	}
	baseTable[0x17] = func(p *Processor) int { // RLA
		p.fetchFinished()
		p.A, p.F = Rla(p.A, p.F)
		return 4
	}
	baseTable[0x1F] = func(p *Processor) int { // RRA
		p.fetchFinished()
		p.A, p.F = Rra(p.A, p.F)
		return 4
	}

	edTable[0x67] = func(p *Processor) int { // RRD
		p.fetchFinished()
		var m uint8
		p.A, m, p.F = Rrd(p.A, p.read(p.HL()), p.F)
		p.write(p.HL(), m)
		return 18
	}
	edTable[0x6F] = func(p *Processor) int { // RLD
		p.fetchFinished()
		var m uint8
		p.A, m, p.F = Rld(p.A, p.read(p.HL()), p.F)
		p.write(p.HL(), m)
		return 18
	}
}
