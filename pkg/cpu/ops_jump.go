package cpu

import "github.com/oisee/z80-core/pkg/bits"

// Jumps, calls, returns, restarts and DJNZ.
func buildJumps() {
	baseTable[0xC3] = func(p *Processor) int { // JP nn
		nn := p.fetchWord()
		p.fetchFinished()
		p.PC = nn
		return 10
	}
	baseTable[0xE9] = func(p *Processor) int { // JP (HL)
		p.fetchFinished()
		p.PC = p.HL()
		return 4
	}
	baseTable[0x18] = func(p *Processor) int { // JR e
		e := p.fetchByte()
		p.fetchFinished()
		p.PC = bits.Displace(p.PC, e)
		return 12
	}
	baseTable[0x10] = func(p *Processor) int { // DJNZ e
		e := p.fetchByte()
		p.fetchFinished()
		p.B--
		if p.B != 0 {
			p.PC = bits.Displace(p.PC, e)
			return 13
		}
		return 8
	}
	baseTable[0xCD] = func(p *Processor) int { // CALL nn
		nn := p.fetchWord()
		p.fetchFinished()
		p.push(p.PC)
		p.PC = nn
		return 17
	}
	baseTable[0xC9] = func(p *Processor) int { // RET
		p.fetchFinished()
		p.PC = p.pop()
		return 10
	}

	for c := uint8(0); c < 8; c++ {
		cond := Condition(c)
		baseTable[0xC2|c<<3] = func(p *Processor) int { // JP cc, nn
			nn := p.fetchWord()
			p.fetchFinished()
			if cond.Holds(p.F) {
				p.PC = nn
			}
			return 10
		}
		baseTable[0xC4|c<<3] = func(p *Processor) int { // CALL cc, nn
			nn := p.fetchWord()
			p.fetchFinished()
			if cond.Holds(p.F) {
				p.push(p.PC)
				p.PC = nn
				return 17
			}
			return 10
		}
		baseTable[0xC0|c<<3] = func(p *Processor) int { // RET cc
			p.fetchFinished()
			if cond.Holds(p.F) {
				p.PC = p.pop()
				return 11
			}
			return 5
		}
		target := uint16(c) << 3
		baseTable[0xC7|c<<3] = func(p *Processor) int { // RST p
			p.fetchFinished()
			p.push(p.PC)
			p.PC = target
			return 11
		}
	}

	// JR cc only exists for NZ, Z, NC and C.
	for c := uint8(0); c < 4; c++ {
		cond := Condition(c)
		baseTable[0x20|c<<3] = func(p *Processor) int {
			e := p.fetchByte()
			p.fetchFinished()
			if cond.Holds(p.F) {
				p.PC = bits.Displace(p.PC, e)
				return 12
			}
			return 7
		}
	}
}
