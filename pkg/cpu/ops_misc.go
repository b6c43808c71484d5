package cpu

import "github.com/oisee/z80-core/pkg/bits"

// CPU control: NOP, HALT, DI, EI, IM n, RETN/RETI and the I/R transfers.
func buildControl() {
	baseTable[0x00] = func(p *Processor) int { // NOP
		p.fetchFinished()
		return 4
	}
	baseTable[0x76] = func(p *Processor) int { // HALT
		p.fetchFinished()
		p.halted = true
		if p.busOpcode {
			p.haltInPlace = true
		} else {
			p.PC--
		}
		return 4
	}
	baseTable[0xF3] = func(p *Processor) int { // DI
		p.fetchFinished()
		p.IFF1 = bits.Zero
		p.IFF2 = bits.Zero
		return 4
	}
	baseTable[0xFB] = func(p *Processor) int { // EI
		p.fetchFinished()
		p.IFF1 = bits.One
		p.IFF2 = bits.One
		p.eiDelay = true
		return 4
	}

	// IM n, including the undocumented mirrors.
	for op, mode := range map[uint8]uint8{
		0x46: 0, 0x4E: 0, 0x66: 0, 0x6E: 0,
		0x56: 1, 0x76: 1,
		0x5E: 2, 0x7E: 2,
	} {
		edTable[op] = func(p *Processor) int {
			p.fetchFinished()
			p.im = mode
			return 8
		}
	}

	// RETN at ED 45 and its mirrors, RETI at ED 4D. Both restore IFF1.
	for i := uint8(0); i < 8; i++ {
		edTable[0x45|i<<3] = func(p *Processor) int {
			p.fetchFinished()
			p.PC = p.pop()
			p.IFF1 = p.IFF2
			return 14
		}
	}

	edTable[0x47] = func(p *Processor) int { // LD I, A
		p.fetchFinished()
		p.I = p.A
		return 9
	}
	edTable[0x4F] = func(p *Processor) int { // LD R, A
		p.fetchFinished()
		p.R = p.A
		return 9
	}
	edTable[0x57] = func(p *Processor) int { // LD A, I
		p.fetchFinished()
		p.A = p.I
		p.F = IRFlags(p.A, p.F, p.IFF2)
		return 9
	}
	edTable[0x5F] = func(p *Processor) int { // LD A, R
		p.fetchFinished()
		p.A = p.R
		p.F = IRFlags(p.A, p.F, p.IFF2)
		return 9
	}
}
