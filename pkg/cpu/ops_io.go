package cpu

import "github.com/oisee/z80-core/pkg/bits"

// Port input and output.
func buildIO() {
	baseTable[0xDB] = func(p *Processor) int { // IN A, (n)
		n := p.fetchByte()
		p.fetchFinished()
		p.A = p.bus.ReadPort(bits.Word(p.A, n))
		return 11
	}
	baseTable[0xD3] = func(p *Processor) int { // OUT (n), A
		n := p.fetchByte()
		p.fetchFinished()
		p.bus.WritePort(bits.Word(p.A, n), p.A)
		return 11
	}

	for r := uint8(0); r < 8; r++ {
		// IN r, (C). r=6 only sets flags.
		edTable[0x40|r<<3] = func(p *Processor) int {
			p.fetchFinished()
			v := p.bus.ReadPort(p.BC())
			p.F = InFlags(v, p.F)
			if r != 6 {
				p.setReg8(r, v)
			}
			return 12
		}
		// OUT (C), r. r=6 outputs zero.
		edTable[0x41|r<<3] = func(p *Processor) int {
			p.fetchFinished()
			var v uint8
			if r != 6 {
				v = p.reg8(r)
			}
			p.bus.WritePort(p.BC(), v)
			return 12
		}
	}
}
