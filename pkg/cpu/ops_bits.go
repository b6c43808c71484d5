package cpu

import "github.com/oisee/z80-core/pkg/bits"

// shift applies the CB rotate/shift selected by bits 5-3 of the opcode:
// RLC RRC RL RR SLA SRA SLL SRL.
func (p *Processor) shift(kind, v uint8) uint8 {
	var r uint8
	switch kind & 7 {
	case 0:
		r, p.F = Rlc(v)
	case 1:
		r, p.F = Rrc(v)
	case 2:
		r, p.F = Rl(v, p.CF())
	case 3:
		r, p.F = Rr(v, p.CF())
	case 4:
		r, p.F = Sla(v)
	case 5:
		r, p.F = Sra(v)
	case 6:
		r, p.F = Sll(v)
	default:
		r, p.F = Srl(v)
	}
	return r
}

// CB table: rotates and shifts, BIT, RES and SET.
func buildBits() {
	for op := 0; op < 256; op++ {
		y, r := uint8(op>>3)&7, uint8(op)&7
		t := 8
		if r == 6 {
			t = 15
		}

		switch op >> 6 {
		case 0:
			cbTable[op] = func(p *Processor) int {
				p.fetchFinished()
				p.setReg8(r, p.shift(y, p.reg8(r)))
				return t
			}
		case 1:
			if r == 6 {
				t = 12
			}
			cbTable[op] = func(p *Processor) int {
				p.fetchFinished()
				v := p.reg8(r)
				p.F = BitTest(int(y), v, v, p.F)
				return t
			}
		case 2:
			cbTable[op] = func(p *Processor) int {
				p.fetchFinished()
				p.setReg8(r, bits.Reset(p.reg8(r), int(y)))
				return t
			}
		default:
			cbTable[op] = func(p *Processor) int {
				p.fetchFinished()
				p.setReg8(r, bits.Set(p.reg8(r), int(y)))
				return t
			}
		}
	}
}
