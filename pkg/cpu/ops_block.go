package cpu

// Block transfer, compare and IO instructions. Each single-step form costs 16
// T-states; a repeating form that loops back costs 21 and leaves PC on its
// own ED prefix.

const (
	stepInc uint16 = 0x0001
	stepDec uint16 = 0xFFFF
)

func (p *Processor) blockLoad(step uint16) {
	v := p.read(p.HL())
	p.write(p.DE(), v)
	p.SetHL(p.HL() + step)
	p.SetDE(p.DE() + step)
	bc := p.BC() - 1
	p.SetBC(bc)
	p.F = BlockLoadFlags(p.A, v, bc, p.F)
}

func (p *Processor) blockCompare(step uint16) {
	v := p.read(p.HL())
	p.SetHL(p.HL() + step)
	bc := p.BC() - 1
	p.SetBC(bc)
	p.F = BlockCompareFlags(p.A, v, bc, p.F)
}

func (p *Processor) blockIn(step uint16) {
	v := p.bus.ReadPort(p.BC())
	p.write(p.HL(), v)
	p.B--
	p.SetHL(p.HL() + step)
	p.F = BlockIOFlags(v, p.C+uint8(step), p.B)
}

func (p *Processor) blockOut(step uint16) {
	v := p.read(p.HL())
	p.B--
	p.bus.WritePort(p.BC(), v)
	p.SetHL(p.HL() + step)
	p.F = BlockIOFlags(v, p.L, p.B)
}

// repeat rewinds PC to the start of the instruction when again holds.
func (p *Processor) repeat(again bool) int {
	if again {
		p.PC -= 2
		return 21
	}
	return 16
}

func buildBlock() {
	for _, dir := range []struct {
		off  uint8
		step uint16
	}{{0x00, stepInc}, {0x08, stepDec}} {
		off, s := dir.off, dir.step

		edTable[0xA0|off] = func(p *Processor) int { // LDI / LDD
			p.fetchFinished()
			p.blockLoad(s)
			return 16
		}
		edTable[0xB0|off] = func(p *Processor) int { // LDIR / LDDR
			p.fetchFinished()
			p.blockLoad(s)
			return p.repeat(p.BC() != 0)
		}
		edTable[0xA1|off] = func(p *Processor) int { // CPI / CPD
			p.fetchFinished()
			p.blockCompare(s)
			return 16
		}
		edTable[0xB1|off] = func(p *Processor) int { // CPIR / CPDR
			p.fetchFinished()
			p.blockCompare(s)
			return p.repeat(p.BC() != 0 && p.F&FlagZ == 0)
		}
		edTable[0xA2|off] = func(p *Processor) int { // INI / IND
			p.fetchFinished()
			p.blockIn(s)
			return 16
		}
		edTable[0xB2|off] = func(p *Processor) int { // INIR / INDR
			p.fetchFinished()
			p.blockIn(s)
			return p.repeat(p.B != 0)
		}
		edTable[0xA3|off] = func(p *Processor) int { // OUTI / OUTD
			p.fetchFinished()
			p.blockOut(s)
			return 16
		}
		edTable[0xB3|off] = func(p *Processor) int { // OTIR / OTDR
			p.fetchFinished()
			p.blockOut(s)
			return p.repeat(p.B != 0)
		}
	}
}
