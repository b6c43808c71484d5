package cpu

// 8-bit loads, 16-bit loads, stack operations and exchanges.
func buildLoads() {
	// LD r, r'
	for op := 0x40; op < 0x80; op++ {
		if op == 0x76 {
			continue
		}
		dst, src := uint8(op>>3)&7, uint8(op)&7
		t := 4
		if dst == 6 || src == 6 {
			t = 7
		}
		baseTable[op] = func(p *Processor) int {
			p.fetchFinished()
			p.setReg8(dst, p.reg8(src))
			return t
		}
	}

	// LD r, n
	for r := uint8(0); r < 8; r++ {
		t := 7
		if r == 6 {
			t = 10
		}
		baseTable[0x06|r<<3] = func(p *Processor) int {
			n := p.fetchByte()
			p.fetchFinished()
			p.setReg8(r, n)
			return t
		}
	}

	for rp := uint8(0); rp < 4; rp++ {
		// LD rr, nn
		baseTable[0x01|rp<<4] = func(p *Processor) int {
			nn := p.fetchWord()
			p.fetchFinished()
			p.setRP(rp, nn)
			return 10
		}
		// PUSH rr
		baseTable[0xC5|rp<<4] = func(p *Processor) int {
			p.fetchFinished()
			p.push(p.rp2(rp))
			return 11
		}
		// POP rr
		baseTable[0xC1|rp<<4] = func(p *Processor) int {
			p.fetchFinished()
			p.setRP2(rp, p.pop())
			return 10
		}
		// ED: LD (nn), rr
		edTable[0x43|rp<<4] = func(p *Processor) int {
			nn := p.fetchWord()
			p.fetchFinished()
			p.writeWord(nn, p.rp(rp))
			return 20
		}
		// ED: LD rr, (nn)
		edTable[0x4B|rp<<4] = func(p *Processor) int {
			nn := p.fetchWord()
			p.fetchFinished()
			p.setRP(rp, p.readWord(nn))
			return 20
		}
	}

	baseTable[0x02] = func(p *Processor) int { // LD (BC), A
		p.fetchFinished()
		p.write(p.BC(), p.A)
		return 7
	}
	baseTable[0x12] = func(p *Processor) int { // LD (DE), A
		p.fetchFinished()
		p.write(p.DE(), p.A)
		return 7
	}
	baseTable[0x0A] = func(p *Processor) int { // LD A, (BC)
		p.fetchFinished()
		p.A = p.read(p.BC())
		return 7
	}
	baseTable[0x1A] = func(p *Processor) int { // LD A, (DE)
		p.fetchFinished()
		p.A = p.read(p.DE())
		return 7
	}
	baseTable[0x22] = func(p *Processor) int { // LD (nn), HL
		nn := p.fetchWord()
		p.fetchFinished()
		p.writeWord(nn, p.HL())
		return 16
	}
	baseTable[0x2A] = func(p *Processor) int { // LD HL, (nn)
		nn := p.fetchWord()
		p.fetchFinished()
		p.SetHL(p.readWord(nn))
		return 16
	}
	baseTable[0x32] = func(p *Processor) int { // LD (nn), A
		nn := p.fetchWord()
		p.fetchFinished()
		p.write(nn, p.A)
		return 13
	}
	baseTable[0x3A] = func(p *Processor) int { // LD A, (nn)
		nn := p.fetchWord()
		p.fetchFinished()
		p.A = p.read(nn)
		return 13
	}
	baseTable[0xF9] = func(p *Processor) int { // LD SP, HL
		p.fetchFinished()
		p.SP = p.HL()
		return 6
	}

	// Exchanges
	baseTable[0x08] = func(p *Processor) int { // EX AF, AF'
		p.fetchFinished()
		p.ExAF()
		return 4
	}
	baseTable[0xD9] = func(p *Processor) int { // EXX
		p.fetchFinished()
		p.Exx()
		return 4
	}
	baseTable[0xEB] = func(p *Processor) int { // EX DE, HL
		p.fetchFinished()
		de, hl := p.DE(), p.HL()
		p.SetDE(hl)
		p.SetHL(de)
		return 4
	}
	baseTable[0xE3] = func(p *Processor) int { // EX (SP), HL
		p.fetchFinished()
		v := p.readWord(p.SP)
		p.writeWord(p.SP, p.HL())
		p.SetHL(v)
		return 19
	}
}
