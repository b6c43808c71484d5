package cpu

import "github.com/oisee/z80-core/pkg/bits"

// indexReg selects IX or IY for a DD or FD table.
type indexReg func(p *Processor) *uint16

// idx8 reads a register field in an indexed context, where codes 4 and 5
// name the high and low halves of the index register.
func (p *Processor) idx8(ix *uint16, code uint8) uint8 {
	switch code {
	case 4:
		return bits.High(*ix)
	case 5:
		return bits.Low(*ix)
	}
	return p.reg8(code)
}

func (p *Processor) setIdx8(ix *uint16, code, v uint8) {
	switch code {
	case 4:
		*ix = bits.WithHigh(*ix, v)
	case 5:
		*ix = bits.WithLow(*ix, v)
	default:
		p.setReg8(code, v)
	}
}

// displaced fetches the displacement byte and returns index+d.
func (p *Processor) displaced(ix *uint16) uint16 {
	return bits.Displace(*ix, p.fetchByte())
}

// buildIndex fills the DD or FD table and its CB sub-table. Entries left
// alone keep the passthrough handler.
func buildIndex(table, cb *[256]handler, reg indexReg) {
	for rp := uint8(0); rp < 4; rp++ {
		table[0x09|rp<<4] = func(p *Processor) int { // ADD IX, rr
			p.fetchFinished()
			ix := reg(p)
			v := *ix
			if rp != 2 {
				v = p.rp(rp)
			}
			*ix, p.F = Add16(*ix, v, p.F)
			return 15
		}
	}

	table[0x21] = func(p *Processor) int { // LD IX, nn
		nn := p.fetchWord()
		p.fetchFinished()
		*reg(p) = nn
		return 14
	}
	table[0x22] = func(p *Processor) int { // LD (nn), IX
		nn := p.fetchWord()
		p.fetchFinished()
		p.writeWord(nn, *reg(p))
		return 20
	}
	table[0x2A] = func(p *Processor) int { // LD IX, (nn)
		nn := p.fetchWord()
		p.fetchFinished()
		*reg(p) = p.readWord(nn)
		return 20
	}
	table[0x23] = func(p *Processor) int { // INC IX
		p.fetchFinished()
		*reg(p)++
		return 10
	}
	table[0x2B] = func(p *Processor) int { // DEC IX
		p.fetchFinished()
		*reg(p)--
		return 10
	}

	// INC, DEC and LD n on IXH and IXL.
	for _, code := range []uint8{4, 5} {
		table[0x04|code<<3] = func(p *Processor) int {
			p.fetchFinished()
			ix := reg(p)
			var v uint8
			v, p.F = Inc8(p.idx8(ix, code), p.F)
			p.setIdx8(ix, code, v)
			return 8
		}
		table[0x05|code<<3] = func(p *Processor) int {
			p.fetchFinished()
			ix := reg(p)
			var v uint8
			v, p.F = Dec8(p.idx8(ix, code), p.F)
			p.setIdx8(ix, code, v)
			return 8
		}
		table[0x06|code<<3] = func(p *Processor) int {
			n := p.fetchByte()
			p.fetchFinished()
			p.setIdx8(reg(p), code, n)
			return 11
		}
	}

	table[0x34] = func(p *Processor) int { // INC (IX+d)
		addr := p.displaced(reg(p))
		p.fetchFinished()
		var v uint8
		v, p.F = Inc8(p.read(addr), p.F)
		p.write(addr, v)
		return 23
	}
	table[0x35] = func(p *Processor) int { // DEC (IX+d)
		addr := p.displaced(reg(p))
		p.fetchFinished()
		var v uint8
		v, p.F = Dec8(p.read(addr), p.F)
		p.write(addr, v)
		return 23
	}
	table[0x36] = func(p *Processor) int { // LD (IX+d), n
		addr := p.displaced(reg(p))
		n := p.fetchByte()
		p.fetchFinished()
		p.write(addr, n)
		return 19
	}

	for op := 0x40; op < 0x80; op++ {
		dst, src := uint8(op>>3)&7, uint8(op)&7
		switch {
		case op == 0x76:
		case src == 6:
			// LD r, (IX+d): r is the real register, H and L included.
			table[op] = func(p *Processor) int {
				addr := p.displaced(reg(p))
				p.fetchFinished()
				p.setReg8(dst, p.read(addr))
				return 19
			}
		case dst == 6:
			table[op] = func(p *Processor) int { // LD (IX+d), r
				addr := p.displaced(reg(p))
				p.fetchFinished()
				p.write(addr, p.reg8(src))
				return 19
			}
		case dst == 4 || dst == 5 || src == 4 || src == 5:
			table[op] = func(p *Processor) int {
				p.fetchFinished()
				ix := reg(p)
				p.setIdx8(ix, dst, p.idx8(ix, src))
				return 8
			}
		}
	}

	for op := 0x80; op < 0xC0; op++ {
		kind, src := uint8(op>>3)&7, uint8(op)&7
		switch src {
		case 4, 5:
			table[op] = func(p *Processor) int {
				p.fetchFinished()
				p.alu(kind, p.idx8(reg(p), src))
				return 8
			}
		case 6:
			table[op] = func(p *Processor) int {
				addr := p.displaced(reg(p))
				p.fetchFinished()
				p.alu(kind, p.read(addr))
				return 19
			}
		}
	}

	table[0xE1] = func(p *Processor) int { // POP IX
		p.fetchFinished()
		*reg(p) = p.pop()
		return 14
	}
	table[0xE5] = func(p *Processor) int { // PUSH IX
		p.fetchFinished()
		p.push(*reg(p))
		return 15
	}
	table[0xE3] = func(p *Processor) int { // EX (SP), IX
		p.fetchFinished()
		ix := reg(p)
		v := p.readWord(p.SP)
		p.writeWord(p.SP, *ix)
		*ix = v
		return 23
	}
	table[0xE9] = func(p *Processor) int { // JP (IX)
		p.fetchFinished()
		p.PC = *reg(p)
		return 8
	}
	table[0xF9] = func(p *Processor) int { // LD SP, IX
		p.fetchFinished()
		p.SP = *reg(p)
		return 10
	}

	// DD CB d op: the displacement comes before the final opcode and neither
	// is an M1 fetch.
	table[0xCB] = func(p *Processor) int {
		p.ea = p.displaced(reg(p))
		op := p.fetchByte()
		p.fetchFinished()
		return cb[op](p)
	}
	buildIndexCB(cb)
}

// buildIndexCB fills a DDCB or FDCB table. The handlers work on p.ea, which
// the CB entry of the index table has already computed.
func buildIndexCB(cb *[256]handler) {
	for op := 0; op < 256; op++ {
		y, r := uint8(op>>3)&7, uint8(op)&7

		// Every form except BIT also copies the result into r when r is
		// not 6.
		store := func(p *Processor, v uint8) {
			p.write(p.ea, v)
			if r != 6 {
				p.setReg8(r, v)
			}
		}

		switch op >> 6 {
		case 0:
			cb[op] = func(p *Processor) int {
				store(p, p.shift(y, p.read(p.ea)))
				return 23
			}
		case 1:
			cb[op] = func(p *Processor) int {
				p.F = BitTest(int(y), p.read(p.ea), bits.High(p.ea), p.F)
				return 20
			}
		case 2:
			cb[op] = func(p *Processor) int {
				store(p, bits.Reset(p.read(p.ea), int(y)))
				return 23
			}
		default:
			cb[op] = func(p *Processor) int {
				store(p, bits.Set(p.read(p.ea), int(y)))
				return 23
			}
		}
	}
}
