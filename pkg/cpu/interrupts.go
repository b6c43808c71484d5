package cpu

import "github.com/oisee/z80-core/pkg/bits"

const (
	nmiVector = 0x0066
	im1Vector = 0x0038
)

// RequestMaskableInterrupt raises the INT line with data as the byte the
// interrupting device puts on the data bus. The line stays raised until the
// interrupt is accepted or CancelMaskableInterrupt is called.
func (p *Processor) RequestMaskableInterrupt(data uint8) {
	p.intPending = true
	p.intData = data
}

// CancelMaskableInterrupt releases the INT line without it being accepted.
func (p *Processor) CancelMaskableInterrupt() {
	p.intPending = false
}

// RequestNonMaskableInterrupt latches an NMI edge. It is accepted before the
// next instruction regardless of IFF1.
func (p *Processor) RequestNonMaskableInterrupt() {
	p.nmiPending = true
}

// leaveHalt moves PC past the HALT opcode it was parked on.
func (p *Processor) leaveHalt() {
	if p.halted && !p.haltInPlace {
		p.PC++
	}
	p.halted = false
	p.haltInPlace = false
}

func (p *Processor) servicing(kind InterruptKind) {
	if p.intObserver != nil {
		p.intObserver.InterruptServicingStarted(kind)
	}
}

func (p *Processor) acceptNMI() int {
	p.nmiPending = false
	p.eiDelay = false
	p.IFF1 = bits.Zero
	p.leaveHalt()
	p.incR()
	p.push(p.PC)
	p.PC = nmiVector
	p.servicing(NonMaskable)
	return 11
}

func (p *Processor) acceptINT() int {
	p.intPending = false
	p.IFF1 = bits.Zero
	p.IFF2 = bits.Zero
	p.leaveHalt()

	switch p.im {
	case 0:
		// The data byte is executed as if it had been fetched; any operand
		// bytes come from PC.
		p.beginInstruction()
		p.incR()
		p.opBytes = append(p.opBytes, p.intData)
		p.servicing(Maskable)
		p.busOpcode = true
		t := baseTable[p.intData](p)
		p.busOpcode = false
		return p.finish(t) + 2
	case 1:
		p.incR()
		p.push(p.PC)
		p.PC = im1Vector
		p.servicing(Maskable)
		return 13
	default:
		p.incR()
		p.push(p.PC)
		p.PC = p.readWord(bits.Word(p.I, p.intData))
		p.servicing(Maskable)
		return 19
	}
}
