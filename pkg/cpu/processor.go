// Package cpu is a Z80 instruction-execution core.
package cpu

import (
	"errors"
	"fmt"

	"github.com/oisee/z80-core/pkg/bits"
)

var (
	// ErrMalformedTable means a dispatch table has an empty entry.
	ErrMalformedTable = errors.New("cpu: malformed dispatch table")
	// ErrFetchNotFinished means a handler returned without signalling the end
	// of its fetch phase.
	ErrFetchNotFinished = errors.New("cpu: instruction fetch not finished")
)

// ExecState is the run state reported by Processor.State.
type ExecState uint8

const (
	Running ExecState = iota
	Halted
)

func (s ExecState) String() string {
	if s == Halted {
		return "halted"
	}
	return "running"
}

// Option configures a Processor.
type Option func(*Processor)

// WithFetchObserver registers o to be told about every fetched instruction.
func WithFetchObserver(o FetchObserver) Option {
	return func(p *Processor) {
		p.observer = o
	}
}

// WithInterruptObserver registers o to be told when an interrupt is accepted.
func WithInterruptObserver(o InterruptObserver) Option {
	return func(p *Processor) {
		p.intObserver = o
	}
}

// Processor is a Z80 bound to a bus. It is not safe for concurrent use.
type Processor struct {
	Registers

	bus         Bus
	fetcher     OpcodeFetcher
	observer    FetchObserver
	intObserver InterruptObserver

	im          uint8
	halted      bool
	haltInPlace bool // HALT came from the data bus, PC was not rewound
	eiDelay     bool // previous instruction was EI
	intPending  bool
	intData     uint8
	nmiPending  bool
	prefixed    bool  // a DD/FD was followed by another prefix
	nextPrefix  uint8 // that prefix, already fetched, at PC
	busOpcode   bool  // the running opcode came from the data bus

	opAddr    uint16
	opBytes   []uint8
	fetchDone bool
	ea        uint16 // effective address of the current DDCB/FDCB instruction
}

// New returns a processor attached to bus, in the power-on state.
func New(bus Bus, opts ...Option) *Processor {
	p := &Processor{
		bus:     bus,
		opBytes: make([]uint8, 0, 4),
	}
	if f, ok := bus.(OpcodeFetcher); ok {
		p.fetcher = f
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// Reset performs a hardware reset: registers, interrupt mode, HALT, EI delay
// and pending interrupt lines all return to their power-on values.
func (p *Processor) Reset() {
	p.Registers.Reset()
	p.im = 0
	p.halted = false
	p.haltInPlace = false
	p.eiDelay = false
	p.intPending = false
	p.intData = 0
	p.nmiPending = false
	p.prefixed = false
	p.nextPrefix = 0
}

// State reports whether the processor is executing or halted.
func (p *Processor) State() ExecState {
	if p.halted {
		return Halted
	}
	return Running
}

// InterruptMode returns the current maskable interrupt mode (0, 1 or 2).
func (p *Processor) InterruptMode() uint8 {
	return p.im
}

// NMIPending reports whether an NMI has been requested and not yet accepted.
func (p *Processor) NMIPending() bool {
	return p.nmiPending
}

// ExecuteNextInstruction runs exactly one step and returns the T-states it
// took. A step is one of: accepting a pending interrupt, one idle cycle
// while halted, or one complete instruction including its prefixes. A DD or
// FD followed by another prefix is a step of its own, and no interrupt is
// accepted before the prefix that follows it.
func (p *Processor) ExecuteNextInstruction() int {
	if p.prefixed {
		p.prefixed = false
		p.eiDelay = false
		p.beginInstruction()
		p.PC++
		p.opBytes = append(p.opBytes, p.nextPrefix)
		return p.finish(baseTable[p.nextPrefix](p))
	}
	if p.nmiPending {
		return p.acceptNMI()
	}
	if p.intPending && p.IFF1.Bool() && !p.eiDelay {
		return p.acceptINT()
	}
	p.eiDelay = false

	if p.halted {
		p.incR()
		return 4
	}

	p.beginInstruction()
	return p.finish(baseTable[p.fetchOpcode()](p))
}

func (p *Processor) beginInstruction() {
	p.opAddr = p.PC
	p.opBytes = p.opBytes[:0]
	p.fetchDone = false
	p.busOpcode = false
}

// finish checks the handler contract and passes its cost through.
func (p *Processor) finish(t int) int {
	if !p.fetchDone {
		panic(fmt.Errorf("%w: % X at %04X", ErrFetchNotFinished, p.opBytes, p.opAddr))
	}
	return t
}

// fetchOpcode is an M1 cycle: it reads the byte at PC, advances PC and
// bumps the refresh register.
func (p *Processor) fetchOpcode() uint8 {
	var b uint8
	if p.fetcher != nil {
		b = p.fetcher.FetchOpcode(p.PC)
	} else {
		b = p.bus.ReadMemory(p.PC)
	}
	p.PC++
	p.incR()
	p.opBytes = append(p.opBytes, b)
	return b
}

// deferPrefix ends the current step on a DD or FD whose next opcode is
// another prefix. PC is left on that prefix and it is latched so the next
// step runs it without fetching it again.
func (p *Processor) deferPrefix() int {
	n := len(p.opBytes) - 1
	p.nextPrefix = p.opBytes[n]
	p.prefixed = true
	p.opBytes = p.opBytes[:n]
	p.PC--
	p.fetchFinished()
	return 4
}

// fetchByte reads an operand byte. R is not touched.
func (p *Processor) fetchByte() uint8 {
	b := p.bus.ReadMemory(p.PC)
	p.PC++
	p.opBytes = append(p.opBytes, b)
	return b
}

func (p *Processor) fetchWord() uint16 {
	lo := p.fetchByte()
	hi := p.fetchByte()
	return bits.Word(hi, lo)
}

// fetchFinished marks the end of the fetch phase of the current instruction.
func (p *Processor) fetchFinished() {
	p.fetchDone = true
	if p.observer != nil {
		p.observer.InstructionFetchFinished(p.opAddr, p.opBytes)
	}
}

func (p *Processor) read(addr uint16) uint8 {
	return p.bus.ReadMemory(addr)
}

func (p *Processor) write(addr uint16, v uint8) {
	p.bus.WriteMemory(addr, v)
}

func (p *Processor) readWord(addr uint16) uint16 {
	lo := p.read(addr)
	hi := p.read(addr + 1)
	return bits.Word(hi, lo)
}

func (p *Processor) writeWord(addr, v uint16) {
	p.write(addr, bits.Low(v))
	p.write(addr+1, bits.High(v))
}

func (p *Processor) push(v uint16) {
	p.SP--
	p.write(p.SP, bits.High(v))
	p.SP--
	p.write(p.SP, bits.Low(v))
}

func (p *Processor) pop() uint16 {
	lo := p.read(p.SP)
	p.SP++
	hi := p.read(p.SP)
	p.SP++
	return bits.Word(hi, lo)
}

// reg8 reads the register selected by a 3-bit opcode field; 6 is (HL).
func (p *Processor) reg8(code uint8) uint8 {
	switch code & 7 {
	case 0:
		return p.B
	case 1:
		return p.C
	case 2:
		return p.D
	case 3:
		return p.E
	case 4:
		return p.H
	case 5:
		return p.L
	case 6:
		return p.read(p.HL())
	default:
		return p.A
	}
}

func (p *Processor) setReg8(code, v uint8) {
	switch code & 7 {
	case 0:
		p.B = v
	case 1:
		p.C = v
	case 2:
		p.D = v
	case 3:
		p.E = v
	case 4:
		p.H = v
	case 5:
		p.L = v
	case 6:
		p.write(p.HL(), v)
	default:
		p.A = v
	}
}

// rp reads the register pair selected by a 2-bit field: BC, DE, HL, SP.
func (p *Processor) rp(code uint8) uint16 {
	switch code & 3 {
	case 0:
		return p.BC()
	case 1:
		return p.DE()
	case 2:
		return p.HL()
	default:
		return p.SP
	}
}

func (p *Processor) setRP(code uint8, v uint16) {
	switch code & 3 {
	case 0:
		p.SetBC(v)
	case 1:
		p.SetDE(v)
	case 2:
		p.SetHL(v)
	default:
		p.SP = v
	}
}

// rp2 is rp with AF in place of SP, as used by PUSH and POP.
func (p *Processor) rp2(code uint8) uint16 {
	if code&3 == 3 {
		return p.AF()
	}
	return p.rp(code)
}

func (p *Processor) setRP2(code uint8, v uint16) {
	if code&3 == 3 {
		p.SetAF(v)
		return
	}
	p.setRP(code, v)
}
