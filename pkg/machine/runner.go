package machine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oisee/z80-core/pkg/cpu"
	"github.com/oisee/z80-core/pkg/inst"
)

var (
	// ErrStepLimit is returned when the configured number of steps has run.
	ErrStepLimit = errors.New("machine: step limit reached")
	// ErrHaltedWithInterruptsDisabled is returned when the processor halts
	// with IFF1 clear and no NMI pending, so nothing can ever wake it.
	ErrHaltedWithInterruptsDisabled = errors.New("machine: HALT with interrupts disabled")
	// ErrStackEmptyReturn is returned when a return instruction pops from
	// the stack level Run started at, or the level last set by LD SP.
	ErrStackEmptyReturn = errors.New("machine: return with empty stack")
)

// Hook runs before every step. A non-nil error stops Run and is returned
// from it unchanged.
type Hook func(p *cpu.Processor) error

// StepInfo describes a step that has just run.
type StepInfo struct {
	Addr    uint16
	Bytes   []uint8 // opcode and operand bytes, valid during the call
	TStates int     // wait states included

	Interrupted bool // the step accepted an interrupt
	Kind        cpu.InterruptKind
}

// IsRETI reports whether the step executed RETI.
func (s StepInfo) IsRETI() bool {
	return len(s.Bytes) == 2 && s.Bytes[0] == 0xED && s.Bytes[1] == 0x4D
}

// IsRETN reports whether the step executed RETN or one of its mirrors.
func (s StepInfo) IsRETN() bool {
	return len(s.Bytes) == 2 && s.Bytes[0] == 0xED && s.Bytes[1]&0xC7 == 0x45 && s.Bytes[1] != 0x4D
}

// AfterHook runs after every step. A non-nil error stops Run and is
// returned from it unchanged.
type AfterHook func(p *cpu.Processor, s StepInfo) error

// InterruptHook runs when the processor starts servicing an interrupt, in
// the middle of the step that accepts it.
type InterruptHook func(p *cpu.Processor, kind cpu.InterruptKind)

// WaitCounter is implemented by buses that add wait states to accesses.
// The Runner collects them after each step.
type WaitCounter interface {
	TakeWaitStates() int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for tracing and stop reasons.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(on bool) Option {
	return func(r *Runner) {
		r.trace = on
	}
}

// WithStepLimit stops Run after n steps. Zero means no limit.
func WithStepLimit(n uint64) Option {
	return func(r *Runner) {
		r.stepLimit = n
	}
}

// WithStopOnDIHalt controls the HALT-with-interrupts-disabled stop. It is on
// by default.
func WithStopOnDIHalt(on bool) Option {
	return func(r *Runner) {
		r.stopOnDIHalt = on
	}
}

// WithStopOnEmptyStackReturn stops Run when a taken return pops from the
// initial stack level. It is off by default.
func WithStopOnEmptyStackReturn(on bool) Option {
	return func(r *Runner) {
		r.stopOnReturn = on
	}
}

// WithHook adds a hook run before each step.
func WithHook(h Hook) Option {
	return func(r *Runner) {
		r.hooks = append(r.hooks, h)
	}
}

// WithAfterHook adds a hook run after each step.
func WithAfterHook(h AfterHook) Option {
	return func(r *Runner) {
		r.afterHooks = append(r.afterHooks, h)
	}
}

// WithInterruptHook adds a hook run when an interrupt is accepted.
func WithInterruptHook(h InterruptHook) Option {
	return func(r *Runner) {
		r.intHooks = append(r.intHooks, h)
	}
}

// Runner drives a processor one step at a time.
type Runner struct {
	cpu *cpu.Processor
	log logrus.FieldLogger

	trace        bool
	stepLimit    uint64
	stopOnDIHalt bool
	stopOnReturn bool
	hooks        []Hook
	afterHooks   []AfterHook
	intHooks     []InterruptHook
	waits        WaitCounter

	steps    uint64
	tStates  uint64
	stackTop uint16

	lastAddr  uint16
	lastBytes []uint8
	lastInt   bool
	lastKind  cpu.InterruptKind
}

// NewRunner builds a processor on bus and a runner to drive it.
func NewRunner(bus cpu.Bus, opts ...Option) *Runner {
	r := &Runner{
		stopOnDIHalt: true,
		lastBytes:    make([]uint8, 0, 4),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.Out = io.Discard
		r.log = l
	}
	r.waits, _ = bus.(WaitCounter)
	r.cpu = cpu.New(bus, cpu.WithFetchObserver(r), cpu.WithInterruptObserver(r))
	return r
}

// CPU returns the driven processor.
func (r *Runner) CPU() *cpu.Processor {
	return r.cpu
}

// Steps returns the number of steps run since the last Reset.
func (r *Runner) Steps() uint64 {
	return r.steps
}

// TStates returns the T-states elapsed since the last Reset.
func (r *Runner) TStates() uint64 {
	return r.tStates
}

// Reset resets the processor and the counters.
func (r *Runner) Reset() {
	r.cpu.Reset()
	r.steps = 0
	r.tStates = 0
	if r.waits != nil {
		r.waits.TakeWaitStates()
	}
}

// InstructionFetchFinished records the bytes of the current instruction.
func (r *Runner) InstructionFetchFinished(addr uint16, b []uint8) {
	r.lastAddr = addr
	r.lastBytes = append(r.lastBytes[:0], b...)
}

// InterruptServicingStarted runs the interrupt hooks.
func (r *Runner) InterruptServicingStarted(kind cpu.InterruptKind) {
	r.lastInt, r.lastKind = true, kind
	for _, h := range r.intHooks {
		h(r.cpu, kind)
	}
}

// Run steps the processor until a stop condition is met or ctx is done.
// Cancellation is checked between instructions only.
func (r *Runner) Run(ctx context.Context) error {
	r.stackTop = r.cpu.SP
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if r.stepLimit != 0 && r.steps >= r.stepLimit {
			return fmt.Errorf("%w after %d steps", ErrStepLimit, r.steps)
		}
		for _, h := range r.hooks {
			if err := h(r.cpu); err != nil {
				return err
			}
		}

		spBefore := r.cpu.SP
		t, err := r.Step()
		if err != nil {
			return err
		}
		if len(r.afterHooks) > 0 {
			info := StepInfo{
				Addr:        r.lastAddr,
				Bytes:       r.lastBytes,
				TStates:     t,
				Interrupted: r.lastInt,
				Kind:        r.lastKind,
			}
			for _, h := range r.afterHooks {
				if err := h(r.cpu, info); err != nil {
					return err
				}
			}
		}

		if r.stopOnDIHalt && r.cpu.State() == cpu.Halted && !r.cpu.IFF1.Bool() && !r.cpu.NMIPending() {
			r.log.WithField("pc", fmt.Sprintf("%04X", r.cpu.PC)).Info("halted with interrupts disabled")
			return ErrHaltedWithInterruptsDisabled
		}
		switch {
		case isLoadSP(r.lastBytes):
			r.stackTop = r.cpu.SP
		case r.stopOnReturn && spBefore == r.stackTop && r.cpu.SP != spBefore && isReturn(r.lastBytes):
			r.log.WithField("sp", fmt.Sprintf("%04X", spBefore)).Info("return with empty stack")
			return ErrStackEmptyReturn
		}
	}
}

// Step executes one step and returns its T-states, bus wait states
// included. A panic raised by the bus or the core is returned as an error
// carrying the PC it happened at.
func (r *Runner) Step() (t int, err error) {
	pc := r.cpu.PC
	r.lastBytes = r.lastBytes[:0]
	r.lastInt = false
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(error); ok {
				err = fmt.Errorf("machine: step at %04X: %w", pc, e)
			} else {
				err = fmt.Errorf("machine: step at %04X: %v", pc, v)
			}
		}
	}()

	t = r.cpu.ExecuteNextInstruction()
	if r.waits != nil {
		t += r.waits.TakeWaitStates()
	}
	r.steps++
	r.tStates += uint64(t)
	if r.trace && len(r.lastBytes) > 0 {
		r.traceInstruction(t)
	}
	return t, nil
}

func (r *Runner) traceInstruction(t int) {
	text, _, err := inst.Disassemble(r.lastBytes, r.lastAddr)
	switch {
	case err == nil:
	case len(r.lastBytes) == 1:
		text = inst.Lookup(inst.Base, r.lastBytes[0]).Mnemonic
	default:
		text = "?"
	}
	r.log.WithFields(logrus.Fields{
		"pc":    fmt.Sprintf("%04X", r.lastAddr),
		"bytes": fmt.Sprintf("% X", r.lastBytes),
		"op":    text,
		"t":     t,
	}).Debug("exec")
}

// isReturn reports whether the instruction bytes are RET, RET cc, RETI or
// RETN, ignoring DD/FD prefixes that have no effect.
func isReturn(b []uint8) bool {
	d, err := inst.Decode(b)
	if err != nil {
		return false
	}
	switch d.Context {
	case inst.Base:
		return d.Opcode == 0xC9 || d.Opcode&0xC7 == 0xC0
	case inst.ED:
		return d.Opcode&0xC7 == 0x45
	}
	return false
}

// isLoadSP reports whether the instruction bytes load SP: LD SP,nn, LD SP,HL,
// LD SP,IX, LD SP,IY or LD SP,(nn).
func isLoadSP(b []uint8) bool {
	d, err := inst.Decode(b)
	if err != nil {
		return false
	}
	switch d.Context {
	case inst.Base:
		return d.Opcode == 0x31 || d.Opcode == 0xF9
	case inst.DD, inst.FD:
		return d.Opcode == 0xF9
	case inst.ED:
		return d.Opcode == 0x7B
	}
	return false
}
