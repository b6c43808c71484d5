// Package cpm runs CP/M .COM programs such as ZEXDOC and ZEXALL.
package cpm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oisee/z80-core/pkg/bits"
	"github.com/oisee/z80-core/pkg/cpu"
	"github.com/oisee/z80-core/pkg/machine"
)

var (
	// ErrExit is returned by a syscall handler when the program asks to
	// terminate. Run treats it as a normal exit.
	ErrExit = errors.New("cpm: exit")

	// ErrUnimplemented is returned when the program calls a BDOS function
	// with no handler.
	ErrUnimplemented = errors.New("cpm: unimplemented syscall")
)

const (
	// TPA is where programs are loaded and started.
	TPA = 0x0100

	warmBoot   = 0x0000
	bdosEntry  = 0x0005
	bdosTop    = 0x0006
	stringStop = '$'

	// ZEXDOC and ZEXALL read the address of their first test from here.
	zexTestPointer = 0x0120
	zexFirstTest   = 0x013A
)

// HandlerFunc emulates one BDOS function.
type HandlerFunc func(c *CPM) error

// Handler is a BDOS function we know how to emulate.
type Handler struct {
	Desc string
	Fn   HandlerFunc
}

// CPM holds a machine set up as a bare CP/M system.
type CPM struct {
	Memory *machine.PlainMemory
	Runner *machine.Runner

	syscalls map[uint8]Handler
	out      io.Writer
	log      logrus.FieldLogger
}

// New returns a CP/M system writing console output to out. Extra runner
// options, such as tracing, are passed through.
func New(out io.Writer, log logrus.FieldLogger, opts ...machine.Option) *CPM {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	c := &CPM{
		Memory: machine.NewPlainMemory(),
		out:    out,
		log:    log,
		syscalls: map[uint8]Handler{
			0: {Desc: "P_TERMCPM", Fn: sysExit},
			2: {Desc: "C_WRITE", Fn: sysWriteChar},
			9: {Desc: "C_WRITESTR", Fn: sysWriteString},
		},
	}
	opts = append([]machine.Option{
		machine.WithLogger(log),
		machine.WithStopOnEmptyStackReturn(true),
		machine.WithHook(c.bdos),
	}, opts...)
	c.Runner = machine.NewRunner(c.Memory, opts...)
	return c
}

// Load places program at the TPA and sets the top of memory seen by the
// program to 0xFFFF.
func (c *CPM) Load(program []byte) error {
	if err := c.Memory.SetContents(TPA, program); err != nil {
		return fmt.Errorf("cpm: load: %w", err)
	}
	c.Memory.Poke(bdosTop, 0xFF)
	c.Memory.Poke(bdosTop+1, 0xFF)
	return nil
}

// SkipTests patches a loaded ZEXDOC or ZEXALL image so it starts at test n
// instead of the first one.
func (c *CPM) SkipTests(n int) {
	addr := uint16(zexFirstTest + 2*n)
	c.Memory.Poke(zexTestPointer, bits.Low(addr))
	c.Memory.Poke(zexTestPointer+1, bits.High(addr))
}

// Run resets the processor and runs the loaded program from the TPA until
// it warm boots, calls function 0, or returns from its entry stack level.
func (c *CPM) Run(ctx context.Context) error {
	c.Runner.Reset()
	c.Runner.CPU().PC = TPA

	err := c.Runner.Run(ctx)
	switch {
	case errors.Is(err, ErrExit), errors.Is(err, machine.ErrStackEmptyReturn):
		c.log.WithFields(logrus.Fields{
			"steps": c.Runner.Steps(),
			"t":     c.Runner.TStates(),
		}).Info("program finished")
		return nil
	default:
		return err
	}
}

// bdos runs before every step and intercepts calls to the BDOS entry point
// and jumps to the warm boot vector.
func (c *CPM) bdos(p *cpu.Processor) error {
	switch p.PC {
	case warmBoot:
		return ErrExit
	case bdosEntry:
	default:
		return nil
	}

	fn := p.C
	h, ok := c.syscalls[fn]
	if !ok {
		c.log.WithField("syscall", fmt.Sprintf("%02Xh", fn)).Error("unimplemented syscall")
		return fmt.Errorf("%w: %02Xh", ErrUnimplemented, fn)
	}
	c.log.WithFields(logrus.Fields{
		"name":    h.Desc,
		"syscall": fn,
	}).Debug("bdos")
	if err := h.Fn(c); err != nil {
		return err
	}

	// Return to the caller.
	p.PC = bits.Word(c.Memory.Peek(p.SP+1), c.Memory.Peek(p.SP))
	p.SP += 2
	return nil
}

func sysExit(c *CPM) error {
	return ErrExit
}

// sysWriteChar prints the character in E.
func sysWriteChar(c *CPM) error {
	_, err := c.out.Write([]byte{c.Runner.CPU().E})
	return err
}

// sysWriteString prints the '$' terminated string at DE. A string with no
// terminator stops after one pass over memory.
func sysWriteString(c *CPM) error {
	addr := c.Runner.CPU().DE()
	var buf []byte
	for range 0x10000 {
		b := c.Memory.Peek(addr)
		if b == stringStop {
			break
		}
		buf = append(buf, b)
		addr++
	}
	_, err := c.out.Write(buf)
	return err
}
