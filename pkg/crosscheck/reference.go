package crosscheck

import (
	"github.com/cespare/xxhash"
	"github.com/koron-go/z80"

	"github.com/oisee/z80-core/pkg/bits"
	"github.com/oisee/z80-core/pkg/cpu"
)

const (
	codeAddr = 0x1000
	memSize  = 0x10000
)

// image is memory shared by both cores. It implements cpu.Bus for the core
// under test and z80.Memory and z80.IO for the reference.
type image struct {
	mem [memSize]uint8
}

// fill writes a fixed pattern so memory operands are not all zero.
func (m *image) fill() *image {
	for i := range m.mem {
		m.mem[i] = uint8(i*7 + i>>8)
	}
	return m
}

func (m *image) hash() uint64 {
	return xxhash.Sum64(m.mem[:])
}

// portValue is what every port returns. Only the low byte of the port
// address is used since the reference core only sees that.
func portValue(port uint8) uint8 {
	return port ^ 0x5A
}

func (m *image) ReadMemory(addr uint16) uint8         { return m.mem[addr] }
func (m *image) WriteMemory(addr uint16, value uint8) { m.mem[addr] = value }
func (m *image) ReadPort(port uint16) uint8           { return portValue(bits.Low(port)) }
func (m *image) WritePort(port uint16, value uint8)   {}

func (m *image) Get(addr uint16) uint8        { return m.mem[addr] }
func (m *image) Set(addr uint16, value uint8) { m.mem[addr] = value }
func (m *image) In(port uint8) uint8          { return portValue(port) }
func (m *image) Out(port uint8, value uint8)  {}

// outcome is the part of a machine compared after one instruction.
type outcome struct {
	A, F, B, C, D, E, H, L uint8
	Alt                    [8]uint8
	IX, IY, SP, PC         uint16
	I                      uint8
	Mem                    uint64
}

// runCore executes code once on the core under test.
func runCore(p *cpu.Processor, m *image, code []byte, v Vector) outcome {
	copy(m.mem[codeAddr:], code)
	p.Reset()
	p.A, p.F, p.B, p.C, p.D, p.E, p.H, p.L = v.A, v.F, v.B, v.C, v.D, v.E, v.H, v.L
	p.Alt = cpu.Bank{A: v.L, F: v.H, B: v.E, C: v.D, D: v.C, E: v.B, H: v.F, L: v.A}
	p.IX, p.IY, p.SP, p.PC = v.IX, v.IY, v.SP, codeAddr
	p.I = bits.High(v.Imm)

	p.ExecuteNextInstruction()

	o := outcome{IX: p.IX, IY: p.IY, SP: p.SP, PC: p.PC, I: p.I, Mem: m.hash()}
	o.A, o.F, o.B, o.C, o.D, o.E, o.H, o.L = p.A, p.F, p.B, p.C, p.D, p.E, p.H, p.L
	o.Alt = [8]uint8{p.Alt.A, p.Alt.F, p.Alt.B, p.Alt.C, p.Alt.D, p.Alt.E, p.Alt.H, p.Alt.L}
	return o
}

func pair(hi, lo uint8) z80.Register {
	return z80.Register{Hi: hi, Lo: lo}
}

// runReference executes code once on the reference core.
func runReference(m *image, code []byte, v Vector) outcome {
	copy(m.mem[codeAddr:], code)
	ref := &z80.CPU{Memory: m, IO: m}
	ref.AF = pair(v.A, v.F)
	ref.BC = pair(v.B, v.C)
	ref.DE = pair(v.D, v.E)
	ref.HL = pair(v.H, v.L)
	ref.Alternate = z80.GPR{
		AF: pair(v.L, v.H),
		BC: pair(v.E, v.D),
		DE: pair(v.C, v.B),
		HL: pair(v.F, v.A),
	}
	ref.IX, ref.IY, ref.SP, ref.PC = v.IX, v.IY, v.SP, codeAddr
	ref.IR = pair(bits.High(v.Imm), 0)

	ref.Step()

	o := outcome{IX: ref.IX, IY: ref.IY, SP: ref.SP, PC: ref.PC, I: ref.IR.Hi, Mem: m.hash()}
	o.A, o.F, o.B, o.C = ref.AF.Hi, ref.AF.Lo, ref.BC.Hi, ref.BC.Lo
	o.D, o.E, o.H, o.L = ref.DE.Hi, ref.DE.Lo, ref.HL.Hi, ref.HL.Lo
	alt := ref.Alternate
	o.Alt = [8]uint8{alt.AF.Hi, alt.AF.Lo, alt.BC.Hi, alt.BC.Lo, alt.DE.Hi, alt.DE.Lo, alt.HL.Hi, alt.HL.Lo}
	return o
}

// diff lists the fields where got and want disagree. Flags are compared
// under mask.
func diff(got, want outcome, mask FlagMask) []Field {
	var out []Field
	add := func(name string, g, w uint16) {
		if g != w {
			out = append(out, Field{Name: name, Got: g, Want: w})
		}
	}
	add("A", uint16(got.A), uint16(want.A))
	add("F", uint16(got.F&^mask), uint16(want.F&^mask))
	add("B", uint16(got.B), uint16(want.B))
	add("C", uint16(got.C), uint16(want.C))
	add("D", uint16(got.D), uint16(want.D))
	add("E", uint16(got.E), uint16(want.E))
	add("H", uint16(got.H), uint16(want.H))
	add("L", uint16(got.L), uint16(want.L))
	for i, name := range []string{"A'", "F'", "B'", "C'", "D'", "E'", "H'", "L'"} {
		g, w := got.Alt[i], want.Alt[i]
		if name == "F'" {
			g, w = g&^mask, w&^mask
		}
		add(name, uint16(g), uint16(w))
	}
	add("IX", got.IX, want.IX)
	add("IY", got.IY, want.IY)
	add("SP", got.SP, want.SP)
	add("PC", got.PC, want.PC)
	add("I", uint16(got.I), uint16(want.I))
	if got.Mem != want.Mem {
		out = append(out, Field{Name: "memory"})
	}
	return out
}
