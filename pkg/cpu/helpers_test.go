package cpu

import "testing"

type testBus struct {
	mem    [0x10000]byte
	io     [0x10000]byte
	outs   []portWrite
	inPort uint16
}

type portWrite struct {
	port  uint16
	value uint8
}

func (b *testBus) ReadMemory(addr uint16) uint8         { return b.mem[addr] }
func (b *testBus) WriteMemory(addr uint16, value uint8) { b.mem[addr] = value }

func (b *testBus) ReadPort(port uint16) uint8 {
	b.inPort = port
	return b.io[port]
}

func (b *testBus) WritePort(port uint16, value uint8) {
	b.outs = append(b.outs, portWrite{port, value})
	b.io[port] = value
}

// m1Bus adds FetchOpcode to testBus.
type m1Bus struct {
	testBus
	m1 int
}

func (b *m1Bus) FetchOpcode(addr uint16) uint8 {
	b.m1++
	return b.mem[addr]
}

type testRig struct {
	bus *testBus
	cpu *Processor
}

func newTestRig(opts ...Option) *testRig {
	bus := &testBus{}
	return &testRig{bus: bus, cpu: New(bus, opts...)}
}

// load resets the rig and places program at start with PC pointing at it.
func (r *testRig) load(start uint16, program ...byte) {
	for i, value := range program {
		r.bus.mem[start+uint16(i)] = value
	}
	r.cpu.PC = start
	r.cpu.SP = 0xF000
}

// step executes one instruction and returns its cost.
func (r *testRig) step() int {
	return r.cpu.ExecuteNextInstruction()
}

func requireU16(t *testing.T, name string, got, want uint16) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%04X, want 0x%04X", name, got, want)
	}
}

func requireU8(t *testing.T, name string, got, want uint8) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%02X, want 0x%02X", name, got, want)
	}
}

func requireT(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: %d T-states, want %d", name, got, want)
	}
}

type fetchRecord struct {
	addr  uint16
	bytes []uint8
}

type recordingObserver struct {
	fetches []fetchRecord
}

func (o *recordingObserver) InstructionFetchFinished(addr uint16, b []uint8) {
	o.fetches = append(o.fetches, fetchRecord{addr, append([]uint8(nil), b...)})
}
