// Package machine runs a Z80 core against a 64K memory and port space.
package machine

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when a range would not fit in 64K.
var ErrOutOfMemory = errors.New("machine: range exceeds 64K")

const (
	memSize = 0x10000

	// unconnected is read from addresses that are not readable.
	unconnected = 0xFF
)

// AccessMode says which directions of access reach an address.
type AccessMode uint8

const (
	ReadAndWrite AccessMode = iota
	ReadOnly
	WriteOnly
	NotConnected
)

var accessModeNames = [...]string{"read-write", "read-only", "write-only", "not-connected"}

func (m AccessMode) String() string {
	if int(m) < len(accessModeNames) {
		return accessModeNames[m]
	}
	return fmt.Sprintf("AccessMode(%d)", uint8(m))
}

func (m AccessMode) readable() bool { return m == ReadAndWrite || m == ReadOnly }
func (m AccessMode) writable() bool { return m == ReadAndWrite || m == WriteOnly }

// PlainMemory is 64K of RAM and 64K of ports. Each address has an access
// mode and a wait state count; reads from unreadable addresses return FFh
// and writes to unwritable ones are dropped. It implements cpu.Bus and
// cpu.OpcodeFetcher.
type PlainMemory struct {
	mem   [memSize]uint8
	ports [memSize]uint8

	memModes  [memSize]AccessMode
	portModes [memSize]AccessMode

	m1Waits   [memSize]uint8
	memWaits  [memSize]uint8
	portWaits [memSize]uint8
	waits     int
}

// NewPlainMemory returns zeroed memory, fully readable and writable, with no
// wait states.
func NewPlainMemory() *PlainMemory {
	return &PlainMemory{}
}

// span checks that length bytes from start fit in 64K.
func span(start uint16, length int) (int, int, error) {
	end := int(start) + length
	if length < 0 || end > memSize {
		return 0, 0, fmt.Errorf("%w: %d bytes at %04X", ErrOutOfMemory, length, start)
	}
	return int(start), end, nil
}

func fill[T any](s []T, start uint16, length int, v T) error {
	from, to, err := span(start, length)
	if err != nil {
		return err
	}
	for i := from; i < to; i++ {
		s[i] = v
	}
	return nil
}

// SetContents copies data into memory starting at start. Access modes and
// wait states do not apply.
func (m *PlainMemory) SetContents(start uint16, data []byte) error {
	if _, _, err := span(start, len(data)); err != nil {
		return err
	}
	copy(m.mem[start:], data)
	return nil
}

// Contents returns a copy of length bytes starting at start, wrapping at
// the top of memory. Access modes and wait states do not apply.
func (m *PlainMemory) Contents(start uint16, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = m.mem[start+uint16(i)]
	}
	return out
}

// Peek reads one byte the way Contents does.
func (m *PlainMemory) Peek(addr uint16) uint8 { return m.mem[addr] }

// Poke writes one byte the way SetContents does.
func (m *PlainMemory) Poke(addr uint16, value uint8) { m.mem[addr] = value }

// SetMemoryAccessMode sets the access mode of length addresses from start.
func (m *PlainMemory) SetMemoryAccessMode(start uint16, length int, mode AccessMode) error {
	return fill(m.memModes[:], start, length, mode)
}

// MemoryAccessMode returns the access mode of addr.
func (m *PlainMemory) MemoryAccessMode(addr uint16) AccessMode {
	return m.memModes[addr]
}

// SetPortAccessMode sets the access mode of length ports from start.
func (m *PlainMemory) SetPortAccessMode(start uint16, length int, mode AccessMode) error {
	return fill(m.portModes[:], start, length, mode)
}

// PortAccessMode returns the access mode of port.
func (m *PlainMemory) PortAccessMode(port uint16) AccessMode {
	return m.portModes[port]
}

// SetM1WaitStates sets the wait states added to opcode fetches from length
// addresses from start.
func (m *PlainMemory) SetM1WaitStates(start uint16, length int, n uint8) error {
	return fill(m.m1Waits[:], start, length, n)
}

// SetMemoryWaitStates sets the wait states added to every other memory
// read or write of length addresses from start.
func (m *PlainMemory) SetMemoryWaitStates(start uint16, length int, n uint8) error {
	return fill(m.memWaits[:], start, length, n)
}

// SetPortWaitStates sets the wait states added to accesses of length ports
// from start.
func (m *PlainMemory) SetPortWaitStates(start uint16, length int, n uint8) error {
	return fill(m.portWaits[:], start, length, n)
}

// TakeWaitStates returns the wait states accumulated since the last call
// and clears the count.
func (m *PlainMemory) TakeWaitStates() int {
	n := m.waits
	m.waits = 0
	return n
}

func (m *PlainMemory) FetchOpcode(addr uint16) uint8 {
	m.waits += int(m.m1Waits[addr])
	if !m.memModes[addr].readable() {
		return unconnected
	}
	return m.mem[addr]
}

func (m *PlainMemory) ReadMemory(addr uint16) uint8 {
	m.waits += int(m.memWaits[addr])
	if !m.memModes[addr].readable() {
		return unconnected
	}
	return m.mem[addr]
}

func (m *PlainMemory) WriteMemory(addr uint16, value uint8) {
	m.waits += int(m.memWaits[addr])
	if m.memModes[addr].writable() {
		m.mem[addr] = value
	}
}

func (m *PlainMemory) ReadPort(port uint16) uint8 {
	m.waits += int(m.portWaits[port])
	if !m.portModes[port].readable() {
		return unconnected
	}
	return m.ports[port]
}

func (m *PlainMemory) WritePort(port uint16, value uint8) {
	m.waits += int(m.portWaits[port])
	if m.portModes[port].writable() {
		m.ports[port] = value
	}
}
