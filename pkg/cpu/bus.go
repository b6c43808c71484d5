package cpu

// Bus is everything the processor needs from the machine around it. Reads and
// writes are single bytes; the processor never caches or retries. Port
// addresses are always the full 16 bits the Z80 puts on the address bus.
type Bus interface {
	ReadMemory(address uint16) uint8
	WriteMemory(address uint16, value uint8)
	ReadPort(port uint16) uint8
	WritePort(port uint16, value uint8)
}

// OpcodeFetcher is implemented by buses that treat M1 (opcode fetch) reads
// differently from ordinary memory reads, e.g. to add wait states or to
// trap execution at a given address. Buses without it get ReadMemory.
type OpcodeFetcher interface {
	FetchOpcode(address uint16) uint8
}

// FetchObserver is notified once per instruction, after every opcode and
// operand byte has been fetched and before the instruction takes effect.
// The bytes slice is only valid for the duration of the call.
type FetchObserver interface {
	InstructionFetchFinished(address uint16, bytes []uint8)
}

// InterruptKind tells maskable and non-maskable interrupts apart.
type InterruptKind uint8

const (
	Maskable InterruptKind = iota
	NonMaskable
)

func (k InterruptKind) String() string {
	if k == NonMaskable {
		return "NMI"
	}
	return "INT"
}

// InterruptObserver is notified when the processor starts servicing an
// interrupt. For NMI and for IM 1 and IM 2 the return address is already
// pushed and PC is on the service routine. For IM 0 the data bus opcode is
// about to run.
type InterruptObserver interface {
	InterruptServicingStarted(kind InterruptKind)
}
