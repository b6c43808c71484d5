package cpu

import "fmt"

// handler executes one instruction whose opcode bytes have already been
// fetched. It fetches its operands, calls fetchFinished, performs the effect
// and returns the T-states for the path it took.
type handler func(p *Processor) int

// Dispatch tables, one per decoding context. They are built once and shared
// by every Processor.
var (
	baseTable [256]handler
	cbTable   [256]handler
	edTable   [256]handler
	ddTable   [256]handler
	fdTable   [256]handler
	ddcbTable [256]handler
	fdcbTable [256]handler
)

func init() {
	for op := range edTable {
		edTable[op] = edUndefined
	}
	for op := range ddTable {
		ddTable[op] = indexPassthrough(uint8(op))
		fdTable[op] = indexPassthrough(uint8(op))
	}

	baseTable[0xCB] = func(p *Processor) int { return cbTable[p.fetchOpcode()](p) }
	baseTable[0xED] = func(p *Processor) int { return edTable[p.fetchOpcode()](p) }
	baseTable[0xDD] = indexPrefix(&ddTable)
	baseTable[0xFD] = indexPrefix(&fdTable)

	buildLoads()
	buildArith()
	buildJumps()
	buildControl()
	buildIO()
	buildBlock()
	buildBits()
	buildIndex(&ddTable, &ddcbTable, func(p *Processor) *uint16 { return &p.IX })
	buildIndex(&fdTable, &fdcbTable, func(p *Processor) *uint16 { return &p.IY })

	if err := verifyTables(); err != nil {
		panic(err)
	}
}

func verifyTables() error {
	tables := []struct {
		name  string
		table *[256]handler
	}{
		{"base", &baseTable},
		{"CB", &cbTable},
		{"ED", &edTable},
		{"DD", &ddTable},
		{"FD", &fdTable},
		{"DDCB", &ddcbTable},
		{"FDCB", &fdcbTable},
	}
	for _, tb := range tables {
		for op, h := range tb.table {
			if h == nil {
				return fmt.Errorf("%w: %s opcode %02X has no handler", ErrMalformedTable, tb.name, op)
			}
		}
	}
	return nil
}

// edUndefined is every ED opcode with no documented or undocumented effect:
// an eight T-state, two-byte no-op.
func edUndefined(p *Processor) int {
	p.fetchFinished()
	return 8
}

// indexPrefix dispatches the opcode after DD or FD. When that opcode is
// itself DD, FD or ED the first prefix acts as a four T-state no-op.
func indexPrefix(table *[256]handler) handler {
	return func(p *Processor) int {
		op := p.fetchOpcode()
		switch op {
		case 0xDD, 0xED, 0xFD:
			return p.deferPrefix()
		}
		return table[op](p)
	}
}

// indexPassthrough handles DD/FD followed by an opcode that does not touch
// HL: the prefix costs four T-states and the opcode runs unprefixed.
func indexPassthrough(op uint8) handler {
	return func(p *Processor) int {
		return 4 + baseTable[op](p)
	}
}
