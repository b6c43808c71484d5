package cpu

import mathbits "math/bits"

// Z80 flag bit positions in the F register.
const (
	FlagC uint8 = 0x01 // Carry
	FlagN uint8 = 0x02 // Subtract
	FlagP uint8 = 0x04 // Parity/Overflow
	FlagV       = FlagP // Overflow (same bit as Parity)
	Flag3 uint8 = 0x08 // Undocumented bit 3
	FlagH uint8 = 0x10 // Half-carry
	Flag5 uint8 = 0x20 // Undocumented bit 5
	FlagZ uint8 = 0x40 // Zero
	FlagS uint8 = 0x80 // Sign
)

// flags35 selects the two undocumented bits.
const flags35 = Flag3 | Flag5

// Flag lookup tables indexed by a result byte.
var (
	Sz53Table   [256]uint8 // S, Z, 5 and 3 as set by the byte
	Sz53pTable  [256]uint8 // Sz53Table plus even parity in P
	ParityTable [256]uint8 // P set when the byte has even parity

	// Half-carry and overflow lookup tables (from remogatto/z80).
	// For 8-bit ops: index from bits 3 of {result, arg1, arg2}.
	// For 16-bit ops (ADC/SBC HL): index from bits 11 and 15, same tables.
	HalfcarryAddTable = [8]uint8{0, FlagH, FlagH, FlagH, 0, 0, 0, FlagH}
	HalfcarrySubTable = [8]uint8{0, 0, FlagH, 0, FlagH, 0, FlagH, FlagH}
	OverflowAddTable  = [8]uint8{0, 0, 0, FlagV, FlagV, 0, 0, 0}
	OverflowSubTable  = [8]uint8{0, FlagV, 0, 0, 0, 0, FlagV, 0}
)

func init() {
	for i := range 256 {
		v := uint8(i)
		Sz53Table[i] = v & (flags35 | FlagS)
		if mathbits.OnesCount8(v)%2 == 0 {
			ParityTable[i] = FlagP
		}
		Sz53pTable[i] = Sz53Table[i] | ParityTable[i]
	}
	Sz53Table[0] |= FlagZ
	Sz53pTable[0] |= FlagZ
}

// Condition is the 3-bit condition field of JP cc, JR cc, CALL cc and RET cc.
type Condition uint8

const (
	CondNZ Condition = iota
	CondZ
	CondNC
	CondC
	CondPO
	CondPE
	CondP
	CondM
)

// Holds reports whether the condition is true for the flags value f.
func (c Condition) Holds(f uint8) bool {
	switch c {
	case CondNZ:
		return f&FlagZ == 0
	case CondZ:
		return f&FlagZ != 0
	case CondNC:
		return f&FlagC == 0
	case CondC:
		return f&FlagC != 0
	case CondPO:
		return f&FlagP == 0
	case CondPE:
		return f&FlagP != 0
	case CondP:
		return f&FlagS == 0
	default:
		return f&FlagS != 0
	}
}

// bsel returns a if cond is true, else b. Branchless flag selection.
func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}
