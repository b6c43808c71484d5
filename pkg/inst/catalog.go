package inst

// Context is the decoding context an opcode byte is interpreted in.
type Context uint8

const (
	Base Context = iota
	CB
	ED
	DD
	FD
	DDCB
	FDCB

	ContextCount
)

var contextNames = [ContextCount]string{"base", "CB", "ED", "DD", "FD", "DDCB", "FDCB"}

func (c Context) String() string {
	if c < ContextCount {
		return contextNames[c]
	}
	return "invalid"
}

// Prefix returns the bytes that select the context, in encoding order.
func (c Context) Prefix() []uint8 {
	switch c {
	case CB:
		return []uint8{0xCB}
	case ED:
		return []uint8{0xED}
	case DD:
		return []uint8{0xDD}
	case FD:
		return []uint8{0xFD}
	case DDCB:
		return []uint8{0xDD, 0xCB}
	case FDCB:
		return []uint8{0xFD, 0xCB}
	}
	return nil
}

// Info holds static metadata for one opcode in one context.
//
// Mnemonics use upper case for registers and lower-case placeholders for
// operands: nn (16-bit), n (8-bit), d (index displacement), e (relative
// jump offset).
type Info struct {
	Mnemonic string
	Operands int // operand bytes, displacement included

	TStates      int // cost when no branch is taken, or the only cost
	TakenTStates int // cost when a conditional branch or repeat is taken; 0 if none

	Prefix       bool // the opcode only selects another context
	Passthrough  bool // DD/FD entry that runs the base opcode unchanged
	Undocumented bool
}

// Catalog holds the metadata of every opcode in every context.
var Catalog [ContextCount][256]Info

// Lookup returns the metadata for op in ctx.
func Lookup(ctx Context, op uint8) *Info {
	return &Catalog[ctx][op]
}

// Length returns the full encoded length of op in ctx, prefixes included.
func Length(ctx Context, op uint8) int {
	return len(ctx.Prefix()) + 1 + Catalog[ctx][op].Operands
}

var (
	regNames  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames = [4]string{"BC", "DE", "HL", "SP"}
	pushNames = [4]string{"BC", "DE", "HL", "AF"}
	condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluNames  = [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}
	rotNames  = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
	blockOps  = [4][4]string{
		{"LDI", "CPI", "INI", "OUTI"},
		{"LDD", "CPD", "IND", "OUTD"},
		{"LDIR", "CPIR", "INIR", "OTIR"},
		{"LDDR", "CPDR", "INDR", "OTDR"},
	}
	imModes = [8]string{"0", "0", "1", "2", "0", "0", "1", "2"}
)

// operandBytes counts the operand bytes a mnemonic's placeholders stand for.
func operandBytes(m string) int {
	n := 0
	for i := 0; i < len(m); i++ {
		switch m[i] {
		case 'n':
			if i+1 < len(m) && m[i+1] == 'n' {
				n += 2
				i++
			} else {
				n++
			}
		case 'd', 'e':
			n++
		}
	}
	return n
}

func info(m string, t int) Info {
	return Info{Mnemonic: m, Operands: operandBytes(m), TStates: t}
}

func branch(m string, t, taken int) Info {
	i := info(m, t)
	i.TakenTStates = taken
	return i
}

func undoc(i Info) Info {
	i.Undocumented = true
	return i
}

func cost(r, reg, mem int) int {
	if r == 6 {
		return mem
	}
	return reg
}

func rst(y int) string {
	return string(appendHex8([]byte("RST "), uint8(y<<3)))
}

func init() {
	buildBase()
	buildCB()
	buildED()
	buildIndex(DD, DDCB, "IX")
	buildIndex(FD, FDCB, "IY")
}

func buildBase() {
	t := &Catalog[Base]
	for op := 0; op < 256; op++ {
		x, y, z := op>>6, (op>>3)&7, op&7
		p, q := y>>1, y&1
		switch x {
		case 0:
			switch z {
			case 0:
				switch y {
				case 0:
					t[op] = info("NOP", 4)
				case 1:
					t[op] = info("EX AF, AF'", 4)
				case 2:
					t[op] = branch("DJNZ e", 8, 13)
				case 3:
					t[op] = info("JR e", 12)
				default:
					t[op] = branch("JR "+condNames[y-4]+", e", 7, 12)
				}
			case 1:
				if q == 0 {
					t[op] = info("LD "+pairNames[p]+", nn", 10)
				} else {
					t[op] = info("ADD HL, "+pairNames[p], 11)
				}
			case 2:
				t[op] = [8]Info{
					info("LD (BC), A", 7), info("LD A, (BC)", 7),
					info("LD (DE), A", 7), info("LD A, (DE)", 7),
					info("LD (nn), HL", 16), info("LD HL, (nn)", 16),
					info("LD (nn), A", 13), info("LD A, (nn)", 13),
				}[y]
			case 3:
				if q == 0 {
					t[op] = info("INC "+pairNames[p], 6)
				} else {
					t[op] = info("DEC "+pairNames[p], 6)
				}
			case 4:
				t[op] = info("INC "+regNames[y], cost(y, 4, 11))
			case 5:
				t[op] = info("DEC "+regNames[y], cost(y, 4, 11))
			case 6:
				t[op] = info("LD "+regNames[y]+", n", cost(y, 7, 10))
			case 7:
				t[op] = info([8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}[y], 4)
			}
		case 1:
			if op == 0x76 {
				t[op] = info("HALT", 4)
			} else {
				t[op] = info("LD "+regNames[y]+", "+regNames[z], cost(y, cost(z, 4, 7), 7))
			}
		case 2:
			t[op] = info(aluNames[y]+regNames[z], cost(z, 4, 7))
		case 3:
			switch z {
			case 0:
				t[op] = branch("RET "+condNames[y], 5, 11)
			case 1:
				if q == 0 {
					t[op] = info("POP "+pushNames[p], 10)
				} else {
					t[op] = [4]Info{
						info("RET", 10), info("EXX", 4),
						info("JP (HL)", 4), info("LD SP, HL", 6),
					}[p]
				}
			case 2:
				t[op] = info("JP "+condNames[y]+", nn", 10)
			case 3:
				t[op] = [8]Info{
					info("JP nn", 10), {Prefix: true},
					info("OUT (n), A", 11), info("IN A, (n)", 11),
					info("EX (SP), HL", 19), info("EX DE, HL", 4),
					info("DI", 4), info("EI", 4),
				}[y]
			case 4:
				t[op] = branch("CALL "+condNames[y]+", nn", 10, 17)
			case 5:
				if q == 0 {
					t[op] = info("PUSH "+pushNames[p], 11)
				} else if p == 0 {
					t[op] = info("CALL nn", 17)
				} else {
					t[op] = Info{Prefix: true}
				}
			case 6:
				t[op] = info(aluNames[y]+"n", 7)
			case 7:
				t[op] = info(rst(y), 11)
			}
		}
	}
	for _, op := range []uint8{0xCB, 0xDD, 0xED, 0xFD} {
		t[op] = Info{Mnemonic: prefixMnemonic(op), Prefix: true}
	}
}

func prefixMnemonic(op uint8) string {
	return string(appendHex8([]byte("PREFIX "), op))
}

func buildCB() {
	t := &Catalog[CB]
	for op := 0; op < 256; op++ {
		x, y, z := op>>6, (op>>3)&7, op&7
		switch x {
		case 0:
			i := info(rotNames[y]+" "+regNames[z], cost(z, 8, 15))
			if y == 6 {
				i = undoc(i)
			}
			t[op] = i
		case 1:
			t[op] = info("BIT "+string(rune('0'+y))+", "+regNames[z], cost(z, 8, 12))
		case 2:
			t[op] = info("RES "+string(rune('0'+y))+", "+regNames[z], cost(z, 8, 15))
		default:
			t[op] = info("SET "+string(rune('0'+y))+", "+regNames[z], cost(z, 8, 15))
		}
	}
}

func buildED() {
	t := &Catalog[ED]
	for op := 0; op < 256; op++ {
		t[op] = undoc(info("NOP", 8))
	}
	for op := 0x40; op < 0x80; op++ {
		y, z := (op>>3)&7, op&7
		p, q := y>>1, y&1
		switch z {
		case 0:
			if y == 6 {
				t[op] = undoc(info("IN F, (C)", 12))
			} else {
				t[op] = info("IN "+regNames[y]+", (C)", 12)
			}
		case 1:
			if y == 6 {
				t[op] = undoc(info("OUT (C), 0", 12))
			} else {
				t[op] = info("OUT (C), "+regNames[y], 12)
			}
		case 2:
			if q == 0 {
				t[op] = info("SBC HL, "+pairNames[p], 15)
			} else {
				t[op] = info("ADC HL, "+pairNames[p], 15)
			}
		case 3:
			var i Info
			if q == 0 {
				i = info("LD (nn), "+pairNames[p], 20)
			} else {
				i = info("LD "+pairNames[p]+", (nn)", 20)
			}
			if p == 2 {
				i = undoc(i)
			}
			t[op] = i
		case 4:
			i := info("NEG", 8)
			if y != 0 {
				i = undoc(i)
			}
			t[op] = i
		case 5:
			i := info("RETN", 14)
			if y == 1 {
				i = info("RETI", 14)
			} else if y != 0 {
				i = undoc(i)
			}
			t[op] = i
		case 6:
			i := info("IM "+imModes[y], 8)
			if y != 0 && y != 2 && y != 3 {
				i = undoc(i)
			}
			t[op] = i
		case 7:
			if y < 6 {
				t[op] = info([6]string{"LD I, A", "LD R, A", "LD A, I", "LD A, R", "RRD", "RLD"}[y], [6]int{9, 9, 9, 9, 18, 18}[y])
			}
		}
	}
	for y := 4; y < 8; y++ {
		for z := 0; z < 4; z++ {
			op := 0x80 | y<<3 | z
			if y < 6 {
				t[op] = info(blockOps[y-4][z], 16)
			} else {
				t[op] = branch(blockOps[y-4][z], 16, 21)
			}
		}
	}
}

// buildIndex fills the DD or FD context and its CB sub-context. Opcodes that
// do not involve HL run unprefixed after a four T-state prefix.
func buildIndex(ctx, cbctx Context, ix string) {
	t := &Catalog[ctx]
	for op := 0; op < 256; op++ {
		i := Catalog[Base][op]
		i.TStates += 4
		if i.TakenTStates != 0 {
			i.TakenTStates += 4
		}
		i.Passthrough = true
		i.Undocumented = true
		t[op] = i
	}

	mem := "(" + ix + "+d)"
	half := [8]string{"B", "C", "D", "E", ix + "H", ix + "L", mem, "A"}
	pairs := [4]string{"BC", "DE", ix, "SP"}

	for p := 0; p < 4; p++ {
		t[0x09|p<<4] = info("ADD "+ix+", "+pairs[p], 15)
	}
	t[0x21] = info("LD "+ix+", nn", 14)
	t[0x22] = info("LD (nn), "+ix, 20)
	t[0x2A] = info("LD "+ix+", (nn)", 20)
	t[0x23] = info("INC "+ix, 10)
	t[0x2B] = info("DEC "+ix, 10)
	for _, r := range []int{4, 5} {
		t[0x04|r<<3] = undoc(info("INC "+half[r], 8))
		t[0x05|r<<3] = undoc(info("DEC "+half[r], 8))
		t[0x06|r<<3] = undoc(info("LD "+half[r]+", n", 11))
	}
	t[0x34] = info("INC "+mem, 23)
	t[0x35] = info("DEC "+mem, 23)
	t[0x36] = info("LD "+mem+", n", 19)

	for op := 0x40; op < 0x80; op++ {
		y, z := (op>>3)&7, op&7
		switch {
		case op == 0x76:
		case z == 6:
			t[op] = info("LD "+regNames[y]+", "+mem, 19)
		case y == 6:
			t[op] = info("LD "+mem+", "+regNames[z], 19)
		case y == 4 || y == 5 || z == 4 || z == 5:
			t[op] = undoc(info("LD "+half[y]+", "+half[z], 8))
		}
	}
	for op := 0x80; op < 0xC0; op++ {
		y, z := (op>>3)&7, op&7
		switch z {
		case 4, 5:
			t[op] = undoc(info(aluNames[y]+half[z], 8))
		case 6:
			t[op] = info(aluNames[y]+mem, 19)
		}
	}

	t[0xE1] = info("POP "+ix, 14)
	t[0xE3] = info("EX (SP), "+ix, 23)
	t[0xE5] = info("PUSH "+ix, 15)
	t[0xE9] = info("JP ("+ix+")", 8)
	t[0xF9] = info("LD SP, "+ix, 10)
	t[0xCB] = Info{Mnemonic: prefixMnemonic(0xCB), Prefix: true}

	c := &Catalog[cbctx]
	for op := 0; op < 256; op++ {
		x, y, z := op>>6, (op>>3)&7, op&7
		var i Info
		switch x {
		case 0:
			i = info(rotNames[y]+" "+mem, 23)
		case 1:
			i = info("BIT "+string(rune('0'+y))+", "+mem, 20)
		case 2:
			i = info("RES "+string(rune('0'+y))+", "+mem, 23)
		default:
			i = info("SET "+string(rune('0'+y))+", "+mem, 23)
		}
		if x != 1 && z != 6 {
			i.Mnemonic += ", " + regNames[z]
		}
		if z != 6 || (x == 0 && y == 6) {
			i = undoc(i)
		}
		c[op] = i
	}
}
