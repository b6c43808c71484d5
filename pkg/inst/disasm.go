package inst

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when the code ends inside an instruction.
var ErrTruncated = errors.New("inst: truncated instruction")

// Decoded is one instruction split into its parts.
type Decoded struct {
	Context  Context
	Opcode   uint8
	Operands []uint8 // operand bytes in mnemonic order
	Skipped  int     // DD/FD prefixes that had no effect
	Length   int     // encoded length, skipped prefixes included
}

// Info returns the catalog entry of the decoded opcode.
func (d Decoded) Info() *Info {
	return Lookup(d.Context, d.Opcode)
}

// TStates returns the cost when no branch is taken.
func (d Decoded) TStates() int {
	return d.Info().TStates + 4*d.Skipped
}

// Decode splits the instruction at the start of code.
func Decode(code []byte) (Decoded, error) {
	var d Decoded
	pos := 0
	next := func() (uint8, error) {
		if pos >= len(code) {
			return 0, fmt.Errorf("%w: % X", ErrTruncated, code)
		}
		b := code[pos]
		pos++
		return b, nil
	}

	op, err := next()
	if err != nil {
		return d, err
	}
	indexed := false
	for !indexed && (op == 0xDD || op == 0xFD) {
		ctx, cbctx := DD, DDCB
		if op == 0xFD {
			ctx, cbctx = FD, FDCB
		}
		if op, err = next(); err != nil {
			return d, err
		}
		if op == 0xCB {
			disp, err := next()
			if err != nil {
				return d, err
			}
			if op, err = next(); err != nil {
				return d, err
			}
			d.Context, d.Opcode, d.Operands, d.Length = cbctx, op, []uint8{disp}, pos
			return d, nil
		}
		if Catalog[ctx][op].Passthrough {
			d.Skipped++
			continue
		}
		d.Context = ctx
		indexed = true
	}

	if !indexed && (op == 0xCB || op == 0xED) {
		d.Context = CB
		if op == 0xED {
			d.Context = ED
		}
		if op, err = next(); err != nil {
			return d, err
		}
	}

	d.Opcode = op
	for n := Catalog[d.Context][op].Operands; n > 0; n-- {
		b, err := next()
		if err != nil {
			return d, err
		}
		d.Operands = append(d.Operands, b)
	}
	d.Length = pos
	return d, nil
}

// Text renders the instruction as assembly, with pc as its own address so
// relative jumps show their target.
func (d Decoded) Text(pc uint16) string {
	m := d.Info().Mnemonic
	ops := d.Operands
	buf := make([]byte, 0, len(m)+8)
	for i := 0; i < len(m); i++ {
		c := m[i]
		switch {
		case c == 'n' && i+1 < len(m) && m[i+1] == 'n':
			buf = appendHex16(buf, uint16(ops[0])|uint16(ops[1])<<8)
			ops = ops[2:]
			i++ // skip second 'n'
		case c == 'n':
			buf = appendHex8(buf, ops[0])
			ops = ops[1:]
		case c == 'd':
			if v := int8(ops[0]); v < 0 {
				buf[len(buf)-1] = '-'
				buf = appendHex8(buf, uint8(-int(v)))
			} else {
				buf = appendHex8(buf, uint8(v))
			}
			ops = ops[1:]
		case c == 'e':
			target := pc + uint16(d.Length) + uint16(int16(int8(ops[0])))
			buf = appendHex16(buf, target)
			ops = ops[1:]
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

// Disassemble decodes the instruction at the start of code, located at pc,
// and returns its text and length.
func Disassemble(code []byte, pc uint16) (string, int, error) {
	d, err := Decode(code)
	if err != nil {
		return "", 0, err
	}
	return d.Text(pc), d.Length, nil
}

func appendHex8(buf []byte, v uint8) []byte {
	const hex = "0123456789ABCDEF"
	if v >= 0xA0 {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>4], hex[v&0x0F], 'h')
	return buf
}

func appendHex16(buf []byte, v uint16) []byte {
	const hex = "0123456789ABCDEF"
	if v>>12 >= 0xA {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>12], hex[(v>>8)&0x0F], hex[(v>>4)&0x0F], hex[v&0x0F], 'h')
	return buf
}
