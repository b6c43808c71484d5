package bits

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is wrapped by the panic raised when a bit position outside
// [0,7] is used. It signals a programming error, not a runtime condition.
var ErrOutOfRange = errors.New("bits: bit position out of range")

// Bit is a single binary digit. It has exactly two states.
type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// Of converts an integer to a Bit: zero is Zero, anything else is One.
func Of(v int) Bit {
	return v != 0
}

// FromBool converts a boolean predicate to a Bit.
func FromBool(b bool) Bit {
	return Bit(b)
}

// Bool returns true for One.
func (b Bit) Bool() bool {
	return bool(b)
}

// Int returns 0 or 1.
func (b Bit) Int() int {
	if b {
		return 1
	}
	return 0
}

// Byte returns 0 or 1.
func (b Bit) Byte() uint8 {
	if b {
		return 1
	}
	return 0
}

// Not returns the opposite state.
func (b Bit) Not() Bit {
	return !b
}

func (b Bit) String() string {
	if b {
		return "1"
	}
	return "0"
}

// High returns the high byte of a word.
func High(w uint16) uint8 {
	return uint8(w >> 8)
}

// Low returns the low byte of a word.
func Low(w uint16) uint8 {
	return uint8(w)
}

// Word builds a word from its two bytes.
func Word(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// WithHigh returns w with its high byte replaced.
func WithHigh(w uint16, high uint8) uint16 {
	return w&0x00FF | uint16(high)<<8
}

// WithLow returns w with its low byte replaced.
func WithLow(w uint16, low uint8) uint16 {
	return w&0xFF00 | uint16(low)
}

// Signed reinterprets a byte as a two's complement displacement.
func Signed(d uint8) int8 {
	return int8(d)
}

// Displace adds a signed 8-bit displacement to a word, wrapping at 16 bits.
func Displace(w uint16, d uint8) uint16 {
	return w + uint16(int16(int8(d)))
}

// CheckPosition reports whether pos is a valid bit position.
func CheckPosition(pos int) error {
	if pos < 0 || pos > 7 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	return nil
}

func mustPosition(pos int) {
	if err := CheckPosition(pos); err != nil {
		panic(err)
	}
}

// Get returns the bit at position pos (0 is least significant).
func Get(b uint8, pos int) Bit {
	mustPosition(pos)
	return (b>>uint(pos))&1 != 0
}

// Test is Get as a boolean.
func Test(b uint8, pos int) bool {
	return Get(b, pos).Bool()
}

// With returns b with the bit at pos replaced by v.
func With(b uint8, pos int, v Bit) uint8 {
	if v {
		return Set(b, pos)
	}
	return Reset(b, pos)
}

// Set sets the bit at pos.
func Set(b uint8, pos int) uint8 {
	mustPosition(pos)
	return b | 1<<uint(pos)
}

// Reset clears the bit at pos.
func Reset(b uint8, pos int) uint8 {
	mustPosition(pos)
	return b &^ (1 << uint(pos))
}
