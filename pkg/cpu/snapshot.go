package cpu

import (
	"github.com/cespare/xxhash"
)

// State is a complete copy of everything a Processor remembers between
// steps. Two processors with equal States behave identically on equal buses.
type State struct {
	Registers

	IM          uint8
	Halted      bool
	HaltInPlace bool
	EIDelay     bool
	INTPending  bool
	INTData     uint8
	NMIPending  bool
	Prefixed    bool
	NextPrefix  uint8
}

// Snapshot captures the processor state.
func (p *Processor) Snapshot() State {
	return State{
		Registers:   p.Registers,
		IM:          p.im,
		Halted:      p.halted,
		HaltInPlace: p.haltInPlace,
		EIDelay:     p.eiDelay,
		INTPending:  p.intPending,
		INTData:     p.intData,
		NMIPending:  p.nmiPending,
		Prefixed:    p.prefixed,
		NextPrefix:  p.nextPrefix,
	}
}

// Restore loads a state captured by Snapshot.
func (p *Processor) Restore(s State) {
	p.Registers = s.Registers
	p.im = s.IM
	p.halted = s.Halted
	p.haltInPlace = s.HaltInPlace
	p.eiDelay = s.EIDelay
	p.intPending = s.INTPending
	p.intData = s.INTData
	p.nmiPending = s.NMIPending
	p.prefixed = s.Prefixed
	p.nextPrefix = s.NextPrefix
}

// appendBank appends the canonical encoding of a bank: A F B C D E H L.
func appendBank(b []byte, r *Bank) []byte {
	return append(b, r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L)
}

func appendWord(b []byte, w uint16) []byte {
	return append(b, byte(w>>8), byte(w))
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// MarshalBinary returns the canonical byte encoding of the state.
func (s State) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, 48)
	b = appendBank(b, &s.Bank)
	b = appendBank(b, &s.Alt)
	b = appendWord(b, s.IX)
	b = appendWord(b, s.IY)
	b = appendWord(b, s.SP)
	b = appendWord(b, s.PC)
	b = append(b, s.I, s.R, s.IFF1.Byte(), s.IFF2.Byte(), s.IM)
	b = appendBool(b, s.Halted)
	b = appendBool(b, s.HaltInPlace)
	b = appendBool(b, s.EIDelay)
	b = appendBool(b, s.INTPending)
	b = append(b, s.INTData)
	b = appendBool(b, s.NMIPending)
	b = appendBool(b, s.Prefixed)
	b = append(b, s.NextPrefix)
	return b, nil
}

// Hash returns a 64-bit digest of the state, for comparing runs cheaply.
func (s State) Hash() uint64 {
	b, _ := s.MarshalBinary()
	return xxhash.Sum64(b)
}
