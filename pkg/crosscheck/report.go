package crosscheck

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oisee/z80-core/pkg/inst"
)

// Field is one register or memory disagreement.
type Field struct {
	Name      string
	Got, Want uint16
}

func (f Field) String() string {
	if f.Name == "memory" {
		return "memory"
	}
	return fmt.Sprintf("%s=%04X want %04X", f.Name, f.Got, f.Want)
}

// Mismatch is one case and vector where the two cores disagreed.
type Mismatch struct {
	Case   Case
	Vector int
	Fields []Field
}

func (m Mismatch) String() string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%-5s %02X %-22s vector %d: %s",
		m.Case.Context, m.Case.Opcode, inst.Lookup(m.Case.Context, m.Case.Opcode).Mnemonic,
		m.Vector, strings.Join(parts, ", "))
}

// Report collects mismatches from concurrent workers.
type Report struct {
	mu         sync.Mutex
	mismatches []Mismatch
	cases      int
	runs       int
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records a mismatch.
func (r *Report) Add(m Mismatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mismatches = append(r.mismatches, m)
}

// Mismatches returns a copy of all mismatches sorted by context, opcode and
// vector.
func (r *Report) Mismatches() []Mismatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Mismatch, len(r.mismatches))
	copy(out, r.mismatches)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Case.Context != b.Case.Context {
			return a.Case.Context < b.Case.Context
		}
		if a.Case.Opcode != b.Case.Opcode {
			return a.Case.Opcode < b.Case.Opcode
		}
		return a.Vector < b.Vector
	})
	return out
}

// Len returns the number of mismatches.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mismatches)
}

// Cases returns how many cases were checked and how many single-instruction
// runs were compared.
func (r *Report) Cases() (cases, runs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cases, r.runs
}

func (r *Report) count(runs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases++
	r.runs += runs
}
