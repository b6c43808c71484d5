package crosscheck

import (
	"context"
	"runtime"
	"sync"

	"github.com/oisee/z80-core/pkg/bits"
	"github.com/oisee/z80-core/pkg/cpu"
	"github.com/oisee/z80-core/pkg/inst"
)

// Case is one opcode in one decoding context.
type Case struct {
	Context inst.Context
	Opcode  uint8
}

// Code returns the encoded instruction with operand bytes taken from imm.
func (c Case) Code(imm uint16) []byte {
	code := c.Context.Prefix()
	if c.Context == inst.DDCB || c.Context == inst.FDCB {
		return append(code, bits.Low(imm), c.Opcode)
	}
	code = append(code, c.Opcode)
	switch inst.Lookup(c.Context, c.Opcode).Operands {
	case 1:
		code = append(code, bits.Low(imm))
	case 2:
		code = append(code, bits.Low(imm), bits.High(imm))
	}
	return code
}

// Config holds cross-check configuration.
type Config struct {
	Workers int      // parallel workers, defaults to NumCPU
	Vectors []Vector // starting states, defaults to DefaultVectors
	Mask    FlagMask // flag bits ignored in F and F'
	SweepA  bool     // also run every value of A with carry clear and set
}

// skipped are documented opcodes whose results depend on things the two
// cores model differently: HALT, the refresh register, repeating block
// instructions, and block I/O.
var skipped = map[Case]bool{
	{inst.Base, 0x76}: true,
	{inst.ED, 0x5F}:   true,
	{inst.ED, 0xA2}:   true,
	{inst.ED, 0xA3}:   true,
	{inst.ED, 0xAA}:   true,
	{inst.ED, 0xAB}:   true,
}

// DocumentedCases returns every documented opcode of every context that
// can be compared in one step.
func DocumentedCases() []Case {
	return Cases(func(c Case, info *inst.Info) bool {
		if info.Undocumented || skipped[c] {
			return false
		}
		return !(c.Context == inst.ED && c.Opcode >= 0xB0 && c.Opcode <= 0xBF)
	})
}

// Cases returns the non-prefix opcodes for which keep returns true.
func Cases(keep func(c Case, info *inst.Info) bool) []Case {
	var out []Case
	for ctx := inst.Base; ctx < inst.ContextCount; ctx++ {
		for op := 0; op < 256; op++ {
			c := Case{ctx, uint8(op)}
			info := inst.Lookup(ctx, c.Opcode)
			if info.Prefix || info.Passthrough {
				continue
			}
			if keep(c, info) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Run checks every case against the reference core using a pool of
// workers. It stops early and returns ctx.Err() if ctx is cancelled.
func Run(ctx context.Context, cases []Case, cfg Config) (*Report, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(cfg.Vectors) == 0 {
		cfg.Vectors = DefaultVectors
	}
	vectors := append([]Vector(nil), cfg.Vectors...)
	if cfg.SweepA {
		for _, v := range cfg.Vectors {
			vectors = append(vectors, sweepA(v)...)
		}
	}

	ch := make(chan Case, len(cases))
	for _, c := range cases {
		ch <- c
	}
	close(ch)

	report := NewReport()
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := newWorker()
			for c := range ch {
				if ctx.Err() != nil {
					return
				}
				w.check(c, vectors, cfg.Mask, report)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// worker owns one core, two memory images and the pattern they start from.
type worker struct {
	blank *image
	core  *image
	ref   *image
	cpu   *cpu.Processor
}

func newWorker() *worker {
	w := &worker{
		blank: (&image{}).fill(),
		core:  &image{},
		ref:   &image{},
	}
	w.cpu = cpu.New(w.core)
	return w
}

func (w *worker) check(c Case, vectors []Vector, mask FlagMask, report *Report) {
	for i, v := range vectors {
		code := c.Code(v.Imm)
		*w.core = *w.blank
		*w.ref = *w.blank

		got := runCore(w.cpu, w.core, code, v)
		want := runReference(w.ref, code, v)
		if fields := diff(got, want, mask); len(fields) > 0 {
			report.Add(Mismatch{Case: c, Vector: i, Fields: fields})
		}
	}
	report.count(len(vectors))
}
