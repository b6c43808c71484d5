package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oisee/z80-core/pkg/cpm"
	"github.com/oisee/z80-core/pkg/cpu"
	"github.com/oisee/z80-core/pkg/crosscheck"
	"github.com/oisee/z80-core/pkg/inst"
	"github.com/oisee/z80-core/pkg/machine"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "z80run",
		Short:        "Run, trace and cross-check programs on the Z80 core",
		SilenceUsage: true,
	}

	// run command
	org := hexAddr(cpm.TPA)
	var (
		useCPM    bool
		skip      int
		trace     bool
		steps     uint64
		stopOnRet bool
		stateHash bool
		noDIHalt  bool
		m1Wait    uint8
		memWait   uint8
		ioWait    uint8
	)

	runCmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Load a binary and run it until it stops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), trace)
			opts := []machine.Option{
				machine.WithTrace(trace),
				machine.WithStepLimit(steps),
				machine.WithStopOnDIHalt(!noDIHalt),
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var runner *machine.Runner
			if useCPM {
				sys := cpm.New(cmd.OutOrStdout(), log, opts...)
				if err := sys.Load(program); err != nil {
					return err
				}
				if err := setWaitStates(sys.Memory, m1Wait, memWait, ioWait); err != nil {
					return err
				}
				if skip > 0 {
					sys.SkipTests(skip)
				}
				runner = sys.Runner
				err = sys.Run(ctx)
			} else {
				mem := machine.NewPlainMemory()
				if err := mem.SetContents(uint16(org), program); err != nil {
					return err
				}
				if err := setWaitStates(mem, m1Wait, memWait, ioWait); err != nil {
					return err
				}
				opts = append(opts,
					machine.WithLogger(log),
					machine.WithStopOnEmptyStackReturn(stopOnRet))
				runner = machine.NewRunner(mem, opts...)
				runner.CPU().PC = uint16(org)
				err = runner.Run(ctx)
			}

			switch {
			case err == nil,
				errors.Is(err, machine.ErrHaltedWithInterruptsDisabled),
				errors.Is(err, machine.ErrStackEmptyReturn):
			default:
				return err
			}

			out := cmd.ErrOrStderr()
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatRegisters(runner.CPU()))
			fmt.Fprintf(out, "%d steps, %d T-states\n", runner.Steps(), runner.TStates())
			if stateHash {
				fmt.Fprintf(out, "state hash %016x\n", runner.CPU().Snapshot().Hash())
			}
			return nil
		},
	}
	runCmd.Flags().Var(&org, "org", "Load and start address for raw binaries")
	runCmd.Flags().BoolVar(&useCPM, "cpm", false, "Run as a CP/M .COM program with a minimal BDOS")
	runCmd.Flags().IntVar(&skip, "skip", 0, "Skip the first N tests of ZEXDOC/ZEXALL (with --cpm)")
	runCmd.Flags().BoolVarP(&trace, "trace", "t", false, "Log every instruction")
	runCmd.Flags().Uint64Var(&steps, "steps", 0, "Stop after N steps (0 = no limit)")
	runCmd.Flags().BoolVar(&stopOnRet, "stop-on-ret", false, "Stop on a return from the initial stack level")
	runCmd.Flags().BoolVar(&noDIHalt, "no-di-halt-stop", false, "Keep running on HALT with interrupts disabled")
	runCmd.Flags().Uint8Var(&m1Wait, "m1-wait", 0, "Wait states added to every opcode fetch")
	runCmd.Flags().Uint8Var(&memWait, "mem-wait", 0, "Wait states added to every other memory access")
	runCmd.Flags().Uint8Var(&ioWait, "io-wait", 0, "Wait states added to every port access")
	runCmd.Flags().BoolVar(&stateHash, "state-hash", false, "Print a hash of the final processor state")

	// crosscheck command
	var workers, random int
	var seed uint64
	var sweep bool
	mask := maskFlag(crosscheck.DeadUndoc)

	crossCmd := &cobra.Command{
		Use:   "crosscheck",
		Short: "Compare every documented opcode against a reference Z80 core",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cases := crosscheck.DocumentedCases()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checking %d opcodes (mask %s)\n", len(cases), mask.String())

			vectors := crosscheck.DefaultVectors
			if random > 0 {
				vectors = append(vectors[:len(vectors):len(vectors)], crosscheck.RandomVectors(random, seed)...)
			}
			report, err := crosscheck.Run(cmd.Context(), cases, crosscheck.Config{
				Workers: workers,
				Vectors: vectors,
				Mask:    crosscheck.FlagMask(mask),
				SweepA:  sweep,
			})
			if err != nil {
				return err
			}
			for _, m := range report.Mismatches() {
				fmt.Fprintln(out, m)
			}
			n, runs := report.Cases()
			fmt.Fprintf(out, "%d opcodes, %d runs, %d mismatches\n", n, runs, report.Len())
			if report.Len() > 0 {
				return fmt.Errorf("%d mismatches", report.Len())
			}
			return nil
		},
	}
	crossCmd.Flags().IntVar(&workers, "workers", 0, "Number of workers (0 = NumCPU)")
	crossCmd.Flags().Var(&mask, "mask", "Flags to ignore: none, undoc or all")
	crossCmd.Flags().BoolVar(&sweep, "sweep", false, "Also run every value of A with carry clear and set")
	crossCmd.Flags().IntVar(&random, "random", 0, "Add N random starting states")
	crossCmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for --random")

	// opcodes command
	var table contextFlag

	opcodesCmd := &cobra.Command{
		Use:   "opcodes",
		Short: "List the instruction catalog for one context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listOpcodes(cmd.OutOrStdout(), inst.Context(table))
			return nil
		},
	}
	opcodesCmd.Flags().Var(&table, "context", "base, CB, ED, DD, FD, DDCB or FDCB")

	// disasm command
	disOrg := hexAddr(cpm.TPA)

	disasmCmd := &cobra.Command{
		Use:   "disasm [program]",
		Short: "Disassemble a binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return listing(cmd.OutOrStdout(), code, uint16(disOrg))
		},
	}
	disasmCmd.Flags().Var(&disOrg, "org", "Address of the first byte")

	rootCmd.AddCommand(runCmd, crossCmd, opcodesCmd, disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger logs to w, with colours only on a terminal.
func newLogger(w io.Writer, trace bool) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	colours := false
	if f, ok := w.(*os.File); ok {
		colours = term.IsTerminal(int(f.Fd()))
	}
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    !colours,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	l.SetLevel(logrus.WarnLevel)
	if trace {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// setWaitStates applies the same wait states to the whole address and port
// space.
func setWaitStates(m *machine.PlainMemory, m1, mem, port uint8) error {
	for _, err := range []error{
		m.SetM1WaitStates(0, 0x10000, m1),
		m.SetMemoryWaitStates(0, 0x10000, mem),
		m.SetPortWaitStates(0, 0x10000, port),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func formatRegisters(p *cpu.Processor) string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X PC=%04X I=%02X R=%02X IFF1=%d IM=%d %s",
		p.AF(), p.BC(), p.DE(), p.HL(), p.IX, p.IY, p.SP, p.PC, p.I, p.R, p.IFF1.Int(), p.InterruptMode(), p.State())
}

func listOpcodes(w io.Writer, ctx inst.Context) {
	for op := 0; op < 256; op++ {
		info := inst.Lookup(ctx, uint8(op))
		if info.Prefix {
			continue
		}
		cost := fmt.Sprint(info.TStates)
		if info.TakenTStates != 0 {
			cost = fmt.Sprintf("%d/%d", info.TakenTStates, info.TStates)
		}
		note := ""
		if info.Undocumented {
			note = "undocumented"
		}
		fmt.Fprintf(w, "%02X  %-22s %d  %-6s %s\n", op, info.Mnemonic, inst.Length(ctx, uint8(op)), cost, note)
	}
}

// listing prints one line per instruction. A truncated instruction at the
// end is shown as data.
func listing(w io.Writer, code []byte, org uint16) error {
	pc := org
	for len(code) > 0 {
		text, n, err := inst.Disassemble(code, pc)
		if errors.Is(err, inst.ErrTruncated) {
			text, n = fmt.Sprintf("DB % X", code), len(code)
		} else if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%04X  %-12X %s\n", pc, code[:n], text); err != nil {
			return err
		}
		code = code[n:]
		pc += uint16(n)
	}
	return nil
}
