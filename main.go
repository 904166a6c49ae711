// Command intcode executes IntCode programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/k0kubun/pp/v3"

	"github.com/nf/intcode/circuit"
	"github.com/nf/intcode/intcode"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		configFlag = flag.String("config", "", "read run settings from TOML `file`")
		setFlag    = flag.String("set", "io", "instruction `set`: "+strings.Join(intcode.SetNames(), ", "))
		memFlag    = flag.Int("mem", 0, "memory size in `words` (default program length)")
		inFlag     = flag.String("in", "", "comma-separated input `values`")
		patchFlag  = flag.String("patch", "", "comma-separated addr=value memory `patches`")
		stepsFlag  = flag.Int("steps", 0, "stop after `n` instructions (default no limit)")
		traceFlag  = flag.Bool("trace", false, "log every executed instruction")

		phasesFlag = flag.String("phases", "", "run an amplifier circuit with these comma-separated `phases`")
		loopFlag   = flag.Bool("loop", false, "feed the last amplifier back into the first")
		signalFlag = flag.Int64("signal", 0, "initial amplifier `signal`")
		searchFlag = flag.Bool("search", false, "try every ordering of -phases and report the best")

		dumpFlag  = flag.Bool("dump", false, "print the final machine state")
		devFlag   = flag.Bool("dev", false, "enable developer mode (re-run the program when it changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.txt>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] -config <run.toml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
	}

	cfg := defaultConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = loadConfig(*configFlag); err != nil {
			log.Fatal(err)
		}
	}
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "set":
			cfg.Set = *setFlag
		case "mem":
			cfg.Memory = *memFlag
		case "in":
			ws, e := parseWords(*inFlag)
			if e != nil {
				err = fmt.Errorf("-in: %v", e)
			}
			cfg.Input = ws
		case "patch":
			ps, e := parsePatches(*patchFlag)
			if e != nil {
				err = fmt.Errorf("-patch: %v", e)
			}
			cfg.Patch = ps
		case "steps":
			cfg.Steps = *stepsFlag
		case "trace":
			cfg.Trace = *traceFlag
		case "phases":
			ws, e := parseWords(*phasesFlag)
			if e != nil {
				err = fmt.Errorf("-phases: %v", e)
			}
			cfg.Circuit.Phases = ws
		case "loop":
			cfg.Circuit.Loop = *loopFlag
		case "signal":
			cfg.Circuit.Signal = *signalFlag
		case "search":
			cfg.Circuit.Search = *searchFlag
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 1 {
		cfg.Program = flag.Arg(0)
	}
	if cfg.Program == "" {
		flag.Usage()
	}

	switch {
	case *debugFlag:
		if err := debugMode(cfg); err != nil {
			log.Fatal(err)
		}
		return
	case *devFlag:
		if err := devMode(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	m, err := run(ctx, os.Stdout, cfg)
	stop()

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if m != nil && *dumpFlag {
		pp.Fprintln(os.Stderr, snapshotOf(m))
	}
	if err != nil {
		log.Fatal(err)
	}
}

// run executes the program described by cfg, writing its output to w one
// value per line. For a single machine run it returns the final machine.
func run(ctx context.Context, w io.Writer, cfg Config) (*intcode.Machine, error) {
	program, err := loadProgram(cfg.Program)
	if err != nil {
		return nil, err
	}
	set, ok := intcode.LookupSet(cfg.Set)
	if !ok {
		return nil, fmt.Errorf("unknown instruction set %q (have %s)", cfg.Set, strings.Join(intcode.SetNames(), ", "))
	}

	if c := cfg.Circuit; len(c.Phases) > 0 {
		opts := []circuit.Option{circuit.WithSteps(cfg.Steps)}
		if cfg.Trace {
			opts = append(opts, circuit.WithLogf(log.Printf))
		}
		if c.Search {
			r, err := circuit.Search(ctx, program, set, c.Phases, c.Signal, c.Loop, opts...)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(w, "%d %s\n", r.Signal, formatWords(r.Phases))
			return nil, nil
		}
		v, err := circuit.Amplify(ctx, program, set, c.Phases, c.Signal, c.Loop, opts...)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(w, v)
		return nil, nil
	}

	m, err := newMachine(cfg, program, set)
	if err != nil {
		return nil, err
	}
	if cfg.Steps > 0 {
		_, err = m.RunSteps(cfg.Steps)
		if err == nil && !m.Halted() {
			err = m.RunToHalt()
		}
	} else {
		err = m.RunToHalt()
	}
	for _, v := range m.DrainOutput() {
		fmt.Fprintln(w, v)
	}
	if err != nil {
		return m, err
	}
	if v, err := m.ReadMemory(0); err == nil {
		log.Printf("halted at %d; mem[0] = %d", m.PC, v)
	}
	return m, nil
}

// newMachine builds a machine for program with the memory size, patches,
// input and tracing described by cfg.
func newMachine(cfg Config, program []int64, set *intcode.InstructionSet) (*intcode.Machine, error) {
	logf := intcode.Nopf
	if cfg.Trace {
		logf = log.Printf
	}
	m := intcode.NewMachine(program, set, intcode.WithMemory(cfg.Memory), intcode.WithLogf(logf))
	for _, p := range cfg.Patch {
		if err := m.Mem.Write(p.Addr, p.Value); err != nil {
			return nil, fmt.Errorf("patch: %w", err)
		}
	}
	m.PushInput(cfg.Input...)
	return m, nil
}

func formatWords(ws []int64) string {
	ss := make([]string, len(ws))
	for i, v := range ws {
		ss[i] = fmt.Sprint(v)
	}
	return strings.Join(ss, ",")
}

type snapshot struct {
	Set    string
	PC     int64
	Base   int64
	Halted bool
	Err    string
	In     []int64
	Out    []int64
	Mem    []int64
}

func snapshotOf(m *intcode.Machine) snapshot {
	s := snapshot{
		Set:    m.Set.Name,
		PC:     m.PC,
		Base:   m.Base,
		Halted: m.Halted(),
		In:     m.In.Values(),
		Out:    m.Out.Values(),
		Mem:    []int64(m.Mem),
	}
	if err := m.Err(); err != nil {
		s.Err = err.Error()
	}
	return s
}
