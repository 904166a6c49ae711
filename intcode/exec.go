// Package intcode provides an implementation of an IntCode computer,
// called Machine, that executes programs against a pluggable
// InstructionSet.
package intcode

import (
	"errors"
	"fmt"
)

// Machine is an IntCode computer. A Machine must not be stepped by more
// than one goroutine at a time.
type Machine struct {
	Mem  Memory
	PC   int64
	Base int64 // relative base
	In   Queue
	Out  Queue
	Set  *InstructionSet

	// Logf, if non-nil, is called once for each executed instruction.
	Logf func(format string, args ...any)

	halted bool
	err    error
	args   []int64
}

// Option configures a Machine created by NewMachine.
type Option func(*Machine)

// WithMemory sizes memory to hold at least n words.
func WithMemory(n int) Option {
	return func(m *Machine) {
		if n > len(m.Mem) {
			m.Mem = NewMemory(m.Mem, n)
		}
	}
}

// WithLogf sets the machine's trace function.
func WithLogf(logf func(string, ...any)) Option {
	return func(m *Machine) { m.Logf = logf }
}

// NewMachine returns a machine with a private copy of program as memory,
// executing set, or IOSet if set is nil.
func NewMachine(program []int64, set *InstructionSet, opts ...Option) *Machine {
	if set == nil {
		set = IOSet
	}
	m := &Machine{
		Mem: NewMemory(program, 0),
		Set: set,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Nopf is a trace function that does nothing.
func Nopf(string, ...any) {}

// Status is the state a machine is left in by Step.
type Status byte

const (
	Running Status = iota // the instruction executed; more may follow
	Blocked               // an input instruction found the input queue empty
	Halted                // the machine executed a halt and is finished
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("status(%d)", byte(s))
}

// Halted reports whether the machine has halted.
func (m *Machine) Halted() bool { return m.halted }

// Err returns the fault that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// PushInput appends vs to the input queue.
func (m *Machine) PushInput(vs ...int64) { m.In.Push(vs...) }

// DrainOutput removes and returns everything the machine has output.
func (m *Machine) DrainOutput() []int64 { return m.Out.Drain() }

// ReadMemory returns the word at addr.
func (m *Machine) ReadMemory(addr int64) (int64, error) { return m.Mem.Read(addr) }

// Step executes the instruction at m.PC.
//
// If the instruction is an input and the input queue is empty, Step leaves
// the machine untouched and returns Blocked; the caller may push input and
// step again. Stepping a halted machine does nothing and returns Halted.
// A fault returns a FaultError; the machine is then stopped and every
// further Step returns the same error.
func (m *Machine) Step() (st Status, err error) {
	if m.err != nil {
		return Running, m.err
	}
	if m.halted {
		return Halted, nil
	}
	var (
		pc   = m.PC
		word int64
	)
	defer func() {
		if e := recover(); e != nil {
			if t, ok := e.(trap); ok {
				m.err = FaultError{
					Fault:   t.Fault,
					Word:    word,
					Addr:    pc,
					Operand: t.operand,
				}
				st, err = Running, m.err
			} else {
				panic(e)
			}
		}
	}()

	word = m.Mem.load(pc)
	op, ok := m.Set.Lookup(OpcodeOf(word))
	if !ok {
		panic(trap{UnknownOpcode, int64(OpcodeOf(word))})
	}

	cursor := pc + 1
	args := m.args[:0]
	for i := 0; i < op.Arity; i++ {
		args = append(args, m.operand(word, i, cursor))
		cursor++
	}
	m.args = args
	var dst int64
	if op.Writes {
		dst = m.dest(word, op.Arity, cursor)
		cursor++
	}

	eff := op.Exec(m, args)
	if eff.kind == block {
		return Blocked, nil
	}
	if m.Logf != nil {
		m.Logf("%d %s %v", pc, op.Name, args)
	}

	switch eff.kind {
	case produce:
		if !op.Writes {
			panic(fmt.Errorf("internal error: %s produced a value but has no destination", op.Name))
		}
		m.Mem.store(dst, eff.value)
	case jump:
		m.PC = eff.value
		return Running, nil
	case stop:
		m.halted = true
		m.PC = cursor
		return Halted, nil
	}
	m.PC = cursor
	return Running, nil
}

// Run steps the machine until it halts, blocks on input, or faults.
func (m *Machine) Run() (Status, error) {
	for {
		st, err := m.Step()
		if err != nil || st != Running {
			return st, err
		}
	}
}

// ErrStepLimit is returned by RunSteps when its budget runs out.
var ErrStepLimit = errors.New("step limit reached")

// RunSteps is like Run but executes at most n instructions.
func (m *Machine) RunSteps(n int) (Status, error) {
	for i := 0; i < n; i++ {
		st, err := m.Step()
		if err != nil || st != Running {
			return st, err
		}
	}
	return Running, ErrStepLimit
}

// RunToHalt runs the machine as a standalone program: running out of
// input is reported as an InputStarved fault instead of a suspension.
func (m *Machine) RunToHalt() error {
	st, err := m.Run()
	if err == nil && st == Blocked {
		word, _ := m.Mem.Read(m.PC)
		err = FaultError{Fault: InputStarved, Word: word, Addr: m.PC}
	}
	return err
}

// FaultError is returned by Step when execution stops on a fault.
type FaultError struct {
	Fault
	Word    int64 // instruction word
	Addr    int64 // instruction pointer
	Operand int64 // offending address, opcode or mode
}

func (e FaultError) Error() string {
	if e.Fault == InputStarved {
		return fmt.Sprintf("%s executing %d at %d", e.Fault, e.Word, e.Addr)
	}
	return fmt.Sprintf("%s (%d) executing %d at %d", e.Fault, e.Operand, e.Word, e.Addr)
}

func (e FaultError) Unwrap() error { return e.Fault }

// Fault signifies the condition that stopped execution.
type Fault byte

const (
	AddressOutOfRange  Fault = 0x01
	UnknownOpcode      Fault = 0x02
	InvalidWriteTarget Fault = 0x03
	InvalidMode        Fault = 0x04
	InputStarved       Fault = 0x05
)

func (f Fault) String() string {
	if s, ok := map[Fault]string{
		AddressOutOfRange:  "address out of range",
		UnknownOpcode:      "unknown opcode",
		InvalidWriteTarget: "invalid write target",
		InvalidMode:        "invalid addressing mode",
		InputStarved:       "input starved",
	}[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(f))
}

func (f Fault) Error() string { return f.String() }

type trap struct {
	Fault
	operand int64
}
