package intcode

import "fmt"

// Opcode is the operation-selecting part of an instruction word.
type Opcode int64

const (
	Add         Opcode = 1
	Mul         Opcode = 2
	In          Opcode = 3
	Out         Opcode = 4
	JumpIfTrue  Opcode = 5
	JumpIfFalse Opcode = 6
	LessThan    Opcode = 7
	Equals      Opcode = 8
	AdjustBase  Opcode = 9
	Halt        Opcode = 99
)

var opcodeNames = map[Opcode]string{
	Add:         "add",
	Mul:         "mul",
	In:          "in",
	Out:         "out",
	JumpIfTrue:  "jt",
	JumpIfFalse: "jf",
	LessThan:    "lt",
	Equals:      "eq",
	AdjustBase:  "arb",
	Halt:        "hlt",
}

func (c Opcode) String() string {
	if s, ok := opcodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int64(c))
}

// Op describes one operation of an InstructionSet.
//
// Arity is the number of read parameters. If Writes is set the operation
// has one further destination parameter, which Exec fills by returning
// Produce.
type Op struct {
	Code   Opcode
	Name   string
	Arity  int
	Writes bool
	Exec   func(m *Machine, args []int64) Effect
}

// Effect is what an operation asks the engine to do after it ran.
type Effect struct {
	kind  effectKind
	value int64
}

type effectKind byte

const (
	advance effectKind = iota
	produce
	jump
	stop
	block
)

var (
	// Continue advances past the instruction without writing.
	Continue = Effect{kind: advance}
	// Stop halts the machine.
	Stop = Effect{kind: stop}
	// Block suspends the instruction until more input is available.
	// The instruction pointer is left unchanged.
	Block = Effect{kind: block}
)

// Produce writes v to the destination parameter.
func Produce(v int64) Effect { return Effect{kind: produce, value: v} }

// JumpTo sets the instruction pointer to addr.
func JumpTo(addr int64) Effect { return Effect{kind: jump, value: addr} }

// Binary returns an Op computing f of its two read parameters into its
// destination.
func Binary(code Opcode, name string, f func(a, b int64) int64) Op {
	return Op{
		Code:   code,
		Name:   name,
		Arity:  2,
		Writes: true,
		Exec: func(_ *Machine, args []int64) Effect {
			return Produce(f(args[0], args[1]))
		},
	}
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// The standard operations.
var (
	OpAdd = Binary(Add, "add", func(a, b int64) int64 { return a + b })
	OpMul = Binary(Mul, "mul", func(a, b int64) int64 { return a * b })

	OpIn = Op{Code: In, Name: "in", Writes: true,
		Exec: func(m *Machine, _ []int64) Effect {
			v, ok := m.In.Pop()
			if !ok {
				return Block
			}
			return Produce(v)
		}}
	OpOut = Op{Code: Out, Name: "out", Arity: 1,
		Exec: func(m *Machine, args []int64) Effect {
			m.Out.Push(args[0])
			return Continue
		}}

	OpJumpIfTrue = Op{Code: JumpIfTrue, Name: "jt", Arity: 2,
		Exec: func(_ *Machine, args []int64) Effect {
			if args[0] != 0 {
				return JumpTo(args[1])
			}
			return Continue
		}}
	OpJumpIfFalse = Op{Code: JumpIfFalse, Name: "jf", Arity: 2,
		Exec: func(_ *Machine, args []int64) Effect {
			if args[0] == 0 {
				return JumpTo(args[1])
			}
			return Continue
		}}
	OpLessThan = Binary(LessThan, "lt", func(a, b int64) int64 { return boolWord(a < b) })
	OpEquals   = Binary(Equals, "eq", func(a, b int64) int64 { return boolWord(a == b) })

	OpAdjustBase = Op{Code: AdjustBase, Name: "arb", Arity: 1,
		Exec: func(m *Machine, args []int64) Effect {
			m.Base += args[0]
			return Continue
		}}

	OpHalt = Op{Code: Halt, Name: "hlt",
		Exec: func(*Machine, []int64) Effect { return Stop }}
)

// InOrDefault returns an input operation that stores def instead of
// blocking when the input queue is empty, for machines that poll.
func InOrDefault(def int64) Op {
	return Op{Code: In, Name: "in", Writes: true,
		Exec: func(m *Machine, _ []int64) Effect {
			if v, ok := m.In.Pop(); ok {
				return Produce(v)
			}
			return Produce(def)
		}}
}
