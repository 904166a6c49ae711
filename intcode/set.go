package intcode

import (
	"fmt"
	"sort"
)

// InstructionSet maps opcodes to operations. It is immutable once built;
// Extend and WithRelativeMode return new sets.
type InstructionSet struct {
	Name string

	ops      map[Opcode]Op
	relative bool
}

// NewInstructionSet returns a set holding ops. It panics if two ops share
// an opcode.
func NewInstructionSet(name string, ops ...Op) *InstructionSet {
	s := &InstructionSet{Name: name, ops: make(map[Opcode]Op, len(ops))}
	s.add(ops)
	return s
}

func (s *InstructionSet) add(ops []Op) {
	for _, op := range ops {
		if _, dup := s.ops[op.Code]; dup {
			panic(fmt.Sprintf("intcode: duplicate opcode %d in instruction set %q", op.Code, s.Name))
		}
		if op.Exec == nil {
			panic(fmt.Sprintf("intcode: opcode %d in instruction set %q has no Exec", op.Code, s.Name))
		}
		s.ops[op.Code] = op
	}
}

// Extend returns a new set containing the ops of s plus ops.
func (s *InstructionSet) Extend(name string, ops ...Op) *InstructionSet {
	n := s.clone(name)
	n.add(ops)
	return n
}

// Replace returns a new set like s in which ops take the place of any
// operations with the same opcodes.
func (s *InstructionSet) Replace(name string, ops ...Op) *InstructionSet {
	n := s.clone(name)
	for _, op := range ops {
		delete(n.ops, op.Code)
	}
	n.add(ops)
	return n
}

// WithRelativeMode returns a copy of s in which addressing mode 2 is legal.
func (s *InstructionSet) WithRelativeMode(name string) *InstructionSet {
	n := s.clone(name)
	n.relative = true
	return n
}

func (s *InstructionSet) clone(name string) *InstructionSet {
	n := &InstructionSet{Name: name, ops: make(map[Opcode]Op, len(s.ops)), relative: s.relative}
	for c, op := range s.ops {
		n.ops[c] = op
	}
	return n
}

// Lookup returns the operation for code.
func (s *InstructionSet) Lookup(code Opcode) (Op, bool) {
	op, ok := s.ops[code]
	return op, ok
}

// RelativeMode reports whether addressing mode 2 is legal.
func (s *InstructionSet) RelativeMode() bool { return s.relative }

// Ops returns the operations of s ordered by opcode.
func (s *InstructionSet) Ops() []Op {
	ops := make([]Op, 0, len(s.ops))
	for _, op := range s.ops {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Code < ops[j].Code })
	return ops
}

func (s *InstructionSet) String() string { return s.Name }

// Predefined instruction sets, each a superset of the one before.
var (
	ArithSet    = NewInstructionSet("arith", OpAdd, OpMul, OpHalt)
	IOSet       = ArithSet.Extend("io", OpIn, OpOut)
	JumpSet     = IOSet.Extend("jump", OpJumpIfTrue, OpJumpIfFalse, OpLessThan, OpEquals)
	RelativeSet = JumpSet.Extend("relative", OpAdjustBase).WithRelativeMode("relative")
)

var sets = map[string]*InstructionSet{
	ArithSet.Name:    ArithSet,
	IOSet.Name:       IOSet,
	JumpSet.Name:     JumpSet,
	RelativeSet.Name: RelativeSet,
}

// LookupSet returns the predefined instruction set with the given name.
func LookupSet(name string) (*InstructionSet, bool) {
	s, ok := sets[name]
	return s, ok
}

// SetNames returns the names of the predefined instruction sets.
func SetNames() []string {
	names := make([]string, 0, len(sets))
	for n := range sets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
