package intcode

import "testing"

func TestModeOf(t *testing.T) {
	for _, c := range []struct {
		word  int64
		modes []Mode
	}{
		{1, []Mode{Position, Position, Position}},
		{1002, []Mode{Position, Immediate, Position}},
		{1101, []Mode{Immediate, Immediate, Position}},
		{21101, []Mode{Immediate, Immediate, Relative}},
		{204, []Mode{Relative}},
	} {
		for i, w := range c.modes {
			if g := ModeOf(c.word, i); g != w {
				t.Errorf("ModeOf(%d, %d) = %v, want %v", c.word, i, g, w)
			}
		}
	}
	if g := OpcodeOf(21101); g != Add {
		t.Errorf("OpcodeOf(21101) = %v, want %v", g, Add)
	}
}

// Check that every predefined set contains the one before it.
func TestSetsNest(t *testing.T) {
	chain := []*InstructionSet{ArithSet, IOSet, JumpSet, RelativeSet}
	for i := 1; i < len(chain); i++ {
		for _, op := range chain[i-1].Ops() {
			if _, ok := chain[i].Lookup(op.Code); !ok {
				t.Errorf("%v is missing %v from %v", chain[i], op.Code, chain[i-1])
			}
		}
	}
	if JumpSet.RelativeMode() || !RelativeSet.RelativeMode() {
		t.Errorf("relative mode: jump %v, relative %v", JumpSet.RelativeMode(), RelativeSet.RelativeMode())
	}
	for _, name := range SetNames() {
		s, ok := LookupSet(name)
		if !ok || s.Name != name {
			t.Errorf("LookupSet(%q) = %v, %v", name, s, ok)
		}
	}
}

func TestExtend(t *testing.T) {
	nop := Op{Code: 50, Name: "nop", Exec: func(*Machine, []int64) Effect { return Continue }}
	s := IOSet.Extend("io+nop", nop)
	if _, ok := IOSet.Lookup(50); ok {
		t.Error("Extend changed IOSet")
	}
	if _, ok := s.Lookup(50); !ok {
		t.Error("extended set is missing opcode 50")
	}
	m := NewMachine([]int64{50, 99}, s)
	if err := m.RunToHalt(); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate opcode did not panic")
		}
	}()
	IOSet.Extend("dup", Op{Code: Add, Name: "add2", Exec: nop.Exec})
}

func TestReplace(t *testing.T) {
	poll := IOSet.Replace("poll", InOrDefault(-1))
	m := NewMachine([]int64{3, 5, 3, 6, 99, 0, 0}, poll)
	m.PushInput(7)
	if err := m.RunToHalt(); err != nil {
		t.Fatal(err)
	}
	if m.Mem[5] != 7 || m.Mem[6] != -1 {
		t.Errorf("memory is %v, want 7 then -1 at 5", m.Mem)
	}
	if len(poll.Ops()) != len(IOSet.Ops()) {
		t.Errorf("Replace changed the number of ops to %d", len(poll.Ops()))
	}

	m = NewMachine([]int64{3, 5, 3, 6, 99, 0, 0}, nil)
	m.PushInput(7)
	if st, err := m.Run(); err != nil || st != Blocked {
		t.Errorf("IOSet input: status %v, error %v; want %v", st, err, Blocked)
	}
}

func TestOpcodeString(t *testing.T) {
	for _, op := range RelativeSet.Ops() {
		if g := op.Code.String(); g != op.Name {
			t.Errorf("Opcode(%d).String() = %q, want %q", int64(op.Code), g, op.Name)
		}
	}
	if g := Opcode(77).String(); g != "op(77)" {
		t.Errorf("Opcode(77).String() = %q", g)
	}
}

func TestDisasm(t *testing.T) {
	m := NewMachine([]int64{1002, 4, 3, 4, 33, 21101, 1, -2, 3}, RelativeSet)
	for _, c := range []struct {
		addr, next int64
		text       string
	}{
		{0, 4, "mul [4] #3 -> [4]"},
		{4, 5, "data 33"},
		{5, 9, "add #1 #-2 -> [rb+3]"},
		{9, 10, "??"},
	} {
		text, next := m.Disasm(c.addr)
		if text != c.text || next != c.next {
			t.Errorf("Disasm(%d) = %q, %d; want %q, %d", c.addr, text, next, c.text, c.next)
		}
	}
}
