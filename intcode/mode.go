package intcode

import "fmt"

// Mode is the addressing mode of one instruction parameter.
type Mode byte

const (
	Position  Mode = 0 // parameter is an address
	Immediate Mode = 1 // parameter is the operand
	Relative  Mode = 2 // parameter is an offset from the relative base
)

func (md Mode) String() string {
	switch md {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(md))
}

// ModeOf returns the mode digit of parameter i (0-based) in an instruction
// word, that is (word / 10^(i+2)) mod 10.
func ModeOf(word int64, i int) Mode {
	if word < 0 {
		word = -word
	}
	d := int64(100)
	for ; i > 0; i-- {
		d *= 10
	}
	return Mode(word / d % 10)
}

// OpcodeOf returns the low two decimal digits of an instruction word.
func OpcodeOf(word int64) Opcode { return Opcode(word % 100) }

func (m *Machine) mode(word int64, i int) Mode {
	md := ModeOf(word, i)
	switch {
	case md == Relative && !m.Set.relative, md > Relative:
		panic(trap{InvalidMode, int64(md)})
	}
	return md
}

// operand resolves the read parameter i whose raw value is stored at addr.
func (m *Machine) operand(word int64, i int, addr int64) int64 {
	raw := m.Mem.load(addr)
	switch m.mode(word, i) {
	case Immediate:
		return raw
	case Relative:
		return m.Mem.load(m.Base + raw)
	default:
		return m.Mem.load(raw)
	}
}

// dest resolves the destination parameter i whose raw value is stored at
// addr to the address the result is written through. The address is
// bounds-checked here so that an instruction faults before any of its
// side effects happen.
func (m *Machine) dest(word int64, i int, addr int64) int64 {
	raw := m.Mem.load(addr)
	switch m.mode(word, i) {
	case Immediate:
		panic(trap{InvalidWriteTarget, raw})
	case Relative:
		raw += m.Base
	}
	m.Mem.check(raw)
	return raw
}
