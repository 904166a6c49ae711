package intcode

import (
	"fmt"
	"strings"
)

// Disasm returns a textual form of the instruction at addr and the address
// of the word following it. Words that do not decode under m.Set are
// rendered as data.
func (m *Machine) Disasm(addr int64) (string, int64) {
	word, err := m.Mem.Read(addr)
	if err != nil {
		return "??", addr + 1
	}
	op, ok := m.Set.Lookup(OpcodeOf(word))
	if !ok {
		return fmt.Sprintf("data %d", word), addr + 1
	}
	n := op.Arity
	if op.Writes {
		n++
	}
	var b strings.Builder
	b.WriteString(op.Name)
	for i := 0; i < n; i++ {
		raw, err := m.Mem.Read(addr + 1 + int64(i))
		if err != nil {
			return fmt.Sprintf("data %d", word), addr + 1
		}
		if i == op.Arity {
			b.WriteString(" ->")
		}
		switch ModeOf(word, i) {
		case Position:
			fmt.Fprintf(&b, " [%d]", raw)
		case Immediate:
			fmt.Fprintf(&b, " #%d", raw)
		case Relative:
			fmt.Fprintf(&b, " [rb%+d]", raw)
		default:
			fmt.Fprintf(&b, " ?%d", raw)
		}
	}
	return b.String(), addr + 1 + int64(n)
}
