package intcode

import "fmt"

// Memory is the word store of a Machine. It never grows: every access
// outside [0, len) is an AddressOutOfRange fault.
type Memory []int64

// NewMemory returns a copy of program sized to hold at least size words.
// Words past the end of program are zero.
func NewMemory(program []int64, size int) Memory {
	n := len(program)
	if size > n {
		n = size
	}
	m := make(Memory, n)
	copy(m, program)
	return m
}

// Read returns the word at addr.
func (m Memory) Read(addr int64) (int64, error) {
	if !m.valid(addr) {
		return 0, fmt.Errorf("%w: read %d of %d", AddressOutOfRange, addr, len(m))
	}
	return m[addr], nil
}

// Write stores v at addr.
func (m Memory) Write(addr, v int64) error {
	if !m.valid(addr) {
		return fmt.Errorf("%w: write %d of %d", AddressOutOfRange, addr, len(m))
	}
	m[addr] = v
	return nil
}

func (m Memory) valid(addr int64) bool { return addr >= 0 && addr < int64(len(m)) }

func (m Memory) check(addr int64) {
	if !m.valid(addr) {
		panic(trap{AddressOutOfRange, addr})
	}
}

func (m Memory) load(addr int64) int64 {
	m.check(addr)
	return m[addr]
}

func (m Memory) store(addr, v int64) {
	m.check(addr)
	m[addr] = v
}
