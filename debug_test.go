package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebuggerCommands(t *testing.T) {
	d, err := newDebugger(Config{Program: writeFile(t, "prog.txt", "3,0,4,0,99"), Set: "io"})
	require.NoError(t, err)

	assert.Equal(t, "blocked on input", d.command("s"))
	assert.Contains(t, d.stateContent(), "[block]")
	assert.Equal(t, "input [5]", d.command("i 5"))
	assert.Equal(t, "", d.command("s"))
	assert.Equal(t, int64(2), d.m.PC)

	assert.Equal(t, "set break 4", d.command("b 4"))
	assert.Equal(t, "break at 4", d.runUntilBreak())
	assert.Equal(t, []int64{5}, d.m.Out.Values())
	assert.Equal(t, 2, d.steps)

	assert.Equal(t, "watching 0", d.command("w 0"))
	assert.Equal(t, "[4] brk!\n[0] 5\n", d.watchContent())
	assert.Equal(t, "halted", d.runUntilBreak())

	assert.Equal(t, "reset", d.command("r"))
	assert.Equal(t, int64(0), d.m.PC)
	assert.Equal(t, 0, d.steps)
	assert.Equal(t, int64(3), d.m.Mem[0])

	assert.Equal(t, "cleared break 4", d.command("b 4"))
	assert.Equal(t, "cleared breaks", d.command("b"))
	assert.Equal(t, `invalid address "99"`, d.command("w 99"))
	assert.Equal(t, `invalid step count "0"`, d.command("s 0"))
	assert.Contains(t, d.command("x"), `unknown command "x"`)
}

func TestDebuggerFault(t *testing.T) {
	d, err := newDebugger(Config{Program: writeFile(t, "prog.txt", "1,0,0,9,99"), Set: "io"})
	require.NoError(t, err)
	assert.Equal(t, "fault: address out of range (9) executing 1 at 0", d.command("s"))
	assert.Equal(t, "fault", d.statusKind())
}

func TestDebuggerCode(t *testing.T) {
	d, err := newDebugger(Config{Program: writeFile(t, "prog.txt", "1002,4,3,4,33"), Set: "io"})
	require.NoError(t, err)
	assert.Equal(t, " >     0 mul [4] #3 -> [4]\n"+
		"       4 data 33\n", d.codeContent(20))

	d.command("b 4")
	d.command("s")
	assert.Equal(t, "       0 mul [4] #3 -> [4]\n"+
		"*>     4 hlt\n", d.codeContent(20))
}
