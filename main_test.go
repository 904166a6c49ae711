package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/intcode/intcode"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestParseWords(t *testing.T) {
	for _, c := range []struct {
		text string
		want []int64
	}{
		{"", nil},
		{"99", []int64{99}},
		{"1, 2,-3\n", []int64{1, 2, -3}},
		{"1,2,", []int64{1, 2}},
		{" 1125899906842624 ", []int64{1125899906842624}},
	} {
		got, err := parseWords(c.text)
		require.NoError(t, err, "parseWords(%q)", c.text)
		assert.Equal(t, c.want, got, "parseWords(%q)", c.text)
	}
	for _, text := range []string{"1,x", "1,,2", "1.5"} {
		_, err := parseWords(text)
		assert.Error(t, err, "parseWords(%q)", text)
	}
}

func TestParsePatches(t *testing.T) {
	ps, err := parsePatches("1=12, 2=2")
	require.NoError(t, err)
	assert.Equal(t, []Patch{{1, 12}, {2, 2}}, ps)

	for _, text := range []string{"1", "a=1", "1=b"} {
		_, err := parsePatches(text)
		assert.Error(t, err, "parsePatches(%q)", text)
	}
}

func TestLoadConfig(t *testing.T) {
	file := writeFile(t, "run.toml", `
program = "prog.txt"
set = "jump"
memory = 64
input = [8]

[[patch]]
addr = 1
value = 12

[circuit]
phases = [1, 2]
loop = true
`)
	cfg, err := loadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Program: filepath.Join(filepath.Dir(file), "prog.txt"),
		Set:     "jump",
		Memory:  64,
		Input:   []int64{8},
		Patch:   []Patch{{Addr: 1, Value: 12}},
		Circuit: Circuit{Phases: []int64{1, 2}, Loop: true},
	}, cfg)

	cfg, err = loadConfig(writeFile(t, "run.toml", `program = "/abs/prog.txt"`))
	require.NoError(t, err)
	assert.Equal(t, "/abs/prog.txt", cfg.Program)
	assert.Equal(t, "io", cfg.Set)

	_, err = loadConfig(writeFile(t, "run.toml", `programme = "x"`))
	assert.Error(t, err)
	_, err = loadConfig(writeFile(t, "run.toml", `program = `))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	series := "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"
	for _, c := range []struct {
		name    string
		program string
		cfg     Config
		out     string
		mem0    int64
	}{
		{"add", "1,0,0,0,99", Config{}, "", 2},
		{"echo", "3,0,4,0,99", Config{Input: []int64{42}}, "42\n", 42},
		{"patch", "1,0,0,0,99", Config{Patch: []Patch{{0, 2}}}, "", 4},
		{"jump", "3,9,8,9,10,9,4,9,99,-1,8", Config{Set: "jump", Input: []int64{8}}, "1\n", 3},
		{"steps", "104,1,99", Config{Steps: 10}, "1\n", 104},
		{"amplify", series, Config{Circuit: Circuit{Phases: []int64{4, 3, 2, 1, 0}}}, "43210\n", 0},
		{"search", series, Config{Circuit: Circuit{Phases: []int64{0, 1, 2, 3, 4}, Search: true}}, "43210 4,3,2,1,0\n", 0},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			cfg.Program = writeFile(t, "prog.txt", c.program)
			if cfg.Set == "" {
				cfg.Set = "io"
			}
			var out bytes.Buffer
			m, err := run(context.Background(), &out, cfg)
			require.NoError(t, err)
			assert.Equal(t, c.out, out.String())
			if m != nil {
				assert.Equal(t, c.mem0, m.Mem[0])
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	for _, c := range []struct {
		name    string
		program string
		cfg     Config
		want    error
	}{
		{"unknown", "42", Config{}, intcode.UnknownOpcode},
		{"starved", "3,0,99", Config{}, intcode.InputStarved},
		{"patch", "99", Config{Patch: []Patch{{5, 1}}}, intcode.AddressOutOfRange},
		{"steps", "1105,1,0", Config{Set: "jump", Steps: 10}, intcode.ErrStepLimit},
		{"amplify steps", "3,5,1105,1,2,0", Config{Set: "jump", Steps: 10, Circuit: Circuit{Phases: []int64{0}}}, intcode.ErrStepLimit},
		{"search steps", "3,5,1105,1,2,0", Config{Set: "jump", Steps: 10, Circuit: Circuit{Phases: []int64{0, 1}, Loop: true, Search: true}}, intcode.ErrStepLimit},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			cfg.Program = writeFile(t, "prog.txt", c.program)
			if cfg.Set == "" {
				cfg.Set = "io"
			}
			_, err := run(context.Background(), &bytes.Buffer{}, cfg)
			assert.ErrorIs(t, err, c.want)
		})
	}

	_, err := run(context.Background(), &bytes.Buffer{}, Config{Program: writeFile(t, "p", "99"), Set: "nope"})
	assert.Error(t, err)
	_, err = run(context.Background(), &bytes.Buffer{}, Config{Program: writeFile(t, "p", " \n"), Set: "io"})
	assert.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		Program: writeFile(t, "prog.txt", "3,5,1105,1,2,0"),
		Set:     "jump",
		Circuit: Circuit{Phases: []int64{0, 1}, Loop: true},
	}
	_, err := run(ctx, &bytes.Buffer{}, cfg)
	assert.ErrorIs(t, err, context.Canceled)

	cfg.Circuit.Search = true
	_, err = run(ctx, &bytes.Buffer{}, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTrace(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	cfg := Config{
		Program: writeFile(t, "prog.txt", "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"),
		Set:     "jump",
		Trace:   true,
		Circuit: Circuit{Phases: []int64{4, 3}},
	}
	var out bytes.Buffer
	_, err := run(context.Background(), &out, cfg)
	require.NoError(t, err)
	assert.Equal(t, "43\n", out.String())
	assert.Contains(t, logged.String(), "circuit: 0 -> 1: [4]")
	assert.Contains(t, logged.String(), "12 out [43]")
}

func TestNewMachineLogf(t *testing.T) {
	program := []int64{104, 1, 99}
	m, err := newMachine(Config{}, program, intcode.IOSet)
	require.NoError(t, err)
	assert.NotNil(t, m.Logf, "untraced machine has no trace function")
	require.NoError(t, m.RunToHalt())
	assert.Equal(t, []int64{1}, m.Out.Values())
}

func TestSnapshot(t *testing.T) {
	m := intcode.NewMachine([]int64{4, 0, 99}, nil)
	require.NoError(t, m.RunToHalt())
	s := snapshotOf(m)
	assert.Equal(t, snapshot{
		Set:    "io",
		PC:     3,
		Halted: true,
		Out:    []int64{4},
		Mem:    []int64{4, 0, 99},
	}, s)
}
