package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
)

// debugMode runs the program under an interactive terminal debugger.
func debugMode(cfg Config) error {
	d, err := newDebugger(cfg)
	if err != nil {
		return err
	}
	log.SetPrefix("")
	log.SetOutput(d.log)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("intcode: ")
	}()
	log.Printf("debug: %s loaded (%d words, %s)", cfg.Program, len(d.program), d.set.Name)
	d.update()
	return d.app.Run()
}

type debugger struct {
	cfg     Config
	program []int64
	set     *intcode.InstructionSet

	log   *tview.TextView
	code  *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	m       *intcode.Machine
	status  intcode.Status
	steps   int
	running bool
	pause   atomic.Bool
	breaks  map[int64]bool
	watches []int64
}

func newDebugger(cfg Config) (*debugger, error) {
	program, err := loadProgram(cfg.Program)
	if err != nil {
		return nil, err
	}
	set, ok := intcode.LookupSet(cfg.Set)
	if !ok {
		return nil, fmt.Errorf("unknown instruction set %q", cfg.Set)
	}
	d := &debugger{
		cfg:     cfg,
		program: program,
		set:     set,
		log: tview.NewTextView().
			SetMaxLines(1000),
		code: tview.NewTextView().
			SetWrap(false),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app:    tview.NewApplication(),
		breaks: map[int64]bool{},
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.code.SetBackgroundColor(tcell.ColorBlack)
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.code, 0, 2, false).
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		if msg := d.command(cmd); msg != "" {
			log.Print(msg)
		}
		d.update()
	})
	return d, nil
}

// reset replaces the machine with a fresh one built from the program.
func (d *debugger) reset() error {
	m, err := newMachine(d.cfg, d.program, d.set)
	if err != nil {
		return err
	}
	d.m, d.status, d.steps = m, intcode.Running, 0
	return nil
}

// command executes one debugger command and returns a message to log.
func (d *debugger) command(text string) string {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	arg = strings.TrimSpace(arg)
	if cmd == "p" || cmd == "pause" {
		d.pause.Store(true)
		return ""
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return "running; pause first"
	}
	switch cmd {
	case "s", "step":
		n := 1
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				return fmt.Sprintf("invalid step count %q", arg)
			}
			n = v
		}
		for i := 0; i < n; i++ {
			if msg, ok := d.step(); !ok {
				return msg
			}
		}
		return ""
	case "c", "continue":
		d.running = true
		d.pause.Store(false)
		go d.continueRun()
		return "continue"
	case "b", "break":
		if arg == "" {
			d.breaks = map[int64]bool{}
			return "cleared breaks"
		}
		addr, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Sprintf("invalid addr %q", arg)
		}
		if d.breaks[addr] {
			delete(d.breaks, addr)
			return fmt.Sprintf("cleared break %d", addr)
		}
		d.breaks[addr] = true
		return fmt.Sprintf("set break %d", addr)
	case "w", "watch":
		if arg == "" {
			d.watches = nil
			return "cleared watches"
		}
		addr, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || addr < 0 || addr >= int64(len(d.m.Mem)) {
			return fmt.Sprintf("invalid address %q", arg)
		}
		d.watches = append(d.watches, addr)
		return fmt.Sprintf("watching %d", addr)
	case "i", "in":
		vs, err := parseWords(arg)
		if err != nil || len(vs) == 0 {
			return fmt.Sprintf("invalid input %q", arg)
		}
		d.m.PushInput(vs...)
		if d.status == intcode.Blocked {
			d.status = intcode.Running
		}
		return fmt.Sprintf("input %v", vs)
	case "r", "reset":
		if err := d.reset(); err != nil {
			return fmt.Sprintf("reset: %v", err)
		}
		return "reset"
	}
	return fmt.Sprintf("unknown command %q (s [n], c, p, b [addr], w [addr], i values, r, exit)", cmd)
}

// step executes one instruction. It reports false, with a message, if the
// machine cannot make progress. d.mu must be held.
func (d *debugger) step() (string, bool) {
	st, err := d.m.Step()
	if err != nil {
		return fmt.Sprintf("fault: %v", err), false
	}
	d.status = st
	switch st {
	case intcode.Blocked:
		return "blocked on input", false
	case intcode.Halted:
		return "halted", false
	}
	d.steps++
	return "", true
}

// continueRun steps the machine until it stops, reaches a break, or is
// paused.
func (d *debugger) continueRun() {
	msg := d.runUntilBreak()
	if msg != "" {
		log.Print(msg)
	}
	d.update()
}

func (d *debugger) runUntilBreak() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() { d.running = false }()
	for first := true; ; first = false {
		if d.pause.Load() {
			return "paused"
		}
		if !first && d.breaks[d.m.PC] {
			return fmt.Sprintf("break at %d", d.m.PC)
		}
		if msg, ok := d.step(); !ok {
			return msg
		}
		if d.steps%4096 == 0 {
			// Let the views redraw.
			d.mu.Unlock()
			d.mu.Lock()
		}
	}
}

// update redraws the debugger views.
func (d *debugger) update() {
	d.mu.Lock()
	var (
		code  = d.codeContent(20)
		watch = d.watchContent()
		state = d.stateContent()
		kind  = d.statusKind()
	)
	d.mu.Unlock()
	d.app.QueueUpdateDraw(func() {
		switch kind {
		case "fault":
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		case "break":
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case "blocked", "halted":
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		default:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		}
		d.code.SetText(code)
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func (d *debugger) statusKind() string {
	switch {
	case d.m.Err() != nil:
		return "fault"
	case d.m.Halted():
		return "halted"
	case d.status == intcode.Blocked:
		return "blocked"
	case d.breaks[d.m.PC]:
		return "break"
	}
	return ""
}

func (d *debugger) stateContent() string {
	text, _ := d.m.Disasm(d.m.PC)
	kind := "       "
	switch k := d.statusKind(); k {
	case "fault":
		kind = "[FAULT]"
	case "halted":
		kind = "[halt] "
	case "blocked":
		kind = "[block]"
	case "break":
		kind = "[break]"
	}
	s := fmt.Sprintf("%6d %-28s %s steps %d base %d\nin:  %v\nout: %v\n",
		d.m.PC, text, kind, d.steps, d.m.Base, d.m.In.Values(), d.m.Out.Values())
	if err := d.m.Err(); err != nil {
		s += err.Error()
	}
	return s
}

// codeContent disassembles memory from address 0 and returns up to
// context lines either side of the instruction pointer.
func (d *debugger) codeContent(context int) string {
	type line struct {
		addr int64
		text string
	}
	var (
		lines []line
		pc    = d.m.PC
		at    = -1
	)
	for addr := int64(0); addr < int64(len(d.m.Mem)); {
		text, next := d.m.Disasm(addr)
		if addr < pc && pc < next {
			// Resync on the instruction pointer.
			text, next = fmt.Sprintf("data %d", d.m.Mem[addr]), addr+1
		}
		if addr == pc {
			at = len(lines)
		}
		lines = append(lines, line{addr, text})
		addr = next
	}
	if at < 0 {
		at = len(lines) - 1
	}
	lo, hi := max(at-context, 0), min(at+context+1, len(lines))
	var b strings.Builder
	for _, l := range lines[lo:hi] {
		mark := ' '
		if l.addr == pc {
			mark = '>'
		}
		brk := ' '
		if d.breaks[l.addr] {
			brk = '*'
		}
		fmt.Fprintf(&b, "%c%c%6d %s\n", brk, mark, l.addr, l.text)
	}
	return b.String()
}

func (d *debugger) watchContent() string {
	var b strings.Builder
	var brks []int64
	for a := range d.breaks {
		brks = append(brks, a)
	}
	sort.Slice(brks, func(i, j int) bool { return brks[i] < brks[j] })
	for _, a := range brks {
		fmt.Fprintf(&b, "[%d] brk!\n", a)
	}
	for _, a := range d.watches {
		v, err := d.m.ReadMemory(a)
		if err != nil {
			fmt.Fprintf(&b, "[%d] ??\n", a)
			continue
		}
		fmt.Fprintf(&b, "[%d] %d\n", a, v)
	}
	return b.String()
}
