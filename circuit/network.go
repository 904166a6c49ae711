// Package circuit connects IntCode machines so that the output of one
// feeds the input of another, and schedules them cooperatively.
package circuit

import (
	"context"
	"errors"
	"fmt"

	"github.com/nf/intcode/intcode"
)

// Network is a set of machines joined by output-to-input links.
type Network struct {
	Machines []*intcode.Machine

	// Logf, if non-nil, is told about every value moved along a link.
	Logf func(format string, args ...any)

	// Steps, if positive, limits the instructions executed by all
	// machines together; Run returns intcode.ErrStepLimit once it is spent.
	Steps int

	steps int
	links [][]int
	last  []int64
	sent  []bool
}

// NewNetwork returns an unconnected network of ms.
func NewNetwork(ms ...*intcode.Machine) *Network {
	return &Network{
		Machines: ms,
		links:    make([][]int, len(ms)),
		last:     make([]int64, len(ms)),
		sent:     make([]bool, len(ms)),
	}
}

// Connect routes the output of machine from into the input of machine to.
// Output of a machine with several links is copied to each of them.
func (n *Network) Connect(from, to int) error {
	for _, i := range []int{from, to} {
		if i < 0 || i >= len(n.Machines) {
			return fmt.Errorf("circuit: no machine %d in network of %d", i, len(n.Machines))
		}
	}
	n.links[from] = append(n.links[from], to)
	return nil
}

// ErrDeadlock is returned by Run when every machine that has not halted
// is blocked on input that no other machine will provide.
var ErrDeadlock = errors.New("circuit: deadlock")

// MachineError reports a fault in one machine of a network.
type MachineError struct {
	Index int
	Err   error
}

func (e *MachineError) Error() string { return fmt.Sprintf("machine %d: %v", e.Index, e.Err) }

func (e *MachineError) Unwrap() error { return e.Err }

// Run gives each live machine a turn in order, running it until it blocks
// or halts and then moving its output along its links, and repeats until
// every machine has halted. A round in which no machine executes an
// instruction is a deadlock. Run stops with ctx's error if ctx is done.
func (n *Network) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var live, progressed int
		for i, m := range n.Machines {
			if m.Halted() {
				continue
			}
			live++
			ok, err := n.turn(ctx, i)
			if err != nil {
				return err
			}
			if ok {
				progressed++
			}
		}
		if live == 0 {
			return nil
		}
		if progressed == 0 {
			return fmt.Errorf("%w: %d machines blocked on input", ErrDeadlock, live)
		}
	}
}

// checkEvery is how many instructions a turn executes between looks at ctx.
const checkEvery = 4096

func (n *Network) turn(ctx context.Context, i int) (progressed bool, err error) {
	m := n.Machines[i]
	defer n.route(i)
	for {
		if n.Steps > 0 && n.steps >= n.Steps {
			return progressed, &MachineError{Index: i, Err: fmt.Errorf("%w: %d steps", intcode.ErrStepLimit, n.steps)}
		}
		if n.steps%checkEvery == checkEvery-1 {
			if err := ctx.Err(); err != nil {
				return progressed, err
			}
		}
		st, err := m.Step()
		if err != nil {
			return progressed, &MachineError{Index: i, Err: err}
		}
		switch st {
		case intcode.Blocked:
			return progressed, nil
		case intcode.Halted:
			return true, nil
		}
		n.steps++
		progressed = true
	}
}

func (n *Network) route(i int) {
	m := n.Machines[i]
	var vs []int64
	if len(n.links[i]) == 0 {
		vs = m.Out.Values()
	} else {
		vs = m.DrainOutput()
	}
	if len(vs) == 0 {
		return
	}
	n.last[i], n.sent[i] = vs[len(vs)-1], true
	for _, to := range n.links[i] {
		if n.Logf != nil {
			n.Logf("circuit: %d -> %d: %v", i, to, vs)
		}
		n.Machines[to].PushInput(vs...)
	}
}

// LastOutput returns the most recent value output by machine i, and
// reports whether it has output anything.
func (n *Network) LastOutput(i int) (int64, bool) {
	return n.last[i], n.sent[i]
}
