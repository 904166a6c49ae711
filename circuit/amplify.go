package circuit

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nf/intcode/intcode"
)

// ErrNoSignal is returned by Amplify if the final stage never outputs.
var ErrNoSignal = errors.New("circuit: no output signal")

// An Option configures the network built by Amplify or Search.
type Option func(*Network)

// WithSteps limits each amplifier circuit to n instructions in total.
// Zero means no limit.
func WithSteps(n int) Option {
	return func(nw *Network) { nw.Steps = n }
}

// WithLogf traces the values moved between stages, and the instructions
// executed by each stage, to logf.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(nw *Network) {
		nw.Logf = logf
		for _, m := range nw.Machines {
			m.Logf = logf
		}
	}
}

// Amplify runs one copy of program per phase, in series: each stage is
// given its phase and then the previous stage's output, the first stage
// being given signal. If loop is set the last stage also feeds the first.
// It returns the last value output by the last stage.
func Amplify(ctx context.Context, program []int64, set *intcode.InstructionSet, phases []int64, signal int64, loop bool, opts ...Option) (int64, error) {
	if len(phases) == 0 {
		return 0, errors.New("circuit: no phases")
	}
	ms := make([]*intcode.Machine, len(phases))
	for i, p := range phases {
		ms[i] = intcode.NewMachine(program, set)
		ms[i].PushInput(p)
	}
	ms[0].PushInput(signal)

	n := NewNetwork(ms...)
	for _, o := range opts {
		o(n)
	}
	last := len(ms) - 1
	for i := 0; i < last; i++ {
		n.Connect(i, i+1)
	}
	if loop {
		n.Connect(last, 0)
	}
	if err := n.Run(ctx); err != nil {
		return 0, err
	}
	v, ok := n.LastOutput(last)
	if !ok {
		return 0, ErrNoSignal
	}
	return v, nil
}

// Result is the best phase ordering found by Search.
type Result struct {
	Phases []int64
	Signal int64
}

// Search runs Amplify for every ordering of phases, in parallel, and
// returns the ordering that produces the greatest signal. Ties go to the
// lexicographically smallest ordering. The first failing ordering cancels
// the rest.
func Search(ctx context.Context, program []int64, set *intcode.InstructionSet, phases []int64, signal int64, loop bool, opts ...Option) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var (
		mu   sync.Mutex
		best Result
		have bool
	)
	permute(slices.Clone(phases), func(p []int64) bool {
		if gctx.Err() != nil {
			return false
		}
		p = slices.Clone(p)
		g.Go(func() error {
			v, err := Amplify(gctx, program, set, p, signal, loop, opts...)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if !have || v > best.Signal || v == best.Signal && slices.Compare(p, best.Phases) < 0 {
				best, have = Result{Phases: p, Signal: v}, true
			}
			return nil
		})
		return true
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return best, nil
}

// permute calls f with each permutation of p (Heap's algorithm) until f
// returns false. f must not retain p.
func permute(p []int64, f func([]int64) bool) {
	c := make([]int, len(p))
	if !f(p) {
		return
	}
	for i := 0; i < len(p); {
		if c[i] < i {
			if i%2 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[c[i]], p[i] = p[i], p[c[i]]
			}
			if !f(p) {
				return
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}
