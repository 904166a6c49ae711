package intcode

// Queue is a FIFO of words, used for a machine's input and output.
type Queue struct {
	vals []int64
}

// Push appends vs to the back of the queue.
func (q *Queue) Push(vs ...int64) { q.vals = append(q.vals, vs...) }

// Pop removes and returns the front of the queue, and reports false if the
// queue is empty.
func (q *Queue) Pop() (int64, bool) {
	if len(q.vals) == 0 {
		return 0, false
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	if len(q.vals) == 0 {
		q.vals = nil
	}
	return v, true
}

// Len returns the number of queued words.
func (q *Queue) Len() int { return len(q.vals) }

// Values returns a copy of the queued words, front first.
func (q *Queue) Values() []int64 {
	return append([]int64(nil), q.vals...)
}

// Drain removes and returns all queued words, front first.
func (q *Queue) Drain() []int64 {
	vs := q.vals
	q.vals = nil
	return vs
}
