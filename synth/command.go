package synth

import "sync/atomic"

// CommandKind discriminates Command variants.
type CommandKind uint8

const (
	CmdNoteOn CommandKind = iota
	CmdNoteOff
	CmdSetBlend
	CmdSetEnvelope
	CmdSetFilter
	CmdShutdown
)

// Command is one control-path request. A command is immutable once
// pushed; only the fields relevant to its Kind are meaningful.
type Command struct {
	Kind            CommandKind
	NoteID          int
	FrequencyHz     float32
	DurationSamples uint64 // 0 = held until NoteOff
	Blend           float32
	Envelope        EnvelopeParams
	Filter          FilterParams
}

// CommandQueue is a bounded single-producer single-consumer hand-off
// between the control context and the render context. Neither side
// ever blocks: Push reports false when the queue is full, Pop reports
// false when it is empty.
type CommandQueue struct {
	buf  []Command
	mask uint64
	head atomic.Uint64 // consumer cursor
	tail atomic.Uint64 // producer cursor
}

// NewCommandQueue creates a queue holding at least capacity commands,
// rounded up to a power of two.
func NewCommandQueue(capacity int) *CommandQueue {
	if capacity < 2 {
		capacity = 2
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &CommandQueue{buf: make([]Command, n), mask: uint64(n - 1)}
}

// Push enqueues cmd from the producer side. It reports false when the
// queue is full; the command is dropped in that case.
func (q *CommandQueue) Push(cmd Command) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = cmd
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues the oldest command into dst from the consumer side,
// reporting whether one was available.
func (q *CommandQueue) Pop(dst *Command) bool {
	head := q.head.Load()
	if head == q.tail.Load() {
		return false
	}
	*dst = q.buf[head&q.mask]
	q.head.Store(head + 1)
	return true
}

// Len reports the number of queued commands.
func (q *CommandQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap reports the queue capacity.
func (q *CommandQueue) Cap() int {
	return len(q.buf)
}
