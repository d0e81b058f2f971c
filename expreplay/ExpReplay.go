// Package expreplay implements bounded experience replay buffers
package expreplay

import (
	"fmt"

	"github.com/gammazero/deque"

	"github.com/golearn/duelingdqn/timestep"
)

// Buffer is a bounded first-in first-out store of transitions. Once the
// buffer is full, adding a transition evicts the oldest one.
type Buffer struct {
	transitions *deque.Deque[timestep.Transition]
	sampler     Selector
	capacity    int
	features    int
}

// New returns a new Buffer holding at most capacity transitions with
// states of length features, sampled uniformly with a source seeded by
// seed
func New(capacity, features int, seed uint64) (*Buffer, error) {
	return NewWithSelector(capacity, features, NewUniformSelector(seed))
}

// NewWithSelector returns a new Buffer which uses sampler to choose the
// transitions returned by Sample
func NewWithSelector(capacity, features int, sampler Selector) (*Buffer,
	error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be positive "+
			"\n\twant(>0) \n\thave(%v)", capacity)
	}
	if features < 1 {
		return nil, fmt.Errorf("new: features must be positive "+
			"\n\twant(>0) \n\thave(%v)", features)
	}

	return &Buffer{
		transitions: deque.New[timestep.Transition](),
		sampler:     sampler,
		capacity:    capacity,
		features:    features,
	}, nil
}

// Add appends a transition to the buffer, evicting the oldest
// transitions while the buffer is over capacity
func (b *Buffer) Add(t timestep.Transition) error {
	if t.Features() != b.features {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)\n\thave(%v)",
			b.features, t.Features())
	}
	if t.NextState().Len() != b.features {
		return fmt.Errorf("add: invalid next state size "+
			"\n\twant(%v)\n\thave(%v)", b.features, t.NextState().Len())
	}

	b.transitions.PushBack(t)
	for b.transitions.Len() > b.capacity {
		b.transitions.PopFront()
	}
	return nil
}

// Sample returns n distinct transitions from the buffer
func (b *Buffer) Sample(n int) ([]timestep.Transition, error) {
	if n <= 0 {
		return nil, &ExpReplayError{
			Op:  "sample",
			Err: fmt.Errorf("batch size must be positive, have %v", n),
		}
	}
	if b.Len() == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrEmptyBuffer}
	}
	if b.Len() < n {
		return nil, &ExpReplayError{
			Op: "sample",
			Err: fmt.Errorf("%w: want(%v) have(%v)", ErrInsufficientSamples,
				n, b.Len()),
		}
	}

	indices := b.sampler.choose(n, b.Len())
	batch := make([]timestep.Transition, n)
	for i, index := range indices {
		batch[i] = b.transitions.At(index)
	}
	return batch, nil
}

// Transitions returns the transitions in the buffer, oldest first
func (b *Buffer) Transitions() []timestep.Transition {
	out := make([]timestep.Transition, b.transitions.Len())
	for i := range out {
		out[i] = b.transitions.At(i)
	}
	return out
}

// Len returns the number of transitions in the buffer
func (b *Buffer) Len() int {
	return b.transitions.Len()
}

// Capacity returns the maximum number of transitions in the buffer
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Features returns the length of states stored in the buffer
func (b *Buffer) Features() int {
	return b.features
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer | Len: %v  |  Capacity: %v", b.Len(),
		b.capacity)
}
