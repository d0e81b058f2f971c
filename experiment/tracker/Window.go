package tracker

import (
	"fmt"

	"github.com/gammazero/deque"
	"gonum.org/v1/gonum/stat"
)

// Window is a bounded sliding window of per-episode values. Once full,
// pushing a new value evicts the oldest one.
type Window struct {
	values   *deque.Deque[float64]
	capacity int
}

// NewWindow returns a new, empty Window holding at most capacity values
func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("newWindow: capacity must be positive "+
			"\n\twant(> 0) \n\thave(%v)", capacity)
	}
	return &Window{values: deque.New[float64](), capacity: capacity}, nil
}

// Push adds a value to the window, evicting the oldest value if needed
func (w *Window) Push(v float64) {
	if w.values.Len() == w.capacity {
		w.values.PopFront()
	}
	w.values.PushBack(v)
}

// Mean returns the mean of the values in the window, or 0 if the
// window is empty
func (w *Window) Mean() float64 {
	if w.values.Len() == 0 {
		return 0
	}
	return stat.Mean(w.Values(), nil)
}

// Full returns whether the window holds capacity values
func (w *Window) Full() bool {
	return w.values.Len() == w.capacity
}

// Len returns the number of values in the window
func (w *Window) Len() int {
	return w.values.Len()
}

// Capacity returns the maximum number of values in the window
func (w *Window) Capacity() int {
	return w.capacity
}

// Values returns a copy of the values in the window, oldest first
func (w *Window) Values() []float64 {
	out := make([]float64, w.values.Len())
	for i := range out {
		out[i] = w.values.At(i)
	}
	return out
}
