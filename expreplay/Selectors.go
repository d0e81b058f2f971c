package expreplay

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Selector chooses which positions of a replay buffer are sampled
type Selector interface {
	// choose returns n distinct positions in [0, length). Callers
	// guarantee 0 < n <= length.
	choose(n, length int) []int
}

// uniformSelector selects positions uniformly at random without
// replacement
type uniformSelector struct {
	src rand.Source
}

// NewUniformSelector returns a new Selector which selects positions
// uniformly at random, without replacement
func NewUniformSelector(seed uint64) Selector {
	return &uniformSelector{src: rand.NewSource(seed)}
}

// choose implements the Selector interface
func (u *uniformSelector) choose(n, length int) []int {
	indices := make([]int, n)
	sampleuv.WithoutReplacement(indices, length, u.src)
	return indices
}

// fifoSelector selects the positions of the most recently added
// transitions, newest last
type fifoSelector struct{}

// NewLatestSelector returns a new Selector which deterministically
// selects the most recently added transitions
func NewLatestSelector() Selector {
	return fifoSelector{}
}

// choose implements the Selector interface
func (fifoSelector) choose(n, length int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = length - n + i
	}
	return indices
}
