package expreplay

import "errors"

var (
	// ErrEmptyBuffer is wrapped by errors returned when sampling from a
	// buffer holding no transitions
	ErrEmptyBuffer = errors.New("buffer is empty")

	// ErrInsufficientSamples is wrapped by errors returned when
	// sampling more transitions than a buffer holds
	ErrInsufficientSamples = errors.New("insufficient samples in buffer")
)

// ExpReplayError records an error and the buffer operation that caused
// it
type ExpReplayError struct {
	Op  string
	Err error
}

func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap allows errors.Is on the wrapped error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

// IsEmptyBuffer returns whether err was caused by sampling an empty
// buffer
func IsEmptyBuffer(err error) bool {
	return errors.Is(err, ErrEmptyBuffer)
}

// IsInsufficientSamples returns whether err was caused by sampling more
// transitions than the buffer holds
func IsInsufficientSamples(err error) bool {
	return errors.Is(err, ErrInsufficientSamples)
}
