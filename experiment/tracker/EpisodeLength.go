package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
)

// EpisodeLength tracks and saves the lengths of the episodes of one
// phase of an experiment. The lengths are gob encoded as an []int.
type EpisodeLength struct {
	phase          Phase
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// the lengths of episodes in phase p at the location filename
func NewEpisodeLength(p Phase, filename string) *EpisodeLength {
	return &EpisodeLength{phase: p, filename: filename}
}

// Track caches the length of the episode if it belongs to the tracked
// phase
func (e *EpisodeLength) Track(ep Episode) error {
	if ep.Phase == e.phase {
		e.episodeLengths = append(e.episodeLengths, ep.Steps)
	}
	return nil
}

// Lengths returns the lengths tracked so far
func (e *EpisodeLength) Lengths() []int {
	out := make([]int, len(e.episodeLengths))
	copy(out, e.episodeLengths)
	return out
}

// Save saves the tracked episode lengths to disk
func (e *EpisodeLength) Save() error {
	file, err := os.Create(e.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(e.episodeLengths); err != nil {
		return fmt.Errorf("save: could not encode episode lengths: %w", err)
	}
	return nil
}

// LoadLengths loads the episode lengths saved by an EpisodeLength
// tracker
func LoadLengths(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadLengths: could not open data file: %w",
			err)
	}
	defer file.Close()

	var data []int
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadLengths: could not decode data: %w", err)
	}
	return data, nil
}
