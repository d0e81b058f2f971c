package policy

import (
	"fmt"
	"math"
)

// LinearSchedule decays ε linearly from Max to Min over DecayEpisodes
// episodes and holds it at Min afterwards
type LinearSchedule struct {
	Max           float64
	Min           float64
	DecayEpisodes float64
}

// NewLinearSchedule returns a LinearSchedule which decays from max to
// min over the first percent of episodes total episodes
func NewLinearSchedule(max, min float64, episodes int,
	percent float64) LinearSchedule {
	return LinearSchedule{
		Max:           max,
		Min:           min,
		DecayEpisodes: percent * float64(episodes),
	}
}

// At returns ε for an episode
func (l LinearSchedule) At(episode int) float64 {
	if l.DecayEpisodes <= 0 {
		return l.Min
	}

	slope := (l.Min - l.Max) / l.DecayEpisodes
	return math.Max(l.Min, slope*float64(episode)+l.Max)
}

// Validate checks that the schedule stays within [0, 1] and does not
// increase
func (l LinearSchedule) Validate() error {
	if l.Min < 0 || l.Max > 1 || l.Min > l.Max {
		return fmt.Errorf("validate: schedule must satisfy "+
			"0 ≤ min ≤ max ≤ 1 \n\thave(min = %v, max = %v)", l.Min, l.Max)
	}
	return nil
}
