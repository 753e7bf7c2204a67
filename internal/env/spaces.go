package env

import "math"

// Box is a per-component closed interval.
type Box struct {
	Low  []float64
	High []float64
}

func (b Box) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// Spaces describes the action and observation bounds. They are
// informational: actions outside the box are clamped, and observations
// past the x bound end the episode.
type Spaces struct {
	Action      Box
	Observation Box
}

func spacesFor(p Params) Spaces {
	inf := math.Inf(1)
	high := []float64{2 * p.XThreshold, inf, 2 * math.Pi, inf}
	low := make([]float64, len(high))
	for i, h := range high {
		low[i] = -h
	}
	return Spaces{
		Action:      Box{Low: []float64{-1}, High: []float64{1}},
		Observation: Box{Low: low, High: high},
	}
}
