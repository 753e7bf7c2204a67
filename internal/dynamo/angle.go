package dynamo

import "math"

// WrapAngle maps theta into (-π, π].
func WrapAngle(theta float64) float64 {
	r := math.Mod(math.Pi-theta, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	if r >= 2*math.Pi {
		r = 0
	}
	return math.Pi - r
}
