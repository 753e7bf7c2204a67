// Package analysis inspects recorded episodes: the spectrum and dominant
// frequency of a trace column, when the pole settled upright, and simple
// column statistics.
//
//	theta, _ := trace.Column("theta")
//	f, err := analysis.DominantFrequency(theta, dt)
package analysis
