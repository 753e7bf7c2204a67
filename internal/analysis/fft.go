package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the one-sided magnitude spectrum of data after
// removing its mean and applying a Hann window. Bin k sits at frequency
// k / (len(data) * dt).
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	x := make([]float64, len(data))
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// Frequencies returns the bin frequencies for a series of n samples.
func Frequencies(n int, dt float64) []float64 {
	if n < 2 || dt <= 0 {
		return nil
	}
	freqs := make([]float64, n/2+1)
	for i := range freqs {
		freqs[i] = float64(i) / (float64(n) * dt)
	}
	return freqs
}

// DominantFrequency is the frequency of the strongest non-DC bin.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSeries
	}
	if dt <= 0 {
		return 0, errors.New("analysis: dt must be positive")
	}
	ps := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return Frequencies(len(data), dt)[best], nil
}
