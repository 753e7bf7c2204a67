package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/swingup/internal/storage"
)

// SwingUpTime returns the time from which the pole stays within angle of
// upright to the end of the trace, and false if it never settles.
func SwingUpTime(trace storage.Trace, angle float64) (float64, bool) {
	minCos := math.Cos(angle)
	settled := -1
	for i := len(trace) - 1; i >= 0; i-- {
		if math.Cos(trace[i].Theta) < minCos {
			break
		}
		settled = i
	}
	if settled < 0 {
		return 0, false
	}
	return trace[settled].Time, true
}

// Stats summarizes one trace column.
type Stats struct {
	Mean, Std, Min, Max float64
}

func ColumnStats(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	s := Stats{Min: xs[0], Max: xs[0]}
	for _, v := range xs {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if len(xs) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	} else {
		s.Mean = xs[0]
	}
	return s
}
