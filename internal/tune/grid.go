package tune

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var ErrEmptyGrid = errors.New("tune: empty grid")

// Evaluator scores one parameter set. Higher is better.
type Evaluator func(ctx context.Context, params map[string]float64) (float64, error)

// Grid is the cartesian product of per-parameter value lists.
type Grid struct {
	names  []string
	values [][]float64
}

func NewGrid() *Grid {
	return &Grid{}
}

// Add appends a parameter axis. Adding a name twice replaces its values.
func (g *Grid) Add(name string, values ...float64) *Grid {
	for i, n := range g.names {
		if n == name {
			g.values[i] = values
			return g
		}
	}
	g.names = append(g.names, name)
	g.values = append(g.values, values)
	return g
}

// Size is the number of points in the grid.
func (g *Grid) Size() int {
	if len(g.names) == 0 {
		return 0
	}
	n := 1
	for _, vs := range g.values {
		n *= len(vs)
	}
	return n
}

// Points lists every parameter combination, the last axis varying fastest.
func (g *Grid) Points() []map[string]float64 {
	if g.Size() == 0 {
		return nil
	}
	points := make([]map[string]float64, 0, g.Size())
	g.collect(0, map[string]float64{}, &points)
	return points
}

func (g *Grid) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.names) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	for _, v := range g.values[depth] {
		current[g.names[depth]] = v
		g.collect(depth+1, current, out)
	}
	delete(current, g.names[depth])
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// ParseAxis reads "name=v1,v2,..." or "name=lo:hi:n".
func ParseAxis(s string) (string, []float64, error) {
	name, rhs, ok := strings.Cut(s, "=")
	if !ok || name == "" || rhs == "" {
		return "", nil, fmt.Errorf("tune: bad axis %q, want name=v1,v2 or name=lo:hi:n", s)
	}

	if parts := strings.Split(rhs, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("tune: axis %s: %w", name, err)
		}
		if n < 1 {
			return "", nil, fmt.Errorf("tune: axis %s needs at least one point", name)
		}
		return name, Linspace(lo, hi, n), nil
	}

	var values []float64
	for _, field := range strings.Split(rhs, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("tune: axis %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

type Point struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every grid point in order and returns the points
// sorted best first. Points whose evaluation failed sort last with a
// score of -Inf. Search stops early when ctx is cancelled.
func Search(ctx context.Context, g *Grid, eval Evaluator) ([]Point, error) {
	points := g.Points()
	if len(points) == 0 {
		return nil, ErrEmptyGrid
	}

	out := make([]Point, 0, len(points))
	for _, params := range points {
		if err := ctx.Err(); err != nil {
			return sortPoints(out), err
		}
		score, err := eval(ctx, params)
		if err != nil {
			score = math.Inf(-1)
		}
		out = append(out, Point{Params: params, Score: score, Err: err})
	}
	return sortPoints(out), nil
}

func sortPoints(ps []Point) []Point {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Score > ps[j].Score })
	return ps
}
