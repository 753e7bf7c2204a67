package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/swingup/internal/reward"
	"github.com/san-kum/swingup/internal/storage"
)

type Point struct {
	X, Y float64
}

// TipPath is the pole tip position in metres for each trace row, with
// y up and the pivot height at zero.
func TipPath(trace storage.Trace, poleLength float64) []Point {
	pts := make([]Point, len(trace))
	for i, r := range trace {
		x, y := reward.Tip(r.X, r.Theta, poleLength)
		pts[i] = Point{X: x, Y: y}
	}
	return pts
}

// TrajectoryToSVG draws points as a polyline scaled uniformly to fit the
// canvas with a 10% margin. The pivot height (y = 0) is drawn as a grey
// line when it is in view, and the first and last points are marked.
// Fewer than two points give an empty string.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	spanX := math.Max(hi.X-lo.X, 1e-9)
	spanY := math.Max(hi.Y-lo.Y, 1e-9)

	w, h := float64(width), float64(height)
	scale := 0.8 * math.Min(w/spanX, h/spanY)
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	project := func(p Point) (float64, float64) {
		return w/2 + (p.X-cx)*scale, h/2 - (p.Y-cy)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height)

	if _, gy := project(Point{}); gy >= 0 && gy <= h {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#cccccc\"/>\n", gy, width, gy)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i, p := range points {
		x, y := project(p)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n")

	markers := []struct {
		p    Point
		fill string
	}{{points[0], "#00aa00"}, {points[len(points)-1], "#dd0000"}}
	for _, m := range markers {
		x, y := project(m.p)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, m.fill)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
