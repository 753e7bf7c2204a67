package render

import (
	"image/color"
	"math"
)

const (
	ScreenWidth  = 600
	ScreenHeight = 600
	WorldWidth   = 5.0

	CartWidth  = 40.0
	CartHeight = 20.0
	PoleWidth  = 6.0

	AxleRadius  = PoleWidth / 2
	WheelRadius = CartHeight / 4
)

var (
	Background = color.RGBA{255, 255, 255, 255}
	CartColor  = color.RGBA{255, 0, 0, 255}
	PoleColor  = color.RGBA{0, 0, 255, 255}
	AxleColor  = color.RGBA{26, 255, 255, 255}
	InkColor   = color.RGBA{0, 0, 0, 255}
)

// Scale is the number of pixels per metre.
const Scale = ScreenWidth / WorldWidth

type Point struct {
	X, Y float64
}

// Geometry is the scene layout for one state, in pre-flip surface
// coordinates. Integer fields are the pixel centres used for the circle
// markers and the ground line.
type Geometry struct {
	CartX, CartY float64
	PoleLen      float64
	Cart         [4]Point
	Pole         [4]Point

	AxleX, AxleY            int
	TipX, TipY              int
	WheelLeftX, WheelRightX int
	WheelY                  int
	GroundY                 int
}

// Layout computes the scene geometry for a cart at x with the pole at
// theta. The pole is rotated by -theta about the pivot, and the tip uses
// the same rotation so it stays on the pole end.
func Layout(x, theta, poleLength float64) Geometry {
	cartX := x*Scale + ScreenWidth/2.0
	cartY := ScreenHeight / 2.0
	poleLen := Scale * poleLength

	g := Geometry{
		CartX:   cartX,
		CartY:   cartY,
		PoleLen: poleLen,
	}

	l, r := -CartWidth/2, CartWidth/2
	t, b := CartHeight/2, -CartHeight/2
	for i, p := range [4]Point{{l, b}, {l, t}, {r, t}, {r, b}} {
		g.Cart[i] = Point{cartX + p.X, cartY + p.Y}
	}

	l, r = -PoleWidth/2, PoleWidth/2
	t, b = poleLen-PoleWidth/2, -PoleWidth/2
	for i, p := range [4]Point{{l, b}, {l, t}, {r, t}, {r, b}} {
		q := rotate(p, -theta)
		g.Pole[i] = Point{cartX + q.X, cartY + q.Y}
	}

	g.AxleX, g.AxleY = int(cartX), int(cartY)

	tip := rotate(Point{0, poleLen}, -theta)
	g.TipX = int(cartX + tip.X)
	g.TipY = int(cartY + tip.Y)

	g.WheelLeftX = int(cartX - CartWidth/2)
	g.WheelRightX = int(cartX + CartWidth/2)
	g.WheelY = int(cartY - CartHeight/2)

	g.GroundY = int(cartY - CartHeight/2 - WheelRadius)
	return g
}

// rotate turns p by angle radians in screen coordinates.
func rotate(p Point, angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// FlipRow maps a pre-flip surface row to the output row.
func FlipRow(y int) int {
	return ScreenHeight - 1 - y
}

// TipPixel returns the pole-tip pixel in output coordinates.
func (g Geometry) TipPixel() (col, row int) {
	return g.TipX, FlipRow(g.TipY)
}

// CartColumn returns the output column of the cart centre.
func (g Geometry) CartColumn() int {
	return int(g.CartX)
}

// GroundRow returns the output row of the ground line.
func (g Geometry) GroundRow() int {
	return FlipRow(g.GroundY)
}
