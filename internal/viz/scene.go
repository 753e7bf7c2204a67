package viz

import "math"

// Scene maps the track onto a braille canvas. The visible track spans
// the termination band plus a margin on each side.
type Scene struct {
	PoleLength float64
	XThreshold float64
}

func (s Scene) scale(c *Canvas) float64 {
	return float64(c.Width*2) / (2*s.XThreshold + 1)
}

// CartPixel returns the sub-pixel position of the pivot.
func (s Scene) CartPixel(c *Canvas, x float64) (int, int) {
	cw, ch := c.Width*2, c.Height*4
	px := cw/2 + int(math.Round(x*s.scale(c)))
	py := ch - ch/4
	return px, py
}

// Draw renders the cart at x with the pole at theta, theta = 0 upright.
func (s Scene) Draw(c *Canvas, x, theta float64) {
	c.Clear()
	cw := c.Width * 2
	scale := s.scale(c)

	px, py := s.CartPixel(c, x)
	groundY := py + 5
	c.DrawLine(0, groundY, cw-1, groundY)
	for _, edge := range []float64{-s.XThreshold, s.XThreshold} {
		ex := cw/2 + int(math.Round(edge*scale))
		c.DrawLine(ex, groundY-3, ex, groundY+2)
	}

	c.FillRect(px-6, py-2, px+6, py+2)
	c.Set(px-4, py+4)
	c.Set(px+4, py+4)

	poleLen := s.PoleLength * scale * 1.5
	tx := px + int(math.Round(poleLen*math.Sin(theta)))
	ty := py - int(math.Round(poleLen*math.Cos(theta)))
	c.DrawLine(px, py, tx, ty)
	c.Dot(tx, ty, 1)
}
