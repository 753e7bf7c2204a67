package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/dynamo"
)

var ErrNoDisplay = errors.New("render: interactive mode needs a display")

// Display presents frames in a window. Show is expected to block long
// enough to hold the configured frame rate and to drain pending window
// events.
type Display interface {
	Show(img image.Image) error
	Close() error
}

// DisplayFactory opens a display of the given size paced to fps.
type DisplayFactory func(width, height, fps int) (Display, error)

type Renderer struct {
	poleLength float64
	fps        int
	newDisplay DisplayFactory
	logger     *zap.Logger

	surface *gg.Context
	display Display
}

type Option func(*Renderer)

func WithFPS(fps int) Option {
	return func(r *Renderer) { r.fps = fps }
}

func WithDisplay(f DisplayFactory) Option {
	return func(r *Renderer) { r.newDisplay = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

func New(poleLength float64, opts ...Option) *Renderer {
	r := &Renderer{
		poleLength: poleLength,
		fps:        50,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws state and delivers it according to mode. Offscreen returns
// the frame; Interactive shows it and returns nil; None does nothing.
func (r *Renderer) Render(state dynamo.State, mode Mode) (*Frame, error) {
	if mode == None {
		return nil, nil
	}
	if len(state) < 4 {
		return nil, fmt.Errorf("%w: render needs 4 components, got %d", dynamo.ErrDimensionMismatch, len(state))
	}

	img := r.compose(state[0], state[2])
	frame := flippedFrame(img)

	if mode == Offscreen {
		return frame, nil
	}

	if r.display == nil {
		if r.newDisplay == nil {
			return nil, ErrNoDisplay
		}
		d, err := r.newDisplay(ScreenWidth, ScreenHeight, r.fps)
		if err != nil {
			return nil, fmt.Errorf("open display: %w", err)
		}
		r.display = d
		r.logger.Debug("display opened", zap.Int("fps", r.fps))
	}
	if err := r.display.Show(frame.Image()); err != nil {
		return nil, fmt.Errorf("show frame: %w", err)
	}
	return nil, nil
}

// Image renders state offscreen and returns it as an image.
func (r *Renderer) Image(state dynamo.State) (*image.RGBA, error) {
	frame, err := r.Render(state, Offscreen)
	if err != nil {
		return nil, err
	}
	return frame.Image(), nil
}

// compose draws the scene on the surface in pre-flip coordinates.
func (r *Renderer) compose(x, theta float64) *image.RGBA {
	if r.surface == nil {
		r.surface = gg.NewContext(ScreenWidth, ScreenHeight)
	}
	dc := r.surface
	g := Layout(x, theta, r.poleLength)

	dc.SetColor(Background)
	dc.Clear()

	fillPolygon(dc, g.Cart[:], CartColor)
	fillPolygon(dc, g.Pole[:], PoleColor)

	fillDot(dc, g.AxleX, g.AxleY, AxleRadius, AxleColor)
	fillDot(dc, g.TipX, g.TipY, AxleRadius, InkColor)
	fillDot(dc, g.WheelLeftX, g.WheelY, WheelRadius, InkColor)
	fillDot(dc, g.WheelRightX, g.WheelY, WheelRadius, InkColor)

	dc.SetColor(InkColor)
	dc.DrawRectangle(0, float64(g.GroundY), ScreenWidth, 1)
	dc.Fill()

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		b := dc.Image().Bounds()
		img = image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				img.Set(x, y, dc.Image().At(x, y))
			}
		}
	}
	return img
}

func fillPolygon(dc *gg.Context, pts []Point, c color.Color) {
	dc.SetColor(c)
	dc.NewSubPath()
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.Fill()
}

// fillDot draws a filled circle centred on pixel (px, py).
func fillDot(dc *gg.Context, px, py int, radius float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawCircle(float64(px)+0.5, float64(py)+0.5, radius)
	dc.Fill()
}

// Close releases the display. It is safe to call more than once and on a
// renderer that never rendered; teardown failures are logged and dropped.
func (r *Renderer) Close() error {
	if r.display != nil {
		d := r.display
		r.display = nil
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Debug("display close panicked", zap.Any("recovered", rec))
				}
			}()
			if err := d.Close(); err != nil {
				r.logger.Debug("display close failed", zap.Error(err))
			}
		}()
	}
	r.surface = nil
	return nil
}
