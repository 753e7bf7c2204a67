package export

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/render"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// scenePalette holds the scene colours exactly, padded with Plan 9 shades
// for the anti-aliased edges.
var scenePalette = func() color.Palette {
	p := color.Palette{
		render.Background,
		render.CartColor,
		render.PoleColor,
		render.AxleColor,
		render.InkColor,
	}
	return append(p, palette.Plan9[:256-len(p)]...)
}()

// GIFRecorder renders every Nth post-step state offscreen and collects
// the frames into an animated GIF. It implements dynamo.Observer.
type GIFRecorder struct {
	renderer *render.Renderer
	every    int
	delay    int
	frames   []*image.Paletted
	logger   *zap.Logger
}

// NewGIFRecorder records one frame every `every` steps, played back at
// fps frames per second.
func NewGIFRecorder(poleLength float64, every, fps int, logger *zap.Logger) *GIFRecorder {
	if every < 1 {
		every = 1
	}
	if fps < 1 {
		fps = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GIFRecorder{
		renderer: render.New(poleLength),
		every:    every,
		delay:    max(1, 100/fps),
		logger:   logger,
	}
}

// Capture adds a frame for state.
func (g *GIFRecorder) Capture(state dynamo.State) error {
	img, err := g.renderer.Image(state)
	if err != nil {
		return err
	}
	pal := image.NewPaletted(img.Bounds(), scenePalette)
	draw.Draw(pal, pal.Rect, img, image.Point{}, draw.Src)
	g.frames = append(g.frames, pal)
	return nil
}

func (g *GIFRecorder) OnStep(tr dynamo.Transition) {
	if tr.Step%g.every != 0 && !tr.Terminated && !tr.Truncated {
		return
	}
	if err := g.Capture(tr.Next); err != nil {
		g.logger.Warn("gif capture failed", zap.Int("step", tr.Step), zap.Error(err))
	}
}

func (g *GIFRecorder) Frames() int {
	return len(g.frames)
}

func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, g.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (g *GIFRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.Encode(f)
}
