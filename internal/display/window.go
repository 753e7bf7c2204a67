// Package display shows rendered frames in a raylib window.
package display

import (
	"errors"
	"image"
	"image/color"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/swingup/internal/render"
)

var (
	ColText  = rl.NewColor(40, 40, 40, 255)
	ColPanel = rl.NewColor(255, 255, 255, 200)
)

// raylib keeps one window per process.
var windowMu sync.Mutex

var ErrWindowOpen = errors.New("display: a window is already open")

// Window is a render.Display backed by raylib. EndDrawing waits out the
// frame budget set by SetTargetFPS and polls input events, so every Show
// both paces and keeps the window responsive.
type Window struct {
	width, height int
	texture       rl.Texture2D
	hasTexture    bool
	overlay       []string
	closed        bool
	locked        bool
}

// Open creates the window. It matches render.DisplayFactory.
func Open(width, height, fps int) (render.Display, error) {
	return OpenWindow("swingup", width, height, fps)
}

func OpenWindow(title string, width, height, fps int) (*Window, error) {
	if !windowMu.TryLock() {
		return nil, ErrWindowOpen
	}
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(width), int32(height), title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
	return &Window{width: width, height: height, locked: true}, nil
}

// SetOverlay sets text lines drawn over the next frames.
func (w *Window) SetOverlay(lines ...string) {
	w.overlay = append(w.overlay[:0], lines...)
}

func (w *Window) Show(img image.Image) error {
	if w.closed {
		return errors.New("display: window closed")
	}
	if !w.hasTexture {
		rimg := rl.NewImageFromImage(img)
		w.texture = rl.LoadTextureFromImage(rimg)
		rl.UnloadImage(rimg)
		w.hasTexture = true
	} else {
		rl.UpdateTexture(w.texture, toColors(img))
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.RayWhite)
	rl.DrawTexture(w.texture, 0, 0, rl.White)
	if len(w.overlay) > 0 {
		rl.DrawRectangle(5, 5, 260, int32(10+18*len(w.overlay)), ColPanel)
		for i, line := range w.overlay {
			rl.DrawText(line, 10, int32(10+18*i), 16, ColText)
		}
	}
	rl.EndDrawing()
	return nil
}

func toColors(img image.Image) []color.RGBA {
	b := img.Bounds()
	out := make([]color.RGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)})
		}
	}
	return out
}

// ShouldClose reports whether the user closed the window.
func (w *Window) ShouldClose() bool {
	return w.closed || rl.WindowShouldClose()
}

func (w *Window) Close() error {
	if w.closed {
		return errors.New("display: window already closed")
	}
	w.closed = true
	if w.hasTexture {
		rl.UnloadTexture(w.texture)
		w.hasTexture = false
	}
	rl.CloseWindow()
	if w.locked {
		w.locked = false
		windowMu.Unlock()
	}
	return nil
}
