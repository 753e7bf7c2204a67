package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/san-kum/swingup/internal/dynamo"
)

type fakeDisplay struct {
	shown    int
	closed   int
	closeErr error
	panicky  bool
}

func (d *fakeDisplay) Show(img image.Image) error {
	d.shown++
	return nil
}

func (d *fakeDisplay) Close() error {
	d.closed++
	if d.panicky {
		panic("window already gone")
	}
	return d.closeErr
}

func expectColor(t *testing.T, f *Frame, row, col int, want color.RGBA) {
	t.Helper()
	if got := f.At(row, col); got != want {
		t.Errorf("pixel (row %d, col %d) = %v, want %v", row, col, got, want)
	}
}

func TestRenderOffscreenShape(t *testing.T) {
	r := New(0.6)
	defer r.Close()

	f, err := r.Render(dynamo.State{0, 0, math.Pi, 0}, Offscreen)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if f.Height != 600 || f.Width != 600 {
		t.Errorf("expected 600x600, got %dx%d", f.Height, f.Width)
	}
	if len(f.Pix) != 600*600*3 {
		t.Errorf("expected %d bytes, got %d", 600*600*3, len(f.Pix))
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := New(0.6)
	defer r.Close()

	state := dynamo.State{0.7, -1.2, 2.1, 3.3}
	a, err := r.Render(state, Offscreen)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, _ := r.Render(state, Offscreen)
	if !a.Equal(b) {
		t.Error("rendering the same state twice produced different frames")
	}

	other := New(0.6)
	c, _ := other.Render(state, Offscreen)
	if !a.Equal(c) {
		t.Error("two renderers produced different frames for the same state")
	}
}

func TestRenderDoesNotModifyState(t *testing.T) {
	r := New(0.6)
	state := dynamo.State{0.1, 0.2, 0.3, 0.4}
	if _, err := r.Render(state, Offscreen); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !state.Equal(dynamo.State{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("state modified by render: %v", state)
	}
}

func TestRenderScenePixels(t *testing.T) {
	r := New(0.6)

	f, err := r.Render(dynamo.State{0.5, 0, math.Pi, 0}, Offscreen)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	// cart body, 15 px left of and 5 px past the cart centre on the surface
	expectColor(t, f, FlipRow(305), 345, CartColor)
	// left wheel drawn over the cart corner
	expectColor(t, f, FlipRow(290), 340, InkColor)
	// ground line away from the cart
	expectColor(t, f, 314, 10, InkColor)
	expectColor(t, f, 313, 10, Background)
	expectColor(t, f, 315, 10, Background)
	// corners are background
	expectColor(t, f, 0, 0, Background)
	expectColor(t, f, 599, 599, Background)
}

func TestRenderAxle(t *testing.T) {
	r := New(0.6)
	f, err := r.Render(dynamo.State{0, 0, 0, 0}, Offscreen)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectColor(t, f, 299, 300, AxleColor)
}

func TestRenderPoleTip(t *testing.T) {
	tests := []struct {
		name     string
		x, theta float64
		col, row int
	}{
		{"upright", 0, 0, 300, 227},
		{"horizontal", 0, math.Pi / 2, 372, 299},
		{"hanging", 0, math.Pi, 300, 371},
	}

	r := New(0.6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Layout(tt.x, tt.theta, 0.6)
			col, row := g.TipPixel()
			if col != tt.col || row != tt.row {
				t.Fatalf("tip pixel = (%d, %d), want (%d, %d)", col, row, tt.col, tt.row)
			}

			f, err := r.Render(dynamo.State{tt.x, 0, tt.theta, 0}, Offscreen)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			expectColor(t, f, row, col, InkColor)
		})
	}
}

func TestRenderPoleBody(t *testing.T) {
	r := New(0.6)
	f, err := r.Render(dynamo.State{0, 0, 0, 0}, Offscreen)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	// halfway up the upright pole
	expectColor(t, f, FlipRow(336), 300, PoleColor)
}

func TestLayoutCartColumn(t *testing.T) {
	tests := []struct {
		x    float64
		want int
	}{
		{0, 300},
		{0.5, 360},
		{-1, 180},
		{2.4, 588},
	}
	for _, tt := range tests {
		if got := Layout(tt.x, 0, 0.6).CartColumn(); got != tt.want {
			t.Errorf("x=%f: cart column %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestLayoutGroundRow(t *testing.T) {
	if got := Layout(0, 0, 0.6).GroundRow(); got != 314 {
		t.Errorf("expected ground row 314, got %d", got)
	}
}

func TestRenderNoneMode(t *testing.T) {
	r := New(0.6)
	f, err := r.Render(dynamo.State{0, 0, 0, 0}, None)
	if err != nil || f != nil {
		t.Errorf("expected nil frame and error, got %v, %v", f, err)
	}
}

func TestRenderShortState(t *testing.T) {
	r := New(0.6)
	_, err := r.Render(dynamo.State{0, 0}, Offscreen)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRenderInteractiveNeedsDisplay(t *testing.T) {
	r := New(0.6)
	_, err := r.Render(dynamo.State{0, 0, 0, 0}, Interactive)
	if !errors.Is(err, ErrNoDisplay) {
		t.Errorf("expected ErrNoDisplay, got %v", err)
	}
}

func TestRenderInteractiveOpensDisplayOnce(t *testing.T) {
	d := &fakeDisplay{}
	opened := 0
	var gotFPS int
	r := New(0.6, WithFPS(60), WithDisplay(func(w, h, fps int) (Display, error) {
		opened++
		gotFPS = fps
		return d, nil
	}))

	for i := 0; i < 3; i++ {
		f, err := r.Render(dynamo.State{0, 0, 0, 0}, Interactive)
		if err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if f != nil {
			t.Error("interactive render should not return a frame")
		}
	}

	if opened != 1 {
		t.Errorf("expected display opened once, got %d", opened)
	}
	if gotFPS != 60 {
		t.Errorf("expected fps 60, got %d", gotFPS)
	}
	if d.shown != 3 {
		t.Errorf("expected 3 frames shown, got %d", d.shown)
	}

	r.Close()
	if d.closed != 1 {
		t.Errorf("expected display closed once, got %d", d.closed)
	}
}

func TestCloseIdempotent(t *testing.T) {
	t.Run("never rendered", func(t *testing.T) {
		r := New(0.6)
		if err := r.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
		if err := r.Close(); err != nil {
			t.Errorf("second close failed: %v", err)
		}
	})

	t.Run("teardown error swallowed", func(t *testing.T) {
		d := &fakeDisplay{closeErr: errors.New("already closed")}
		r := New(0.6, WithDisplay(func(w, h, fps int) (Display, error) { return d, nil }))
		if _, err := r.Render(dynamo.State{0, 0, 0, 0}, Interactive); err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if err := r.Close(); err != nil {
			t.Errorf("close should swallow teardown errors, got %v", err)
		}
		if err := r.Close(); err != nil {
			t.Errorf("second close failed: %v", err)
		}
		if d.closed != 1 {
			t.Errorf("expected one teardown, got %d", d.closed)
		}
	})

	t.Run("teardown panic swallowed", func(t *testing.T) {
		d := &fakeDisplay{panicky: true}
		r := New(0.6, WithDisplay(func(w, h, fps int) (Display, error) { return d, nil }))
		r.Render(dynamo.State{0, 0, 0, 0}, Interactive)
		if err := r.Close(); err != nil {
			t.Errorf("close should swallow teardown panics, got %v", err)
		}
	})

	t.Run("render after close reopens", func(t *testing.T) {
		opened := 0
		r := New(0.6, WithDisplay(func(w, h, fps int) (Display, error) {
			opened++
			return &fakeDisplay{}, nil
		}))
		r.Render(dynamo.State{0, 0, 0, 0}, Interactive)
		r.Close()
		r.Render(dynamo.State{0, 0, 0, 0}, Interactive)
		if opened != 2 {
			t.Errorf("expected display reopened, got %d opens", opened)
		}
		r.Close()
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"human", Interactive, false},
		{"interactive", Interactive, false},
		{"rgb_array", Offscreen, false},
		{"Offscreen", Offscreen, false},
		{"ansi", None, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFrameImage(t *testing.T) {
	f := NewFrame(2, 3)
	f.Pix[3*3+1] = 200 // row 1, col 0, green

	img := f.Image()
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{0, 200, 0, 255}) {
		t.Errorf("unexpected pixel %v", got)
	}
}
