package reward

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/swingup/internal/dynamo"
)

func TestDefaultReward(t *testing.T) {
	f := New("default", 0.6, 0.25)

	tests := []struct {
		name     string
		x, theta float64
		want     float64
	}{
		{"upright centred", 0, 0, 1},
		{"hanging centred", 0, math.Pi, -1},
		{"horizontal", 0, math.Pi / 2, math.Cos(math.Pi / 2)},
		{"offset upright", 1, 0, math.Cos(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Compute(tt.x, tt.theta)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestPilcoReward(t *testing.T) {
	f := New("pilco", 0.6, 0.25)

	best, err := f.Compute(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best != 0 {
		t.Errorf("expected 0 at the target, got %f", best)
	}

	// hanging tip is 2l below the target: d² = 1.44
	hanging, _ := f.Compute(0, math.Pi)
	want := -(1 - math.Exp(-1.44/(2*0.0625)))
	if math.Abs(hanging-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, hanging)
	}
}

func TestRewardRanges(t *testing.T) {
	def := New("default", 0.6, 0.25)
	pil := New("pilco", 0.6, 0.25)

	for x := -3.0; x <= 3.0; x += 0.1 {
		for theta := -math.Pi; theta <= math.Pi; theta += 0.05 {
			r, _ := def.Compute(x, theta)
			if r < -1 || r > 1 {
				t.Fatalf("default reward %f out of [-1, 1] at x=%f theta=%f", r, x, theta)
			}
		}
	}

	// far from the target the pilco cost saturates to -1 in float64
	for x := -1.0; x <= 1.0; x += 0.1 {
		for theta := -math.Pi; theta <= math.Pi; theta += 0.05 {
			p, _ := pil.Compute(x, theta)
			if p <= -1 || p > 0 {
				t.Fatalf("pilco reward %f out of (-1, 0] at x=%f theta=%f", p, x, theta)
			}
		}
	}
}

func TestUnknownMode(t *testing.T) {
	f := New("sparse", 0.6, 0.25)
	_, err := f.Compute(0, 0)
	if !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestTip(t *testing.T) {
	x, y := Tip(0.5, math.Pi/2, 0.6)
	if math.Abs(x-1.1) > 1e-12 || math.Abs(y) > 1e-12 {
		t.Errorf("expected tip (1.1, 0), got (%f, %f)", x, y)
	}
}
