package render

import (
	"image"
	"image/color"
)

// Frame is an RGB pixel buffer, row-major, three bytes per pixel.
type Frame struct {
	Height int
	Width  int
	Pix    []uint8
}

func NewFrame(height, width int) *Frame {
	return &Frame{
		Height: height,
		Width:  width,
		Pix:    make([]uint8, height*width*3),
	}
}

// flippedFrame copies src into a frame with rows reversed.
func flippedFrame(src *image.RGBA) *Frame {
	b := src.Bounds()
	f := NewFrame(b.Dy(), b.Dx())
	for row := 0; row < f.Height; row++ {
		srcRow := src.Pix[(f.Height-1-row)*src.Stride:]
		dst := f.Pix[row*f.Width*3:]
		for col := 0; col < f.Width; col++ {
			dst[col*3] = srcRow[col*4]
			dst[col*3+1] = srcRow[col*4+1]
			dst[col*3+2] = srcRow[col*4+2]
		}
	}
	return f
}

func (f *Frame) At(row, col int) color.RGBA {
	i := (row*f.Width + col) * 3
	return color.RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], 255}
}

// Image converts the frame to an opaque RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// Equal reports whether two frames hold identical pixels.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || f.Height != other.Height || f.Width != other.Width {
		return false
	}
	for i := range f.Pix {
		if f.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}
