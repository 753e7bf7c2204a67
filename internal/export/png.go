package export

import (
	"image/png"
	"io"
	"os"

	"github.com/san-kum/swingup/internal/render"
)

func WritePNG(w io.Writer, frame *render.Frame) error {
	return png.Encode(w, frame.Image())
}

func SavePNG(path string, frame *render.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WritePNG(f, frame)
}
