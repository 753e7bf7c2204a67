// Package render draws the cart-pole scene.
//
// The scene is composed on a 600×600 surface in screen coordinates (y grows
// downward), with a fixed 5 m visible world width. The composed surface is
// flipped vertically once so that world "up" is up in the output.
//
//   - [Offscreen] returns a [Frame]: height × width × RGB bytes
//   - [Interactive] shows the image on a [Display] opened on first use
//
// A [Renderer] never touches simulation state; rendering the same state
// twice yields the same bytes.
//
//	r := render.New(0.6, render.WithFPS(50))
//	defer r.Close()
//	frame, err := r.Render(state, render.Offscreen)
package render
