package display

import rl "github.com/gen2brain/raylib-go/raylib"

// Keyboard reads the swing-up controls from the open window: Left and
// Right push the cart, anything else (Space included) applies no force,
// R resets and Q quits.
type Keyboard struct{}

func (Keyboard) Action() float64 {
	return ActionFromKeys(rl.IsKeyDown(rl.KeyLeft), rl.IsKeyDown(rl.KeyRight))
}

func (Keyboard) ResetPressed() bool {
	return rl.IsKeyPressed(rl.KeyR)
}

func (Keyboard) QuitPressed() bool {
	return rl.IsKeyPressed(rl.KeyQ)
}

// ActionFromKeys maps held arrow keys to an action. Left wins when both
// are held.
func ActionFromKeys(left, right bool) float64 {
	switch {
	case left:
		return -1
	case right:
		return 1
	default:
		return 0
	}
}
