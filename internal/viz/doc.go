// Package viz is the terminal front-end for the swing-up environment.
//
// A Bubble Tea [Model] steps the environment on every tick and draws the
// cart and pole on a braille [Canvas], next to a panel with the state,
// the reward history and the recent actions.
//
// # Key Bindings
//
//	←/→   - Push the cart left/right
//	Space - Coast (zero action)
//	R     - Reset to the hanging rest state
//	P     - Pause/Resume
//	C     - Toggle the attached controller
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	Q     - Quit
package viz
