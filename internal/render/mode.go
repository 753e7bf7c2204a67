package render

import (
	"fmt"
	"strings"

	"github.com/san-kum/swingup/internal/dynamo"
)

type Mode int

const (
	None Mode = iota
	Interactive
	Offscreen
)

func (m Mode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case Offscreen:
		return "offscreen"
	default:
		return "none"
	}
}

// ParseMode accepts "interactive" / "human" and "offscreen" / "rgb_array".
// The empty string and "none" disable rendering.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "interactive", "human":
		return Interactive, nil
	case "offscreen", "rgb_array":
		return Offscreen, nil
	default:
		return None, fmt.Errorf("%w: unknown render mode %q", dynamo.ErrInvalidConfiguration, s)
	}
}
