package model

import "fmt"

// ParamCodeChance is the read-only scalar holding the promo drop probability.
const ParamCodeChance = "codeChance"

// Button identifies one of the tracked press counters.
type Button string

const (
	Button50 Button = "50"
	Button80 Button = "80"
)

// Buttons lists every tracked button in display order.
var Buttons = []Button{Button50, Button80}

// CounterName returns the key the button's presses are stored under.
func (b Button) CounterName() (string, error) {
	switch b {
	case Button50:
		return "level50Presses", nil
	case Button80:
		return "level80Presses", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownButton, string(b))
	}
}
