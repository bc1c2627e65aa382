// Package gpio provides keypad line access with hardware abstraction.
// The real implementations use the Linux GPIO character device (gpiocdev),
// periph.io, or memory-mapped registers (go-rpio).
// The fake implementation models a key matrix for testing without hardware.
package gpio

import (
	"errors"
	"fmt"
)

// Matrix dimensions. The keypad is always 4 rows by 3 columns.
const (
	Rows = 4
	Cols = 3
)

// Level is the electrical level of a line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Bus drives row lines and samples column lines.
// Pins are addressed by their physical line number.
type Bus interface {
	// Write sets the level of an output (row) line.
	Write(pin int, level Level) error

	// Read returns the level of an input (column) line.
	// Columns are pulled up: an open contact reads High.
	Read(pin int) (Level, error)

	// Close releases GPIO resources.
	Close() error
}

// Pins maps logical row/column indices to physical line numbers.
type Pins struct {
	Rows [Rows]int
	Cols [Cols]int
}

// DefaultPins is the reference wiring.
var DefaultPins = Pins{
	Rows: [Rows]int{19, 18, 16, 4},
	Cols: [Cols]int{21, 32, 33},
}

// Validate rejects negative and duplicate line numbers.
func (p Pins) Validate() error {
	seen := make(map[int]bool, Rows+Cols)
	for _, pin := range p.all() {
		if pin < 0 {
			return &ConfigError{Pin: pin, Op: "validate", Err: errors.New("negative line number")}
		}
		if seen[pin] {
			return &ConfigError{Pin: pin, Op: "validate", Err: errors.New("line assigned twice")}
		}
		seen[pin] = true
	}
	return nil
}

func (p Pins) all() []int {
	out := make([]int, 0, Rows+Cols)
	out = append(out, p.Rows[:]...)
	return append(out, p.Cols[:]...)
}

// ErrConfig is matched by every configuration failure.
var ErrConfig = errors.New("gpio: configuration failed")

// NoPin marks a ConfigError that is not about a single line.
const NoPin = -1

// ConfigError reports a line that could not be configured.
// It is fatal at startup.
type ConfigError struct {
	Pin int
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Pin == NoPin {
		return fmt.Sprintf("gpio: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gpio: %s pin %d: %v", e.Op, e.Pin, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfig) true for any *ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
