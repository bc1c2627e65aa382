// Package keypad decodes a 4x3 matrix keypad by strobing rows and sampling columns.
// All GPIO access goes through gpio.Bus and all waiting through a SleepFunc,
// so the scan can run against a fake matrix on a fake clock.
package keypad

import "github.com/sweeney/keypad-scanner/internal/gpio"

// Key is a decoded keypad character.
type Key byte

// NoKey is returned when no key is pressed. It never appears in a Keymap.
const NoKey Key = 0

func (k Key) String() string {
	if k == NoKey {
		return "none"
	}
	return string(rune(k))
}

// Keymap maps (row, column) to a key.
type Keymap [gpio.Rows][gpio.Cols]Key

// DefaultKeymap is the standard telephone layout.
var DefaultKeymap = Keymap{
	{'1', '2', '3'},
	{'4', '5', '6'},
	{'7', '8', '9'},
	{'*', '0', '#'},
}

// At returns the key at (row, col), or NoKey outside the matrix.
func (m Keymap) At(row, col int) Key {
	if row < 0 || row >= gpio.Rows || col < 0 || col >= gpio.Cols {
		return NoKey
	}
	return m[row][col]
}

// Valid reports whether every entry is a real key, i.e. none is NoKey.
func (m Keymap) Valid() bool {
	for _, row := range m {
		for _, key := range row {
			if key == NoKey {
				return false
			}
		}
	}
	return true
}

// Contains reports whether k is one of the keymap's keys.
func (m Keymap) Contains(k Key) bool {
	if k == NoKey {
		return false
	}
	for _, row := range m {
		for _, key := range row {
			if key == k {
				return true
			}
		}
	}
	return false
}
