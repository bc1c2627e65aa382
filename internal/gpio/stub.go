//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ChipBus is not available on non-Linux platforms.
type ChipBus struct{}

// NewChipBus returns an error on non-Linux platforms.
func NewChipBus(chipName string, pins Pins) (*ChipBus, error) {
	return nil, &ConfigError{Pin: NoPin, Op: "open chip " + chipName, Err: errUnsupported}
}

// Write is not implemented on non-Linux platforms.
func (b *ChipBus) Write(pin int, level Level) error { return errUnsupported }

// Read is not implemented on non-Linux platforms.
func (b *ChipBus) Read(pin int) (Level, error) { return High, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *ChipBus) Close() error { return nil }

// RPIOBus is not available on non-Linux platforms.
type RPIOBus struct{}

// NewRPIOBus returns an error on non-Linux platforms.
func NewRPIOBus(pins Pins) (*RPIOBus, error) {
	return nil, &ConfigError{Pin: NoPin, Op: "map gpio registers", Err: errUnsupported}
}

// Write is not implemented on non-Linux platforms.
func (b *RPIOBus) Write(pin int, level Level) error { return errUnsupported }

// Read is not implemented on non-Linux platforms.
func (b *RPIOBus) Read(pin int) (Level, error) { return High, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *RPIOBus) Close() error { return nil }
