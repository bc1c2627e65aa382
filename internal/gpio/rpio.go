//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// maxBCMPin is the highest GPIO the BCM283x register map covers.
const maxBCMPin = 53

// RPIOBus drives keypad lines through memory-mapped Raspberry Pi registers.
type RPIOBus struct {
	rows map[int]rpio.Pin
	cols map[int]rpio.Pin
}

// NewRPIOBus maps the GPIO registers and configures the lines.
// Only one RPIOBus may be open at a time.
func NewRPIOBus(pins Pins) (*RPIOBus, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}
	for _, pin := range pins.all() {
		if pin > maxBCMPin {
			return nil, &ConfigError{Pin: pin, Op: "validate", Err: errors.New("not a BCM GPIO")}
		}
	}

	if err := rpio.Open(); err != nil {
		return nil, &ConfigError{Pin: NoPin, Op: "map gpio registers", Err: err}
	}

	b := &RPIOBus{
		rows: make(map[int]rpio.Pin, Rows),
		cols: make(map[int]rpio.Pin, Cols),
	}

	for _, pin := range pins.Rows {
		p := rpio.Pin(pin)
		p.Detect(rpio.NoEdge)
		p.PullOff()
		p.Output()
		p.High()
		b.rows[pin] = p
	}

	for _, pin := range pins.Cols {
		p := rpio.Pin(pin)
		p.Detect(rpio.NoEdge)
		p.Input()
		p.PullUp()
		b.cols[pin] = p
	}

	return b, nil
}

// Write sets a row line level.
func (b *RPIOBus) Write(pin int, level Level) error {
	p, ok := b.rows[pin]
	if !ok {
		return fmt.Errorf("write pin %d: not a row", pin)
	}
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// Read returns a column line level.
func (b *RPIOBus) Read(pin int) (Level, error) {
	p, ok := b.cols[pin]
	if !ok {
		return High, fmt.Errorf("read pin %d: not a column", pin)
	}
	return Level(p.Read() == rpio.High), nil
}

// Close returns the rows to pulled-up inputs and unmaps the registers.
func (b *RPIOBus) Close() error {
	for _, p := range b.rows {
		p.Input()
		p.PullUp()
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("unmap gpio registers: %w", err)
	}
	return nil
}
