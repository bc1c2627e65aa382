package gpio

import (
	"errors"
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphBus drives keypad lines through periph.io.
// Lines are looked up by their BCM name ("GPIO<n>").
type PeriphBus struct {
	pins map[int]pgpio.PinIO
}

// NewPeriphBus initialises the periph host drivers and configures the lines.
func NewPeriphBus(pins Pins) (*PeriphBus, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	// host.Init can safely be called multiple times.
	if _, err := host.Init(); err != nil {
		return nil, &ConfigError{Pin: NoPin, Op: "init periph host", Err: err}
	}

	return newPeriphBus(pins, lookup)
}

// newPeriphBus configures the lines returned by find. Lines already
// configured are returned to pulled-up inputs if a later one fails.
func newPeriphBus(pins Pins, find func(int) (pgpio.PinIO, error)) (*PeriphBus, error) {
	b := &PeriphBus{pins: make(map[int]pgpio.PinIO, Rows+Cols)}

	for _, pin := range pins.Rows {
		p, err := find(pin)
		if err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "lookup row", Err: err}
		}
		b.pins[pin] = p
		if err := p.Out(pgpio.High); err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "configure row", Err: err}
		}
	}

	for _, pin := range pins.Cols {
		p, err := find(pin)
		if err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "lookup column", Err: err}
		}
		b.pins[pin] = p
		if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "configure column", Err: err}
		}
	}

	return b, nil
}

func lookup(pin int) (pgpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, errors.New("no such pin")
	}
	return p, nil
}

// Write sets a row line level.
func (b *PeriphBus) Write(pin int, level Level) error {
	p, ok := b.pins[pin]
	if !ok {
		return fmt.Errorf("write pin %d: not configured", pin)
	}
	l := pgpio.Low
	if level == High {
		l = pgpio.High
	}
	if err := p.Out(l); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Read returns a column line level.
func (b *PeriphBus) Read(pin int) (Level, error) {
	p, ok := b.pins[pin]
	if !ok {
		return High, fmt.Errorf("read pin %d: not configured", pin)
	}
	return Level(p.Read() == pgpio.High), nil
}

// Close returns every line to a pulled-up input and halts it.
func (b *PeriphBus) Close() error {
	return b.release()
}

func (b *PeriphBus) release() error {
	var errs []error
	for pin, p := range b.pins {
		if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt pin %d: %w", pin, err))
		}
	}
	b.pins = nil
	return errors.Join(errs...)
}
