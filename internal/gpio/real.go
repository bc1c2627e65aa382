//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// ChipBus drives keypad lines through the Linux GPIO character device.
type ChipBus struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewChipBus requests the keypad lines on the named chip (e.g. "gpiochip0").
// Rows become outputs, bias disabled, initially High.
// Columns become inputs with pull-up. No line has edge detection.
func NewChipBus(chipName string, pins Pins) (*ChipBus, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, &ConfigError{Pin: NoPin, Op: "open chip " + chipName, Err: err}
	}

	b := &ChipBus{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line, Rows+Cols),
	}

	for _, pin := range pins.Rows {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(1), gpiocdev.WithBiasDisabled, gpiocdev.WithoutEdges)
		if err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "request row", Err: err}
		}
		b.lines[pin] = line
	}

	for _, pin := range pins.Cols {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithoutEdges)
		if err != nil {
			b.release()
			return nil, &ConfigError{Pin: pin, Op: "request column", Err: err}
		}
		b.lines[pin] = line
	}

	return b, nil
}

// Write sets a row line level.
func (b *ChipBus) Write(pin int, level Level) error {
	line, ok := b.lines[pin]
	if !ok {
		return fmt.Errorf("write pin %d: line not requested", pin)
	}
	v := 0
	if level == High {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Read returns a column line level.
func (b *ChipBus) Read(pin int) (Level, error) {
	line, ok := b.lines[pin]
	if !ok {
		return High, fmt.Errorf("read pin %d: line not requested", pin)
	}
	v, err := line.Value()
	if err != nil {
		return High, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return Level(v != 0), nil
}

// Close releases GPIO resources.
// Every line is reconfigured to input with pull-up before it is released,
// so no row is left driving the matrix.
func (b *ChipBus) Close() error {
	var errs []error
	for pin, line := range b.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
	}
	if err := b.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *ChipBus) release() error {
	var errs []error
	for pin, line := range b.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
		delete(b.lines, pin)
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}
	return errors.Join(errs...)
}
