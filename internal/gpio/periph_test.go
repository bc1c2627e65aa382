package gpio

import (
	"errors"
	"fmt"
	"testing"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakePins hands out gpiotest pins for the given numbers and fails any other lookup.
func fakePins(nums ...int) (map[int]*gpiotest.Pin, func(int) (pgpio.PinIO, error)) {
	pins := make(map[int]*gpiotest.Pin, len(nums))
	for _, n := range nums {
		pins[n] = &gpiotest.Pin{N: fmt.Sprintf("GPIO%d", n), Num: n}
	}
	return pins, func(n int) (pgpio.PinIO, error) {
		p, ok := pins[n]
		if !ok {
			return nil, errors.New("no such pin")
		}
		return p, nil
	}
}

var testPins = Pins{Rows: [Rows]int{0, 1, 2, 3}, Cols: [Cols]int{4, 5, 6}}

func TestPeriphBusConfiguresLines(t *testing.T) {
	pins, find := fakePins(0, 1, 2, 3, 4, 5, 6)

	b, err := newPeriphBus(testPins, find)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, n := range testPins.Rows {
		if pins[n].L != pgpio.High {
			t.Errorf("row %d: expected HIGH, got %v", n, pins[n].L)
		}
	}
	for _, n := range testPins.Cols {
		if pins[n].P != pgpio.PullUp {
			t.Errorf("column %d: expected pull-up, got %v", n, pins[n].P)
		}
	}

	if err := b.Write(2, Low); err != nil {
		t.Fatalf("write: %v", err)
	}
	if pins[2].L != pgpio.Low {
		t.Errorf("row 2: expected LOW after write, got %v", pins[2].L)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if pins[2].P != pgpio.PullUp {
		t.Errorf("row 2: expected pull-up after close, got %v", pins[2].P)
	}
}

func TestPeriphBusBadColumnReleasesRows(t *testing.T) {
	// Column 6 is missing, so the lookup fails after every row is driven.
	pins, find := fakePins(0, 1, 2, 3, 4, 5)

	b, err := newPeriphBus(testPins, find)
	if b != nil {
		t.Error("expected no bus on failure")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Pin != 6 {
		t.Errorf("Pin: got %d, want 6", cfgErr.Pin)
	}

	for n, p := range pins {
		if p.P != pgpio.PullUp {
			t.Errorf("pin %d: expected pull-up input after failure, got %v", n, p.P)
		}
	}
}

func TestPeriphBusBadRowReleasesEarlierRows(t *testing.T) {
	pins, find := fakePins(0, 1)

	if _, err := newPeriphBus(testPins, find); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	for n, p := range pins {
		if p.P != pgpio.PullUp {
			t.Errorf("row %d: expected pull-up input after failure, got %v", n, p.P)
		}
	}
}
