package keypad

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/keypad-scanner/internal/gpio"
)

// Default timings.
const (
	DefaultSettle      = 5 * time.Millisecond
	DefaultReleasePoll = 10 * time.Millisecond
)

// SleepFunc suspends for d or until ctx is done, returning ctx.Err() in that case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-time SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Scanner strobes the keypad rows and decodes the first pressed key.
// It assumes it is the only writer of the row lines.
type Scanner struct {
	bus         gpio.Bus
	pins        gpio.Pins
	keymap      Keymap
	settle      time.Duration
	releasePoll time.Duration
	sleep       SleepFunc
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSettle sets the pause after selecting a row, before sampling columns.
func WithSettle(d time.Duration) Option {
	return func(s *Scanner) { s.settle = d }
}

// WithReleasePoll sets the interval between column reads while waiting for release.
func WithReleasePoll(d time.Duration) Option {
	return func(s *Scanner) { s.releasePoll = d }
}

// WithSleep replaces the real-time sleep.
func WithSleep(fn SleepFunc) Option {
	return func(s *Scanner) { s.sleep = fn }
}

// WithKeymap replaces the default keymap. A keymap containing NoKey is
// ignored, since a press on that contact would be indistinguishable from no press.
func WithKeymap(m Keymap) Option {
	return func(s *Scanner) {
		if m.Valid() {
			s.keymap = m
		}
	}
}

// New creates a Scanner over an already configured bus.
func New(bus gpio.Bus, pins gpio.Pins, opts ...Option) *Scanner {
	s := &Scanner{
		bus:         bus,
		pins:        pins,
		keymap:      DefaultKeymap,
		settle:      DefaultSettle,
		releasePoll: DefaultReleasePoll,
		sleep:       Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan makes one pass over the matrix, row 0 first and column 0 first within
// a row. The first closed contact wins: Scan waits for it to be released and
// returns its key without looking at later rows or columns.
// It returns NoKey if nothing is pressed. All rows are High when Scan returns.
//
// A contact held down blocks Scan until release or ctx cancellation.
// If a key was decoded but the rows could not be raised afterwards, Scan
// returns both the key and the error, so the press is not lost.
func (s *Scanner) Scan(ctx context.Context) (Key, error) {
	key, err := s.scan(ctx)
	if idleErr := s.idle(); idleErr != nil && err == nil {
		return key, idleErr
	}
	if err != nil {
		return NoKey, err
	}
	return key, nil
}

func (s *Scanner) scan(ctx context.Context) (Key, error) {
	for row := 0; row < gpio.Rows; row++ {
		if err := s.selectRow(row); err != nil {
			return NoKey, err
		}

		if err := s.sleep(ctx, s.settle); err != nil {
			return NoKey, err
		}

		for col := 0; col < gpio.Cols; col++ {
			level, err := s.readCol(col)
			if err != nil {
				return NoKey, err
			}
			if level == gpio.High {
				continue
			}

			if err := s.waitRelease(ctx, col); err != nil {
				return NoKey, err
			}
			return s.keymap.At(row, col), nil
		}
	}
	return NoKey, nil
}

// selectRow raises every other row before lowering the selected one,
// so two rows are never Low together.
func (s *Scanner) selectRow(row int) error {
	for i, pin := range s.pins.Rows {
		if i == row {
			continue
		}
		if err := s.bus.Write(pin, gpio.High); err != nil {
			return fmt.Errorf("raise row %d: %w", i, err)
		}
	}
	if err := s.bus.Write(s.pins.Rows[row], gpio.Low); err != nil {
		return fmt.Errorf("select row %d: %w", row, err)
	}
	return nil
}

func (s *Scanner) readCol(col int) (gpio.Level, error) {
	level, err := s.bus.Read(s.pins.Cols[col])
	if err != nil {
		return gpio.High, fmt.Errorf("read column %d: %w", col, err)
	}
	return level, nil
}

// waitRelease polls the column until it reads High. There is no retry cap and
// no minimum press duration, so a short noise pulse still registers as a key.
func (s *Scanner) waitRelease(ctx context.Context, col int) error {
	for {
		level, err := s.readCol(col)
		if err != nil {
			return err
		}
		if level == gpio.High {
			return nil
		}
		if err := s.sleep(ctx, s.releasePoll); err != nil {
			return err
		}
	}
}

func (s *Scanner) idle() error {
	for i, pin := range s.pins.Rows {
		if err := s.bus.Write(pin, gpio.High); err != nil {
			return fmt.Errorf("idle row %d: %w", i, err)
		}
	}
	return nil
}
