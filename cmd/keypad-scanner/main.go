// Command keypad-scanner polls a 4x3 matrix keypad on GPIO and logs key presses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/keypad-scanner/internal/gpio"
	"github.com/sweeney/keypad-scanner/internal/keypad"
	"github.com/sweeney/keypad-scanner/internal/status"
)

type config struct {
	backend     string
	chip        string
	pins        gpio.Pins
	interval    time.Duration
	settle      time.Duration
	releasePoll time.Duration
	scanOnce    bool
}

func main() {
	backend := flag.String("backend", "gpiocdev", "GPIO backend: gpiocdev, periph or rpio")
	chip := flag.String("chip", "gpiochip0", "GPIO chip name (gpiocdev backend)")
	rows := flag.String("rows", joinLines(gpio.DefaultPins.Rows[:]), "Comma-separated row line numbers, row 0 first")
	cols := flag.String("cols", joinLines(gpio.DefaultPins.Cols[:]), "Comma-separated column line numbers, column 0 first")
	interval := flag.Duration("interval", 50*time.Millisecond, "Delay between scan passes")
	settle := flag.Duration("settle", keypad.DefaultSettle, "Settle delay after selecting a row")
	releasePoll := flag.Duration("release-poll", keypad.DefaultReleasePoll, "Polling interval while waiting for key release")
	scanOnce := flag.Bool("scan-once", false, "Scan one pass, print the key and exit")

	flag.Parse()

	pins, err := parsePins(*rows, *cols)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	cfg := config{
		backend:     *backend,
		chip:        *chip,
		pins:        pins,
		interval:    *interval,
		settle:      *settle,
		releasePoll: *releasePoll,
		scanOnce:    *scanOnce,
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Pin configuration failures are fatal.
	bus, err := openBus(cfg.backend, cfg.chip, cfg.pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Printf("gpio close error: %v", err)
		}
	}()

	scanner := keypad.New(bus, cfg.pins,
		keypad.WithSettle(cfg.settle),
		keypad.WithReleasePoll(cfg.releasePoll),
	)

	// Scan once mode
	if cfg.scanOnce {
		key, err := scanner.Scan(context.Background())
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Printf("Key: %s\n", key)
		return nil
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:       cfg.backend,
		IntervalMs:    cfg.interval.Milliseconds(),
		SettleMs:      cfg.settle.Milliseconds(),
		ReleasePollMs: cfg.releasePoll.Milliseconds(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("started: %s rows=%v cols=%v", tracker.Snapshot().Config, cfg.pins.Rows, cfg.pins.Cols)

	err = runLoop(ctx, scanner, tracker, cfg.interval, time.Now, keypad.Sleep)
	log.Printf("stopped: %s", tracker.Snapshot().Summary())
	return err
}

// keyScanner is the part of keypad.Scanner the loop needs.
type keyScanner interface {
	Scan(ctx context.Context) (keypad.Key, error)
}

// runLoop scans, logs any decoded key, then sleeps interval, until ctx is cancelled.
// Scan errors are logged and the loop continues; a key returned with an error
// is still logged.
func runLoop(ctx context.Context, scanner keyScanner, tracker *status.Tracker, interval time.Duration, now func() time.Time, sleep keypad.SleepFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		key, err := scanner.Scan(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Printf("scan error: %v", err)
			tracker.RecordError()
		}
		// A key can arrive together with an error from restoring the rows.
		if err == nil || key != keypad.NoKey {
			tracker.RecordScan(key, now())
		}
		if key != keypad.NoKey {
			log.Printf("Key Pressed: %c", key)
		}

		if err := sleep(ctx, interval); err != nil {
			return nil
		}
	}
}

func openBus(backend, chip string, pins gpio.Pins) (gpio.Bus, error) {
	// Each case returns a nil interface on error, never a typed nil pointer.
	switch backend {
	case "gpiocdev":
		b, err := gpio.NewChipBus(chip, pins)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "periph":
		b, err := gpio.NewPeriphBus(pins)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "rpio":
		b, err := gpio.NewRPIOBus(pins)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want gpiocdev, periph or rpio)", backend)
	}
}

// parsePins builds and validates a pin assignment from the -rows and -cols flags.
func parsePins(rows, cols string) (gpio.Pins, error) {
	var pins gpio.Pins

	r, err := parseLines(rows, gpio.Rows)
	if err != nil {
		return pins, fmt.Errorf("rows: %w", err)
	}
	c, err := parseLines(cols, gpio.Cols)
	if err != nil {
		return pins, fmt.Errorf("cols: %w", err)
	}
	copy(pins.Rows[:], r)
	copy(pins.Cols[:], c)

	if err := pins.Validate(); err != nil {
		return pins, err
	}
	return pins, nil
}

func parseLines(s string, want int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d line numbers, got %d", want, len(fields))
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func joinLines(pins []int) string {
	s := make([]string, len(pins))
	for i, p := range pins {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ",")
}
