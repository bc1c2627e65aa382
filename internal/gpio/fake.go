package gpio

import "fmt"

// FakeBus is a test double that models a key matrix.
// A pressed contact pulls its column Low while its row is driven Low.
type FakeBus struct {
	pins Pins

	// levels holds the current output level of each row.
	levels [Rows]Level

	// contacts holds remaining Low reads per closed contact; -1 holds forever.
	contacts map[[2]int]int

	// Writes records every Write call in order.
	Writes []Write

	// Strobes counts how many times each row was driven Low.
	Strobes [Rows]int

	// Reads counts column reads made while each row was Low.
	Reads [Rows]int

	// MultipleRowsLow is set if more than one row was ever Low at once.
	MultipleRowsLow bool

	// ReadError, if set, will be returned by Read().
	ReadError error

	// WriteError, if set, will be returned by Write().
	WriteError error

	// WriteErrorAfter lets that many writes succeed before WriteError applies.
	WriteErrorAfter int

	// Closed tracks if Close was called.
	Closed bool
}

// Write is a single recorded row write.
type Write struct {
	Pin   int
	Level Level
}

// NewFakeBus creates a FakeBus with all rows idle High and no keys pressed.
func NewFakeBus(pins Pins) *FakeBus {
	f := &FakeBus{pins: pins, contacts: make(map[[2]int]int)}
	for i := range f.levels {
		f.levels[i] = High
	}
	return f
}

// Press closes the contact at (row, col) for the next lows column reads
// that observe it. A negative lows holds the key down indefinitely.
func (f *FakeBus) Press(row, col, lows int) {
	if lows == 0 {
		delete(f.contacts, [2]int{row, col})
		return
	}
	f.contacts[[2]int{row, col}] = lows
}

// Release opens the contact at (row, col).
func (f *FakeBus) Release(row, col int) {
	delete(f.contacts, [2]int{row, col})
}

// Pressed reports whether the contact at (row, col) is still closed.
func (f *FakeBus) Pressed(row, col int) bool {
	_, ok := f.contacts[[2]int{row, col}]
	return ok
}

// Level returns the current output level of a row.
func (f *FakeBus) Level(row int) Level {
	return f.levels[row]
}

// Write sets a row level and checks that at most one row is Low.
func (f *FakeBus) Write(pin int, level Level) error {
	if f.WriteError != nil && len(f.Writes) >= f.WriteErrorAfter {
		return f.WriteError
	}

	row := indexOf(f.pins.Rows[:], pin)
	if row < 0 {
		return fmt.Errorf("fake: pin %d is not a row", pin)
	}

	f.Writes = append(f.Writes, Write{Pin: pin, Level: level})
	f.levels[row] = level
	if level == Low {
		f.Strobes[row]++
	}

	low := 0
	for _, l := range f.levels {
		if l == Low {
			low++
		}
	}
	if low > 1 {
		f.MultipleRowsLow = true
	}
	return nil
}

// Read returns Low if any Low row has a closed contact on this column.
// Each Low read consumes one of the contact's remaining lows.
func (f *FakeBus) Read(pin int) (Level, error) {
	if f.ReadError != nil {
		return High, f.ReadError
	}

	col := indexOf(f.pins.Cols[:], pin)
	if col < 0 {
		return High, fmt.Errorf("fake: pin %d is not a column", pin)
	}

	level := High
	for row, l := range f.levels {
		if l != Low {
			continue
		}
		f.Reads[row]++
		key := [2]int{row, col}
		remaining, ok := f.contacts[key]
		if !ok {
			continue
		}
		level = Low
		switch {
		case remaining == 1:
			delete(f.contacts, key)
		case remaining > 1:
			f.contacts[key] = remaining - 1
		}
	}
	return level, nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.Closed = true
	return nil
}

func indexOf(pins []int, pin int) int {
	for i, p := range pins {
		if p == pin {
			return i
		}
	}
	return -1
}
