package gpio

import (
	"errors"
	"testing"
)

func TestFakeBusIdleHigh(t *testing.T) {
	f := NewFakeBus(DefaultPins)

	for row := 0; row < Rows; row++ {
		if f.Level(row) != High {
			t.Errorf("row %d: expected HIGH initially, got %v", row, f.Level(row))
		}
	}

	// No row is Low, so a pressed key is invisible.
	f.Press(0, 0, -1)
	level, err := f.Read(DefaultPins.Cols[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != High {
		t.Errorf("expected HIGH with no row selected, got %v", level)
	}
}

func TestFakeBusPressConsumesLows(t *testing.T) {
	f := NewFakeBus(DefaultPins)
	f.Press(2, 1, 2)

	if err := f.Write(DefaultPins.Rows[2], Low); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Level{Low, Low, High, High}
	for i, w := range want {
		got, err := f.Read(DefaultPins.Cols[1])
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %v, got %v", i, w, got)
		}
	}

	if f.Pressed(2, 1) {
		t.Error("contact should be open after its lows are consumed")
	}
	if f.Reads[2] != 4 {
		t.Errorf("expected 4 reads on row 2, got %d", f.Reads[2])
	}
}

func TestFakeBusOtherColumnUnaffected(t *testing.T) {
	f := NewFakeBus(DefaultPins)
	f.Press(1, 0, -1)
	f.Write(DefaultPins.Rows[1], Low)

	level, _ := f.Read(DefaultPins.Cols[2])
	if level != High {
		t.Errorf("column 2: expected HIGH, got %v", level)
	}
	level, _ = f.Read(DefaultPins.Cols[0])
	if level != Low {
		t.Errorf("column 0: expected LOW, got %v", level)
	}
}

func TestFakeBusHeldKey(t *testing.T) {
	f := NewFakeBus(DefaultPins)
	f.Press(3, 2, -1)
	f.Write(DefaultPins.Rows[3], Low)

	for i := 0; i < 100; i++ {
		level, _ := f.Read(DefaultPins.Cols[2])
		if level != Low {
			t.Fatalf("read %d: held key should read LOW", i)
		}
	}

	f.Release(3, 2)
	level, _ := f.Read(DefaultPins.Cols[2])
	if level != High {
		t.Errorf("expected HIGH after release, got %v", level)
	}
}

func TestFakeBusMultipleRowsLow(t *testing.T) {
	f := NewFakeBus(DefaultPins)

	f.Write(DefaultPins.Rows[0], Low)
	if f.MultipleRowsLow {
		t.Fatal("one Low row should not trip the check")
	}

	f.Write(DefaultPins.Rows[1], Low)
	if !f.MultipleRowsLow {
		t.Error("expected MultipleRowsLow after two rows driven Low")
	}
	if f.Strobes[0] != 1 || f.Strobes[1] != 1 {
		t.Errorf("unexpected strobes: %v", f.Strobes)
	}
}

func TestFakeBusUnknownPins(t *testing.T) {
	f := NewFakeBus(DefaultPins)

	if err := f.Write(DefaultPins.Cols[0], Low); err == nil {
		t.Error("expected error writing a column pin")
	}
	if _, err := f.Read(DefaultPins.Rows[0]); err == nil {
		t.Error("expected error reading a row pin")
	}
	if len(f.Writes) != 0 {
		t.Errorf("failed writes should not be recorded, got %d", len(f.Writes))
	}
}

func TestFakeBusErrors(t *testing.T) {
	f := NewFakeBus(DefaultPins)
	f.ReadError = errors.New("simulated read error")
	f.WriteError = errors.New("simulated write error")

	if _, err := f.Read(DefaultPins.Cols[0]); err == nil || err.Error() != "simulated read error" {
		t.Errorf("unexpected read error: %v", err)
	}
	if err := f.Write(DefaultPins.Rows[0], Low); err == nil || err.Error() != "simulated write error" {
		t.Errorf("unexpected write error: %v", err)
	}
}

func TestFakeBusWriteErrorAfter(t *testing.T) {
	f := NewFakeBus(DefaultPins)
	f.WriteError = errors.New("simulated write error")
	f.WriteErrorAfter = 2

	for i := 0; i < 2; i++ {
		if err := f.Write(DefaultPins.Rows[i], Low); err != nil {
			t.Fatalf("write %d: unexpected error: %v", i, err)
		}
	}
	if err := f.Write(DefaultPins.Rows[0], High); err == nil {
		t.Error("expected third write to fail")
	}
	if len(f.Writes) != 2 {
		t.Errorf("expected 2 recorded writes, got %d", len(f.Writes))
	}
}

func TestFakeBusClose(t *testing.T) {
	f := NewFakeBus(DefaultPins)

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
