// Package status provides a thread-safe scan statistics tracker for the
// keypad-scanner daemon. It is written by the polling loop and read for the
// startup and shutdown log lines.
package status

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sweeney/keypad-scanner/internal/keypad"
)

// Config contains daemon configuration for display.
type Config struct {
	Backend       string
	IntervalMs    int64
	SettleMs      int64
	ReleasePollMs int64
}

func (c Config) String() string {
	return fmt.Sprintf("backend=%s interval=%dms settle=%dms release-poll=%dms",
		c.Backend, c.IntervalMs, c.SettleMs, c.ReleasePollMs)
}

// Snapshot is a point-in-time view of scan statistics.
// It is a value type; Presses is a private copy.
type Snapshot struct {
	Scans     int
	Errors    int
	Presses   map[keypad.Key]int
	LastKey   keypad.Key
	LastKeyAt time.Time
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Total returns the number of decoded key presses.
func (s Snapshot) Total() int {
	n := 0
	for _, c := range s.Presses {
		n += c
	}
	return n
}

// Summary formats the snapshot as a single log line.
func (s Snapshot) Summary() string {
	keys := make([]keypad.Key, 0, len(s.Presses))
	for k := range s.Presses {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%c=%d", k, s.Presses[k])
	}

	return fmt.Sprintf("uptime=%v scans=%d errors=%d keys=%d [%s] last=%s",
		s.Uptime().Truncate(time.Second), s.Scans, s.Errors, s.Total(), strings.Join(parts, " "), s.LastKey)
}

// Tracker holds mutable scan statistics behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Presses:   make(map[keypad.Key]int),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordScan counts a completed scan pass. NoKey passes only bump Scans.
func (t *Tracker) RecordScan(key keypad.Key, at time.Time) {
	t.mu.Lock()
	t.snap.Scans++
	if key != keypad.NoKey {
		t.snap.Presses[key]++
		t.snap.LastKey = key
		t.snap.LastKeyAt = at
	}
	t.mu.Unlock()
}

// RecordError counts a failed scan pass.
func (t *Tracker) RecordError() {
	t.mu.Lock()
	t.snap.Errors++
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the statistics.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Presses = make(map[keypad.Key]int, len(t.snap.Presses))
	for k, v := range t.snap.Presses {
		s.Presses[k] = v
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
