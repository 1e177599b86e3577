package story

import (
	"fmt"
	"sync"
)

// WeekGate holds the process-wide current submission week. It resyncs to the
// configured default on every read unless an admin override is active; the
// override is the only value that sticks across reads.
type WeekGate struct {
	mu            sync.RWMutex
	defaultNumber int

	overridden    bool
	overrideWeek  int
	overrideLabel string
}

func NewWeekGate(defaultNumber int) *WeekGate {
	return &WeekGate{defaultNumber: defaultNumber}
}

// Current returns the active week number and label.
func (g *WeekGate) Current() (number int, label string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.overridden {
		return g.overrideWeek, g.overrideLabel
	}
	return g.defaultNumber, DefaultWeekLabel(g.defaultNumber)
}

// Overridden reports whether an admin override is active.
func (g *WeekGate) Overridden() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.overridden
}

// Override pins the active week until Clear or process restart.
func (g *WeekGate) Override(number int, label string) {
	if label == "" {
		label = DefaultWeekLabel(number)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.overridden = true
	g.overrideWeek = number
	g.overrideLabel = label
}

// Clear drops the admin override; reads resync to the configured default.
func (g *WeekGate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.overridden = false
	g.overrideWeek = 0
	g.overrideLabel = ""
}

func DefaultWeekLabel(number int) string {
	return fmt.Sprintf("Week %d", number)
}
