package core

import "time"

const (
	// DefaultCheckInterval is how many rows pass between clock samples.
	DefaultCheckInterval = 100000

	// DefaultBudget is the wall-clock time a run may spend iterating rows.
	DefaultBudget = 15 * time.Minute
)

// TimeoutGuard stops iteration once the time budget is spent. The clock is
// only sampled every interval rows.
type TimeoutGuard struct {
	now      func() time.Time
	start    time.Time
	interval int64
	budget   time.Duration
}

// NewTimeoutGuard samples the start time from now.
func NewTimeoutGuard(now func() time.Time, interval int64, budget time.Duration) *TimeoutGuard {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &TimeoutGuard{
		now:      now,
		start:    now(),
		interval: interval,
		budget:   budget,
	}
}

// Expired reports whether iteration should stop after rows rows.
func (g *TimeoutGuard) Expired(rows int64) bool {
	if rows == 0 || rows%g.interval != 0 {
		return false
	}
	return g.now().Sub(g.start) > g.budget
}

// Elapsed returns the time since the guard started.
func (g *TimeoutGuard) Elapsed() time.Duration {
	return g.now().Sub(g.start)
}
