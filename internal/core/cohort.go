package core

import "strconv"

// DefaultMaxCohorts is the largest number of distinct cohort ids accepted.
const DefaultMaxCohorts = 7

// CohortSequenceTracker checks the cohort column. Each new cohort id must
// be 0 first, then exactly one more than the previous new id, and the number
// of distinct ids may not exceed the configured maximum.
//
// Failures are deferred: the first one is kept and later rows are still
// scanned so the row count covers the whole file.
type CohortSequenceTracker struct {
	max     int
	last    int64
	seen    map[int64]struct{}
	failure *Failure
}

// NewCohortSequenceTracker returns a tracker allowing up to max distinct ids.
func NewCohortSequenceTracker(max int) *CohortSequenceTracker {
	if max <= 0 {
		max = DefaultMaxCohorts
	}
	return &CohortSequenceTracker{
		max:  max,
		last: -1,
		seen: make(map[int64]struct{}),
	}
}

// Observe records one cohort cell. Empty cells are ignored.
func (t *CohortSequenceTracker) Observe(value string) {
	if value == "" {
		return
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		t.fail(MsgCohortFormat)
		return
	}
	if _, ok := t.seen[id]; ok {
		return
	}

	if id != t.last+1 {
		t.fail(MsgCohortFormat)
	}
	t.seen[id] = struct{}{}
	t.last = id

	if len(t.seen) > t.max {
		t.fail(MsgCohortCount)
	}
}

func (t *CohortSequenceTracker) fail(msg string) {
	if t.failure == nil {
		t.failure = structural(msg)
	}
}

// Distinct returns how many distinct cohort ids were seen.
func (t *CohortSequenceTracker) Distinct() int {
	return len(t.seen)
}

// Failure returns the first deferred failure, or nil.
func (t *CohortSequenceTracker) Failure() *Failure {
	return t.failure
}
