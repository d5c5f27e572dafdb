package engine

import "time"

// Clock abstracts time.Now() so "today" can be pinned in tests.
// The Planner and FeedBuilder read it once per run; the week computations
// themselves take the instant as a parameter and never read a clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the host's local time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
