package engine

import "time"

// AnchorWeekday is the weekday every week bucket is pinned to.
// The grid and the remaining counter both depend on it.
const AnchorWeekday = time.Sunday

const (
	daysPerWeek = 7
	secsPerDay  = 24 * 60 * 60
)

// TodayPolicy decides whether today counts as a remaining anchor when it
// falls on AnchorWeekday itself.
type TodayPolicy int

const (
	// ExcludeToday starts counting at the next anchor strictly after today.
	// On a Sunday this means the Sunday one week later.
	ExcludeToday TodayPolicy = iota

	// IncludeToday counts today when it is an anchor day, the way the first
	// browser version of the calendar did.
	IncludeToday
)

// Midnight returns the first instant of t's calendar day in t's location.
// That is 00:00 except where a DST change skips midnight, in which case the
// day starts at the end of the gap (01:00 in America/Santiago in September).
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return startOfDay(y, m, d, t.Location())
}

// EndDate returns December 31st of endYear, the last day of a lifespan.
func EndDate(endYear int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return startOfDay(endYear, time.December, 31, loc)
}

// WeeksInYear returns every AnchorWeekday of year, in order, each at the start
// of its day in loc (see Midnight).
// A nil loc means time.Local. The result always holds 52 or 53 dates and is a
// new slice on every call.
func WeeksInYear(year int, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}

	// Step on civil dates; local midnights can be skipped by DST.
	day := civilDate(year, time.January, 1)
	for day.Weekday() != AnchorWeekday {
		day = day.AddDate(0, 0, 1)
	}

	weeks := make([]time.Time, 0, 53)
	for day.Year() == year {
		weeks = append(weeks, startOfDay(day.Year(), day.Month(), day.Day(), loc))
		day = day.AddDate(0, 0, daysPerWeek)
	}
	return weeks
}

// NextAnchor returns the first anchor day on or after today, depending on policy.
// Only the calendar date of today is used.
func NextAnchor(today time.Time, policy TodayPolicy) time.Time {
	day := civilDate(today.Date())
	offset := (int(AnchorWeekday) - int(day.Weekday()) + daysPerWeek) % daysPerWeek
	if offset == 0 && policy == ExcludeToday {
		offset = daysPerWeek
	}
	day = day.AddDate(0, 0, offset)
	return startOfDay(day.Year(), day.Month(), day.Day(), today.Location())
}

// RemainingAnchors counts the Sundays left after now, up to and including
// December 31st of endYear. Today is never counted, even on a Sunday.
func RemainingAnchors(now time.Time, endYear int) int {
	return CountRemaining(now, endYear, ExcludeToday)
}

// CountRemaining is RemainingAnchors with an explicit TodayPolicy.
// It is closed form: the result equals stepping a week at a time from the
// first anchor until the end date is passed.
func CountRemaining(now time.Time, endYear int, policy TodayPolicy) int {
	today := Midnight(now)
	end := EndDate(endYear, now.Location())

	first := NextAnchor(today, policy)
	days := daysBetween(first, end)
	if days < 0 {
		return 0
	}
	return int(days/daysPerWeek) + 1
}

// IsPast reports whether date falls on a day before today.
func IsPast(date, today time.Time) bool {
	return Midnight(date).Before(Midnight(today))
}

// daysBetween counts calendar days from a to b, each read in its own zone.
func daysBetween(a, b time.Time) int64 {
	ua, ub := civilDate(a.Date()), civilDate(b.Date())
	return (ub.Unix() - ua.Unix()) / secsPerDay
}

// civilDate is y-m-d as a UTC midnight. UTC has no DST, so AddDate and
// Weekday on it are exact calendar arithmetic.
func civilDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfDay is the first instant of y-m-d in loc. When local midnight does
// not exist, time.Date falls back to the evening before; the zone period
// holding that instant ends exactly where the requested day begins.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if t.Day() != d {
		if _, end := t.ZoneBounds(); !end.IsZero() {
			return end
		}
	}
	return t
}
