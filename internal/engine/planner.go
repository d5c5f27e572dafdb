package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-last-sunday/internal/config"
)

// Week is one box of the grid.
type Week struct {
	// Date is the Sunday the week is anchored on.
	Date time.Time

	// Past is true when Date is before today.
	Past bool
}

// YearColumn groups the weeks of one calendar year.
type YearColumn struct {
	Year  int
	Weeks []Week
}

// Snapshot is everything a renderer needs for one frame: the grid, the
// counter and the profile fields shown around them.
type Snapshot struct {
	Name            string
	InspirationLink string
	BirthDate       time.Time
	EndYear         int

	// Today is the planning instant at midnight.
	Today time.Time

	// Remaining is the number of Sundays strictly after Today up to the end of EndYear.
	Remaining int

	Years []YearColumn
}

// Lived returns how many week boxes are in the past.
func (s Snapshot) Lived() int {
	n := 0
	for _, y := range s.Years {
		for _, w := range y.Weeks {
			if w.Past {
				n++
			}
		}
	}
	return n
}

// Total returns the number of week boxes in the grid.
func (s Snapshot) Total() int {
	n := 0
	for _, y := range s.Years {
		n += len(y.Weeks)
	}
	return n
}

// Planner turns Settings into a Snapshot using Clock for "today".
type Planner struct {
	Clock Clock
}

// Plan computes the full grid from the birth year to the end year, plus the
// remaining counter. Settings are used as given; validate them beforehand.
func (p *Planner) Plan(s Settings) Snapshot {
	start := time.Now()

	now := p.Clock.Now()
	today := Midnight(now)
	loc := now.Location()
	endYear := s.EndYear()

	snap := Snapshot{
		Name:            s.Name,
		InspirationLink: s.InspirationLink,
		BirthDate:       s.BirthDate,
		EndYear:         endYear,
		Today:           today,
		Remaining:       RemainingAnchors(now, endYear),
	}

	firstYear := s.BirthDate.Year()
	if endYear >= firstYear {
		snap.Years = make([]YearColumn, 0, endYear-firstYear+1)
	}
	for year := firstYear; year <= endYear; year++ {
		sundays := WeeksInYear(year, loc)
		col := YearColumn{Year: year, Weeks: make([]Week, len(sundays))}
		for i, d := range sundays {
			col.Weeks[i] = Week{Date: d, Past: IsPast(d, today)}
		}
		snap.Years = append(snap.Years, col)
	}

	slog.Debug(config.MsgPlanReady,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyYears, len(snap.Years)),
			slog.Int(config.LogKeyRemaining, snap.Remaining),
			slog.Int(config.LogKeyLived, snap.Lived()),
			slog.Int(config.LogKeyTotal, snap.Total()),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return snap
}
