package engine

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tartampluch/go-last-sunday/internal/config"
)

// ErrInvalidSettings wraps every validation failure returned by Settings.Validate.
var ErrInvalidSettings = errors.New(config.ErrSettingsInvalid)

// Settings is the user's profile: who they are, when they were born and how
// many years the calendar should span. It is a value; editing produces a new
// Settings that is handed to the Planner again.
type Settings struct {
	Name string

	// BirthDate is a calendar date at midnight in the local zone.
	BirthDate time.Time

	// LifeExpectancy is the number of years after the birth year covered by the grid.
	LifeExpectancy int

	// InspirationLink is shown below the grid. Empty means the default link.
	InspirationLink string
}

// DefaultSettings returns the profile used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		Name:            config.DefaultName,
		BirthDate:       time.Date(config.DefaultBirthYear, config.DefaultBirthMonth, config.DefaultBirthDay, 0, 0, 0, 0, time.Local),
		LifeExpectancy:  config.DefaultLifeExpectancy,
		InspirationLink: config.DefaultInspirationLink,
	}
}

// EndYear is the last calendar year of the grid (inclusive).
func (s Settings) EndYear() int {
	return s.BirthDate.Year() + s.LifeExpectancy
}

// Normalize trims the text fields, drops the time of day from BirthDate and
// fills an empty inspiration link with the default one.
func (s Settings) Normalize() Settings {
	s.Name = strings.TrimSpace(s.Name)
	s.InspirationLink = strings.TrimSpace(s.InspirationLink)
	if s.InspirationLink == "" {
		s.InspirationLink = config.DefaultInspirationLink
	}
	if !s.BirthDate.IsZero() {
		s.BirthDate = Midnight(s.BirthDate)
	}
	return s
}

// Validate checks the profile against now. It is the only place a bad
// life expectancy can be rejected; the week computations accept any input.
func (s Settings) Validate(now time.Time) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrNameEmpty)
	}
	if s.BirthDate.IsZero() {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrBirthMissing)
	}
	if Midnight(s.BirthDate).After(Midnight(now)) {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrBirthFuture)
	}
	if s.LifeExpectancy <= 0 || s.LifeExpectancy > config.MaxLifeExpectancy {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrLifeExpRange)
	}
	if link := strings.TrimSpace(s.InspirationLink); link != "" {
		u, err := url.Parse(link)
		if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS) {
			return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrLinkInvalid)
		}
	}
	return nil
}

// ParseBirthDate reads a birth date written as YYYY-MM-DD, YYYYMMDD or an
// RFC 3339 timestamp. Timestamps are converted to loc before the day is taken,
// which is how the web version's ISO strings were meant to be read back.
func ParseBirthDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)

	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.ParseInLocation(f, value, loc); err == nil {
			return t, nil
		}
	}

	for _, f := range []string{config.DateFormatRFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(f, value); err == nil {
			return Midnight(t.In(loc)), nil
		}
	}

	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}
