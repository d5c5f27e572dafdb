package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-last-sunday/internal/config"
)

const maxCardFailures = 32

// ErrNoBirthday is returned when no card in the stream has a name and a
// birth date with a year.
var ErrNoBirthday = errors.New(config.ErrNoBirthday)

// CardSource says where to read the user's own contact card from.
type CardSource struct {
	Mode      string // config.ImportModeLocal or config.ImportModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// CardProfile is the part of a contact card the calendar cares about.
type CardProfile struct {
	Name      string
	BirthDate time.Time
}

// Apply copies the imported name and birth date onto s.
func (p CardProfile) Apply(s Settings) Settings {
	s.Name = p.Name
	s.BirthDate = p.BirthDate
	return s
}

// Importer reads a name and birth date out of a vCard file or URL.
type Importer struct {
	Fetcher CardFetcher
}

// Import opens src and returns the first usable card.
func (im *Importer) Import(ctx context.Context, src CardSource) (CardProfile, error) {
	reader, err := im.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return CardProfile{}, ctx.Err()
		}
		return CardProfile{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return CardProfile{}, err
	}

	profile, err := ParseCard(reader, time.Local)
	if err != nil {
		return CardProfile{}, err
	}

	slog.Info(config.MsgCardImported,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySource, src.Mode,
		config.LogKeyName, profile.Name,
		config.LogKeyDOB, profile.BirthDate.Format(config.DateFormatFullDash),
	)
	return profile, nil
}

func (im *Importer) open(ctx context.Context, src CardSource) (io.ReadCloser, error) {
	switch src.Mode {
	case config.ImportModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.ImportModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// ParseCard decodes r and returns the first card carrying both a name and a
// birth date with a known year. Malformed cards are skipped.
func ParseCard(r io.Reader, loc *time.Location) (CardProfile, error) {
	if loc == nil {
		loc = time.Local
	}
	decoder := vcard.NewDecoder(r)
	failures := 0

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			// A failing reader keeps returning the same error.
			if failures++; failures >= maxCardFailures {
				return CardProfile{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		failures = 0

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}
		birthDate, err := parseCardDate(bday.Value, loc)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		// FN (formatted) first, then the structured N.
		name := ""
		if fn := card.Get(config.VCardFN); fn != nil {
			name = strings.TrimSpace(fn.Value)
		}
		if name == "" {
			if n := card.Name(); n != nil {
				name = strings.TrimSpace(strings.Join(strings.Fields(n.GivenName+" "+n.FamilyName), " "))
			}
		}
		if name == "" {
			continue
		}

		return CardProfile{Name: name, BirthDate: birthDate}, nil
	}

	return CardProfile{}, ErrNoBirthday
}

// parseCardDate accepts the vCard BDAY forms that include a year. The date
// is taken as written, without zone conversion.
func parseCardDate(value string, loc *time.Location) (time.Time, error) {
	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}
