package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
)

// Preferences is the subset of fyne.Preferences the store needs.
type Preferences interface {
	String(key string) string
	SetString(key, value string)
}

// record is the persisted shape of engine.Settings.
type record struct {
	Name            string `json:"name"`
	BirthDate       string `json:"birthDate"`
	LifeExpectancy  int    `json:"lifeExpectancy"`
	InspirationLink string `json:"inspirationLink,omitempty"`
}

// Store persists Settings as a single JSON record under config.PrefSettings.
type Store struct {
	prefs Preferences
	clock engine.Clock
}

// New creates a Store. A nil clock means the wall clock.
func New(prefs Preferences, clock engine.Clock) *Store {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &Store{prefs: prefs, clock: clock}
}

// Load returns the saved settings, or the defaults when nothing usable is stored.
// It never fails: a bad record is logged and replaced by the defaults.
func (s *Store) Load() engine.Settings {
	raw := s.prefs.String(config.PrefSettings)
	if raw == "" {
		return engine.DefaultSettings()
	}

	settings, err := decode(raw, s.clock.Now().Location())
	if err == nil {
		err = settings.Validate(s.clock.Now())
	}
	if err != nil {
		slog.Warn(config.MsgSettingsReset,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
		return engine.DefaultSettings()
	}

	slog.Debug(config.MsgSettingsLoaded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyName, settings.Name,
		config.LogKeyEndYear, settings.EndYear(),
	)
	return settings
}

// Save validates and persists settings. Nothing is written when validation fails.
func (s *Store) Save(settings engine.Settings) error {
	settings = settings.Normalize()
	if err := settings.Validate(s.clock.Now()); err != nil {
		return err
	}

	data, err := json.Marshal(record{
		Name:            settings.Name,
		BirthDate:       settings.BirthDate.Format(config.DateFormatFullDash),
		LifeExpectancy:  settings.LifeExpectancy,
		InspirationLink: settings.InspirationLink,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsEncode, err)
	}

	s.prefs.SetString(config.PrefSettings, string(data))

	slog.Info(config.MsgSettingsSaved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyEndYear, settings.EndYear(),
	)
	return nil
}

func decode(raw string, loc *time.Location) (engine.Settings, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return engine.Settings{}, fmt.Errorf("%s: %w", config.ErrSettingsDecode, err)
	}

	birth, err := engine.ParseBirthDate(rec.BirthDate, loc)
	if err != nil {
		return engine.Settings{}, fmt.Errorf("%s: %w", config.ErrSettingsDecode, err)
	}

	return engine.Settings{
		Name:            rec.Name,
		BirthDate:       birth,
		LifeExpectancy:  rec.LifeExpectancy,
		InspirationLink: rec.InspirationLink,
	}.Normalize(), nil
}
