package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"golang.org/x/text/language"
)

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeExt    = ".json"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded locale file and selects the user's language.
func (app *LastSundayApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc(strings.TrimPrefix(localeExt, "."), json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var langs []string
	for _, entry := range entries {
		lang, ok := localeCode(entry.Name())
		if !ok {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, entry.Name(),
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, path.Join(localeDir, entry.Name())); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, entry.Name(),
				config.LogKeyError, err,
			)
			continue
		}

		langs = append(langs, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
		)
	}
	sort.Strings(langs)

	app.SupportedLanguages = langs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// localeCode extracts "fr" from "active.fr.json".
func localeCode(name string) (string, bool) {
	if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeExt) {
		return "", false
	}
	code := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeExt)
	if code == "" {
		slog.Warn(config.MsgLocaleBadName,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
		return "", false
	}
	return code, true
}

// UpdateLocalizer refreshes the translator from the language preference.
// Regional tags such as "fr-CA" resolve to the closest bundled language.
func (app *LastSundayApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang, config.DefaultLanguage)
}

// GetMsg is a helper to translate a key safely.
func (app *LastSundayApp) GetMsg(key string) string {
	return app.localizeOr(key, nil, nil, key)
}

// localizeOr translates key with data, using pluralCount when the message has
// plural forms. It returns fallback when the key cannot be rendered.
func (app *LastSundayApp) localizeOr(key string, data map[string]interface{}, pluralCount interface{}, fallback string) string {
	if app.Localizer == nil {
		return fallback
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  pluralCount,
	})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fallback
	}
	return msg
}
