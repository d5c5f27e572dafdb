package ui

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
	"github.com/tartampluch/go-last-sunday/internal/scheduler"
	"github.com/tartampluch/go-last-sunday/internal/server"
	"github.com/tartampluch/go-last-sunday/internal/store"
	"github.com/zalando/go-keyring"
)

//go:embed Icon.png
var appIconData []byte

// LastSundayApp encapsulates the UI state, preferences, and background logic.
type LastSundayApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server    *server.FeedServer
	Fetcher   engine.CardFetcher
	Clock     engine.Clock // Injected clock for testability (e.g. mocking time travel)
	Refresher *scheduler.Refresher

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayCalendarItem *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string

	// Last computed grid, shared with the calendar window.
	SnapshotMut sync.RWMutex
	Snapshot    engine.Snapshot

	calendarWindow fyne.Window
	calendar       *calendarView
	settingsForm   *settingsWidgets
}

// NewLastSundayApp constructs the application and wires dependencies.
func NewLastSundayApp(a fyne.App, ctx context.Context, srv *server.FeedServer, fetcher engine.CardFetcher) *LastSundayApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, appIconData))

	return &LastSundayApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Run launches the application services and the main UI loop.
func (app *LastSundayApp) Run() {
	app.SetupI18n()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	// The counter only changes at local midnight; recount then.
	app.Refresher = scheduler.NewRefresher(config.RefreshSpec, time.Local, func() {
		fyne.Do(func() { app.performRefresh(false) })
	})
	go func() {
		if err := app.Refresher.Run(app.Ctx); err != nil {
			slog.Error(config.ErrSchedulerSpec,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}()

	app.App.Lifecycle().SetOnStarted(func() {
		app.performRefresh(false)
	})
	app.App.Run()
}

// setupTrayMenu constructs the system tray menu.
func (app *LastSundayApp) setupTrayMenu() {
	// The status line opens the calendar as well.
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowCalendarWindow()
	})

	app.TrayCalendarItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuCalendar), func() {
		app.ShowCalendarWindow()
	})

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		app.performRefresh(true)
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayCalendarItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *LastSundayApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayCalendarItem.Label = app.GetMsg(config.TKeyMenuCalendar)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// settingsStore binds the persisted profile to the current clock.
func (app *LastSundayApp) settingsStore() *store.Store {
	return store.New(app.Preferences, app.Clock)
}

// performRefresh recomputes the grid and the feed from the saved settings
// (Load -> Plan -> Build -> Publish) and updates every view.
// It must run on the UI goroutine.
func (app *LastSundayApp) performRefresh(manual bool) {
	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	settings := app.settingsStore().Load()
	snap := (&engine.Planner{Clock: app.Clock}).Plan(settings)

	fb := &engine.FeedBuilder{
		Clock:             app.Clock,
		ReminderTrigger:   app.reminderTrigger(),
		FormatSummary:     app.buildSummaryFormatter(),
		FormatDescription: app.buildQuestionFormatter(),
	}

	data, err := fb.Build(snap)
	if err == nil {
		err = app.Server.Publish(data, snap)
	}
	if err != nil {
		slog.Error(config.MsgRefreshFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleRefreshError, app.GetMsg(config.TKeyNotifError)))
		}
		app.updateTrayStatus(-1)
		return
	}

	app.SnapshotMut.Lock()
	app.Snapshot = snap
	app.SnapshotMut.Unlock()

	app.updateTrayStatus(snap.Remaining)
	app.refreshCalendarWindow()

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// currentSnapshot returns a copy of the last computed grid.
func (app *LastSundayApp) currentSnapshot() engine.Snapshot {
	app.SnapshotMut.RLock()
	defer app.SnapshotMut.RUnlock()
	return app.Snapshot
}

// updateTrayStatus updates the top menu item with the remaining Sundays.
func (app *LastSundayApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	if count < 0 {
		label = config.FallbackTrayError
	} else if count == 0 {
		label = app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			label = fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
	} else {
		label = app.localizeOr(config.TKeyTrayStatus,
			map[string]interface{}{"Count": count}, count,
			fmt.Sprintf(config.FallbackTrayDefault, count))
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// reminderTrigger turns the reminder preferences into an ISO 8601 duration
// relative to the start of each Sunday. Empty means no alarm.
func (app *LastSundayApp) reminderTrigger() string {
	if !app.Preferences.Bool(config.PrefReminderEnabled) {
		return ""
	}

	val := app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)
	unit := app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitHours)
	dir := app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore)

	sign := config.ISOPeriodPrefix
	if dir == config.DirBefore {
		sign = config.ISONegativePrefix
	}

	switch unit {
	case config.UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, config.ISODay)
	}
}

// loadCardSource assembles the import source from preferences and the keyring.
func (app *LastSundayApp) loadCardSource() engine.CardSource {
	src := engine.CardSource{
		Mode:      app.Preferences.StringWithFallback(config.PrefImportMode, config.ImportModeLocal),
		LocalPath: app.Preferences.String(config.PrefImportPath),
		WebURL:    app.Preferences.String(config.PrefImportURL),
		WebUser:   app.Preferences.String(config.PrefImportUser),
	}

	if src.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, src.WebUser); err == nil {
			src.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return src
}

// buildSummaryFormatter returns a closure that localizes the event summary.
func (app *LastSundayApp) buildSummaryFormatter() func(name string) string {
	return func(name string) string {
		return app.localizeOr(config.TKeyEvtSummary,
			map[string]interface{}{"Name": name}, nil,
			fmt.Sprintf(config.FallbackSummary, name))
	}
}

// buildQuestionFormatter returns a closure that localizes the closing question.
func (app *LastSundayApp) buildQuestionFormatter() func(name string) string {
	return func(name string) string {
		return app.localizeOr(config.TKeyQuestion,
			map[string]interface{}{"Name": name}, nil,
			fmt.Sprintf(config.FallbackQuestion, name))
	}
}
