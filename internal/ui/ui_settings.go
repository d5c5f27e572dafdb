package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	nameEntry  *widget.Entry
	birthEntry *widget.Entry
	lifeEntry  *NumericalEntry
	linkEntry  *widget.Entry

	modeSelect *widget.Select
	urlEntry   *widget.Entry
	userEntry  *widget.Entry
	passEntry  *widget.Entry
	pathEntry  *widget.Entry
	importBtn  *widget.Button

	langSelect *widget.Select
	entryPort  *NumericalEntry

	checkReminder *widget.Check
	entryRemValue *NumericalEntry
	selectRemUnit *widget.Select
	selectRemDir  *widget.Select
}

// ShowSettingsWindow displays the configuration dialog.
func (app *LastSundayApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug(config.LogMsgFocusSet, config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenSet, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.Window = w

	sw := app.newSettingsWidgets()
	app.settingsForm = sw

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	profileCard := app.buildProfileCard(sw)
	importCard := app.buildImportCard(w, sw, onLayoutChange)
	generalCard := app.buildGeneralCard(sw)
	feedCard := app.buildFeedCard(sw, onLayoutChange)

	saveAction := func() {
		if err := app.saveSettings(sw); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		profileCard,
		importCard,
		generalCard,
		feedCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		paddedContent.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, paddedContent.MinSize().Height))
	}

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	w.SetOnClosed(func() {
		app.Window = nil
		app.settingsForm = nil
	})

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates every input, pre-filled from the stored state.
func (app *LastSundayApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}
	current := app.settingsStore().Load()

	// --- Profile ---
	sw.nameEntry = widget.NewEntry()
	sw.nameEntry.SetText(current.Name)
	sw.nameEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(app.GetMsg(config.TKeyErrNameReq))
		}
		return nil
	}

	sw.birthEntry = widget.NewEntry()
	sw.birthEntry.PlaceHolder = config.PlaceholderDate
	sw.birthEntry.SetText(current.BirthDate.Format(config.DateFormatDisplay))
	sw.birthEntry.Validator = func(s string) error {
		d, err := engine.ParseBirthDate(s, app.Clock.Now().Location())
		if err != nil || d.After(engine.Midnight(app.Clock.Now())) {
			return errors.New(app.GetMsg(config.TKeyErrBirthDate))
		}
		return nil
	}

	sw.lifeEntry = NewNumericalEntry()
	sw.lifeEntry.SetText(strconv.Itoa(current.LifeExpectancy))
	sw.lifeEntry.Validator = func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > config.MaxLifeExpectancy {
			return errors.New(app.GetMsg(config.TKeyErrLifeExpRange))
		}
		return nil
	}

	sw.linkEntry = widget.NewEntry()
	sw.linkEntry.PlaceHolder = config.PlaceholderURL
	sw.linkEntry.SetText(current.InspirationLink)
	sw.linkEntry.Validator = func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || u.Host == "" || (u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS) {
			return errors.New(app.GetMsg(config.TKeyErrLink))
		}
		return nil
	}

	// --- Import ---
	src := app.loadCardSource()
	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeCardDAV),
		app.GetMsg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.PlaceHolder = config.PlaceholderURL
	sw.urlEntry.SetText(src.WebURL)

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(src.WebUser)

	sw.passEntry = widget.NewPasswordEntry()
	sw.passEntry.SetText(src.WebPass)

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(src.LocalPath)

	if src.Mode == config.ImportModeWeb {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	}

	// --- General ---
	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = func(s string) error {
		if s == "" {
			return errors.New(app.GetMsg(config.TKeyErrPortReq))
		}
		port, err := strconv.Atoi(s)
		if err != nil {
			return errors.New(app.GetMsg(config.TKeyErrPortNum))
		}
		if port < config.MinPort || port > config.MaxPort {
			return errors.New(app.GetMsg(config.TKeyErrPortRange))
		}
		return nil
	}

	// --- Feed reminders ---
	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil)
	sw.checkReminder.Checked = app.Preferences.Bool(config.PrefReminderEnabled)

	sw.entryRemValue = NewNumericalEntry()
	sw.entryRemValue.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)))

	sw.selectRemUnit = widget.NewSelect([]string{
		app.GetMsg(config.TKeyUnitDays),
		app.GetMsg(config.TKeyUnitHours),
		app.GetMsg(config.TKeyUnitMinutes),
	}, nil)
	switch app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitHours) {
	case config.UnitDays:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitDays))
	case config.UnitMinutes:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitMinutes))
	default:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitHours))
	}

	sw.selectRemDir = widget.NewSelect([]string{
		app.GetMsg(config.TKeyDirBefore),
		app.GetMsg(config.TKeyDirAfter),
	}, nil)
	if app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore) == config.DirAfter {
		sw.selectRemDir.SetSelected(app.GetMsg(config.TKeyDirAfter))
	} else {
		sw.selectRemDir.SetSelected(app.GetMsg(config.TKeyDirBefore))
	}

	return sw
}

// buildProfileCard groups the fields that drive the calendar itself.
func (app *LastSundayApp) buildProfileCard(sw *settingsWidgets) *widget.Card {
	itemName := widget.NewFormItem(app.GetMsg(config.TKeyLblName), sw.nameEntry)

	itemBirth := widget.NewFormItem(app.GetMsg(config.TKeyLblBirthDate), sw.birthEntry)
	itemBirth.HintText = app.GetMsg(config.TKeyHelpBirthDate)

	widLife := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblYears)), sw.lifeEntry)
	itemLife := widget.NewFormItem(app.GetMsg(config.TKeyLblLife), widLife)

	itemLink := widget.NewFormItem(app.GetMsg(config.TKeyLblLink), sw.linkEntry)

	return widget.NewCard(app.GetMsg(config.TKeyLblProfile), "", widget.NewForm(itemName, itemBirth, itemLife, itemLink))
}

// buildImportCard constructs the contact card import UI.
func (app *LastSundayApp) buildImportCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)
	itemUser := widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry)
	itemPass := widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry)
	webForm := widget.NewForm(itemURL, itemUser, itemPass)

	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	applyVisibility := func(mode string) {
		if mode == app.GetMsg(config.TKeyModeLocal) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}
	sw.modeSelect.OnChanged = func(mode string) {
		applyVisibility(mode)
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	applyVisibility(sw.modeSelect.Selected)

	sw.importBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.DownloadIcon(), func() {
		src := app.cardSourceFrom(sw)
		sw.importBtn.Disable()

		// Downloads may be slow; keep the window responsive.
		go func() {
			profile, err := app.importCard(src)
			fyne.Do(func() {
				sw.importBtn.Enable()
				if err != nil {
					dialog.ShowError(fmt.Errorf("%s: %w", app.GetMsg(config.TKeyErrImport), err), w)
					return
				}
				app.applyImportedProfile(sw, profile)
			})
		}()
	})

	return widget.NewCard(app.GetMsg(config.TKeyLblImport), "", container.NewVBox(sw.modeSelect, webForm, localForm, sw.importBtn))
}

// buildGeneralCard constructs the language and server port form.
func (app *LastSundayApp) buildGeneralCard(sw *settingsWidgets) *widget.Card {
	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)

	return widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemPort))
}

// buildFeedCard constructs the reminder UI for the subscribed feed.
func (app *LastSundayApp) buildFeedCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	lblStart := widget.NewLabel(app.GetMsg(config.TKeyLblStartDay))

	controls := container.NewHBox(sw.selectRemUnit, sw.selectRemDir, lblStart)
	row := container.NewBorder(nil, nil, nil, controls, sw.entryRemValue)

	sw.checkReminder.OnChanged = func(b bool) {
		if b {
			row.Show()
		} else {
			row.Hide()
		}
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}

	if !sw.checkReminder.Checked {
		row.Hide()
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblFeed), "", container.NewVBox(sw.checkReminder, row))
}

// cardSourceFrom reads the import fields of the form.
func (app *LastSundayApp) cardSourceFrom(sw *settingsWidgets) engine.CardSource {
	mode := config.ImportModeWeb
	if sw.modeSelect.Selected == app.GetMsg(config.TKeyModeLocal) {
		mode = config.ImportModeLocal
	}
	return engine.CardSource{
		Mode:      mode,
		LocalPath: strings.TrimSpace(sw.pathEntry.Text),
		WebURL:    strings.TrimSpace(sw.urlEntry.Text),
		WebUser:   strings.TrimSpace(sw.userEntry.Text),
		WebPass:   sw.passEntry.Text,
	}
}

// importCard reads the first contact card with a full birth date from src.
func (app *LastSundayApp) importCard(src engine.CardSource) (engine.CardProfile, error) {
	im := &engine.Importer{Fetcher: app.Fetcher}
	profile, err := im.Import(app.Ctx, src)
	if err != nil {
		slog.Error(config.ErrVCardParse,
			config.LogKeyComponent, config.CompUISet,
			config.LogKeyMode, src.Mode,
			config.LogKeyError, err)
		return engine.CardProfile{}, err
	}
	return profile, nil
}

// applyImportedProfile copies an imported name and birth date into the form.
// Nothing is saved until the user confirms.
func (app *LastSundayApp) applyImportedProfile(sw *settingsWidgets, profile engine.CardProfile) {
	sw.nameEntry.SetText(profile.Name)
	sw.birthEntry.SetText(profile.BirthDate.Format(config.DateFormatDisplay))
	app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifImported)))
}

// collectSettings validates the profile fields and builds the Settings value.
func (app *LastSundayApp) collectSettings(sw *settingsWidgets) (engine.Settings, error) {
	for _, v := range []fyne.Validatable{sw.nameEntry, sw.birthEntry, sw.lifeEntry, sw.linkEntry, sw.entryPort} {
		if err := v.Validate(); err != nil {
			return engine.Settings{}, err
		}
	}

	birth, err := engine.ParseBirthDate(sw.birthEntry.Text, app.Clock.Now().Location())
	if err != nil {
		return engine.Settings{}, errors.New(app.GetMsg(config.TKeyErrBirthDate))
	}

	return engine.Settings{
		Name:            sw.nameEntry.Text,
		BirthDate:       birth,
		LifeExpectancy:  sw.lifeEntry.Int(0),
		InspirationLink: sw.linkEntry.Text,
	}, nil
}

// saveSettings persists the form and triggers a refresh. Nothing is written
// when the profile is invalid.
func (app *LastSundayApp) saveSettings(sw *settingsWidgets) error {
	slog.Info(config.LogMsgSaving, config.LogKeyComponent, config.CompUISet)

	settings, err := app.collectSettings(sw)
	if err != nil {
		return err
	}
	if err := app.settingsStore().Save(settings); err != nil {
		return err
	}

	src := app.cardSourceFrom(sw)
	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefImportMode, src.Mode)
	app.Preferences.SetString(config.PrefImportURL, src.WebURL)
	app.Preferences.SetString(config.PrefImportUser, src.WebUser)
	app.Preferences.SetString(config.PrefImportPath, src.LocalPath)
	app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)

	if src.WebUser != "" && src.WebPass != "" {
		if err := keyring.Set(config.KeyringService, src.WebUser, src.WebPass); err != nil {
			slog.Error(config.ErrKeyringSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	// An empty value disables reminders even when the box is checked.
	if remValueText := sw.entryRemValue.Text; remValueText == "" {
		app.Preferences.SetBool(config.PrefReminderEnabled, false)
		slog.Info(config.LogMsgRemDisabled, config.LogKeyComponent, config.CompUISet)
	} else {
		app.Preferences.SetBool(config.PrefReminderEnabled, sw.checkReminder.Checked)
		app.Preferences.SetInt(config.PrefReminderValue, sw.entryRemValue.Int(config.DefaultReminderValue))
	}

	unit := config.UnitHours
	switch sw.selectRemUnit.Selected {
	case app.GetMsg(config.TKeyUnitDays):
		unit = config.UnitDays
	case app.GetMsg(config.TKeyUnitMinutes):
		unit = config.UnitMinutes
	}
	app.Preferences.SetString(config.PrefReminderUnit, unit)

	dir := config.DirBefore
	if sw.selectRemDir.Selected == app.GetMsg(config.TKeyDirAfter) {
		dir = config.DirAfter
	}
	app.Preferences.SetString(config.PrefReminderDir, dir)

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.performRefresh(true)
	return nil
}
