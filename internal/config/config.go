package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for contact card imports.
var UserAgent = "Go-Last-Sunday/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Last Sunday"
	AppID             = "com.github.tartampluch.go-last-sunday"
	KeyringService    = "com.github.tartampluch.go-last-sunday"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	IconFile          = "Icon.png"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Environment
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagPort         = "port"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescPort     = "Serve the calendar feed on this port (overrides settings)"
	MsgVersionOutput = "%s version %s (%s/%s)\n"

	// EnvPort and EnvDebug may also be provided through a .env file.
	EnvPort  = "LAST_SUNDAY_PORT"
	EnvDebug = "LAST_SUNDAY_DEBUG"
)

// -----------------------------------------------------------------------------
// Preferences
// -----------------------------------------------------------------------------

const (
	// PrefSettings holds the JSON settings record. The key matches the one the
	// web version used for localStorage so exported records stay compatible.
	PrefSettings = "lastSundaySettings"

	PrefLanguage        = "language"
	PrefServerPort      = "server_port"
	PrefImportMode      = "import_mode"
	PrefImportPath      = "import_path"
	PrefImportURL       = "import_url"
	PrefImportUser      = "import_user"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderValue   = "reminder_value"
	PrefReminderUnit    = "reminder_unit"
	PrefReminderDir     = "reminder_direction"
	PrefLastRun         = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Settings
// -----------------------------------------------------------------------------

const (
	DefaultName            = "Rakim"
	DefaultBirthYear       = 2004
	DefaultBirthMonth      = time.April
	DefaultBirthDay        = 2
	DefaultLifeExpectancy  = 50
	DefaultInspirationLink = "https://youtu.be/BOksW_NabEk"

	// MaxLifeExpectancy bounds the grid to something a window can hold.
	MaxLifeExpectancy = 150

	DefaultPort          = "18090"
	DefaultLanguage      = "en"
	DefaultReminderValue = 9
	UIDSalt              = "go-last-sunday-v1-"

	// RefreshSpec recounts at every local day boundary.
	RefreshSpec = "@midnight"
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// UI Layout
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 560
	CalendarWinWidth    = 960
	CalendarWinHeight   = 640

	// WeekGridColumns is the number of week boxes per row inside a year column.
	WeekGridColumns = 3
	WeekBoxSize     = 9
	WeekBoxStroke   = 1

	LayoutColumnsDouble = 2

	DateFormatDisplay = "2006-01-02"
	PlaceholderDate   = "YYYY-MM-DD"
	PlaceholderURL    = "https://..."

	LogMsgOpenCal     = "Opening calendar window"
	LogMsgOpenSet     = "Opening settings window"
	LogMsgFocusSet    = "Settings window already open, requesting focus"
	LogMsgSaving      = "Saving settings"
	LogMsgRemDisabled = "Reminders disabled via settings (value is empty)"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinSettings     = "win_settings_title"
	TKeyWinCalendar     = "win_calendar_title"
	TKeyMenuCalendar    = "menu_calendar"
	TKeyMenuRefresh     = "menu_refresh"
	TKeyMenuSettings    = "menu_settings"
	TKeyTrayStatus      = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero  = "tray_status_zero" // Explicit key for 0
	TKeyTitleRemaining  = "title_remaining"  // Requires Name, Count
	TKeyQuestion        = "question"         // Requires Name
	TKeyProgress        = "lbl_progress"     // Requires Lived, Total
	TKeyLblInspire      = "lbl_inspiration"
	TKeyNotifStart      = "notif_refresh_start"
	TKeyNotifSuccess    = "notif_refresh_success"
	TKeyNotifError      = "notif_err_refresh"
	TKeyNotifImported   = "notif_import_success"
	TKeyErrImport       = "err_import"
	TKeyLblProfile      = "lbl_profile"
	TKeyLblName         = "lbl_name"
	TKeyLblBirthDate    = "lbl_birth_date"
	TKeyHelpBirthDate   = "help_birth_date"
	TKeyLblLife         = "lbl_life_expectancy"
	TKeyLblYears        = "lbl_years_suffix"
	TKeyLblLink         = "lbl_inspiration_link"
	TKeyLblImport       = "lbl_import"
	TKeyModeCardDAV     = "mode_carddav"
	TKeyModeLocal       = "mode_local"
	TKeyLblURL          = "lbl_url"
	TKeyHelpURL         = "help_carddav_url"
	TKeyLblUser         = "lbl_user"
	TKeyLblPass         = "lbl_pass"
	TKeyBtnBrowse       = "btn_browse"
	TKeyBtnImport       = "btn_import"
	TKeyLblGeneral      = "lbl_general"
	TKeyLblLanguage     = "lbl_language"
	TKeyHelpLanguage    = "help_language"
	TKeyLblPort         = "lbl_server_port"
	TKeyHelpPort        = "help_port"
	TKeyLblFeed         = "lbl_feed"
	TKeyLblEnableRem    = "lbl_enable_reminders"
	TKeyUnitDays        = "unit_days"
	TKeyUnitHours       = "unit_hours"
	TKeyUnitMinutes     = "unit_minutes"
	TKeyDirBefore       = "dir_before"
	TKeyDirAfter        = "dir_after"
	TKeyLblStartDay     = "lbl_start_of_day"
	TKeyBtnSave         = "btn_save"
	TKeyBtnCancel       = "btn_cancel"
	TKeyLblFooter       = "lbl_footer"
	TKeyEvtSummary      = "event_summary" // Requires Name
	TKeyErrPortReq      = "err_port_required"
	TKeyErrPortNum      = "err_port_number"
	TKeyErrPortRange    = "err_port_range"
	TKeyErrNameReq      = "err_name_required"
	TKeyErrBirthDate    = "err_birth_date"
	TKeyErrLifeExpRange = "err_life_expectancy"
	TKeyErrLink         = "err_inspiration_link"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Last Sunday//Engine//EN"
	ICalCalName   = "Remaining Sundays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "golastsunday"

	// FormatRRule expects the remaining count.
	FormatRRule = "FREQ=WEEKLY;BYDAY=SU;COUNT=%d"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropURL         = "URL"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropTransp      = "TRANSP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	ICalTransparent = "TRANSPARENT"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 12 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for birth dates (settings records and vCard BDAY).
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	MinPort = 1
	MaxPort = 65535

	FormatHashInput = "%s|%s|%d|%s"
	FormatUID       = "%s@%s"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB, an address book export at most
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteFeed           = "/sundays.ics"
	RouteStatus         = "/status"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderAccept          = "Accept"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.5"
	MimeHTML            = "text/html"
	MimeXHTML           = "application/xhtml+xml"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported import mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrNotACard         = "server returned a web page instead of a contact card"
	ErrVCardParse       = "failed to read contact card"
	ErrNoBirthday       = "no contact card with a full birth date"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrSettingsInvalid  = "invalid settings"
	ErrNameEmpty        = "name is empty"
	ErrBirthMissing     = "birth date is missing"
	ErrBirthFuture      = "birth date is in the future"
	ErrLifeExpRange     = "life expectancy must be between 1 and 150 years"
	ErrLinkInvalid      = "inspiration link must be an absolute http(s) URL"
	ErrSettingsEncode   = "failed to encode settings"
	ErrSettingsDecode   = "failed to decode stored settings"
	ErrSchedulerSpec    = "invalid refresh schedule"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrStatusEncode     = "failed to encode status"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrKeyringSave      = "failed to save credentials to keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary     = "Sunday, %s"
	FallbackTitle       = "%s, only %d Sundays remain"
	FallbackQuestion    = "How are you going to spend these weeks %s?"
	FallbackTrayError   = "Go Last Sunday: Error"
	FallbackTrayDefault = "%d Sundays remain"
	FallbackTrayLabel   = "Go Last Sunday"

	// StubVCalendar is the minimal valid iCalendar object used when no Sunday remains.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleRefreshError = "Refresh Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgRefreshReq     = "Refresh requested"
	MsgRefreshFailed  = "Refresh failed. Check logs."
	MsgPlanReady      = "Calendar planned"
	MsgFeedBuilt      = "Calendar feed generated"
	MsgSchedStart     = "Refresh scheduler started"
	MsgSchedStop      = "Refresh scheduler stopped"
	MsgSchedRun       = "Scheduled refresh triggered"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping unusable birth date"
	MsgCardImported   = "Contact card imported"
	MsgCardDownload   = "Contact card downloading"
	MsgCardRequest    = "Initiating contact card download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchWebPage   = "Server returned a web page, login may be required"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgSettingsLoaded = "Settings loaded"
	MsgSettingsSaved  = "Settings saved"
	MsgSettingsReset  = "Stored settings unusable, falling back to defaults"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgEnvLoaded      = "Environment overrides applied"
)

// -----------------------------------------------------------------------------
// Import Modes, Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	ImportModeWeb   = "web"
	ImportModeLocal = "local"

	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeySpec      = "spec"
	LogKeyUser      = "user"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyType      = "content_type"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyEndYear   = "end_year"
	LogKeyRemaining = "remaining"
	LogKeyLived     = "lived"
	LogKeyTotal     = "total"
	LogKeyYears     = "years"
	LogKeyDuration  = "duration_ms"
	LogKeySource    = "source"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompUISet     = "ui_settings"
	CompUICal     = "ui_calendar"
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompStore     = "store"
	CompScheduler = "scheduler"
	CompMain      = "main"
	CompI18n      = "i18n"
)
