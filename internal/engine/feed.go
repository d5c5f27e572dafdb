package engine

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-last-sunday/internal/config"
)

// FeedBuilder renders a Snapshot as an iCalendar feed: a single all-day
// event repeating on every remaining Sunday.
type FeedBuilder struct {
	Clock Clock

	// ReminderTrigger is an ISO 8601 duration such as "-PT9H". Empty disables the alarm.
	ReminderTrigger string

	// FormatSummary and FormatDescription let the UI inject localized strings.
	FormatSummary     func(name string) string
	FormatDescription func(name string) string
}

// Build encodes snap. A snapshot with no remaining Sunday yields a valid,
// empty VCALENDAR so subscribed clients keep the feed.
func (f *FeedBuilder) Build(snap Snapshot) ([]byte, error) {
	if snap.Remaining <= 0 {
		var buf bytes.Buffer
		fmt.Fprint(&buf, config.StubVCalendar)
		f.logBuilt(snap, buf.Len())
		return buf.Bytes(), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Stamp in UTC; the Sundays themselves are local calendar dates.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(f.Clock.Now().UTC())

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, feedUID(snap))
	event.Props.Set(dtStampProp)

	summary := fmt.Sprintf(config.FallbackSummary, snap.Name)
	if f.FormatSummary != nil {
		summary = f.FormatSummary(snap.Name)
	}
	event.Props.SetText(config.PropSummary, summary)

	description := fmt.Sprintf(config.FallbackQuestion, snap.Name)
	if f.FormatDescription != nil {
		description = f.FormatDescription(snap.Name)
	}
	event.Props.SetText(config.PropDescription, description)
	event.Props.SetText(config.PropTransp, config.ICalTransparent)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(NextAnchor(snap.Today, ExcludeToday))
	event.Props.Set(dtStartProp)

	// Raw values: SetText would escape the rule separators.
	rruleProp := ical.NewProp(config.PropRRule)
	rruleProp.Value = fmt.Sprintf(config.FormatRRule, snap.Remaining)
	event.Props.Set(rruleProp)

	if snap.InspirationLink != "" {
		urlProp := ical.NewProp(config.PropURL)
		urlProp.Value = snap.InspirationLink
		event.Props.Set(urlProp)
	}

	if f.ReminderTrigger != "" {
		addAlarm(event, f.ReminderTrigger, summary)
	}

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	f.logBuilt(snap, buf.Len())
	return buf.Bytes(), nil
}

func (f *FeedBuilder) logBuilt(snap Snapshot, size int) {
	slog.Info(config.MsgFeedBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRemaining, snap.Remaining,
		config.LogKeyEndYear, snap.EndYear,
		config.LogKeySizeBytes, size,
	)
}

// feedUID is stable for a given profile so clients replace the event on
// refresh instead of duplicating it.
func feedUID(snap Snapshot) string {
	input := fmt.Sprintf(config.FormatHashInput, snap.Name, snap.BirthDate.Format(config.DateFormatFullDash), snap.EndYear, config.UIDSalt)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(input))
	return fmt.Sprintf(config.FormatUID, id.String(), config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
