package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
)

// calendarView keeps the widgets that change on each refresh.
type calendarView struct {
	title    *widget.Label
	question *widget.Label
	progress *widget.Label
	link     *widget.Hyperlink

	// week shows the Sunday under the pointer or last tapped.
	week *widget.Label

	// One cell per week, in grid order.
	cells []*weekBox
	boxes []*canvas.Rectangle
	past  int
}

// weekBox is one square of the grid. Hovering or tapping it reports its Sunday.
type weekBox struct {
	widget.BaseWidget
	rect   *canvas.Rectangle
	date   time.Time
	onShow func(time.Time)
}

var (
	_ fyne.Tappable     = (*weekBox)(nil)
	_ desktop.Hoverable = (*weekBox)(nil)
)

func newWeekBox(rect *canvas.Rectangle, date time.Time, onShow func(time.Time)) *weekBox {
	b := &weekBox{rect: rect, date: date, onShow: onShow}
	b.ExtendBaseWidget(b)
	return b
}

func (b *weekBox) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.rect)
}

func (b *weekBox) Tapped(*fyne.PointEvent) { b.onShow(b.date) }

func (b *weekBox) MouseIn(*desktop.MouseEvent) { b.onShow(b.date) }

func (b *weekBox) MouseMoved(*desktop.MouseEvent) {}

func (b *weekBox) MouseOut() {}

func (v *calendarView) showWeek(date time.Time) {
	v.week.SetText(date.Format(config.DateFormatFullDash))
}

// ShowCalendarWindow displays the life calendar: one column per year, one box
// per Sunday, lived weeks filled. Only one calendar window is open at a time.
func (app *LastSundayApp) ShowCalendarWindow() {
	if app.calendarWindow != nil {
		app.calendarWindow.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenCal, config.LogKeyComponent, config.CompUICal)

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinCalendar))
	w.Resize(fyne.NewSize(config.CalendarWinWidth, config.CalendarWinHeight))
	app.calendarWindow = w

	app.refreshCalendarWindow()

	w.SetOnClosed(func() {
		app.calendarWindow = nil
		app.calendar = nil
	})
	w.Show()
}

// refreshCalendarWindow redraws the open calendar from the last snapshot.
func (app *LastSundayApp) refreshCalendarWindow() {
	if app.calendarWindow == nil {
		return
	}
	content, view := app.buildCalendarContent(app.currentSnapshot())
	app.calendar = view
	app.calendarWindow.SetTitle(app.GetMsg(config.TKeyWinCalendar))
	app.calendarWindow.SetContent(content)
}

// buildCalendarContent lays out the title, the scrollable grid and the footer.
func (app *LastSundayApp) buildCalendarContent(snap engine.Snapshot) (fyne.CanvasObject, *calendarView) {
	view := &calendarView{
		title:    widget.NewLabel(app.titleText(snap)),
		question: widget.NewLabel(app.buildQuestionFormatter()(snap.Name)),
		progress: widget.NewLabel(app.progressText(snap)),
		week:     widget.NewLabel(""),
	}
	view.title.Alignment = fyne.TextAlignCenter
	view.title.TextStyle = fyne.TextStyle{Bold: true}
	view.title.Wrapping = fyne.TextWrapWord
	view.question.Alignment = fyne.TextAlignCenter
	view.question.Wrapping = fyne.TextWrapWord
	view.progress.Alignment = fyne.TextAlignCenter
	view.progress.TextStyle = fyne.TextStyle{Italic: true}
	view.week.Alignment = fyne.TextAlignCenter

	link, err := url.Parse(snap.InspirationLink)
	if err != nil || snap.InspirationLink == "" {
		link = nil
	}
	view.link = widget.NewHyperlink(app.GetMsg(config.TKeyLblInspire), link)
	view.link.Alignment = fyne.TextAlignCenter

	columns := container.NewHBox()
	for _, year := range snap.Years {
		columns.Add(view.yearColumn(year))
	}

	footer := container.NewVBox(view.week, view.question, view.progress, view.link)
	return container.NewBorder(view.title, footer, nil, nil, container.NewHScroll(columns)), view
}

// yearColumn renders one year as a narrow grid of week boxes under its label.
// Each box gives its date to the week label when hovered or tapped.
func (v *calendarView) yearColumn(year engine.YearColumn) fyne.CanvasObject {
	fg := theme.Color(theme.ColorNameForeground)

	boxes := make([]fyne.CanvasObject, 0, len(year.Weeks))
	for _, week := range year.Weeks {
		box := canvas.NewRectangle(color.Transparent)
		box.StrokeColor = fg
		box.StrokeWidth = config.WeekBoxStroke
		box.SetMinSize(fyne.NewSize(config.WeekBoxSize, config.WeekBoxSize))
		if week.Past {
			box.FillColor = fg
			v.past++
		}
		cell := newWeekBox(box, week.Date, v.showWeek)
		v.cells = append(v.cells, cell)
		v.boxes = append(v.boxes, box)
		boxes = append(boxes, cell)
	}

	label := canvas.NewText(strconv.Itoa(year.Year), fg)
	label.TextSize = theme.CaptionTextSize()
	label.Alignment = fyne.TextAlignCenter

	return container.NewVBox(label, container.NewGridWithColumns(config.WeekGridColumns, boxes...))
}

// titleText renders "<Name>, only N Sundays remain".
func (app *LastSundayApp) titleText(snap engine.Snapshot) string {
	return app.localizeOr(config.TKeyTitleRemaining,
		map[string]interface{}{"Name": snap.Name, "Count": snap.Remaining}, snap.Remaining,
		fmt.Sprintf(config.FallbackTitle, snap.Name, snap.Remaining))
}

func (app *LastSundayApp) progressText(snap engine.Snapshot) string {
	lived, total := snap.Lived(), snap.Total()
	return app.localizeOr(config.TKeyProgress,
		map[string]interface{}{"Lived": lived, "Total": total}, nil,
		fmt.Sprintf("%d / %d", lived, total))
}
