package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
// It backs the life expectancy, port and reminder fields.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but 0-9. Pasted text bypasses this filter and is
// caught by the field's Validator instead.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile drivers.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// Int returns the entered value, or fallback when the text is empty, signed
// or out of range.
func (e *NumericalEntry) Int(fallback int) int {
	n, err := strconv.Atoi(e.Text)
	if err != nil || n < 0 || strings.ContainsAny(e.Text, "+-") {
		return fallback
	}
	return n
}
