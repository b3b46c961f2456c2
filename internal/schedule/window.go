package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultOpening = "08:00"
	DefaultClosing = "17:00"
)

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Before reports whether t is strictly earlier than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.seconds() < o.seconds()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// MarshalJSON renders the time as "HH:MM:SS".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// DisplayWindow bounds the time axis of a weekly calendar. It never hides events.
type DisplayWindow struct {
	Min TimeOfDay `json:"min"`
	Max TimeOfDay `json:"max"`
}

var endOfDay = TimeOfDay{Hour: 23, Minute: 59, Second: 59}

// ParseTimeOfDay reads "HH:MM" leniently. "00:00" means end of day. Unreadable parts become zero.
func ParseTimeOfDay(raw string) TimeOfDay {
	raw = strings.TrimSpace(raw)
	if raw == "00:00" {
		return endOfDay
	}
	parts := strings.SplitN(raw, ":", 3)
	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			v = 0
		}
		values[i] = v
	}
	return TimeOfDay{Hour: values[0], Minute: values[1], Second: values[2]}
}

// ClampDisplayWindow derives the calendar window from school hours. Empty values fall back
// to 08:00 and 17:00; an opening at or after the closing yields the default window.
func ClampDisplayWindow(opening, closing string) DisplayWindow {
	if strings.TrimSpace(opening) == "" {
		opening = DefaultOpening
	}
	if strings.TrimSpace(closing) == "" {
		closing = DefaultClosing
	}
	window := DisplayWindow{Min: ParseTimeOfDay(opening), Max: ParseTimeOfDay(closing)}
	if !window.Min.Before(window.Max) {
		return DisplayWindow{Min: ParseTimeOfDay(DefaultOpening), Max: ParseTimeOfDay(DefaultClosing)}
	}
	return window
}
