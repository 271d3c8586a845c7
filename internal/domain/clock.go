package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time with minute precision. Its zero value is midnight.
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{minutes: hour*60 + minute}
}

// TimeOfDayOf truncates t to the minute in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

var timeOfDayLayouts = []string{"15:04", "15:04:05", "3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}

// arabicClock rewrites Arabic locale clock renderings ("٠٨:٠٥ ص") into Latin
// digits and AM/PM, dropping the bidi marks browsers insert.
var arabicClock = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"ص", "AM", "م", "PM",
	"\u200f", "", "\u200e", "", "\u061c", "", "\u00a0", " ", "\u202f", " ",
)

// ParseTimeOfDay accepts zero-padded 24-hour "HH:MM" plus the 12-hour renderings
// older records were stored with, in Latin or Arabic digits.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(arabicClock.Replace(s))
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) Hour() int   { return t.minutes / 60 }
func (t TimeOfDay) Minute() int { return t.minutes % 60 }

// String returns the canonical zero-padded "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Display renders a 12-hour clock for people, e.g. "8:05 AM".
func (t TimeOfDay) Display() string {
	return time.Date(2000, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC).Format("3:04 PM")
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.minutes < o.minutes }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.minutes > o.minutes }

// Between reports start <= t <= end.
func (t TimeOfDay) Between(start, end TimeOfDay) bool {
	return !t.Before(start) && !t.After(end)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FormatDate renders t's calendar day in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" day as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
