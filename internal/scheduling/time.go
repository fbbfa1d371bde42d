package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound of a TimeOfDay.
const MinutesPerDay = 24 * 60

var hhmmPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

var twelveHourPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := hhmmPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeFormat, s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTime parses s and panics on error. Intended for constants and tests.
func MustTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Hours returns hour + minute/60, the numeric form timetable clients plot against.
func (t TimeOfDay) Hours() float64 { return float64(t) / 60 }

// Valid reports whether t lies in [00:00, 24:00).
func (t TimeOfDay) Valid() bool { return t >= 0 && t < MinutesPerDay }

// Add shifts t by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// String renders a zero-padded 24-hour "HH:MM". The exclusive end bound 1440 renders as "24:00".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Format12Hour renders the time as "h:MM AM" / "h:MM PM".
func (t TimeOfDay) Format12Hour() string {
	hour := t.Hour() % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, t.Minute(), suffix)
}

// Parse12Hour parses the output of Format12Hour back into a TimeOfDay.
func Parse12Hour(s string) (TimeOfDay, error) {
	m := twelveHourPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeFormat, s)
	}
	hour %= 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseClock accepts either "HH:MM" or the 12-hour "h:MM AM" form.
func ParseClock(s string) (TimeOfDay, error) {
	if t, err := ParseTimeOfDay(s); err == nil {
		return t, nil
	}
	return Parse12Hour(s)
}
