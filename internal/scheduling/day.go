package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// Day is a weekday of the recurring weekly timetable.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AllDays returns Monday through Sunday.
func AllDays() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether d is one of the seven weekdays.
func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDay accepts a day name ("monday", "Mon") or its number (1 = Monday).
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		d := Day(n)
		if !d.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidDay, n)
		}
		return d, nil
	}
	if len(s) >= 3 {
		for d := Monday; d <= Sunday; d++ {
			if strings.HasPrefix(strings.ToLower(dayNames[d]), strings.ToLower(s)) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}
