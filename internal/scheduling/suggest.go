package scheduling

import "fmt"

const (
	// MinDuration and MaxDuration bound a single meeting, in minutes.
	MinDuration = 60
	MaxDuration = 300
)

// CandidateDurations is the fixed set tried by SuggestDurations.
var CandidateDurations = []int{60, 90, 120, 150, 180, 210, 240, 270, 300}

// DaySlots lists free starts for one day.
type DaySlots struct {
	Day    Day         `json:"day"`
	Starts []TimeOfDay `json:"starts"`
}

// ValidateDuration enforces MinDuration..MaxDuration in granularity steps.
func ValidateDuration(minutes int, w Window) error {
	if minutes < MinDuration || minutes > MaxDuration {
		return fmt.Errorf("%w: %d minutes, expected %d-%d", ErrInvalidDuration, minutes, MinDuration, MaxDuration)
	}
	if w.Granularity > 0 && minutes%w.Granularity != 0 {
		return fmt.Errorf("%w: %d minutes is not a multiple of %d", ErrInvalidDuration, minutes, w.Granularity)
	}
	return nil
}

// SuggestSlots returns, ascending, every granularity-aligned start t in the window such that
// [t, t+duration) fits the window and overlaps none of busy.
func SuggestSlots(duration int, busy []Interval, w Window) ([]TimeOfDay, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, duration)
	}
	starts := []TimeOfDay{}
	for t := w.Start; t.Add(duration) <= w.End; t = t.Add(w.Granularity) {
		if !overlapsAny(Interval{Start: t, End: t.Add(duration)}, busy) {
			starts = append(starts, t)
		}
	}
	return starts, nil
}

// SuggestDays re-runs SuggestSlots for every day except exclude, Monday first. Days without a
// free start are omitted.
func SuggestDays(duration int, busyByDay map[Day][]Interval, exclude Day, w Window) ([]DaySlots, error) {
	var out []DaySlots
	for _, d := range AllDays() {
		if d == exclude {
			continue
		}
		starts, err := SuggestSlots(duration, busyByDay[d], w)
		if err != nil {
			return nil, err
		}
		if len(starts) > 0 {
			out = append(out, DaySlots{Day: d, Starts: starts})
		}
	}
	return out, nil
}

// SuggestDurations reports which CandidateDurations admit at least one free start.
func SuggestDurations(busy []Interval, w Window) ([]int, error) {
	out := []int{}
	for _, d := range CandidateDurations {
		starts, err := SuggestSlots(d, busy, w)
		if err != nil {
			return nil, err
		}
		if len(starts) > 0 {
			out = append(out, d)
		}
	}
	return out, nil
}

// DurationsAt reports which CandidateDurations fit at the fixed start without leaving the window
// or overlapping busy.
func DurationsAt(start TimeOfDay, busy []Interval, w Window) []int {
	out := []int{}
	for _, d := range CandidateDurations {
		iv := Interval{Start: start, End: start.Add(d)}
		if w.Contains(iv) && !overlapsAny(iv, busy) {
			out = append(out, d)
		}
	}
	return out
}
