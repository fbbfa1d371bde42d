package scheduling

import "fmt"

// Window is the bookable portion of a day and its slot granularity in minutes.
type Window struct {
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	Granularity int       `json:"granularity"`
}

// DefaultWindow is 07:00-19:00 in 30 minute steps.
var DefaultWindow = Window{Start: 7 * 60, End: 19 * 60, Granularity: 30}

// Validate checks the window is usable by the suggester.
func (w Window) Validate() error {
	if !w.Start.Valid() || w.End > MinutesPerDay || w.End <= w.Start {
		return fmt.Errorf("%w: window %s-%s", ErrInvalidInterval, w.Start, w.End)
	}
	if w.Granularity <= 0 {
		return fmt.Errorf("window granularity must be positive, got %d", w.Granularity)
	}
	if !w.Aligned(w.End) {
		return fmt.Errorf("%w: window %s-%s is not a whole number of %d minute slots", ErrInvalidInterval, w.Start, w.End, w.Granularity)
	}
	return nil
}

// Contains reports whether iv fits entirely inside the window.
func (w Window) Contains(iv Interval) bool {
	return iv.Start >= w.Start && iv.End <= w.End
}

// Aligned reports whether t sits on a granularity step counted from the window start.
func (w Window) Aligned(t TimeOfDay) bool {
	return w.Granularity > 0 && int(t-w.Start)%w.Granularity == 0
}

// Slots lists every granularity-aligned start inside the window.
func (w Window) Slots() []TimeOfDay {
	if w.Granularity <= 0 {
		return nil
	}
	var out []TimeOfDay
	for t := w.Start; t < w.End; t = t.Add(w.Granularity) {
		out = append(out, t)
	}
	return out
}
