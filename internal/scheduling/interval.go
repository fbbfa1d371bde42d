package scheduling

import (
	"fmt"
	"sort"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewInterval validates start < end and both bounds within the day.
func NewInterval(start, end TimeOfDay) (Interval, error) {
	if !start.Valid() || end <= 0 || end > MinutesPerDay {
		return Interval{}, fmt.Errorf("%w: %s-%s outside the day", ErrInvalidInterval, start, end)
	}
	if end <= start {
		return Interval{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidInterval, end, start)
	}
	return Interval{Start: start, End: end}, nil
}

// IntervalOf builds [start, start+minutes).
func IntervalOf(start TimeOfDay, minutes int) (Interval, error) {
	return NewInterval(start, start.Add(minutes))
}

// Minutes returns the length of the interval.
func (iv Interval) Minutes() int { return int(iv.End - iv.Start) }

// Overlaps reports whether the intervals intersect. Intervals that only touch do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Overlaps is the package-level form of Interval.Overlaps.
func Overlaps(a, b Interval) bool { return a.Overlaps(b) }

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}

func overlapsAny(iv Interval, busy []Interval) bool {
	for _, b := range busy {
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}

func sortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start != ivs[j].Start {
			return ivs[i].Start < ivs[j].Start
		}
		return ivs[i].End < ivs[j].End
	})
}
