package scheduling

import "fmt"

// Dimension is an axis along which double-booking is forbidden.
type Dimension string

const (
	DimensionRoom    Dimension = "room"
	DimensionSection Dimension = "section"
	DimensionTeacher Dimension = "teacher"
)

// Assignment is one weekly class meeting. SubjectID is carried for display only.
type Assignment struct {
	ID        int64    `json:"id"`
	TeacherID int64    `json:"teacherId"`
	SubjectID int64    `json:"subjectId"`
	RoomID    int64    `json:"roomId"`
	SectionID int64    `json:"sectionId"`
	Day       Day      `json:"dayId"`
	Interval  Interval `json:"interval"`
}

// Candidate is a proposed meeting submitted for conflict checking.
type Candidate struct {
	Day       Day
	Interval  Interval
	RoomID    int64
	SectionID int64
	TeacherID int64
}

// Validate fails fast on a candidate that cannot be scanned meaningfully.
func (c Candidate) Validate(w Window) error {
	if !c.Day.Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidCandidate, ErrInvalidDay, int(c.Day))
	}
	if c.Interval.End <= c.Interval.Start {
		return fmt.Errorf("%w: %w: %s", ErrInvalidCandidate, ErrInvalidInterval, c.Interval)
	}
	if !w.Contains(c.Interval) {
		return fmt.Errorf("%w: %w: %s outside window %s-%s", ErrInvalidCandidate, ErrInvalidInterval, c.Interval, w.Start, w.End)
	}
	return nil
}

// ConflictSet groups overlapping assignments by dimension. One assignment may appear in several groups.
type ConflictSet struct {
	Room    []Assignment `json:"room"`
	Section []Assignment `json:"section"`
	Teacher []Assignment `json:"teacher"`
}

// Empty reports whether no dimension has a conflict.
func (cs ConflictSet) Empty() bool {
	return len(cs.Room) == 0 && len(cs.Section) == 0 && len(cs.Teacher) == 0
}

// Total counts entries across all dimensions, duplicates included.
func (cs ConflictSet) Total() int {
	return len(cs.Room) + len(cs.Section) + len(cs.Teacher)
}

// Dimensions lists the dimensions that have at least one conflict.
func (cs ConflictSet) Dimensions() []Dimension {
	var out []Dimension
	if len(cs.Room) > 0 {
		out = append(out, DimensionRoom)
	}
	if len(cs.Section) > 0 {
		out = append(out, DimensionSection)
	}
	if len(cs.Teacher) > 0 {
		out = append(out, DimensionTeacher)
	}
	return out
}

// FindConflicts partitions existing assignments on the candidate's day into room, section and
// teacher conflicts. Validation happens before any scanning.
func FindConflicts(c Candidate, existing []Assignment, w Window) (ConflictSet, error) {
	if err := c.Validate(w); err != nil {
		return ConflictSet{}, err
	}
	set := ConflictSet{Room: []Assignment{}, Section: []Assignment{}, Teacher: []Assignment{}}
	for _, a := range existing {
		if a.Day != c.Day || !a.Interval.Overlaps(c.Interval) {
			continue
		}
		if a.RoomID == c.RoomID {
			set.Room = append(set.Room, a)
		}
		if a.SectionID == c.SectionID {
			set.Section = append(set.Section, a)
		}
		if a.TeacherID == c.TeacherID {
			set.Teacher = append(set.Teacher, a)
		}
	}
	return set, nil
}

// BusyIntervals returns, sorted, the intervals on the candidate's day held by any assignment that
// shares the candidate's room, section or teacher.
func BusyIntervals(c Candidate, existing []Assignment) []Interval {
	var busy []Interval
	for _, a := range existing {
		if a.Day != c.Day {
			continue
		}
		if a.RoomID == c.RoomID || a.SectionID == c.SectionID || a.TeacherID == c.TeacherID {
			busy = append(busy, a.Interval)
		}
	}
	sortIntervals(busy)
	return busy
}

// BusyByDay is BusyIntervals evaluated for every weekday with the candidate's dimensions.
func BusyByDay(c Candidate, existing []Assignment) map[Day][]Interval {
	out := make(map[Day][]Interval, 7)
	for _, d := range AllDays() {
		onDay := c
		onDay.Day = d
		out[d] = BusyIntervals(onDay, existing)
	}
	return out
}
