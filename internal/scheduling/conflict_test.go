package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayExisting() []Assignment {
	return []Assignment{
		{ID: 1, RoomID: 5, SectionID: 2, TeacherID: 1, SubjectID: 9, Day: Monday, Interval: iv("09:00", "10:00")},
	}
}

func TestFindConflictsEmptyExisting(t *testing.T) {
	set, err := FindConflicts(Candidate{Day: Monday, Interval: iv("09:00", "10:00"), RoomID: 1, SectionID: 1, TeacherID: 1}, nil, DefaultWindow)
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.NotNil(t, set.Room)
	assert.NotNil(t, set.Section)
	assert.NotNil(t, set.Teacher)
}

func TestFindConflictsRoomOnly(t *testing.T) {
	candidate := Candidate{Day: Monday, Interval: iv("09:30", "10:30"), RoomID: 5, SectionID: 3, TeacherID: 4}

	set, err := FindConflicts(candidate, mondayExisting(), DefaultWindow)
	require.NoError(t, err)
	require.Len(t, set.Room, 1)
	assert.Equal(t, iv("09:00", "10:00"), set.Room[0].Interval)
	assert.Empty(t, set.Section)
	assert.Empty(t, set.Teacher)
	assert.Equal(t, []Dimension{DimensionRoom}, set.Dimensions())
}

func TestFindConflictsBackToBackIsFree(t *testing.T) {
	candidate := Candidate{Day: Monday, Interval: iv("10:00", "11:00"), RoomID: 5, SectionID: 3, TeacherID: 4}

	set, err := FindConflicts(candidate, mondayExisting(), DefaultWindow)
	require.NoError(t, err)
	assert.True(t, set.Empty())

	decision, err := Decide(Draft{Candidate: candidate, SubjectID: 7}, mondayExisting(), DefaultWindow)
	require.NoError(t, err)
	assert.True(t, decision.Accepted)
	assert.Equal(t, int64(7), decision.Assignment.SubjectID)
}

func TestFindConflictsMultipleDimensions(t *testing.T) {
	candidate := Candidate{Day: Monday, Interval: iv("09:00", "11:00"), RoomID: 5, SectionID: 2, TeacherID: 1}

	set, err := FindConflicts(candidate, mondayExisting(), DefaultWindow)
	require.NoError(t, err)
	assert.Len(t, set.Room, 1)
	assert.Len(t, set.Section, 1)
	assert.Len(t, set.Teacher, 1)
	assert.Equal(t, 3, set.Total())
}

func TestFindConflictsIgnoresOtherDays(t *testing.T) {
	candidate := Candidate{Day: Tuesday, Interval: iv("09:00", "10:00"), RoomID: 5, SectionID: 2, TeacherID: 1}

	set, err := FindConflicts(candidate, mondayExisting(), DefaultWindow)
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestFindConflictsInvalidCandidate(t *testing.T) {
	cases := map[string]Candidate{
		"reversed":      {Day: Monday, Interval: iv("10:00", "09:00")},
		"empty":         {Day: Monday, Interval: Interval{Start: MustTime("09:00"), End: MustTime("09:00")}},
		"before window": {Day: Monday, Interval: iv("06:00", "08:00")},
		"after window":  {Day: Monday, Interval: iv("18:30", "19:30")},
		"bad day":       {Day: 0, Interval: iv("09:00", "10:00")},
	}
	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FindConflicts(candidate, mondayExisting(), DefaultWindow)
			assert.ErrorIs(t, err, ErrInvalidCandidate)
		})
	}
}

func TestBusyIntervals(t *testing.T) {
	existing := []Assignment{
		{RoomID: 1, SectionID: 10, TeacherID: 100, Day: Monday, Interval: iv("13:00", "14:00")},
		{RoomID: 2, SectionID: 20, TeacherID: 100, Day: Monday, Interval: iv("08:00", "09:00")},
		{RoomID: 3, SectionID: 30, TeacherID: 300, Day: Monday, Interval: iv("10:00", "11:00")},
		{RoomID: 1, SectionID: 10, TeacherID: 100, Day: Friday, Interval: iv("10:00", "11:00")},
	}
	candidate := Candidate{Day: Monday, RoomID: 1, SectionID: 99, TeacherID: 100}

	busy := BusyIntervals(candidate, existing)
	assert.Equal(t, []Interval{iv("08:00", "09:00"), iv("13:00", "14:00")}, busy)

	byDay := BusyByDay(candidate, existing)
	assert.Len(t, byDay[Friday], 1)
	assert.Empty(t, byDay[Sunday])
}
