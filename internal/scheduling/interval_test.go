package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(start, end string) Interval {
	return Interval{Start: MustTime(start), End: MustTime(end)}
}

func TestOverlapsTouchingIntervals(t *testing.T) {
	assert.False(t, Overlaps(iv("09:00", "10:00"), iv("10:00", "11:00")))
	assert.False(t, Overlaps(iv("10:00", "11:00"), iv("09:00", "10:00")))
}

func TestOverlapsStrict(t *testing.T) {
	assert.True(t, Overlaps(iv("09:00", "10:00"), iv("09:30", "10:30")))
	assert.True(t, Overlaps(iv("09:00", "12:00"), iv("10:00", "11:00")))
	assert.True(t, Overlaps(iv("09:00", "10:00"), iv("09:00", "10:00")))
}

func TestOverlapsSymmetric(t *testing.T) {
	var all []Interval
	for s := 7 * 60; s < 12*60; s += 30 {
		for e := s + 30; e <= 12*60; e += 30 {
			all = append(all, Interval{Start: TimeOfDay(s), End: TimeOfDay(e)})
		}
	}
	for _, a := range all {
		for _, b := range all {
			require.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
		}
	}
}

func TestNewIntervalRejectsEmpty(t *testing.T) {
	_, err := NewInterval(MustTime("09:00"), MustTime("09:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewInterval(MustTime("10:00"), MustTime("09:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	got, err := IntervalOf(MustTime("23:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, "23:00-24:00", got.String())
	assert.Equal(t, 60, got.Minutes())

	_, err = IntervalOf(MustTime("23:30"), 60)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestWindowContains(t *testing.T) {
	w := DefaultWindow
	require.NoError(t, w.Validate())
	assert.True(t, w.Contains(iv("07:00", "19:00")))
	assert.False(t, w.Contains(iv("06:30", "08:00")))
	assert.False(t, w.Contains(iv("18:30", "19:30")))
	assert.True(t, w.Aligned(MustTime("10:30")))
	assert.False(t, w.Aligned(MustTime("10:15")))
	assert.Len(t, w.Slots(), 24)

	ragged := Window{Start: w.Start, End: w.End.Add(15), Granularity: 30}
	assert.ErrorIs(t, ragged.Validate(), ErrInvalidInterval)
}
