package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("9:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+5), got)
	assert.Equal(t, "09:05", got.String())
	assert.InDelta(t, 9.0833, got.Hours(), 0.001)

	for _, raw := range []string{"", "9", "09:5", "24:00", "12:60", "ab:cd", "123:00", "-1:00"} {
		_, err := ParseTimeOfDay(raw)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, raw)
	}
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m++ {
		tod := TimeOfDay(m)
		parsed, err := ParseTimeOfDay(tod.String())
		require.NoError(t, err)
		require.Equal(t, tod, parsed)

		twelve, err := Parse12Hour(tod.Format12Hour())
		require.NoError(t, err)
		require.Equal(t, tod, twelve)
	}
}

func TestParseClock(t *testing.T) {
	for raw, want := range map[string]string{"07:00": "07:00", "7:00 AM": "07:00", "7:30 pm": "19:30", "12:00 AM": "00:00"} {
		got, err := ParseClock(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got.String(), raw)
	}
	_, err := ParseClock("7am")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestFormat12Hour(t *testing.T) {
	assert.Equal(t, "1:30 PM", MustTime("13:30").Format12Hour())
	assert.Equal(t, "12:00 AM", MustTime("00:00").Format12Hour())
	assert.Equal(t, "12:15 PM", MustTime("12:15").Format12Hour())
	assert.Equal(t, "7:00 AM", MustTime("07:00").Format12Hour())

	_, err := Parse12Hour("13:00 PM")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, d)

	d, err = ParseDay("Thu")
	require.NoError(t, err)
	assert.Equal(t, Thursday, d)

	d, err = ParseDay("7")
	require.NoError(t, err)
	assert.Equal(t, Sunday, d)
	assert.Equal(t, "Sunday", d.String())

	for _, raw := range []string{"0", "8", "T", "someday"} {
		_, err := ParseDay(raw)
		assert.ErrorIs(t, err, ErrInvalidDay, raw)
	}
}
