package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/scheduling"
	"github.com/noah-isme/timetable-api/pkg/config"
)

func TestSchedulingWindowFromConfig(t *testing.T) {
	w, err := schedulingWindow(config.SchedulerConfig{WindowStart: "07:00", WindowEnd: "19:00", GranularityMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, scheduling.DefaultWindow, w)

	_, err = schedulingWindow(config.SchedulerConfig{WindowStart: "19:00", WindowEnd: "07:00", GranularityMinutes: 30})
	assert.ErrorIs(t, err, scheduling.ErrInvalidInterval)

	_, err = schedulingWindow(config.SchedulerConfig{WindowStart: "7am", WindowEnd: "19:00", GranularityMinutes: 30})
	assert.ErrorIs(t, err, scheduling.ErrInvalidTimeFormat)

	w, err = schedulingWindow(config.SchedulerConfig{WindowStart: "7:00 AM", WindowEnd: "7:00 PM", GranularityMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, scheduling.DefaultWindow, w)

	_, err = schedulingWindow(config.SchedulerConfig{WindowStart: "07:00", WindowEnd: "19:15", GranularityMinutes: 30})
	assert.ErrorIs(t, err, scheduling.ErrInvalidInterval)
}
