package scheduling

import "errors"

var (
	// ErrInvalidTimeFormat is returned for malformed "HH:MM" input.
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrInvalidInterval is returned when end <= start or the interval leaves the scheduling window.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidDuration is returned for durations outside the supported policy.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidDay is returned for day values outside Monday..Sunday.
	ErrInvalidDay = errors.New("invalid day")
	// ErrInvalidCandidate wraps every validation failure raised before a scan.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrCommitRace is reported by a Book when an insert collides with a concurrent commit.
	ErrCommitRace = errors.New("concurrent commit race")
)
