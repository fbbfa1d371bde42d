package scheduling

import (
	"context"
	"errors"
	"fmt"
)

// Draft is a candidate plus the subject it would teach.
type Draft struct {
	Candidate
	SubjectID int64
}

// Decision is the outcome of a commit: either an accepted assignment or the blocking conflicts.
type Decision struct {
	Accepted   bool        `json:"accepted"`
	Assignment Assignment  `json:"assignment"`
	Conflicts  ConflictSet `json:"conflicts"`
}

// Book is the storage view a Serializer hands to the committer while the keys are held.
type Book interface {
	// Existing returns assignments on the candidate's day that share its room, section or teacher.
	Existing(ctx context.Context, c Candidate) ([]Assignment, error)
	// Insert persists a and returns it with its identifier. Constraint collisions are reported as ErrCommitRace.
	Insert(ctx context.Context, a Assignment) (Assignment, error)
}

// Serializer runs fn while holding every key, so that the existing-set seen by fn cannot go stale
// before the insert.
type Serializer interface {
	Serialize(ctx context.Context, keys []LockKey, fn func(ctx context.Context, book Book) error) error
}

// Decide runs the scanner and builds the assignment when no dimension conflicts.
func Decide(d Draft, existing []Assignment, w Window) (Decision, error) {
	conflicts, err := FindConflicts(d.Candidate, existing, w)
	if err != nil {
		return Decision{}, err
	}
	if !conflicts.Empty() {
		return Decision{Conflicts: conflicts}, nil
	}
	return Decision{
		Accepted: true,
		Assignment: Assignment{
			TeacherID: d.TeacherID,
			SubjectID: d.SubjectID,
			RoomID:    d.RoomID,
			SectionID: d.SectionID,
			Day:       d.Day,
			Interval:  d.Interval,
		},
		Conflicts: conflicts,
	}, nil
}

// Committer performs the serialized check-then-insert.
type Committer struct {
	window   Window
	attempts int
}

// NewCommitter builds a committer. attempts bounds re-scans after ErrCommitRace.
func NewCommitter(w Window, attempts int) *Committer {
	if attempts <= 0 {
		attempts = 3
	}
	return &Committer{window: w, attempts: attempts}
}

// Window returns the scheduling window used by the committer.
func (c *Committer) Window() Window { return c.window }

// Commit scans and, when conflict free, inserts the draft as one serialized operation.
func (c *Committer) Commit(ctx context.Context, s Serializer, d Draft) (Decision, error) {
	if err := d.Validate(c.window); err != nil {
		return Decision{}, err
	}
	keys := KeysFor(d.Candidate)
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		var decision Decision
		err := s.Serialize(ctx, keys, func(ctx context.Context, book Book) error {
			existing, err := book.Existing(ctx, d.Candidate)
			if err != nil {
				return err
			}
			decision, err = Decide(d, existing, c.window)
			if err != nil || !decision.Accepted {
				return err
			}
			decision.Assignment, err = book.Insert(ctx, decision.Assignment)
			return err
		})
		if err == nil {
			return decision, nil
		}
		if !errors.Is(err, ErrCommitRace) {
			return Decision{}, err
		}
		lastErr = err
	}
	return Decision{}, fmt.Errorf("commit gave up after %d attempts: %w", c.attempts, lastErr)
}
