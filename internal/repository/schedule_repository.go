package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
)

// ErrReferenceNotFound is returned when a schedule points at a teacher, subject, room or section that does not exist.
var ErrReferenceNotFound = errors.New("referenced record not found")

const scheduleColumns = "id, teacher_id, subject_id, room_id, section_id, day_id, start_minutes, end_minutes, created_at"

const scheduleDetailQuery = `SELECT s.id, s.teacher_id, s.subject_id, s.room_id, s.section_id, s.day_id, s.start_minutes, s.end_minutes, s.created_at,
	t.name AS teacher_name, sub.name AS subject_name, sub.code AS subject_code, r.code AS room_code, r.name AS room_name,
	sec.name AS section_name, sec.year AS section_year
	FROM schedules s
	JOIN teachers t ON t.id = s.teacher_id
	JOIN subjects sub ON sub.id = s.subject_id
	JOIN rooms r ON r.id = s.room_id
	JOIN sections sec ON sec.id = s.section_id`

// Postgres SQLSTATE codes surfaced by schedule writes.
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqExclusionViolation   = "23P01"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// ScheduleRepository provides persistence for timetable assignments and serializes commits.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListDetails returns denormalised timetable rows for the filter, ordered by day and start.
func (r *ScheduleRepository) ListDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.SectionID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.RoomID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.day_id = $%d", len(args)+1))
		args = append(args, filter.DayID)
	}

	query := scheduleDetailQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.day_id ASC, s.start_minutes ASC, s.id ASC"

	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return details, nil
}

// FindDetails loads display rows for the given schedule ids.
func (r *ScheduleRepository) FindDetails(ctx context.Context, ids []int64) ([]models.ScheduleDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := scheduleDetailQuery + " WHERE s.id = ANY($1) ORDER BY s.start_minutes ASC, s.id ASC"
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find schedule details: %w", err)
	}
	return details, nil
}

// FindByID fetches a schedule row by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, "SELECT "+scheduleColumns+" FROM schedules WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListInvolving returns every schedule, on any day, that shares the room, section or teacher.
// Zero ids are ignored.
func (r *ScheduleRepository) ListInvolving(ctx context.Context, roomID, sectionID, teacherID int64) ([]models.Schedule, error) {
	const query = "SELECT " + scheduleColumns + ` FROM schedules
		WHERE ($1::bigint > 0 AND room_id = $1) OR ($2::bigint > 0 AND section_id = $2) OR ($3::bigint > 0 AND teacher_id = $3)
		ORDER BY day_id ASC, start_minutes ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, roomID, sectionID, teacherID); err != nil {
		return nil, fmt.Errorf("list involving schedules: %w", err)
	}
	return schedules, nil
}

// Delete removes a schedule.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "schedules", id)
}

// Serialize runs fn in a transaction holding a transaction-scoped advisory lock per key.
// Keys arrive sorted, so concurrent commits acquire locks in the same order.
func (r *ScheduleRepository) Serialize(ctx context.Context, keys []scheduling.LockKey, fn func(ctx context.Context, book scheduling.Book) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryKey(key)); err != nil {
			return mapScheduleError(fmt.Errorf("lock %s: %w", key, err))
		}
	}

	if err = fn(ctx, &scheduleBook{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapScheduleError(fmt.Errorf("commit schedule tx: %w", err))
	}
	return nil
}

type scheduleBook struct {
	tx *sqlx.Tx
}

func (b *scheduleBook) Existing(ctx context.Context, c scheduling.Candidate) ([]scheduling.Assignment, error) {
	const query = "SELECT " + scheduleColumns + ` FROM schedules
		WHERE day_id = $1 AND (room_id = $2 OR section_id = $3 OR teacher_id = $4)
		ORDER BY start_minutes ASC`
	var rows []models.Schedule
	if err := b.tx.SelectContext(ctx, &rows, query, int(c.Day), c.RoomID, c.SectionID, c.TeacherID); err != nil {
		return nil, fmt.Errorf("load existing schedules: %w", err)
	}
	out := make([]scheduling.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Assignment())
	}
	return out, nil
}

func (b *scheduleBook) Insert(ctx context.Context, a scheduling.Assignment) (scheduling.Assignment, error) {
	row := models.ScheduleFromAssignment(a)
	const query = `INSERT INTO schedules (teacher_id, subject_id, room_id, section_id, day_id, start_minutes, end_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := b.tx.QueryRowxContext(ctx, query, row.TeacherID, row.SubjectID, row.RoomID, row.SectionID, row.DayID, row.StartMinutes, row.EndMinutes).Scan(&a.ID)
	if err != nil {
		return scheduling.Assignment{}, mapScheduleError(fmt.Errorf("insert schedule: %w", err))
	}
	return a, nil
}

// mapScheduleError translates constraint violations into scheduling outcomes.
func mapScheduleError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqExclusionViolation, pqUniqueViolation, pqSerializationFailure, pqDeadlockDetected:
		return fmt.Errorf("%w: %w", scheduling.ErrCommitRace, err)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, pqErr.Constraint)
	}
	return err
}

func advisoryKey(k scheduling.LockKey) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("schedule:" + k.String()))
	return int64(h.Sum64())
}

var _ scheduling.Serializer = (*ScheduleRepository)(nil)
