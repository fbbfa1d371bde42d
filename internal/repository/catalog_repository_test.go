package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestRoomRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE UPPER(code) = UPPER($1) LIMIT 1")).
		WithArgs("R-101").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByCode(context.Background(), "R-101", 0)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery("INSERT INTO rooms").
		WithArgs("R-101", "Room 101", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	room := &models.Room{Code: "R-101", Name: "Room 101"}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.Equal(t, int64(3), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "year", "course_id", "course_code", "created_at", "updated_at"}).
		AddRow(1, "BSCS 2A", 2, 4, "BSCS", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+sectionColumns+" FROM sections s JOIN courses c ON c.id = s.course_id WHERE 1=1 AND s.year = $1 AND UPPER(c.code) = UPPER($2) ORDER BY s.year ASC, s.name ASC LIMIT 20 OFFSET 0")).
		WithArgs(2, "bscs").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sections s JOIN courses c ON c.id = s.course_id WHERE 1=1 AND s.year = $1 AND UPPER(c.code) = UPPER($2)")).
		WithArgs(2, "bscs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.SectionFilter{Year: 2, Course: "bscs"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BSCS 2A", list[0].Name)
	assert.Equal(t, int64(4), list[0].CourseID)
	assert.Equal(t, "BSCS", list[0].CourseCode)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateStoresCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sections (name, year, course_id, created_at, updated_at)")).
		WithArgs("BSIT 1A", 1, int64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	section := &models.Section{Name: "BSIT 1A", Year: 1, CourseID: 2}
	require.NoError(t, repo.Create(context.Background(), section))
	assert.Equal(t, int64(9), section.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAndExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "created_at", "updated_at"}).
		AddRow(1, "BSCS", "Computer Science", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses WHERE 1=1 AND (LOWER(code) LIKE $1 OR LOWER(name) LIKE $1) ORDER BY code ASC LIMIT 20 OFFSET 0")).
		WithArgs("%computer%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE 1=1 AND (LOWER(code) LIKE $1 OR LOWER(name) LIKE $1)")).
		WithArgs("%computer%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE UPPER(code) = UPPER($1) LIMIT 1")).
		WithArgs("bscs").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE UPPER(code) = UPPER($1) LIMIT 1")).
		WithArgs("BSIT").
		WillReturnError(sql.ErrNoRows)

	ctx := context.Background()
	list, total, err := repo.List(ctx, models.CourseFilter{Search: "Computer"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BSCS", list[0].Code)
	assert.Equal(t, 1, total)

	exists, err := repo.ExistsByCode(ctx, "bscs")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByCode(ctx, "BSIT")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("BSCS", "Computer Science", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	course := &models.Course{Code: "BSCS", Name: "Computer Science"}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(5), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryExistsByNameYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sections WHERE LOWER(name) = LOWER($1) AND year = $2 LIMIT 1")).
		WithArgs("BSCS 2A", 2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByNameYear(context.Background(), "BSCS 2A", 2, 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET code = \\?, name = \\?, units = \\?").
		WithArgs("MATH101", "Algebra", 3, sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.Subject{ID: 4, Code: "MATH101", Name: "Algebra", Units: 3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
