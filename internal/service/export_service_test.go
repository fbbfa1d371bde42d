package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type timetableStub struct {
	entries []models.TimetableEntry
	filter  models.ScheduleFilter
	err     error
}

func (s *timetableStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.TimetableEntry, error) {
	s.filter = filter
	return s.entries, s.err
}

func sampleEntries() []models.TimetableEntry {
	return []models.TimetableEntry{
		{ScheduleID: 1, DayID: 1, StartTime: "08:00", EndTime: "09:30", SubjectName: "Algebra", RoomCode: "R-101", TeacherName: "Ada Reyes", SectionName: "BSCS 1A"},
		{ScheduleID: 2, DayID: 3, StartTime: "13:00", EndTime: "14:00", SubjectName: "Physics", RoomCode: "LAB-1", TeacherName: "Lin Cruz", SectionName: "BSCS 1A"},
	}
}

func newExportServiceForTest(source timetableSource) (*ExportService, *export.Palette) {
	palette := export.NewPalette()
	return NewExportService(source, scheduling.DefaultWindow, palette, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter()), palette
}

func TestExportServiceCSVGrid(t *testing.T) {
	source := &timetableStub{entries: sampleEntries()}
	svc, palette := newExportServiceForTest(source)

	file, err := svc.Export(context.Background(), ExportRequest{SectionID: 8, Format: ExportFormatCSV})
	require.NoError(t, err)
	assert.Equal(t, "Schedule_for_BSCS_1A_schedule.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, int64(8), source.filter.SectionID)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 25)
	assert.Equal(t, []string{"Time", "MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}, records[0])
	assert.Equal(t, "7:00 AM", records[1][0])
	// 08:00 is the third slot.
	assert.Equal(t, "8:00 AM", records[3][0])
	assert.Equal(t, "Algebra | R-101 | Ada Reyes", records[3][1])
	assert.Equal(t, "", records[4][1])
	assert.Equal(t, "Physics | LAB-1 | Lin Cruz", records[13][3])
	assert.Equal(t, 2, palette.Len())
}

func TestExportServiceGridFills(t *testing.T) {
	svc, palette := newExportServiceForTest(&timetableStub{})
	grid := svc.buildGrid(sampleEntries(), exportBySection)

	color := palette.Color("Algebra")
	assert.Equal(t, color, grid.Fills[export.CellKey(2, "MON")])
	assert.Equal(t, color, grid.Fills[export.CellKey(3, "MON")])
	assert.Equal(t, color, grid.Fills[export.CellKey(4, "MON")])
	_, spilled := grid.Fills[export.CellKey(5, "MON")]
	assert.False(t, spilled)
}

func TestExportServiceXLSXColoursSubjects(t *testing.T) {
	svc, palette := newExportServiceForTest(&timetableStub{entries: sampleEntries()})

	file, err := svc.Export(context.Background(), ExportRequest{TeacherID: 7, Format: ExportFormatXLSX})
	require.NoError(t, err)
	assert.Equal(t, "Schedule_for_Ada_Reyes_schedule.xlsx", file.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	// Title, header, then the 07:00 row; 08:00 Monday lands in B5.
	label, err := book.GetCellValue("Timetable", "B5")
	require.NoError(t, err)
	assert.Equal(t, "Algebra | R-101 | BSCS 1A", label)
	slot, _ := book.GetCellValue("Timetable", "A5")
	assert.Equal(t, "8:00 AM", slot)

	for _, cell := range []string{"B5", "B6", "B7"} {
		id, err := book.GetCellStyle("Timetable", cell)
		require.NoError(t, err)
		style, err := book.GetStyle(id)
		require.NoError(t, err)
		require.NotEmpty(t, style.Fill.Color, cell)
		assert.True(t, strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), palette.Color("Algebra")), cell)
	}
	filledID, _ := book.GetCellStyle("Timetable", "B7")
	plainID, _ := book.GetCellStyle("Timetable", "B8")
	assert.NotEqual(t, filledID, plainID)
}

func TestExportServicePDFAndRoomTitle(t *testing.T) {
	svc, _ := newExportServiceForTest(&timetableStub{entries: sampleEntries()})

	file, err := svc.Export(context.Background(), ExportRequest{RoomID: 1, Format: ExportFormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Schedule_for_Room_R101_schedule.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceRejectsBadRequests(t *testing.T) {
	svc, _ := newExportServiceForTest(&timetableStub{})

	_, err := svc.Export(context.Background(), ExportRequest{Format: ExportFormatCSV})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), ExportRequest{TeacherID: 1, Format: "docx"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	failing, _ := newExportServiceForTest(&timetableStub{err: errors.New("boom")})
	_, err = failing.Export(context.Background(), ExportRequest{TeacherID: 1})
	assert.Error(t, err)
}
