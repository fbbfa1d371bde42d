package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

// ExportFormat is the rendered file type of a timetable export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportRequest selects whose timetable to export. The first non-zero of section, room and teacher wins.
type ExportRequest struct {
	SectionID int64
	RoomID    int64
	TeacherID int64
	Format    ExportFormat
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type timetableSource interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.TimetableEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// documentRenderer renders a titled grid, as the PDF and XLSX exporters do.
type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportMode int

const (
	exportBySection exportMode = iota
	exportByRoom
	exportByTeacher
)

// ExportService renders weekly timetable grids.
type ExportService struct {
	source  timetableSource
	csv     csvRenderer
	pdf     documentRenderer
	xlsx    documentRenderer
	palette *export.Palette
	window  scheduling.Window
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(source timetableSource, window scheduling.Window, palette *export.Palette, logger *zap.Logger, csv csvRenderer, pdf, xlsx documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if palette == nil {
		palette = export.NewPalette()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{source: source, csv: csv, pdf: pdf, xlsx: xlsx, palette: palette, window: window, logger: logger}
}

// Export renders the requested timetable.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	filter, mode, err := exportFilter(req)
	if err != nil {
		return nil, err
	}
	entries, err := s.source.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	title := exportTitle(req, mode, entries)
	dataset := s.buildGrid(entries, mode)

	var payload []byte
	var contentType string
	switch req.Format {
	case ExportFormatCSV, "":
		req.Format = ExportFormatCSV
		contentType = "text/csv"
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(dataset, title)
	case ExportFormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		payload, err = s.xlsx.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", req.Format))
	}
	if err != nil {
		s.logger.Error("failed to render timetable export", zap.String("format", string(req.Format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s_schedule.%s", sanitizeFilename(title), req.Format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func exportFilter(req ExportRequest) (models.ScheduleFilter, exportMode, error) {
	switch {
	case req.SectionID > 0:
		return models.ScheduleFilter{SectionID: req.SectionID}, exportBySection, nil
	case req.RoomID > 0:
		return models.ScheduleFilter{RoomID: req.RoomID}, exportByRoom, nil
	case req.TeacherID > 0:
		return models.ScheduleFilter{TeacherID: req.TeacherID}, exportByTeacher, nil
	}
	return models.ScheduleFilter{}, 0, appErrors.Clone(appErrors.ErrValidation, "missing sectionId, roomId or teacherId")
}

func exportTitle(req ExportRequest, mode exportMode, entries []models.TimetableEntry) string {
	switch mode {
	case exportByRoom:
		if len(entries) > 0 {
			return "Schedule for Room " + entries[0].RoomCode
		}
		return fmt.Sprintf("Schedule for Room ID %d", req.RoomID)
	case exportByTeacher:
		if len(entries) > 0 {
			return "Schedule for " + entries[0].TeacherName
		}
		return fmt.Sprintf("Schedule for Teacher ID %d", req.TeacherID)
	default:
		if len(entries) > 0 {
			return "Schedule for " + entries[0].SectionName
		}
		return fmt.Sprintf("Schedule for Section ID %d", req.SectionID)
	}
}

// buildGrid lays entries out as one row per window slot and one column per day. A meeting's label
// sits in its first slot and every slot it covers carries the subject colour.
func (s *ExportService) buildGrid(entries []models.TimetableEntry, mode exportMode) export.Dataset {
	days := scheduling.AllDays()
	headers := []string{"Time"}
	for _, d := range days {
		headers = append(headers, strings.ToUpper(d.String()[:3]))
	}

	slots := s.window.Slots()
	rows := make([]map[string]string, len(slots))
	for i, slot := range slots {
		rows[i] = map[string]string{"Time": slot.Format12Hour()}
	}
	fills := make(map[string]string)

	for _, e := range entries {
		start, err := scheduling.ParseTimeOfDay(e.StartTime)
		if err != nil {
			continue
		}
		end, err := scheduling.ParseTimeOfDay(e.EndTime)
		if err != nil && e.EndTime != "24:00" {
			continue
		}
		if e.EndTime == "24:00" {
			end = scheduling.MinutesPerDay
		}
		if e.DayID < 1 || e.DayID > len(days) {
			continue
		}
		column := headers[e.DayID]
		color := s.palette.Color(e.SubjectName)
		labelled := false
		for i, slot := range slots {
			if !(start < slot.Add(s.window.Granularity) && slot < end) {
				continue
			}
			if !labelled {
				rows[i][column] = cellLabel(e, mode)
				labelled = true
			}
			fills[export.CellKey(i, column)] = color
		}
	}

	return export.Dataset{Headers: headers, Rows: rows, Fills: fills}
}

func cellLabel(e models.TimetableEntry, mode exportMode) string {
	parts := []string{e.SubjectName}
	switch mode {
	case exportByTeacher:
		parts = append(parts, e.RoomCode, e.SectionName)
	case exportByRoom:
		parts = append(parts, e.TeacherName, e.SectionName)
	default:
		parts = append(parts, e.RoomCode, e.TeacherName)
	}
	return strings.Join(parts, " | ")
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

func sanitizeFilename(raw string) string {
	cleaned := strings.Join(strings.Fields(unsafeFilenameChars.ReplaceAllString(raw, "")), "_")
	if cleaned == "" {
		return "timetable"
	}
	if len(cleaned) > 100 {
		return cleaned[:100]
	}
	return cleaned
}
