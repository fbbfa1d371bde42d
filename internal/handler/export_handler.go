package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportFile, error)
}

// ExportHandler streams timetable grids as downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Schedules godoc
// @Summary Export a weekly timetable grid
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param sectionId query int false "Section ID"
// @Param roomId query int false "Room ID"
// @Param teacherId query int false "Teacher ID"
// @Param format query string false "csv, pdf or xlsx" default(pdf)
// @Success 200 {file} file
// @Router /exports/schedules [get]
func (h *ExportHandler) Schedules(c *gin.Context) {
	var req service.ExportRequest
	var ok bool
	if req.SectionID, ok = queryID(c, "sectionId"); !ok {
		return
	}
	if req.RoomID, ok = queryID(c, "roomId"); !ok {
		return
	}
	if req.TeacherID, ok = queryID(c, "teacherId"); !ok {
		return
	}
	req.Format = service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatPDF))))

	file, err := h.exports.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
