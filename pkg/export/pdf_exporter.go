package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape timetable grid.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Cells listed in
// data.Fills are painted with their colour and a contrasting text colour.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(8, 10, 8)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	firstCol := 22.0
	colWidth := (pageWidth - left - right - firstCol) / float64(max(len(data.Headers)-1, 1))
	width := func(i int) float64 {
		if i == 0 {
			return firstCol
		}
		return colWidth
	}

	pdf.SetFont("Arial", "B", 9)
	for i, header := range data.Headers {
		pdf.CellFormat(width(i), 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for r, row := range data.Rows {
		for i, header := range data.Headers {
			fill := false
			if hex, ok := data.Fills[CellKey(r, header)]; ok {
				if red, green, blue, err := hexToRGB(hex); err == nil {
					pdf.SetFillColor(red, green, blue)
					tr, tg, tb := ContrastRGB(red, green, blue)
					pdf.SetTextColor(tr, tg, tb)
					fill = true
				}
			}
			pdf.CellFormat(width(i), 6, row[header], "1", 0, "C", fill, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func hexToRGB(hex string) (int, int, int, error) {
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), nil
}
