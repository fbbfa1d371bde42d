package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Timetable"

// XLSXExporter renders datasets into a single-sheet workbook. Cells listed in data.Fills get a
// solid background in their colour with contrasting bold text.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the title in the first row, headers in the next and one row per dataset row after.
func (e *XLSXExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerRow := 1
	if title != "" {
		if err := f.SetCellValue(xlsxSheet, "A1", title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(data.Headers), 1)
		if err := f.MergeCell(xlsxSheet, "A1", last); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		headerRow = 2
	}

	bordered := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    bordered,
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	plainStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    bordered,
	})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}

	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(xlsxSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
	}

	fillStyles := make(map[string]int)
	for r, row := range data.Rows {
		for i, header := range data.Headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, headerRow+1+r)
			if err := f.SetCellValue(xlsxSheet, cell, row[header]); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
			style := plainStyle
			if hex, ok := data.Fills[CellKey(r, header)]; ok {
				if style, err = fillStyle(f, fillStyles, hex, bordered); err != nil {
					return nil, err
				}
			}
			if err := f.SetCellStyle(xlsxSheet, cell, cell, style); err != nil {
				return nil, fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	_ = f.SetColWidth(xlsxSheet, "A", "A", 12)
	if len(data.Headers) > 1 {
		_ = f.SetColWidth(xlsxSheet, "B", lastCol, 24)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// fillStyle returns the style id for a background colour, creating it once per workbook.
func fillStyle(f *excelize.File, cache map[string]int, hex string, border []excelize.Border) (int, error) {
	if id, ok := cache[hex]; ok {
		return id, nil
	}
	r, g, b, err := hexToRGB(hex)
	if err != nil {
		return 0, err
	}
	fr, fg, fb := ContrastRGB(r, g, b)
	id, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + hex}},
		Font:      &excelize.Font{Bold: true, Color: fmt.Sprintf("#%02X%02X%02X", fr, fg, fb)},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return 0, fmt.Errorf("fill style %s: %w", hex, err)
	}
	cache[hex] = id
	return id, nil
}
