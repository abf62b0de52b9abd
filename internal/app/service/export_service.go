package service

import (
	"bytes"
	"fmt"

	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

type ExportService interface {
	ExportLayout(m *model.ImageMap) (*bytes.Buffer, string, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

// ExportLayout renders a map's layout as an XLSX workbook: one sheet of
// sections, one of hotspots. Merchants use it to review or bulk-edit a
// layout outside the editor.
func (s *exportService) ExportLayout(m *model.ImageMap) (*bytes.Buffer, string, error) {
	logger.Info("Exporting image map layout", map[string]interface{}{
		"map_id":   m.ID,
		"sections": len(m.Sections),
		"hotspots": len(m.Hotspots),
	})

	f := excelize.NewFile()
	defer f.Close()

	sectionSheet := "Sections"
	hotspotSheet := "Hotspots"

	index, err := f.NewSheet(sectionSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(hotspotSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	sectionHeaders := []string{"ID", "Name", "Image URL", "Sort Order"}
	for col, h := range sectionHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sectionSheet, cell, h); err != nil {
			return nil, "", err
		}
	}
	for row, sec := range m.Sections {
		values := []interface{}{sec.ID, sec.Name, deref(sec.ImageURL), sec.SortOrder}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sectionSheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	hotspotHeaders := []string{"ID", "Section", "Product ID", "Label", "X (%)", "Y (%)", "Price Override", "Sort Order"}
	for col, h := range hotspotHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(hotspotSheet, cell, h); err != nil {
			return nil, "", err
		}
	}
	sectionNames := make(map[string]string, len(m.Sections))
	for _, sec := range m.Sections {
		sectionNames[sec.ID] = sec.Name
	}
	for row, h := range m.Hotspots {
		section := ""
		if h.SectionID != nil {
			section = sectionNames[*h.SectionID]
		}
		override := interface{}(nil)
		if h.PriceOverride != nil {
			override = *h.PriceOverride
		}
		values := []interface{}{
			h.ID, section, deref(h.ProductID), deref(h.Label),
			h.X, h.Y, override, h.SortOrder,
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(hotspotSheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("layout-%s.xlsx", m.ID)
	return buf, filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
