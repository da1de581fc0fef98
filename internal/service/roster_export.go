package service

import (
	"bytes"
	"context"
	"fmt"

	"festflow/internal/repository"

	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Accommodation"

// RosterHeader 住宿名单表头
var RosterHeader = []string{
	"Building",
	"Room No",
	"Room Gender",
	"Capacity",
	"Participant ID",
	"Name",
	"Phone",
	"Email",
	"Merch Size",
}

var rosterColumnWidths = []float64{20, 10, 12, 10, 38, 25, 15, 30, 12}

// RosterExporter 导出全部预留为 Excel
type RosterExporter struct {
	rooms repository.RoomsRepository
}

func NewRosterExporter(rooms repository.RoomsRepository) *RosterExporter {
	return &RosterExporter{rooms: rooms}
}

// Export 生成 xlsx 内容
func (e *RosterExporter) Export(ctx context.Context) ([]byte, error) {
	entries, err := e.rooms.ListRoster(ctx)
	if err != nil {
		return nil, storeError("roster.export", err)
	}

	f := excelize.NewFile()
	// WriteTo 之前文件必须保持打开，不使用 defer Close

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RosterHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(rosterSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(rosterSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(rosterSheet, name, name, rosterColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, entry := range entries {
		row := []any{
			entry.Room.BuildingName,
			entry.Room.RoomNo,
			string(entry.Room.Gender),
			entry.Room.MaxCapacity,
			entry.Participant.ParticipantID,
			entry.Participant.Name,
			entry.Participant.Phone.String,
			entry.Participant.Email.String,
			string(entry.Participant.MerchSize),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(rosterSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
