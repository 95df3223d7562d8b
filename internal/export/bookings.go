package export

import (
	"fmt"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{"ID", "Item", "Booker", "Start", "End", "Status", "Period"}

var statusFill = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFF2CC",
	models.StatusApproved: "#E2EFDA",
	models.StatusRejected: "#F8CBAD",
	models.StatusCanceled: "#D9D9D9",
}

// FileName is the attachment name for an export made at now.
func FileName(state models.BookingState, now time.Time) string {
	if state == "" {
		state = models.StateAll
	}
	return fmt.Sprintf("bookings_%s_%s.xlsx", state, now.Format("20060102_150405"))
}

// WriteBookings renders bookings as an XLSX workbook into w. The Period
// column holds the PAST/CURRENT/FUTURE bucket relative to now.
func WriteBookings(w io.Writer, bookings []*models.Booking, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("error removing default sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	styles := make(map[models.BookingStatus]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating status style: %w", err)
		}
		styles[status] = id
	}

	for i, b := range bookings {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			b.ID,
			b.ItemName,
			b.BookerName,
			b.Start.In(time.Local).Format(models.TimeLayout),
			b.End.In(time.Local).Format(models.TimeLayout),
			string(b.Status),
			string(models.ClassifyBooking(b, now)),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing booking %d: %w", b.ID, err)
		}

		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(6, row)
			_ = f.SetCellStyle(SheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "C", 25)
	_ = f.SetColWidth(SheetName, "D", "E", 20)
	_ = f.SetColWidth(SheetName, "F", "G", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
