package export

import (
	"bytes"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	bookings := []*models.Booking{
		{ID: 1, ItemName: "Drill", BookerName: "Ann", Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour), Status: models.StatusApproved},
		{ID: 2, ItemName: "Saw", BookerName: "Bob", Start: now.Add(-time.Hour), End: now.Add(time.Hour), Status: models.StatusWaiting},
		{ID: 3, ItemName: "Ladder", BookerName: "Eve", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: models.StatusRejected},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, bookings, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"ID", "Item", "Booker", "Start", "End", "Status", "Period"}, rows[0])
	assert.Equal(t, []string{"1", "Drill", "Ann", "2025-05-30T12:00:00", "2025-05-31T12:00:00", "APPROVED", "PAST"}, rows[1])
	assert.Equal(t, "CURRENT", rows[2][6])
	assert.Equal(t, "FUTURE", rows[3][6])

	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
}

func TestWriteBookings_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "bookings_ALL_20250601_093000.xlsx", FileName("", now))
	assert.Equal(t, "bookings_PAST_20250601_093000.xlsx", FileName(models.StatePast, now))
}
