package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetName       = "Bookings"
	idColumnRange   = sheetName + "!A:A"
	statusColumn    = "F"
	updatedColumn   = "J"
	lastColumn      = "J"
	cellTimeLayout  = "2006-01-02 15:04:05"
	cacheRefreshTTL = 30 * time.Second
)

var ErrRowNotFound = errors.New("booking row not found")

var headerRow = []interface{}{
	"ID", "Booker ID", "Item ID", "Start", "End", "Status",
	"Booker Name", "Item Name", "Created At", "Updated At",
}

// LedgerService mirrors bookings into the "Bookings" tab of a spreadsheet,
// one row per booking keyed by the id in column A.
type LedgerService struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zerolog.Logger

	rowCache map[int64]int
	cacheMu  sync.RWMutex
}

// NewLedgerService authenticates with a service account key file. Extra
// client options are appended after the credentials.
func NewLedgerService(ctx context.Context, credentialsFile, spreadsheetID string, logger *zerolog.Logger, opts ...option.ClientOption) (*LedgerService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(jwtConfig.Client(ctx))}, opts...)
	return NewLedgerServiceWithOptions(ctx, spreadsheetID, logger, opts...)
}

// NewLedgerServiceWithOptions builds the service from raw client options.
func NewLedgerServiceWithOptions(ctx context.Context, spreadsheetID string, logger *zerolog.Logger, opts ...option.ClientOption) (*LedgerService, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &LedgerService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		logger:        logger,
		rowCache:      make(map[int64]int),
	}, nil
}

// TestConnection reads the header cell.
func (s *LedgerService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

// EnsureHeader writes the column titles into row 1.
func (s *LedgerService) EnsureHeader(ctx context.Context) error {
	rangeData := fmt.Sprintf("%s!A1:%s1", sheetName, lastColumn)
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{headerRow},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// StartCacheRefresh warms the row cache now and then on every interval
// until ctx is done.
func (s *LedgerService) StartCacheRefresh(ctx context.Context, interval time.Duration) {
	refresh := func() {
		c, cancel := context.WithTimeout(ctx, cacheRefreshTTL)
		defer cancel()
		if err := s.WarmUpCache(c); err != nil {
			s.logger.Warn().Err(err).Msg("ledger cache warm up failed")
		}
	}

	refresh()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// WarmUpCache rebuilds the row index cache from the id column.
func (s *LedgerService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, idColumnRange).Context(ctx).Do()
	if err != nil {
		return err
	}

	cache := make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			cache[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	return nil
}

// AppendBooking adds a new row at the end of the sheet.
func (s *LedgerService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, idColumnRange, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row := rowFromRange(resp.Updates.UpdatedRange); row > 0 {
			s.setCachedRow(booking.ID, row)
		}
	}
	return nil
}

// UpsertBooking rewrites the booking's row or appends one when it is missing.
func (s *LedgerService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return errors.New("booking is nil")
	}

	rowIdx, err := s.FindBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.AppendBooking(ctx, booking)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:%s%d", sheetName, rowIdx, lastColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpdateBookingStatus sets the status and updated-at cells of a booking row.
func (s *LedgerService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!%s%d", sheetName, statusColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!%s%d", sheetName, updatedColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{time.Now().UTC().Format(cellTimeLayout)}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// DeleteBookingRow clears the booking's row. The row itself stays so cached
// indexes of the rows below remain valid.
func (s *LedgerService) DeleteBookingRow(ctx context.Context, bookingID int64) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:%s%d", sheetName, rowIdx, lastColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCachedRow(bookingID)
	}
	return err
}

// FindBookingRow returns the 1-based row of bookingID, reading column A on a
// cache miss.
func (s *LedgerService) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID <= 0 {
		return 0, errors.New("booking id is required")
	}

	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, idColumnRange).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellID(row) == bookingID {
			rowIdx := i + 1
			s.setCachedRow(bookingID, rowIdx)
			return rowIdx, nil
		}
	}
	return 0, ErrRowNotFound
}

// ClearCache drops every cached row index.
func (s *LedgerService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func (s *LedgerService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *LedgerService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *LedgerService) deleteCachedRow(id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

func bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.BookerID,
		b.ItemID,
		b.Start.UTC().Format(cellTimeLayout),
		b.End.UTC().Format(cellTimeLayout),
		string(b.Status),
		b.BookerName,
		b.ItemName,
		b.CreatedAt.UTC().Format(cellTimeLayout),
		b.UpdatedAt.UTC().Format(cellTimeLayout),
	}
}

// cellID reads the id cell; the API returns numbers as float64 or, with
// formatted values, as strings.
func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return id
	}
	return 0
}

var rangeRowRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// rowFromRange extracts the first row number from an A1 range such as
// "Bookings!A10:J10".
func rowFromRange(a1 string) int {
	m := rangeRowRe.FindStringSubmatch(a1)
	if m == nil {
		return 0
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return row
}
