package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"opendoors/internal/logger"
)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService creates a new Google Sheets service. serviceAccountKey is
// either a path to a service-account JSON file or the JSON itself; when
// empty, GOOGLE_APPLICATION_CREDENTIALS and GOOGLE_CREDENTIALS are tried.
func NewSheetsService(ctx context.Context, sheetURL, serviceAccountKey string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	// Extract spreadsheet ID from URL
	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	creds, err := loadCredentials(serviceAccountKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

func loadCredentials(serviceAccountKey string) ([]byte, error) {
	key := strings.TrimSpace(serviceAccountKey)
	switch {
	case strings.HasPrefix(key, "{"):
		return []byte(key), nil
	case key != "":
		creds, err := os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account key: %w", err)
		}
		return creds, nil
	}

	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		return []byte(credsJSON), nil
	}
	return nil, fmt.Errorf("no service account key: set GOOGLE_SERVICE_ACCOUNT_KEY, GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// ReadRange reads values from a specified range in the spreadsheet
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	s.log.Debug().
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	s.log.Debug().
		Int("rows", len(resp.Values)).
		Str("range", rangeSpec).
		Msg("Successfully read range from spreadsheet")

	return resp.Values, nil
}

// WriteTable replaces the content of sheetName with rows. The first row is
// treated as a header and formatted bold. The sheet is created if missing.
func (s *Service) WriteTable(ctx context.Context, sheetName string, rows [][]interface{}) error {
	const op = "WriteTable"

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Writing table to Google Sheet")

	sheetID, err := s.ensureSheet(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	_, err = s.sheetsService.Spreadsheets.Values.Clear(s.spreadsheetID, sheetName, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to clear sheet: %w", op, err)
	}

	if len(rows) == 0 {
		return nil
	}

	_, err = s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		sheetName+"!A1",
		&sheets.ValueRange{Values: rows},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to write values: %w", op, err)
	}

	if err := s.formatHeaders(ctx, sheetID, int64(maxWidth(rows))); err != nil {
		s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
	}

	s.log.Info().
		Int("rows_written", len(rows)).
		Msg("Successfully wrote table to Google Sheet")

	return nil
}

// ensureSheet returns the id of sheetName, creating the sheet if needed.
func (s *Service) ensureSheet(ctx context.Context, sheetName string) (int64, error) {
	const op = "ensureSheet"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, nil
		}
	}

	s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

	batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}}},
		},
	}
	resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to create sheet: %w", op, err)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// formatHeaders makes the header row bold and auto-resizes the columns
func (s *Service) formatHeaders(ctx context.Context, sheetID, columns int64) error {
	const op = "formatHeaders"

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
						BackgroundColor: &sheets.Color{
							Red:   0.9,
							Green: 0.9,
							Blue:  0.9,
						},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
	}

	batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}

	return nil
}

func maxWidth(rows [][]interface{}) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
