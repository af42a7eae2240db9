package analytics

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"resumelift/internal/config"
	"resumelift/internal/errors"
)

// appendTimeout bounds a single spreadsheet append so a slow sink never
// stalls request handling for long.
const appendTimeout = 10 * time.Second

// Sink records usage events. Implementations must swallow their own
// failures; Record never returns an error.
type Sink interface {
	Record(ctx context.Context, session *Session, event Event)
}

// NopSink discards all events. Used when analytics is disabled.
type NopSink struct{}

func (NopSink) Record(_ context.Context, _ *Session, _ Event) {}

// SheetsSink appends one row per event to a Google spreadsheet:
// timestamp, session ID, event type, JSON details. Appends are
// independent; duplicate rows under retry are acceptable.
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *errors.Logger
}

// NewSheetsSink builds the spreadsheet sink from configuration. Inline
// credentials (e.g. loaded from Vault) take priority over a credentials
// file.
func NewSheetsSink(ctx context.Context, cfg *config.AnalyticsConfig, logger *errors.Logger) (*SheetsSink, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"analytics credentials file is not readable", err).
				WithContext("file", cfg.CredentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"analytics requires service account credentials", nil)
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeAnalyticsUnavailable,
			"failed to create Sheets service", err)
	}

	return &SheetsSink{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

// Record implements Sink. Failures are logged and swallowed; the caller
// never sees them.
func (s *SheetsSink) Record(ctx context.Context, session *Session, event Event) {
	appendCtx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()

	sessionID := ""
	if session != nil {
		sessionID = session.ID
	}
	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		sessionID,
		string(event.Type()),
		event.Details(),
	}
	valueRange := &sheets.ValueRange{
		Values: [][]any{row},
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, fmt.Sprintf("%s!A:D", s.sheetName), valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(appendCtx).
		Do()
	if err != nil {
		s.logger.Warn("Failed to append analytics row",
			"event_type", string(event.Type()),
			"spreadsheet_id", s.spreadsheetID,
			"error", err.Error())
		return
	}

	s.logger.Debug("Analytics event recorded",
		"event_type", string(event.Type()),
		"session_id", sessionID)
}
