// Package google appends journal entries to a Google Sheets ledger.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"projecthub/internal/log"
	ports "projecthub/internal/sheets"
	"projecthub/internal/storage"
)

var _ ports.LedgerWriter = (*Ledger)(nil)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Ledger struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger

	headerMu   sync.Mutex
	headerDone bool
}

// NewLedger builds a ledger client with service account credentials. Extra
// client options are appended after the credentials.
func NewLedger(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Ledger, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Ledger"
	}

	var clientOpts []goption.ClientOption
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		)
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger = logger.WithComponent(log.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets ledger ready", "sheet", sheet)
	return &Ledger{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger,
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return raw, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ensureHeader writes the header row when the sheet is empty. Only a
// successful check is remembered; a failed one is retried on the next
// append.
func (l *Ledger) ensureHeader(ctx context.Context) error {
	l.headerMu.Lock()
	defer l.headerMu.Unlock()
	if l.headerDone {
		return nil
	}

	rng := fmt.Sprintf("%s!A1:E1", l.sheet)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ledger header: %w", err)
	}
	if len(resp.Values) == 0 {
		vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
		_, err = l.svc.Spreadsheets.Values.Update(l.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	l.headerDone = true
	return nil
}

// AppendEntry appends one row after the last non-empty row and returns the
// updated range.
func (l *Ledger) AppendEntry(ctx context.Context, e storage.Entry) (string, error) {
	if l.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := l.ensureHeader(ctx); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:E", l.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(e)}}
	resp, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", l.sheet, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	l.logger.InfoContext(ctx, "Ledger row appended",
		log.FieldEventID, e.EventID,
		log.FieldAction, string(e.Action),
		"range", ref)
	return ref, nil
}
