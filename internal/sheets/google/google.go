package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"ledgerbot/internal/core"
	ports "ledgerbot/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the Sheets row store.
type Options struct {
	SpreadsheetID string
	// SheetName is the worksheet title. When no worksheet has that title,
	// SheetID (the numeric gid) is tried. Both empty selects the first worksheet.
	SheetName string
	SheetID   int64 // -1 when unset

	CredentialsJSON   string
	CredentialsBase64 string
	CredentialsFile   string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64

	mu          sync.Mutex
	title       string
	headerReady bool
}

// Ensure interface conformance
var _ ports.RowStore = (*Client)(nil)

// New authenticates with a service account and resolves the target worksheet.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentialsJSON(opts)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := newClient(svc, opts)
	if _, err := c.sheetTitle(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		sheetID:       opts.SheetID,
	}
}

// credentialsJSON decodes service account credentials from inline JSON,
// base64-encoded JSON, or a file, in that order of preference.
func credentialsJSON(opts Options) ([]byte, error) {
	switch {
	case opts.CredentialsJSON != "":
		return []byte(opts.CredentialsJSON), nil
	case opts.CredentialsBase64 != "":
		b, err := base64.StdEncoding.DecodeString(opts.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode base64 service account: %w", err)
		}
		return b, nil
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_BASE64, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// sheetTitle resolves and memoizes the worksheet title.
func (c *Client) sheetTitle(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title != "" {
		return c.title, nil
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	title, err := resolveSheet(ss.Sheets, c.sheetName, c.sheetID)
	if err != nil {
		return "", err
	}
	c.title = title
	return title, nil
}

// resolveSheet finds a worksheet by title, falling back to its numeric ID.
func resolveSheet(sheets []*gsheet.Sheet, name string, id int64) (string, error) {
	var byID string
	for _, s := range sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		if name != "" && s.Properties.Title == name {
			return s.Properties.Title, nil
		}
		if id >= 0 && s.Properties.SheetId == id && byID == "" {
			byID = s.Properties.Title
		}
	}
	if byID != "" {
		return byID, nil
	}
	if name == "" && id < 0 {
		for _, s := range sheets {
			if s != nil && s.Properties != nil {
				return s.Properties.Title, nil
			}
		}
		return "", errors.New("spreadsheet has no worksheets")
	}
	return "", fmt.Errorf("worksheet not found (name %q, id %d)", name, id)
}

// a1 builds an A1 range for the worksheet, quoting the title.
func a1(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}

func lastColumn() string {
	return string(rune('A' + len(core.Headers) - 1))
}

// AppendRow appends fields as one row. Values are written RAW so dates stay
// ISO-8601 strings instead of being reinterpreted by the sheet locale.
func (c *Client) AppendRow(ctx context.Context, fields []any) error {
	title, err := c.sheetTitle(ctx)
	if err != nil {
		return err
	}
	if err := c.ensureHeader(ctx, title); err != nil {
		return err
	}
	rng := a1(title, "A:"+lastColumn())
	vr := &gsheet.ValueRange{Values: [][]any{fields}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", rng, err)
	}
	return nil
}

// ensureHeader writes the header row into an empty worksheet.
func (c *Client) ensureHeader(ctx context.Context, title string) error {
	c.mu.Lock()
	ready := c.headerReady
	c.mu.Unlock()
	if ready {
		return nil
	}
	rng := a1(title, "A1:"+lastColumn()+"1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		header := make([]any, len(core.Headers))
		for i, h := range core.Headers {
			header[i] = h
		}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Wrote ledger header row", "sheet", title)
	}
	c.mu.Lock()
	c.headerReady = true
	c.mu.Unlock()
	return nil
}

// ReadAllRecords returns every data row keyed by header.
func (c *Client) ReadAllRecords(ctx context.Context) ([]core.Row, error) {
	title, err := c.sheetTitle(ctx)
	if err != nil {
		return nil, err
	}
	rng := a1(title, "A:"+lastColumn())
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return rowsFromValues(resp.Values), nil
}

// rowsFromValues converts a values matrix into keyed rows. When the first row
// carries a Date header it names the columns; otherwise columns are taken
// positionally in core.Headers order. Blank rows are dropped.
func rowsFromValues(values [][]any) []core.Row {
	if len(values) == 0 {
		return nil
	}
	headers := core.Headers
	start := 0
	if first := toStrings(values[0]); indexOf(first, core.ColumnDate) >= 0 {
		headers = first
		start = 1
	}
	out := make([]core.Row, 0, len(values)-start)
	for _, vals := range values[start:] {
		if isBlankRow(vals) {
			continue
		}
		r := make(core.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(vals) {
				r[h] = vals[i]
			} else {
				r[h] = nil
			}
		}
		out = append(out, r)
	}
	return out
}

func isBlankRow(vals []any) bool {
	for _, v := range vals {
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
