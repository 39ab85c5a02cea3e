package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"asset-importer/core/ingest"
	"asset-importer/core/store"
	"asset-importer/core/utils"

	"github.com/xuri/excelize/v2"
)

// PreferredSheet is read when present; otherwise the first sheet is used.
const PreferredSheet = "Vulnerabilities"

// Column headers, matched case-insensitively.
const (
	ColHostname        = "hostname"
	ColLocalIP         = "local ip"
	ColHostGroups      = "host groups"
	ColCloudAccountID  = "cloud service account id"
	ColCloudInstanceID = "cloud service instance id"
	ColOSVersion       = "os version"
	ColADDomain        = "active directory domain"
	ColVulnerabilityID = "vulnerability id"
	ColCVSSSeverity    = "cvss severity"
	ColProductVersions = "vulnerable product versions"
	ColDaysOpen        = "days open"
)

var requiredColumns = []string{ColHostname, ColVulnerabilityID}

// MaxDaysOpen bounds the "Days open" column to a century.
const MaxDaysOpen = 36500

var zipMagic = []byte("PK\x03\x04")

// Parser reads vulnerability exports as .xlsx workbooks or CSV files with the
// same header row.
type Parser struct {
	now func() time.Time
}

// New creates a parser using the wall clock for discovery timestamps.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock creates a parser with a fixed time source.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Source implements ingest.Parser.
func (p *Parser) Source() string {
	return ingest.SourceSpreadsheet
}

// Parse implements ingest.Parser.
func (p *Parser) Parse(raw []byte) ([]ingest.Record, []ingest.Warning, error) {
	var (
		rows [][]string
		err  error
	)
	if bytes.HasPrefix(raw, zipMagic) {
		rows, err = readWorkbook(raw)
	} else {
		rows, err = readCSV(raw)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, ingest.NewFormatError(ingest.SourceSpreadsheet, "missing header row", nil)
	}

	cols := indexHeader(rows[0])
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, nil, ingest.NewFormatError(ingest.SourceSpreadsheet, fmt.Sprintf("missing required column %q", req), nil)
		}
	}

	now := p.now().UTC()
	var (
		records  []ingest.Record
		warnings []ingest.Warning
	)
	for i, row := range rows[1:] {
		locator := i + 1
		if isBlank(row) {
			continue
		}
		rec, err := buildRecord(cols, row, now)
		if err != nil {
			warnings = append(warnings, ingest.Warning{Row: locator, Reason: err.Error()})
			continue
		}
		rec.Row = locator
		records = append(records, rec)
	}
	return records, warnings, nil
}

type columns map[string]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(h), " "))
		if _, dup := cols[key]; !dup && key != "" {
			cols[key] = i
		}
	}
	return cols
}

// cell returns the trimmed value of a column, or nil when the column is
// missing or the cell is empty.
func (c columns) cell(row []string, name string) *string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return nil
	}
	return ingest.Clean(row[i])
}

func buildRecord(cols columns, row []string, now time.Time) (ingest.Record, error) {
	rec := ingest.Record{
		Hostname:        cols.cell(row, ColHostname),
		IP:              cols.cell(row, ColLocalIP),
		Domain:          cols.cell(row, ColADDomain),
		CloudAccountID:  cols.cell(row, ColCloudAccountID),
		CloudInstanceID: cols.cell(row, ColCloudInstanceID),
		OSVersion:       cols.cell(row, ColOSVersion),
	}
	if rec.Hostname == nil {
		return rec, ingest.ErrMissingHostname
	}
	if g := cols.cell(row, ColHostGroups); g != nil {
		rec.Groups = ingest.SplitGroups(*g)
	}

	ev := ingest.Event{Kind: store.KindVulnerability}
	if id := cols.cell(row, ColVulnerabilityID); id != nil {
		ev.VulnerabilityID = *id
	}
	if pv := cols.cell(row, ColProductVersions); pv != nil {
		ev.ProductVersions = *pv
	}
	if sev := cols.cell(row, ColCVSSSeverity); sev != nil {
		score, label, err := ingest.ParseSeverity(*sev)
		if err != nil {
			return rec, fmt.Errorf("invalid CVSS severity: %w", err)
		}
		ev.CVSSScore = score
		ev.Severity = label
	}
	if d := cols.cell(row, ColDaysOpen); d != nil {
		days, ok := utils.ToInt(*d)
		if !ok {
			return rec, fmt.Errorf("days open %q is not a number", *d)
		}
		if days > MaxDaysOpen {
			return rec, fmt.Errorf("days open %d is out of range", days)
		}
		ev.DaysOpen = &days
		if days >= 0 {
			discovered := now.AddDate(0, 0, -days)
			ev.ObservedAt = &discovered
		}
	}
	rec.Event = ev
	return rec, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readWorkbook(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, ingest.NewFormatError(ingest.SourceSpreadsheet, "not a readable workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ingest.NewFormatError(ingest.SourceSpreadsheet, "workbook has no sheets", nil)
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, PreferredSheet) {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ingest.NewFormatError(ingest.SourceSpreadsheet, fmt.Sprintf("sheet %q is unreadable", sheet), err)
	}
	return rows, nil
}

func readCSV(raw []byte) ([][]string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ingest.NewFormatError(ingest.SourceSpreadsheet, "not a readable CSV file", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
