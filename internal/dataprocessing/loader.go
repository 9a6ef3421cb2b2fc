package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"festivalpulse/pkg/contracts/domain"
)

// syntheticEpoch is the fixed start for generated timestamps. Sequential
// days from a fixed epoch keep reloads deterministic, unlike the random
// last-30-days simulation some exports carry.
var syntheticEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order when parsing the optional Date column.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/06 15:04",
	"01/02/2006",
	time.RFC3339,
}

// RawTable is the loader's intermediate form: the first sheet's header row
// plus its data rows, before any schema validation or typing.
type RawTable struct {
	Headers []string
	Rows    [][]string

	columns map[string]int
}

// Column returns the index of a header, or -1 when absent. Header matching
// is exact and case-sensitive, mirroring the expected file format.
func (t *RawTable) Column(name string) int {
	if idx, ok := t.columns[name]; ok {
		return idx
	}
	return -1
}

// HasColumn reports whether the header row carries the named column.
func (t *RawTable) HasColumn(name string) bool { return t.Column(name) >= 0 }

// cell returns the trimmed cell value for a column, or "" when the row is
// short or the column absent.
func (t *RawTable) cell(row []string, name string) string {
	idx := t.Column(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseWorkbook reads the uploaded payload as an XLSX workbook and extracts
// the first sheet into a RawTable. It fails with *LoadError when the payload
// is not a workbook, has no sheets, or has no header row.
func ParseWorkbook(r io.Reader, logger *slog.Logger) (*RawTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewLoadError("payload is not a readable workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewLoadError("workbook contains no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewLoadError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, NewLoadError("first sheet has no header row", nil)
	}

	headers := make([]string, len(rows[0]))
	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		headers[i] = name
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	// Drop rows that are entirely empty; exports commonly pad trailing rows.
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if rowIsEmpty(row) {
			continue
		}
		data = append(data, row)
	}

	logger.Info("workbook parsed",
		slog.String("sheet", sheets[0]),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(data)))

	return &RawTable{Headers: headers, Rows: data, columns: columns}, nil
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// BuildDataset turns a validated RawTable into a typed Dataset. Optional
// columns absent from the header row are synthesized: timestamps as a
// sequential daily series from a fixed epoch, author and post identifiers as
// sequential strings unique within the dataset. Present-but-malformed Date
// cells are reported as a *LoadError rather than silently coerced.
func BuildDataset(table *RawTable, source string, logger *slog.Logger) (*domain.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var synthetic []string
	for _, col := range domain.OptionalColumns {
		if !table.HasColumn(col) {
			synthetic = append(synthetic, col)
		}
	}

	ds := &domain.Dataset{
		Posts:            make([]domain.Post, 0, len(table.Rows)),
		LoadedAt:         time.Now().UTC(),
		Source:           source,
		SyntheticColumns: synthetic,
	}

	hasDate := table.HasColumn(domain.ColumnDate)
	hasAuthor := table.HasColumn(domain.ColumnAuthorID)
	hasID := table.HasColumn(domain.ColumnTweetID)

	for i, row := range table.Rows {
		seq := i + 1
		post := domain.Post{
			Festival:  table.cell(row, domain.ColumnFestival),
			Sentiment: table.cell(row, domain.ColumnSentiment),
			Emoji:     table.cell(row, domain.ColumnEmoji),
			Emotion:   table.cell(row, domain.ColumnEmotion),
			TweetText: table.cell(row, domain.ColumnTweet),
		}

		if hasDate {
			raw := table.cell(row, domain.ColumnDate)
			ts, err := parseDate(raw)
			if err != nil {
				return nil, NewLoadError(
					fmt.Sprintf("row %d: unparseable %s value %q", seq, domain.ColumnDate, raw), err)
			}
			post.Date = ts
		} else {
			post.Date = syntheticEpoch.AddDate(0, 0, i)
			post.Synthetic = true
		}

		if hasAuthor {
			post.AuthorID = table.cell(row, domain.ColumnAuthorID)
		} else {
			post.AuthorID = fmt.Sprintf("user_%04d", seq)
		}

		if hasID {
			post.PostID = table.cell(row, domain.ColumnTweetID)
		} else {
			post.PostID = fmt.Sprintf("post_%04d", seq)
		}

		ds.Posts = append(ds.Posts, post)
	}

	logger.Info("dataset built",
		slog.String("source", source),
		slog.Int("posts", len(ds.Posts)),
		slog.Any("synthetic_columns", synthetic))

	return ds, nil
}

// parseDate accepts the common spreadsheet date renderings plus Excel serial
// numbers. An empty cell falls back to the synthetic epoch so a sparse Date
// column does not abort the upload.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return syntheticEpoch, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date format")
}
