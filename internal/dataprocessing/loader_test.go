package dataprocessing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"festivalpulse/pkg/contracts/domain"
)

// buildWorkbook writes a single-sheet XLSX with the given header row and
// data rows into a buffer.
func buildWorkbook(t *testing.T, headers []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headerRow))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var requiredHeaders = []string{"Festival", "Sentiment", "Emoji", "Emotion", "Tweet"}

func TestParseWorkbook(t *testing.T) {
	t.Run("rejects non-workbook payload", func(t *testing.T) {
		_, err := ParseWorkbook(strings.NewReader("this is not a workbook"), nil)
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Contains(t, loadErr.Reason, "not a readable workbook")
	})

	t.Run("reads headers and rows from first sheet", func(t *testing.T) {
		buf := buildWorkbook(t, requiredHeaders, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "lights everywhere"},
			{"Holi", "Negative", "😢", "sadness", "rained out"},
		})

		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)
		assert.Equal(t, requiredHeaders, table.Headers)
		assert.Len(t, table.Rows, 2)
		assert.True(t, table.HasColumn("Festival"))
		assert.False(t, table.HasColumn("Date"))
	})

	t.Run("drops fully empty rows", func(t *testing.T) {
		buf := buildWorkbook(t, requiredHeaders, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "a"},
			{"", "", "", "", ""},
			{"Holi", "Neutral", "🙏", "calm", "b"},
		})

		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("trims header whitespace", func(t *testing.T) {
		buf := buildWorkbook(t, []string{" Festival ", "Sentiment", "Emoji", "Emotion", "Tweet"}, nil)

		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)
		assert.True(t, table.HasColumn("Festival"))
	})
}

func TestBuildDataset(t *testing.T) {
	t.Run("synthesizes missing optional columns", func(t *testing.T) {
		buf := buildWorkbook(t, requiredHeaders, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "first"},
			{"Diwali", "Negative", "😢", "sadness", "second"},
			{"Holi", "Neutral", "🙏", "calm", "third"},
		})
		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)

		ds, err := BuildDataset(table, "festival.xlsx", nil)
		require.NoError(t, err)
		require.Equal(t, 3, ds.Len())

		assert.ElementsMatch(t, []string{domain.ColumnDate, domain.ColumnAuthorID, domain.ColumnTweetID}, ds.SyntheticColumns)

		assert.Equal(t, syntheticEpoch, ds.Posts[0].Date)
		assert.Equal(t, syntheticEpoch.AddDate(0, 0, 2), ds.Posts[2].Date)
		assert.True(t, ds.Posts[0].Synthetic)
		assert.Equal(t, "user_0001", ds.Posts[0].AuthorID)
		assert.Equal(t, "post_0003", ds.Posts[2].PostID)
	})

	t.Run("synthetic values are deterministic across reloads", func(t *testing.T) {
		load := func() *domain.Dataset {
			buf := buildWorkbook(t, requiredHeaders, [][]interface{}{
				{"Diwali", "Positive", "🎉", "joy", "row"},
				{"Holi", "Neutral", "🙏", "calm", "row"},
			})
			table, err := ParseWorkbook(buf, nil)
			require.NoError(t, err)
			ds, err := BuildDataset(table, "festival.xlsx", nil)
			require.NoError(t, err)
			return ds
		}

		first, second := load(), load()
		for i := range first.Posts {
			assert.Equal(t, first.Posts[i].Date, second.Posts[i].Date)
			assert.Equal(t, first.Posts[i].AuthorID, second.Posts[i].AuthorID)
			assert.Equal(t, first.Posts[i].PostID, second.Posts[i].PostID)
		}
	})

	t.Run("uses provided optional columns", func(t *testing.T) {
		headers := append(append([]string{}, requiredHeaders...), "Date", "Author_ID", "Tweet_ID")
		buf := buildWorkbook(t, headers, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "hello", "2023-11-12", "alice", "t1"},
		})
		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)

		ds, err := BuildDataset(table, "festival.xlsx", nil)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())

		assert.Empty(t, ds.SyntheticColumns)
		assert.Equal(t, time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC), ds.Posts[0].Date)
		assert.Equal(t, "alice", ds.Posts[0].AuthorID)
		assert.Equal(t, "t1", ds.Posts[0].PostID)
		assert.False(t, ds.Posts[0].Synthetic)
	})

	t.Run("rejects malformed date cells", func(t *testing.T) {
		headers := append(append([]string{}, requiredHeaders...), "Date")
		buf := buildWorkbook(t, headers, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "hello", "not a date"},
		})
		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)

		_, err = BuildDataset(table, "festival.xlsx", nil)
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Contains(t, loadErr.Reason, "row 1")
		assert.Contains(t, loadErr.Reason, "not a date")
	})

	t.Run("empty date cell falls back to epoch", func(t *testing.T) {
		headers := append(append([]string{}, requiredHeaders...), "Date")
		buf := buildWorkbook(t, headers, [][]interface{}{
			{"Diwali", "Positive", "🎉", "joy", "hello", ""},
		})
		table, err := ParseWorkbook(buf, nil)
		require.NoError(t, err)

		ds, err := BuildDataset(table, "festival.xlsx", nil)
		require.NoError(t, err)
		assert.Equal(t, syntheticEpoch, ds.Posts[0].Date)
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"iso date", "2023-11-12", time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC)},
		{"iso datetime", "2023-11-12 08:30:00", time.Date(2023, 11, 12, 8, 30, 0, 0, time.UTC)},
		{"us slash", "11/12/2023", time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2023-11-12T08:30:00Z", time.Date(2023, 11, 12, 8, 30, 0, 0, time.UTC)},
		{"empty falls to epoch", "", syntheticEpoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}

	t.Run("excel serial number", func(t *testing.T) {
		// 45242 is 2023-11-12 in Excel's 1900 date system
		got, err := parseDate("45242")
		require.NoError(t, err)
		assert.Equal(t, 2023, got.Year())
		assert.Equal(t, time.November, got.Month())
	})

	t.Run("garbage errors", func(t *testing.T) {
		_, err := parseDate("definitely not a date")
		require.Error(t, err)
	})
}
