package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"festivalpulse/internal/config"
	apierrors "festivalpulse/internal/errors"
	"festivalpulse/internal/services"
	"festivalpulse/internal/session"
)

func newTestHandler(t *testing.T) *DashboardHandler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := config.Default()
	store := session.NewStore(time.Hour, logger)
	service := services.NewDashboardService(cfg, store, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	return NewDashboardHandler(service, nil, logger, errorHandler,
		cfg.Upload.MaxUploadSize, cfg.Charts.DefaultTopN)
}

func workbookBytes(t *testing.T, headers []string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headers))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

var sampleHeaders = []string{"Festival", "Sentiment", "Emoji", "Emotion", "Tweet"}

var sampleRows = [][]interface{}{
	{"Diwali", "Positive", "🎉", "joy", "Happy Diwali everyone!"},
	{"Diwali", "Positive", "🎉❤️", "joy", "Lights and sweets"},
	{"Holi", "Negative", "😢", "sadness", "Missing home this Holi"},
	{"Eid", "Neutral", "🙏", "gratitude", "Eid Mubarak"},
}

// uploadSample posts a valid workbook and returns the issued session cookie.
func uploadSample(t *testing.T, h *DashboardHandler) *http.Cookie {
	t.Helper()

	body, contentType := multipartUpload(t, "posts.xlsx", workbookBytes(t, sampleHeaders, sampleRows))
	req := httptest.NewRequest(http.MethodPost, "/dataset", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func get(h *DashboardHandler, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestUploadDataset(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// Upload responds with the dataset metadata envelope.
	body, contentType := multipartUpload(t, "posts.xlsx", workbookBytes(t, sampleHeaders, sampleRows))
	req := httptest.NewRequest(http.MethodPost, "/dataset", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "posts.xlsx", data["source"])
	assert.Equal(t, float64(len(sampleRows)), data["posts"])
	// Date, Author_ID and Tweet_ID were absent from the workbook.
	assert.Len(t, data["synthetic_columns"], 3)
}

func TestUploadMissingFilePart(t *testing.T) {
	h := newTestHandler(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", resp["error_code"])
}

func TestUploadNotAWorkbook(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartUpload(t, "posts.xlsx", []byte("this is not a spreadsheet"))
	req := httptest.NewRequest(http.MethodPost, "/dataset", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "LOAD_FAILED", resp["error_code"])
	assert.Equal(t, "/errors/dataset/load-failed", resp["type"])
}

func TestUploadSchemaInvalid(t *testing.T) {
	h := newTestHandler(t)

	headers := []string{"Festival", "Emoji", "Tweet"}
	rows := [][]interface{}{{"Diwali", "🎉", "hello"}}
	body, contentType := multipartUpload(t, "posts.xlsx", workbookBytes(t, headers, rows))
	req := httptest.NewRequest(http.MethodPost, "/dataset", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "SCHEMA_INVALID", resp["error_code"])
	assert.Equal(t, "/errors/dataset/schema-invalid", resp["type"])

	details := resp["details"].(map[string]interface{})
	missing := details["missing_columns"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"Sentiment", "Emotion"}, missing)
}

func TestEndpointsWithoutSession(t *testing.T) {
	h := newTestHandler(t)

	for _, target := range []string{"/dataset", "/filters", "/summary", "/charts", "/charts/emoji-frequency", "/export/csv"} {
		t.Run(target, func(t *testing.T) {
			rec := get(h, target, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			resp := decodeBody(t, rec)
			assert.Equal(t, "DATASET_NOT_FOUND", resp["error_code"])
		})
	}
}

func TestGetFilters(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/filters", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Diwali", "Holi", "Eid"}, data["festivals"])
	assert.Equal(t, []interface{}{"Positive", "Negative", "Neutral"}, data["sentiments"])
}

func TestGetSummary(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/summary", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["total_posts"])
	assert.Equal(t, "joy", data["top_emotion"])
	assert.Equal(t, "🎉", data["top_emoji"])
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(t, false, meta["empty"])
}

func TestSummaryFiltered(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/summary?festival=Diwali", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_posts"])

	// Comma-separated values select multiple festivals.
	rec = get(h, "/summary?festival=Diwali,Holi", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_posts"])

	// A selection matching nothing is empty, not an error.
	rec = get(h, "/summary?festival=Christmas", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total_posts"])
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["empty"])
}

func TestGetRows(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/dataset?page=1&per_page=2", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["count"])
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(t, float64(4), meta["total"])
	assert.Equal(t, float64(1), meta["page"])
	assert.Equal(t, float64(2), meta["per_page"])

	// Out-of-range pagination falls back to defaults.
	rec = get(h, "/dataset?page=0&per_page=9999", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	meta = decodeBody(t, rec)["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["page"])
	assert.Equal(t, float64(50), meta["per_page"])
}

func TestGetCharts(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/charts", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(14), resp["count"])
	specs := resp["data"].([]interface{})
	first := specs[0].(map[string]interface{})
	assert.Equal(t, "emoji-frequency", first["id"])
	assert.Equal(t, false, first["empty"])
}

func TestGetChart(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/charts/positive-gauge", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "gauge", data["type"])
	assert.Equal(t, float64(50), data["value"])
}

func TestGetChartUnknown(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/charts/word-cloud", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "CHART_NOT_FOUND", resp["error_code"])
	assert.Equal(t, "/errors/chart/not-found", resp["type"])
}

func TestChartTopNValidation(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	for _, target := range []string{"/charts?top_n=abc", "/charts?top_n=99", "/charts?top_n=-1"} {
		t.Run(target, func(t *testing.T) {
			rec := get(h, target, cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeBody(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", resp["error_code"])
		})
	}
}

func TestExportCSV(t *testing.T) {
	h := newTestHandler(t)
	cookie := uploadSample(t, h)

	rec := get(h, "/export/csv?festival=Holi", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "festival_posts.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Tweet_ID,Author_ID,Date,Festival,Sentiment,Emoji,Emotion,Tweet,Synthetic", lines[0])
	assert.Contains(t, lines[1], "Holi")
	assert.Contains(t, lines[1], "😢")
}
