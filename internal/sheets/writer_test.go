package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// fakeSheetsAPI records the calls the writer makes.
type fakeSheetsAPI struct {
	creates      []gsheets.Spreadsheet
	updates      []gsheets.ValueRange
	updateRanges []string
	batchUpdates []gsheets.BatchUpdateSpreadsheetRequest
	clears       []string
	failUpdates  int
	rejectStatus int
	putAttempts  int
	existing     *gsheets.Spreadsheet
	mu           sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "":
		var req gsheets.Spreadsheet
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.creates = append(f.creates, req)
		writeJSON(w, map[string]any{
			"spreadsheetId":  "created-id",
			"spreadsheetUrl": "https://sheets.example/created-id",
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 42, "title": req.Sheets[0].Properties.Title}},
			},
		})
	case r.Method == http.MethodGet:
		if f.existing == nil {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		writeJSON(w, f.existing)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, path)
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPut:
		f.putAttempts++
		if f.rejectStatus != 0 {
			http.Error(w, `{"error":{"code":400,"message":"rejected"}}`, f.rejectStatus)
			return
		}
		if f.failUpdates > 0 {
			f.failUpdates--
			http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
			return
		}
		var req gsheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.updates = append(f.updates, req)
		f.updateRanges = append(f.updateRanges, path)
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.batchUpdates = append(f.batchUpdates, req)
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			writeJSON(w, map[string]any{"replies": []any{
				map[string]any{"addSheet": map[string]any{"properties": map[string]any{"sheetId": 9, "title": "Expenses"}}},
			}})
			return
		}
		writeJSON(w, map[string]any{})
	default:
		http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func newTestWriter(t *testing.T, api *fakeSheetsAPI, cfg Config) *Writer {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	w, err := NewWriterWithOptions(context.Background(), cfg, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return w
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func sampleExpenses() []model.Expense {
	lunch := testutil.Expense("b", testutil.Date(2024, time.March, 15, 12, 5), 120, "午餐")
	lunch.Note = "bento, large"
	return []model.Expense{
		lunch,
		testutil.Expense("a", testutil.Date(2024, time.March, 14, 8, 0), 60, "早餐"),
	}
}

func TestWriterCreatesSpreadsheet(t *testing.T) {
	api := &fakeSheetsAPI{}
	w := newTestWriter(t, api, testConfig())

	result, err := w.Write(context.Background(), sampleExpenses())
	require.NoError(t, err)

	assert.Equal(t, "created-id", result.SpreadsheetID)
	assert.Equal(t, "https://sheets.example/created-id", result.SpreadsheetURL)
	assert.Equal(t, 2, result.Rows)

	require.Len(t, api.creates, 1)
	assert.Equal(t, DefaultSpreadsheetName, api.creates[0].Properties.Title)
	assert.Empty(t, api.creates[0].Properties.TimeZone)

	require.Len(t, api.clears, 1)
	require.Len(t, api.updates, 1)
	values := api.updates[0].Values
	require.Len(t, values, 3)
	assert.Equal(t, []any{"date", "time", "category", "amount", "note"}, values[0])
	assert.Equal(t, []any{"2024-03-14", "08:00", "早餐", float64(60), ""}, values[1])
	assert.Equal(t, []any{"2024-03-15", "12:05", "午餐", float64(120), "bento， large"}, values[2])

	require.Len(t, api.batchUpdates, 1, "formatting request")
	format := api.batchUpdates[0].Requests
	require.NotEmpty(t, format)
	assert.Equal(t, int64(42), format[0].RepeatCell.Range.SheetId)
}

func TestWriterBatchesRows(t *testing.T) {
	api := &fakeSheetsAPI{}
	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.EnableFormatting = false
	w := newTestWriter(t, api, cfg)

	expenses := sampleExpenses()
	expenses = append(expenses, testutil.Expense("c", testutil.Date(2024, time.March, 15, 19, 0), 200, "晚餐"))

	result, err := w.Write(context.Background(), expenses)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)

	require.Len(t, api.updates, 2)
	assert.Len(t, api.updates[0].Values, 2)
	assert.Len(t, api.updates[1].Values, 2)
	assert.Contains(t, api.updateRanges[0], "'Expenses'!A1")
	assert.Contains(t, api.updateRanges[1], "'Expenses'!A3")
	assert.Empty(t, api.batchUpdates)
}

func TestWriterRetriesTransientFailures(t *testing.T) {
	api := &fakeSheetsAPI{failUpdates: 1}
	cfg := testConfig()
	cfg.EnableFormatting = false
	w := newTestWriter(t, api, cfg)

	_, err := w.Write(context.Background(), sampleExpenses())
	require.NoError(t, err)
	assert.Len(t, api.updates, 1)
}

func TestWriterGivesUpAfterRetries(t *testing.T) {
	api := &fakeSheetsAPI{failUpdates: 5}
	cfg := testConfig()
	w := newTestWriter(t, api, cfg)

	_, err := w.Write(context.Background(), sampleExpenses())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write data")
}

func TestWriterDoesNotRetryClientErrors(t *testing.T) {
	api := &fakeSheetsAPI{rejectStatus: http.StatusBadRequest}
	cfg := testConfig()
	cfg.RetryAttempts = 3
	w := newTestWriter(t, api, cfg)

	_, err := w.Write(context.Background(), sampleExpenses())
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 1, api.putAttempts)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{name: "nil", err: nil},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}, permanent: true},
		{name: "forbidden wrapped", err: fmt.Errorf("batch: %w", &googleapi.Error{Code: http.StatusForbidden}), permanent: true},
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}},
		{name: "unavailable", err: &googleapi.Error{Code: http.StatusServiceUnavailable}},
		{name: "transport", err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retryable(tt.err)
			var permanent *common.PermanentError
			assert.Equal(t, tt.permanent, errors.As(got, &permanent))
			if tt.err == nil {
				assert.NoError(t, got)
			} else {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestWriterUsesExistingSpreadsheet(t *testing.T) {
	t.Run("export sheet present", func(t *testing.T) {
		api := &fakeSheetsAPI{existing: &gsheets.Spreadsheet{
			SpreadsheetId:  "existing",
			SpreadsheetUrl: "https://sheets.example/existing",
			Sheets: []*gsheets.Sheet{
				{Properties: &gsheets.SheetProperties{SheetId: 7, Title: "Expenses"}},
			},
		}}
		cfg := testConfig()
		cfg.SpreadsheetID = "existing"
		w := newTestWriter(t, api, cfg)

		result, err := w.Write(context.Background(), sampleExpenses())
		require.NoError(t, err)

		assert.Equal(t, "existing", result.SpreadsheetID)
		assert.Empty(t, api.creates)
		require.Len(t, api.batchUpdates, 1)
		assert.Equal(t, int64(7), api.batchUpdates[0].Requests[0].RepeatCell.Range.SheetId)
	})

	t.Run("export sheet added", func(t *testing.T) {
		api := &fakeSheetsAPI{existing: &gsheets.Spreadsheet{
			SpreadsheetId: "existing",
			Sheets: []*gsheets.Sheet{
				{Properties: &gsheets.SheetProperties{SheetId: 0, Title: "Sheet1"}},
			},
		}}
		cfg := testConfig()
		cfg.SpreadsheetID = "existing"
		w := newTestWriter(t, api, cfg)

		_, err := w.Write(context.Background(), sampleExpenses())
		require.NoError(t, err)

		require.Len(t, api.batchUpdates, 2)
		require.NotNil(t, api.batchUpdates[0].Requests[0].AddSheet)
		assert.Equal(t, int64(9), api.batchUpdates[1].Requests[0].RepeatCell.Range.SheetId)
	})

	t.Run("inaccessible spreadsheet", func(t *testing.T) {
		api := &fakeSheetsAPI{}
		cfg := testConfig()
		cfg.SpreadsheetID = "missing"
		w := newTestWriter(t, api, cfg)

		_, err := w.Write(context.Background(), sampleExpenses())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to access spreadsheet missing")
	})
}

func TestNewWriterRejectsInvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{BatchSize: 10}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authentication method configured")
}
