package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// fakeScanReader serves canned results, (nil, nil)은 "저장된 결과 없음"
type fakeScanReader struct {
	scan   *contracts.ScanResult
	regime *contracts.RegimeResult
	err    error
}

func (f *fakeScanReader) GetLatestScanResult(_ context.Context) (*contracts.ScanResult, error) {
	return f.scan, f.err
}

func (f *fakeScanReader) GetScanResult(_ context.Context, _ time.Time) (*contracts.ScanResult, error) {
	return f.scan, f.err
}

func (f *fakeScanReader) GetRegimeResult(_ context.Context, _ time.Time) (*contracts.RegimeResult, error) {
	return f.regime, f.err
}

func newScanRouter(reader ScanReader) *mux.Router {
	h := NewScanHandler(reader, logger.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/api/scan/latest", h.GetLatestScan).Methods("GET")
	r.HandleFunc("/api/scan/{date}", h.GetScan).Methods("GET")
	r.HandleFunc("/api/regime/{date}", h.GetRegime).Methods("GET")
	return r
}

func TestScanHandler_EmptyStoreReturnsNotFound(t *testing.T) {
	router := newScanRouter(&fakeScanReader{})

	for _, path := range []string{
		"/api/scan/latest",
		"/api/scan/2026-08-28",
		"/api/regime/2026-08-28",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestScanHandler_StoredResultReturned(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	router := newScanRouter(&fakeScanReader{
		scan: &contracts.ScanResult{
			Date:   date,
			Regime: &contracts.RegimeResult{Date: date, FinalRegime: contracts.RegimeBull},
			RunID:  "run-1",
		},
		regime: &contracts.RegimeResult{Date: date, FinalRegime: contracts.RegimeBull},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/2026-08-28", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, contracts.RegimeBull, result.Regime.FinalRegime)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/regime/2026-08-28", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScanHandler_StoreErrorReturnsServerError(t *testing.T) {
	router := newScanRouter(&fakeScanReader{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/latest", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScanHandler_InvalidDateReturnsBadRequest(t *testing.T) {
	router := newScanRouter(&fakeScanReader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/20260828", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
