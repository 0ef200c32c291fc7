package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// ScanReader loads persisted scan and regime results.
// 결과가 없으면 (nil, nil)을 반환함
type ScanReader interface {
	GetLatestScanResult(ctx context.Context) (*contracts.ScanResult, error)
	GetScanResult(ctx context.Context, date time.Time) (*contracts.ScanResult, error)
	GetRegimeResult(ctx context.Context, date time.Time) (*contracts.RegimeResult, error)
}

// ScanHandler serves persisted scan and regime results
// ⭐ SSOT: 스캔 조회 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	repo   ScanReader
	logger *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(repo ScanReader, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		repo:   repo,
		logger: log,
	}
}

// GetLatestScan returns the most recent scan result
// GET /api/scan/latest
func (h *ScanHandler) GetLatestScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.repo.GetLatestScanResult(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest scan result")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scan result")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "No scan result available")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetScan returns the scan result for a specific date
// GET /api/scan/{date}
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (must be YYYY-MM-DD)")
		return
	}

	result, err := h.repo.GetScanResult(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get scan result")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scan result")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "No scan result for date")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetRegime returns the regime classification for a specific date
// GET /api/regime/{date}
func (h *ScanHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (must be YYYY-MM-DD)")
		return
	}

	result, err := h.repo.GetRegimeResult(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get regime result")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve regime result")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "No regime result for date")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
