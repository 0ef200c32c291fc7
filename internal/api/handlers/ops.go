package handlers

import (
	"net/http"

	"github.com/wonny/horizon/internal/barcache"
	"github.com/wonny/horizon/internal/scheduler"
	"github.com/wonny/horizon/pkg/database"
	"github.com/wonny/horizon/pkg/logger"
)

// OpsHandler serves operational endpoints (health, cache stats, job history)
type OpsHandler struct {
	db        *database.DB
	cache     *barcache.Manager
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(db *database.DB, cache *barcache.Manager, sched *scheduler.Scheduler, log *logger.Logger) *OpsHandler {
	return &OpsHandler{
		db:        db,
		cache:     cache,
		scheduler: sched,
		logger:    log,
	}
}

// Health returns service health including database pool status
// GET /health
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := map[string]interface{}{
		"status":  "ok",
		"service": "horizon-api",
	}

	if h.db != nil {
		status, err := h.db.HealthCheck(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Database health check failed")
			resp["status"] = "degraded"
			resp["database"] = map[string]string{"status": "down"}
		} else {
			resp["database"] = status
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetCacheStats returns in-memory bar cache statistics
// GET /api/cache/stats
func (h *OpsHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cache.Stats())
}

// GetJobs returns registered scheduler jobs with their latest runs
// GET /api/jobs
func (h *OpsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not running")
		return
	}

	jobs := make(map[string]interface{})
	for _, name := range h.scheduler.JobNames() {
		history, err := h.scheduler.History(name)
		if err != nil {
			continue
		}
		jobs[name] = history.Latest(5)
	}

	respondJSON(w, http.StatusOK, jobs)
}
