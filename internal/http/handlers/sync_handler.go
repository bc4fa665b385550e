package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	authmw "github.com/diagnosis/visitor-hosts/internal/http/middleware"
	"github.com/diagnosis/visitor-hosts/internal/http/response"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
)

// SyncController is the part of the run coordinator the ops API drives.
type SyncController interface {
	Running() bool
	Trigger(ctx context.Context) bool
}

type SummaryReader interface {
	Last(ctx context.Context) (*hostsync.Summary, error)
	History(ctx context.Context, n int) ([]hostsync.Summary, error)
}

type SyncHandler struct {
	sync      SyncController
	summaries SummaryReader
}

func NewSyncHandler(sync SyncController, summaries SummaryReader) *SyncHandler {
	return &SyncHandler{sync: sync, summaries: summaries}
}

type statusResponse struct {
	Running bool              `json:"running"`
	Last    *hostsync.Summary `json:"last,omitempty"`
}

// GET /v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	last, err := h.summaries.Last(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load last sync summary", "error", err)
		response.InternalError(w, "could not load sync status")
		return
	}
	response.WriteJSON(w, http.StatusOK, statusResponse{Running: h.sync.Running(), Last: last})
}

// GET /v1/sync/history?limit=N
func (h *SyncHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.summaries.History(r.Context(), limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load sync history", "error", err)
		response.InternalError(w, "could not load sync history")
		return
	}
	if runs == nil {
		runs = []hostsync.Summary{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// POST /v1/sync/run
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.sync.Trigger(r.Context()) {
		response.Conflict(w, "a host sync is already running", response.CodeAlreadyRunning)
		return
	}
	attrs := []any{}
	if c := authmw.Claims(r); c != nil {
		attrs = append(attrs, "user_id", c.UserID(), "email", c.Email)
	}
	logger.InfoContext(r.Context(), "host sync triggered manually", attrs...)
	response.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
