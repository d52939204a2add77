package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/stats"
)

// RunHandler serves the results of finished simulation runs.
type RunHandler struct {
	store *stats.Store
}

// NewRunHandler creates a RunHandler backed by the given result store.
func NewRunHandler(store *stats.Store) *RunHandler {
	return &RunHandler{store: store}
}

// runInfo is the list representation of a run.
type runInfo struct {
	ID   uuid.UUID `json:"id"`
	Seed int64     `json:"seed"`
}

// List handles GET /runs.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	runs := h.store.List()
	out := make([]runInfo, 0, len(runs))
	for _, res := range runs {
		out = append(out, runInfo{ID: res.ID, Seed: res.Seed})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// Summary handles GET /runs/{run_id}/summary.
func (h *RunHandler) Summary(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, res.Recorder.Summary())
}

// Trades handles GET /runs/{run_id}/trades. The history is returned as
// CSV; ?after_day and ?after_tick cut off everything at or before that
// point.
func (h *RunHandler) Trades(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_ = res.Recorder.WriteTrades(w, leftCut(r))
}

// Quotes handles GET /runs/{run_id}/quotes, in the same shape as Trades.
func (h *RunHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_ = res.Recorder.WriteQuotes(w, leftCut(r))
}

func (h *RunHandler) lookup(w http.ResponseWriter, r *http.Request) (*stats.RunResult, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "run_id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "run_id must be a valid UUID")
		return nil, false
	}
	res, ok := h.store.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "No run with the given id")
		return nil, false
	}
	return res, true
}

// leftCut reads the optional after_day/after_tick query parameters.
// Unparseable values fall back to zero, meaning the full history.
func leftCut(r *http.Request) domain.TimeStamp {
	day, _ := strconv.Atoi(r.URL.Query().Get("after_day"))
	tick, _ := strconv.Atoi(r.URL.Query().Get("after_tick"))
	return domain.TimeStamp{Day: day, Tick: tick}
}
