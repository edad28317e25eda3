package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ariel-research/budget-survey-sub001/internal/store"
)

type BatchesHandler struct {
	store store.Store
}

func NewBatchesHandler(s store.Store) *BatchesHandler {
	return &BatchesHandler{store: s}
}

func (h *BatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch id"})
		return
	}

	batch, err := h.store.GetBatch(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// another respondent's batch is reported as missing
	if batch == nil || batch.RespondentID != r.Header.Get(respondentHeader) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "batch not found"})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// List returns the calling respondent's batches.
func (h *BatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.Header.Get(respondentHeader))
}

// ListAll serves the admin view, where respondent_id is optional.
func (h *BatchesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("respondent_id"))
}

func (h *BatchesHandler) list(w http.ResponseWriter, r *http.Request, respondent string) {
	q := r.URL.Query()
	filter := store.BatchFilter{
		RespondentID: respondent,
		Strategy:     q.Get("strategy"),
		Limit:        50,
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	batches, err := h.store.ListBatches(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if batches == nil {
		batches = []*store.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}
