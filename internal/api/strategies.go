package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

type StrategiesHandler struct {
	strategies *strategy.Registry
}

func NewStrategiesHandler(r *strategy.Registry) *StrategiesHandler {
	return &StrategiesHandler{strategies: r}
}

func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	list := h.strategies.List()
	out := make([]strategy.Config, 0, len(list))
	for _, s := range list {
		out = append(out, s.Config())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *StrategiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.strategies.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Config())
}
