package api

import (
	"net/http"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
)

type AdminHandler struct {
	cache *simplex.Cache
}

func NewAdminHandler(c *simplex.Cache) *AdminHandler {
	return &AdminHandler{cache: c}
}

func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeJSON(w, http.StatusOK, simplex.CacheStats{})
		return
	}
	writeJSON(w, http.StatusOK, h.cache.Stats())
}
