package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariel-research/budget-survey-sub001/internal/events"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/store"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

// Limits bound the work a single request may ask for. Zero maxima disable
// the check.
type Limits struct {
	DefaultPairs int
	MaxPairs     int
	MaxDimension int
}

type PairsHandler struct {
	strategies *strategy.Registry
	store      store.Store
	events     events.Client
	limits     Limits
	logger     *slog.Logger
}

func NewPairsHandler(r *strategy.Registry, s store.Store, e events.Client, limits Limits, logger *slog.Logger) *PairsHandler {
	return &PairsHandler{
		strategies: r,
		store:      s,
		events:     e,
		limits:     limits,
		logger:     logger,
	}
}

type CreatePairsRequest struct {
	Strategy  string `json:"strategy"`
	Reference []int  `json:"reference"`
	Count     int    `json:"count,omitempty"`
	Dimension int    `json:"dimension,omitempty"`
}

func (h *PairsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePairsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Strategy == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "strategy required"})
		return
	}
	if req.Count == 0 {
		req.Count = h.limits.DefaultPairs
	}
	if h.limits.MaxPairs > 0 && req.Count > h.limits.MaxPairs {
		writeError(w, &strategy.ValidationError{Field: "count", Reason: fmt.Sprintf("at most %d pairs per batch, got %d", h.limits.MaxPairs, req.Count)})
		return
	}
	if req.Dimension == 0 {
		req.Dimension = len(req.Reference)
	}
	// the candidate pool grows combinatorially with the category count
	if limit := h.limits.MaxDimension; limit > 0 && max(req.Dimension, len(req.Reference)) > limit {
		writeError(w, &strategy.ValidationError{Field: "dimension", Reason: fmt.Sprintf("at most %d categories, got %d", limit, max(req.Dimension, len(req.Reference)))})
		return
	}

	s, err := h.strategies.Get(req.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}

	respondent := r.Header.Get(respondentHeader)
	reference := simplex.Vector(req.Reference)
	engine := string(s.Config().Engine)

	start := time.Now()
	res, err := s.GeneratePairs(r.Context(), reference, req.Count, req.Dimension)
	if err != nil {
		generationDuration.WithLabelValues(s.Name(), engine, outcome(err)).Observe(time.Since(start).Seconds())
		var ue *strategy.UnsuitableError
		if errors.As(err, &ue) {
			unsuitableTotal.WithLabelValues(s.Name()).Inc()
			h.publish(events.SubjectStrategyUnsuitable(s.Name()), events.StrategyUnsuitableEvent{
				Strategy:     s.Name(),
				RespondentID: respondent,
				Reference:    req.Reference,
				Requested:    ue.Requested,
				Found:        ue.Found,
				Floor:        ue.Floor,
				Attempts:     ue.Attempts,
				Timestamp:    time.Now().UTC(),
			})
		}
		writeError(w, err)
		return
	}

	batch := store.NewBatch(respondent, reference, res)
	if err := h.store.SaveBatch(r.Context(), batch); err != nil {
		generationDuration.WithLabelValues(s.Name(), engine, "error").Observe(time.Since(start).Seconds())
		h.logger.Error("failed to save batch", "batch_id", batch.ID, "strategy", s.Name(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result := "ok"
	if res.Degraded {
		result = "degraded"
	}
	generationDuration.WithLabelValues(s.Name(), engine, result).Observe(time.Since(start).Seconds())
	pairsGenerated.WithLabelValues(s.Name()).Add(float64(len(res.Pairs)))
	if res.Floor < s.Config().Floor {
		floorRelaxations.WithLabelValues(s.Name()).Inc()
	}

	id := batch.ID.String()
	h.publish(events.SubjectPairsGenerated(id), events.PairsGeneratedEvent{
		BatchID:      id,
		RespondentID: respondent,
		Strategy:     res.Strategy,
		Engine:       engine,
		Pairs:        len(res.Pairs),
		Requested:    res.Requested,
		Floor:        res.Floor,
		Attempts:     res.Attempts,
		Timestamp:    batch.CreatedAt,
	})
	if res.Degraded {
		degradedBatches.WithLabelValues(s.Name()).Inc()
		h.publish(events.SubjectPairsDegraded(id), events.PairsDegradedEvent{
			BatchID:   id,
			Strategy:  res.Strategy,
			Requested: res.Requested,
			Found:     len(res.Pairs),
			Timestamp: batch.CreatedAt,
		})
	}

	writeJSON(w, http.StatusCreated, batch)
}

// publish is best effort: a broker outage must not fail the request.
func (h *PairsHandler) publish(subject string, data any) {
	if err := h.events.Publish(subject, data); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, strategy.ErrUnsuitable):
		return "unsuitable"
	case errors.Is(err, strategy.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
