package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

var ErrDuplicateBatch = errors.New("batch already exists")

// Batch is one stored GeneratePairs result for a respondent.
type Batch struct {
	ID           uuid.UUID                 `json:"batch_id"`
	RespondentID string                    `json:"respondent_id"`
	Strategy     string                    `json:"strategy"`
	Engine       strategy.Engine           `json:"engine"`
	Reference    simplex.Vector            `json:"reference"`
	Pairs        []strategy.ComparisonPair `json:"pairs"`
	Requested    int                       `json:"requested"`
	Degraded     bool                      `json:"degraded"`
	Floor        int                       `json:"floor"`
	Attempts     int                       `json:"attempts"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// NewBatch copies res into a batch with a fresh ID.
func NewBatch(respondentID string, reference simplex.Vector, res *strategy.Result) *Batch {
	return &Batch{
		ID:           uuid.New(),
		RespondentID: respondentID,
		Strategy:     res.Strategy,
		Engine:       res.Engine,
		Reference:    reference.Clone(),
		Pairs:        res.Pairs,
		Requested:    res.Requested,
		Degraded:     res.Degraded,
		Floor:        res.Floor,
		Attempts:     res.Attempts,
		CreatedAt:    time.Now().UTC(),
	}
}

// BatchFilter narrows ListBatches. Zero values match everything.
type BatchFilter struct {
	RespondentID string
	Strategy     string
	Limit        int
}

type Store interface {
	SaveBatch(ctx context.Context, b *Batch) error
	// GetBatch returns nil, nil when no batch has the id.
	GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]*Batch, error)
	Close() error
}
