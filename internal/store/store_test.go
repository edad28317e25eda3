package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

func sampleResult() *strategy.Result {
	return &strategy.Result{
		Strategy:  "l1_vs_leontief",
		Engine:    strategy.EngineMaxMin,
		Requested: 1,
		Floor:     5,
		Attempts:  1,
		Pairs: []strategy.ComparisonPair{{
			Options: [2]strategy.Side{
				{Label: "L1 Optimized Vector (best: 10.00, worst: 20.00)", Metric: "l1", Vector: simplex.Vector{45, 55}, Score: 10},
				{Label: "Leontief Optimized Vector (best: 0.90, worst: 0.80)", Metric: "leontief", Vector: simplex.Vector{60, 40}, Score: 0.9},
			},
			Metadata: strategy.Metadata{Engine: strategy.EngineMaxMin, Floor: 5},
		}},
	}
}

func TestNewBatch(t *testing.T) {
	ref := simplex.Vector{50, 50}
	b := NewBatch("resp-1", ref, sampleResult())

	if b.ID == uuid.Nil {
		t.Error("expected batch id to be assigned")
	}
	if b.RespondentID != "resp-1" || b.Strategy != "l1_vs_leontief" {
		t.Errorf("unexpected batch %+v", b)
	}
	if b.Engine != strategy.EngineMaxMin || b.Floor != 5 || b.Attempts != 1 || b.Requested != 1 {
		t.Errorf("result diagnostics not copied: %+v", b)
	}
	ref[0] = 0
	if b.Reference[0] != 50 {
		t.Error("reference should be copied, not aliased")
	}
	if b.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	b := NewBatch("resp-1", simplex.Vector{50, 50}, sampleResult())

	if err := s.SaveBatch(ctx, b); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}
	got, err := s.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if got == nil || got.ID != b.ID || len(got.Pairs) != 1 {
		t.Fatalf("unexpected batch %+v", got)
	}

	err = s.SaveBatch(ctx, b)
	if !errors.Is(err, ErrDuplicateBatch) {
		t.Errorf("expected ErrDuplicateBatch, got %v", err)
	}

	missing, err := s.GetBatch(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for a missing batch, got %v, %v", missing, err)
	}
}

func TestMemoryStoreListBatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, resp := range []string{"a", "b", "a", "a"} {
		b := NewBatch(resp, simplex.Vector{50, 50}, sampleResult())
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if i == 3 {
			b.Strategy = "l1_vs_l2"
		}
		if err := s.SaveBatch(ctx, b); err != nil {
			t.Fatalf("SaveBatch failed: %v", err)
		}
	}

	all, _ := s.ListBatches(ctx, BatchFilter{})
	if len(all) != 4 {
		t.Fatalf("expected 4 batches, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Error("expected newest first")
		}
	}

	byResp, _ := s.ListBatches(ctx, BatchFilter{RespondentID: "a"})
	if len(byResp) != 3 {
		t.Errorf("expected 3 batches for respondent a, got %d", len(byResp))
	}
	byStrategy, _ := s.ListBatches(ctx, BatchFilter{RespondentID: "a", Strategy: "l1_vs_l2"})
	if len(byStrategy) != 1 {
		t.Errorf("expected 1 l1_vs_l2 batch, got %d", len(byStrategy))
	}
	limited, _ := s.ListBatches(ctx, BatchFilter{Limit: 2})
	if len(limited) != 2 || !limited[0].CreatedAt.Equal(base.Add(3*time.Minute)) {
		t.Errorf("expected the 2 newest batches, got %d", len(limited))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	b := NewBatch("resp-1", simplex.Vector{50, 50}, sampleResult())
	_ = s.SaveBatch(ctx, b)

	b.Strategy = "mutated"
	got, _ := s.GetBatch(ctx, b.ID)
	if got.Strategy != "l1_vs_leontief" {
		t.Errorf("stored batch changed through caller pointer: %s", got.Strategy)
	}
}
