package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/store"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveBatch(ctx context.Context, b *store.Batch) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockStore) GetBatch(ctx context.Context, id uuid.UUID) (*store.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Batch), args.Error(1)
}

func (m *MockStore) ListBatches(ctx context.Context, filter store.BatchFilter) ([]*store.Batch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Batch), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(subject string, data any) error {
	return m.Called(subject, data).Error(0)
}

func (m *MockEvents) Close() {}

func subjectSuffix(suffix string) any {
	return mock.MatchedBy(func(s string) bool { return strings.HasSuffix(s, suffix) })
}

type testEnv struct {
	router http.Handler
	store  *MockStore
	events *MockEvents
	cache  *simplex.Cache
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := simplex.NewCache()
	reg, err := strategy.BuildRegistry([]strategy.Config{
		{Name: "l1_vs_leontief", Engine: strategy.EngineMaxMin, MetricA: "l1", MetricB: "leontief", Floor: 5},
		{Name: "tight", Engine: strategy.EngineMaxMin, MetricA: "l1", MetricB: "leontief", Floor: 45, Dimension: 2},
		{Name: "relaxed", Engine: strategy.EngineRelaxation, MetricA: "l1", MetricB: "leontief"},
	}, utility.DefaultRegistry(), cache, strategy.WithLogger(logger))
	require.NoError(t, err)

	env := &testEnv{store: &MockStore{}, events: &MockEvents{}, cache: cache}
	env.router = NewRouter(Deps{
		Strategies:   reg,
		Store:        env.store,
		Events:       env.events,
		Cache:        cache,
		DefaultPairs: 3,
		MaxPairs:     20,
		MaxDimension: 6,
		AdminToken:   "test-token",
		Logger:       logger,
	})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(respondentHeader, "resp-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreatePairs(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("SaveBatch", mock.Anything, mock.AnythingOfType("*store.Batch")).Return(nil)
	env.events.On("Publish", subjectSuffix(".generated"), mock.Anything).Return(nil)

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"l1_vs_leontief","reference":[30,30,40],"count":5,"dimension":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var batch store.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&batch))
	assert.NotEqual(t, uuid.Nil, batch.ID)
	assert.Equal(t, "resp-1", batch.RespondentID)
	assert.Equal(t, "l1_vs_leontief", batch.Strategy)
	assert.Equal(t, 5, batch.Requested)
	assert.False(t, batch.Degraded)
	require.Len(t, batch.Pairs, 5)
	for _, p := range batch.Pairs {
		assert.Equal(t, 100, p.Options[0].Vector.Sum())
		assert.Equal(t, "l1", p.Options[0].Metric)
		assert.Equal(t, "leontief", p.Options[1].Metric)
	}

	saved := env.store.Calls[0].Arguments.Get(1).(*store.Batch)
	assert.Equal(t, batch.ID, saved.ID)
	env.events.AssertCalled(t, "Publish", "survey.pairs."+batch.ID.String()+".generated", mock.Anything)
	env.store.AssertExpectations(t)
}

func TestCreatePairsDefaultsCountAndDimension(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
	env.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"l1_vs_leontief","reference":[30,30,40]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var batch store.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&batch))
	assert.Equal(t, 3, batch.Requested)
	assert.Len(t, batch.Pairs, 3)
}

func TestCreatePairsRelaxationPublishesDegraded(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
	env.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"relaxed","reference":[30,30,40],"count":20}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var batch store.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&batch))
	assert.Equal(t, strategy.EngineRelaxation, batch.Engine)
	assert.Equal(t, len(batch.Pairs) < 20, batch.Degraded)
	if batch.Degraded {
		env.events.AssertCalled(t, "Publish", "survey.pairs."+batch.ID.String()+".degraded", mock.Anything)
	} else {
		env.events.AssertNotCalled(t, "Publish", "survey.pairs."+batch.ID.String()+".degraded", mock.Anything)
	}
}

func TestCreatePairsUnsuitable(t *testing.T) {
	env := setupTestRouter(t)
	env.events.On("Publish", "survey.strategy.tight.unsuitable", mock.AnythingOfType("events.StrategyUnsuitableEvent")).Return(nil)

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"tight","reference":[50,50],"count":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	env.events.AssertExpectations(t)
	env.store.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
}

func TestCreatePairsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing strategy", `{"reference":[50,50]}`, http.StatusBadRequest},
		{"unknown strategy", `{"strategy":"nope","reference":[50,50]}`, http.StatusNotFound},
		{"bad sum", `{"strategy":"l1_vs_leontief","reference":[50,40]}`, http.StatusBadRequest},
		{"dimension mismatch", `{"strategy":"l1_vs_leontief","reference":[50,50],"dimension":3}`, http.StatusBadRequest},
		{"fixed dimension", `{"strategy":"tight","reference":[30,30,40]}`, http.StatusBadRequest},
		{"negative count", `{"strategy":"l1_vs_leontief","reference":[50,50],"count":-1}`, http.StatusBadRequest},
		{"too many pairs", `{"strategy":"l1_vs_leontief","reference":[50,50],"count":21}`, http.StatusBadRequest},
		{"too many categories", `{"strategy":"l1_vs_leontief","reference":[10,10,10,10,10,10,10,10,10,10]}`, http.StatusBadRequest},
		{"declared dimension above limit", `{"strategy":"l1_vs_leontief","reference":[50,50],"dimension":12}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			w := env.do("POST", "/api/v1/pairs", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
			env.store.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
			assert.Zero(t, env.cache.Stats().Entries, "no pool may be built for a rejected request")
		})
	}
}

func TestCreatePairsStoreFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("SaveBatch", mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"l1_vs_leontief","reference":[30,30,40],"count":2}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreatePairsSurvivesPublishFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
	env.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	w := env.do("POST", "/api/v1/pairs", `{"strategy":"l1_vs_leontief","reference":[30,30,40],"count":2}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequiresRespondentID(t *testing.T) {
	env := setupTestRouter(t)
	req := httptest.NewRequest("GET", "/api/v1/strategies", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListStrategies(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("GET", "/api/v1/strategies", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cfgs []strategy.Config
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cfgs))
	require.Len(t, cfgs, 3)
	assert.Equal(t, "l1_vs_leontief", cfgs[0].Name)
	assert.Equal(t, 5, cfgs[0].Step)
	assert.Equal(t, 100, cfgs[0].Total)
	assert.Equal(t, strategy.EngineRelaxation, cfgs[2].Engine)
}

func TestGetStrategy(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/api/v1/strategies/tight", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cfg strategy.Config
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cfg))
	assert.Equal(t, 2, cfg.Dimension)

	w = env.do("GET", "/api/v1/strategies/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBatch(t *testing.T) {
	env := setupTestRouter(t)
	found := &store.Batch{ID: uuid.New(), RespondentID: "resp-1", Strategy: "l1_vs_leontief", Reference: simplex.Vector{50, 50}}
	missing := uuid.New()
	env.store.On("GetBatch", mock.Anything, found.ID).Return(found, nil)
	env.store.On("GetBatch", mock.Anything, missing).Return(nil, nil)

	w := env.do("GET", "/api/v1/batches/"+found.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got store.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, found.ID, got.ID)

	w = env.do("GET", "/api/v1/batches/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	foreign := &store.Batch{ID: uuid.New(), RespondentID: "resp-2"}
	env.store.On("GetBatch", mock.Anything, foreign.ID).Return(foreign, nil)
	w = env.do("GET", "/api/v1/batches/"+foreign.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("GET", "/api/v1/batches/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBatchesIsScopedToCaller(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("ListBatches", mock.Anything, store.BatchFilter{RespondentID: "resp-1", Limit: 50}).
		Return([]*store.Batch{{ID: uuid.New()}}, nil)
	env.store.On("ListBatches", mock.Anything, store.BatchFilter{RespondentID: "resp-1", Strategy: "tight", Limit: 5}).
		Return(nil, nil)

	w := env.do("GET", "/api/v1/batches", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []store.Batch
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 1)

	// respondent_id is ignored outside the admin route
	w = env.do("GET", "/api/v1/batches?respondent_id=other&strategy=tight&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	env.store.AssertNotCalled(t, "ListBatches", mock.Anything, mock.MatchedBy(func(f store.BatchFilter) bool {
		return f.RespondentID == "other"
	}))

	w = env.do("GET", "/api/v1/batches?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListBatches(t *testing.T) {
	env := setupTestRouter(t)
	env.store.On("ListBatches", mock.Anything, store.BatchFilter{RespondentID: "other", Limit: 50}).
		Return([]*store.Batch{{ID: uuid.New(), RespondentID: "other"}}, nil)

	w := env.do("GET", "/api/v1/admin/batches?respondent_id=other", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/v1/admin/batches?respondent_id=other", nil)
	req.Header.Set(respondentHeader, "admin")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []store.Batch
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "other", got[0].RespondentID)
}

func TestCacheStatsRequiresAdmin(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/api/v1/cache/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := env.cache.Pool(simplex.DefaultParams(2))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/cache/stats", nil)
	req.Header.Set(respondentHeader, "admin")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats simplex.CacheStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMetricsRouter(t *testing.T) {
	router := NewMetricsRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&strategy.ValidationError{Field: "count"}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&strategy.UnsuitableError{Strategy: "x"}))
	assert.Equal(t, http.StatusNotFound, statusFor(strategy.ErrUnknownStrategy))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
