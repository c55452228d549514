package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/fitness/testkit"
)

func newTestIngestor(t *testing.T) *Ingestor[float64] {
	t.Helper()
	var calls atomic.Int64
	pool, err := NewPool(testkit.LinearDataset[float64](), testOptions(&calls), PoolConfig{}, nil, nil)
	require.NoError(t, err)
	pool.RefreshBaseline(context.Background())
	return NewIngestor(pool)
}

func TestIngestor_Score(t *testing.T) {
	body := `
population:
  - op: add
    children: [{feature: 0}, {value: 1}]
  - op: log
    children:
      - op: sub
        children: [{feature: 0}, {value: 5}]
`
	rec := httptest.NewRecorder()
	newTestIngestor(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Members, 2)
	assert.Equal(t, 0, resp.Best)
	assert.Equal(t, 1, resp.NonFinite)

	assert.Equal(t, "(x0 + 1)", resp.Members[0].Expression)
	assert.Equal(t, 3, resp.Members[0].Complexity)
	require.NotNil(t, resp.Members[0].Score)
	assert.InDelta(t, 0.03, *resp.Members[0].Score, 1e-12)
	assert.Nil(t, resp.Members[1].Score)
	assert.Nil(t, resp.Members[1].Loss)
}

func TestIngestor_JSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(`{"population": [{"feature": 0}]}`))
	newTestIngestor(t).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Members, 1)
	require.NotNil(t, resp.Members[0].Loss)
	assert.InDelta(t, 1.0, *resp.Members[0].Loss, 1e-12)
}

func TestIngestor_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"empty population", http.MethodPost, "population: []", http.StatusBadRequest},
		{"unknown operator", http.MethodPost, "population: [{op: tanh, children: [{feature: 0}]}]", http.StatusBadRequest},
		{"malformed", http.MethodPost, "population: [", http.StatusBadRequest},
		{"null member", http.MethodPost, `{"population": [null]}`, http.StatusBadRequest},
		{"null among valid", http.MethodPost, `{"population": [{"feature": 0}, null]}`, http.StatusBadRequest},
	}
	ing := newTestIngestor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ing.ServeHTTP(rec, httptest.NewRequest(tt.method, "/score", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
