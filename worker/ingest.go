package worker

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/expr"
)

// maxRequestBytes bounds the size of a submitted population.
const maxRequestBytes = 4 << 20

// ScoreRequest is a population submitted for scoring. JSON bodies are
// accepted too since they are valid YAML.
type ScoreRequest struct {
	Population []*expr.Node `yaml:"population"`
}

// ScoredMember is one entry of a ScoreResponse. Non-finite values are
// reported as null.
type ScoredMember struct {
	Expression string   `json:"expression"`
	Complexity int      `json:"complexity"`
	Score      *float64 `json:"score"`
	Loss       *float64 `json:"loss"`
}

// ScoreResponse lists the scored members in request order.
type ScoreResponse struct {
	Members   []ScoredMember `json:"members"`
	Best      int            `json:"best"`
	NonFinite int            `json:"non_finite"`
}

// Ingestor serves POST /score on top of a Pool.
type Ingestor[L core.Float] struct {
	pool *Pool[L]
}

func NewIngestor[L core.Float](pool *Pool[L]) *Ingestor[L] {
	return &Ingestor[L]{pool: pool}
}

// ServeHTTP handles POST /score with a population and returns the scores.
func (i *Ingestor[L]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req ScoreRequest
	if err := yaml.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Population) == 0 {
		http.Error(w, "empty population", http.StatusBadRequest)
		return
	}
	for k, tree := range req.Population {
		if tree == nil {
			http.Error(w, fmt.Sprintf("population[%d] is null", k), http.StatusBadRequest)
			return
		}
	}

	members := make([]*Member[L], len(req.Population))
	for k, tree := range req.Population {
		members[k] = NewMember[L](tree)
	}
	summary, err := i.pool.Score(r.Context(), members)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(NewScoreResponse(members, summary))
}

// NewScoreResponse renders scored members.
func NewScoreResponse[L core.Float](members []*Member[L], summary Summary[L]) ScoreResponse {
	resp := ScoreResponse{Members: make([]ScoredMember, len(members)), Best: -1, NonFinite: summary.NonFinite}
	for k, m := range members {
		c, _ := m.Complexity()
		resp.Members[k] = ScoredMember{
			Expression: m.String(),
			Complexity: c,
			Score:      finiteOrNil(m.Score),
			Loss:       finiteOrNil(m.Loss),
		}
		if m == summary.Best {
			resp.Best = k
		}
	}
	return resp
}

func finiteOrNil[L core.Float](v L) *float64 {
	f := float64(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
