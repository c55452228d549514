package worker

import (
	"fmt"
	"math"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/expr"
	"github.com/snow-ghost/fitness/pkg/cache"
)

// Member is a population member: a tree plus the values scoring produced for
// it. The complexity is cached on the member by the pool; core never writes it.
type Member[L core.Float] struct {
	tree       core.Tree
	complexity int

	Score L
	Loss  L
}

// NewMember wraps tree with no cached complexity.
func NewMember[L core.Float](tree core.Tree) *Member[L] {
	return &Member[L]{tree: tree, complexity: core.ComputeComplexity}
}

// GetTree returns the member's expression tree.
func (m *Member[L]) GetTree() core.Tree { return m.tree }

// Complexity returns the cached complexity, if any.
func (m *Member[L]) Complexity() (int, bool) {
	return m.complexity, m.complexity >= 0
}

// SetComplexity caches a complexity on the member.
func (m *Member[L]) SetComplexity(c int) { m.complexity = c }

// Empty reports whether the member has no tree to score.
func (m *Member[L]) Empty() bool {
	if m.tree == nil {
		return true
	}
	n, ok := m.tree.(*expr.Node)
	return ok && n == nil
}

// Key identifies the member's expression for caching and deduplication.
func (m *Member[L]) Key() cache.CacheKey {
	if m.Empty() {
		return "<nil>"
	}
	if s, ok := m.tree.(fmt.Stringer); ok {
		return cache.CacheKey(s.String())
	}
	return cache.CacheKey(fmt.Sprintf("%T:%v", m.tree, m.tree))
}

func (m *Member[L]) String() string { return string(m.Key()) }

// Best returns the member with the lowest score, or nil for an empty slice.
// Non-finite scores never beat finite ones.
func Best[L core.Float](members []*Member[L]) *Member[L] {
	var best *Member[L]
	for _, m := range members {
		if best == nil || m.Score < best.Score || (isNaN(best.Score) && !isNaN(m.Score)) {
			best = m
		}
	}
	return best
}

func isNaN[L core.Float](v L) bool { return math.IsNaN(float64(v)) }
