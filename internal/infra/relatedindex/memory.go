// Package relatedindex provides the similarity index backends behind the
// related-questions lookup.
package relatedindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// Memory is an in-process cosine similarity index.
type Memory struct {
	mu      sync.RWMutex
	vectors map[uuid.UUID][]float32
}

// NewMemory constructs the index.
func NewMemory() *Memory {
	return &Memory{vectors: make(map[uuid.UUID][]float32)}
}

func (m *Memory) Index(_ context.Context, questionID uuid.UUID, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[questionID] = append([]float32(nil), embedding...)
	return nil
}

func (m *Memory) Nearest(_ context.Context, embedding []float32, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		id    uuid.UUID
		score float64
	}
	candidates := make([]scored, 0, len(m.vectors))
	for id, vector := range m.vectors {
		candidates = append(candidates, scored{id: id, score: cosine(embedding, vector)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].id.String() < candidates[j].id.String()
		}
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.id)
	}
	return out, nil
}

var _ qna.RelatedIndex = (*Memory)(nil)

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
