package embedding

import (
	"aquanqa/aquanqa/sources/psql/models"
	"context"
	"errors"
	"math"
)

// ErrNoKnowledgeIndexed means no active entry has a computed vector.
// Distinct from "no match found": the index never even ran.
var ErrNoKnowledgeIndexed = errors.New("no knowledge entries with embeddings")

// Encoder is the piece of the client the index needs. Tests swap in a
// deterministic fake.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Available() bool
}

// Index scores a question against stored entry vectors by cosine
// similarity.
type Index struct {
	encoder Encoder
}

func NewIndex(encoder Encoder) *Index {
	return &Index{encoder: encoder}
}

func (ix *Index) Available() bool {
	return ix.encoder != nil && ix.encoder.Available()
}

// BestMatch encodes the question and returns the entry maximizing cosine
// similarity among entries that carry a vector.
func (ix *Index) BestMatch(ctx context.Context, question string, entries []models.KnowledgeEntry) (*models.KnowledgeEntry, float64, error) {
	if !ix.Available() {
		return nil, 0, ErrModelUnavailable
	}

	indexed := false
	for i := range entries {
		if entries[i].IsActive && entries[i].HasEmbedding() {
			indexed = true
			break
		}
	}
	if !indexed {
		return nil, 0, ErrNoKnowledgeIndexed
	}

	qvec, err := ix.encoder.Encode(ctx, question)
	if err != nil {
		return nil, 0, err
	}

	var best *models.KnowledgeEntry
	bestScore := 0.0
	for i := range entries {
		e := &entries[i]
		if !e.IsActive || !e.HasEmbedding() {
			continue
		}
		score := Cosine(qvec, e.Embedding)
		if best == nil || score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best, bestScore, nil
}

// Cosine computes cosine similarity between two vectors, 0 when either
// is a zero vector or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		v := float64(a[i])
		w := float64(b[i])
		dot += v * w
		na += v * v
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
