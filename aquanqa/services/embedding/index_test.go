package embedding

import (
	"aquanqa/aquanqa/sources/psql/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder returns canned vectors per text.
type fakeEncoder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEncoder) Available() bool { return true }

func indexedEntry(question string, vec []float32) models.KnowledgeEntry {
	return models.KnowledgeEntry{Question: question, Answer: "a", IsActive: true, Embedding: vec}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}), "zero vector")
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1, 0, 0}), "dimension mismatch")
	assert.Zero(t, Cosine(nil, nil), "empty vectors")
}

func TestBestMatchReflexivity(t *testing.T) {
	// Encoding a stored question must return its own entry with maximal
	// similarity.
	enc := &fakeEncoder{vectors: map[string][]float32{
		"¿Cuál es el horario?": {1, 0, 0},
		"¿Cómo pido permiso?":  {0, 1, 0},
	}}
	ix := NewIndex(enc)

	entries := []models.KnowledgeEntry{
		indexedEntry("¿Cuál es el horario?", []float32{1, 0, 0}),
		indexedEntry("¿Cómo pido permiso?", []float32{0, 1, 0}),
	}

	best, score, err := ix.BestMatch(context.Background(), "¿Cuál es el horario?", entries)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "¿Cuál es el horario?", best.Question)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestBestMatchSkipsUnindexedAndInactive(t *testing.T) {
	enc := &fakeEncoder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	ix := NewIndex(enc)

	inactive := indexedEntry("inactiva", []float32{1, 0, 0})
	inactive.IsActive = false
	unindexed := models.KnowledgeEntry{Question: "sin vector", IsActive: true}
	other := indexedEntry("otra", []float32{0.9, 0.1, 0})

	best, _, err := ix.BestMatch(context.Background(), "q", []models.KnowledgeEntry{inactive, unindexed, other})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "otra", best.Question)
}

func TestBestMatchNoKnowledgeIndexed(t *testing.T) {
	ix := NewIndex(&fakeEncoder{})
	_, _, err := ix.BestMatch(context.Background(), "q", []models.KnowledgeEntry{
		{Question: "sin vector", IsActive: true},
	})
	assert.ErrorIs(t, err, ErrNoKnowledgeIndexed)
}

func TestBestMatchEncoderFailure(t *testing.T) {
	ix := NewIndex(&fakeEncoder{err: ErrModelUnavailable})
	_, _, err := ix.BestMatch(context.Background(), "q", []models.KnowledgeEntry{
		indexedEntry("x", []float32{1, 0, 0}),
	})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestUnconfiguredClientUnavailable(t *testing.T) {
	client := NewClient("", "", "modelo")
	assert.False(t, client.Available())

	_, err := client.Encode(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrModelUnavailable)

	ix := NewIndex(client)
	_, _, err = ix.BestMatch(context.Background(), "hola", []models.KnowledgeEntry{
		indexedEntry("x", []float32{1}),
	})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
