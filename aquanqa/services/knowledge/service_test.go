package knowledge

import (
	"aquanqa/aquanqa/services/embedding"
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/logging"
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.InitTestLogger()
	os.Exit(m.Run())
}

// --- fakes ---

type fakeStore struct {
	entries map[uuid.UUID]*models.KnowledgeEntry
	recs    map[uuid.UUID][]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: map[uuid.UUID]*models.KnowledgeEntry{},
		recs:    map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeStore) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	if e, ok := f.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByQuestion(ctx context.Context, question string) (*models.KnowledgeEntry, error) {
	for _, e := range f.entries {
		if e.Question == question {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Update(ctx context.Context, entry *models.KnowledgeEntry) error {
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	f.entries[id].IsActive = false
	return nil
}

func (f *fakeStore) ListAll(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var out []models.KnowledgeEntry
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStore) ListActive(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var out []models.KnowledgeEntry
	for _, e := range f.entries {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCategory(ctx context.Context, categoryID uuid.UUID, includeInactive bool) ([]models.KnowledgeEntry, error) {
	var out []models.KnowledgeEntry
	for _, e := range f.entries {
		if e.CategoryID == nil || *e.CategoryID != categoryID {
			continue
		}
		if !includeInactive && !e.IsActive {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStore) ReplaceRecommendations(ctx context.Context, entry *models.KnowledgeEntry, recommendedIDs []uuid.UUID) error {
	f.recs[entry.ID] = recommendedIDs
	return nil
}

func (f *fakeStore) SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	f.entries[id].Embedding = vec
	return nil
}

type fakeCategories struct {
	categories map[uuid.UUID]*models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{categories: map[uuid.UUID]*models.Category{}}
}

func (f *fakeCategories) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	cp := *category
	f.categories[category.ID] = &cp
	return nil
}

func (f *fakeCategories) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := f.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCategories) ListAll(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategories) Update(ctx context.Context, category *models.Category) error {
	cp := *category
	f.categories[category.ID] = &cp
	return nil
}

func (f *fakeCategories) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

type fakeEncoder struct {
	vec         []float32
	err         error
	encodeCalls int
	batchCalls  int
}

func (f *fakeEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	f.encodeCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateQueries(ctx context.Context) error {
	f.calls++
	return f.err
}

func newTestService() (*Service, *fakeStore, *fakeCategories, *fakeEncoder, *fakeInvalidator) {
	store := newFakeStore()
	categories := newFakeCategories()
	enc := &fakeEncoder{vec: []float32{0.1, 0.2, 0.3}}
	inv := &fakeInvalidator{}
	return NewService(store, categories, enc, inv), store, categories, enc, inv
}

// --- entries ---

func TestCreateEncodesAndInvalidates(t *testing.T) {
	svc, store, _, enc, inv := newTestService()

	entry, err := svc.Create(context.Background(), EntryInput{
		Question: "  ¿cuál es el horario?  ",
		Answer:   "9 a 6",
		Keywords: "horario",
	})
	require.NoError(t, err)

	assert.Equal(t, "¿cuál es el horario?", entry.Question, "question should be trimmed")
	assert.True(t, entry.IsActive, "entries default to active")
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, entry.Embedding)
	assert.Equal(t, 1, enc.encodeCalls)
	assert.Equal(t, 1, inv.calls, "a create must drop cached answers")

	stored, err := store.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "9 a 6", stored.Answer)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _, _, _, inv := newTestService()

	_, err := svc.Create(context.Background(), EntryInput{Question: "", Answer: "a"})
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = svc.Create(context.Background(), EntryInput{Question: "q válida", Answer: "   "})
	assert.ErrorIs(t, err, ErrInvalidData)

	assert.Zero(t, inv.calls, "rejected input must not touch the cache")
}

func TestCreateRejectsDuplicateQuestion(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	in := EntryInput{Question: "¿cuál es el horario?", Answer: "9 a 6"}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicateQuestion)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	missing := uuid.New()
	_, err := svc.Create(context.Background(), EntryInput{
		Question:   "¿dónde queda la oficina?",
		Answer:     "Calle 1",
		CategoryID: &missing,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateToleratesModelOutage(t *testing.T) {
	svc, store, _, enc, _ := newTestService()
	enc.err = embedding.ErrModelUnavailable

	entry, err := svc.Create(context.Background(), EntryInput{Question: "¿cómo pago?", Answer: "Con la app"})
	require.NoError(t, err, "a model outage must not block the write")
	assert.Nil(t, entry.Embedding, "entry is stored unindexed")

	stored, _ := store.GetByID(context.Background(), entry.ID)
	assert.False(t, stored.HasEmbedding())
}

func TestUpdateReencodesAndInvalidates(t *testing.T) {
	svc, _, _, enc, inv := newTestService()

	entry, err := svc.Create(context.Background(), EntryInput{Question: "pregunta original", Answer: "a"})
	require.NoError(t, err)

	enc.vec = []float32{9, 9, 9}
	updated, err := svc.Update(context.Background(), entry.ID, EntryInput{
		Question: "pregunta corregida",
		Answer:   "respuesta nueva",
	})
	require.NoError(t, err)

	assert.Equal(t, "pregunta corregida", updated.Question)
	assert.Equal(t, []float32{9, 9, 9}, updated.Embedding, "text changes re-encode")
	assert.Equal(t, 2, enc.encodeCalls)
	assert.Equal(t, 2, inv.calls)
}

func TestUpdateRejectsDuplicateOfOtherEntry(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	first, err := svc.Create(context.Background(), EntryInput{Question: "pregunta uno", Answer: "a"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), EntryInput{Question: "pregunta dos", Answer: "b"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, EntryInput{Question: first.Question, Answer: "b"})
	assert.ErrorIs(t, err, ErrDuplicateQuestion)

	// Re-saving an entry under its own question is not a duplicate.
	_, err = svc.Update(context.Background(), second.ID, EntryInput{Question: second.Question, Answer: "b2"})
	assert.NoError(t, err)
}

func TestUpdateUnknownEntry(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), EntryInput{Question: "q", Answer: "a"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesRecommendations(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	target, err := svc.Create(context.Background(), EntryInput{Question: "principal", Answer: "a"})
	require.NoError(t, err)
	rec, err := svc.Create(context.Background(), EntryInput{Question: "relacionada", Answer: "b"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), target.ID, EntryInput{
		Question:       target.Question,
		Answer:         target.Answer,
		RecommendedIDs: []uuid.UUID{rec.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{rec.ID}, store.recs[target.ID])
}

func TestDeactivate(t *testing.T) {
	svc, store, _, _, inv := newTestService()

	entry, err := svc.Create(context.Background(), EntryInput{Question: "para borrar", Answer: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), entry.ID))
	stored, _ := store.GetByID(context.Background(), entry.ID)
	assert.False(t, stored.IsActive, "deactivation is a soft delete")
	assert.Equal(t, 2, inv.calls)

	assert.ErrorIs(t, svc.Deactivate(context.Background(), uuid.New()), ErrNotFound)
}

func TestListFiltersInactive(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	kept, err := svc.Create(context.Background(), EntryInput{Question: "activa", Answer: "a"})
	require.NoError(t, err)
	gone, err := svc.Create(context.Background(), EntryInput{Question: "inactiva", Answer: "a"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), gone.ID))

	active, err := svc.List(context.Background(), false, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)

	all, err := svc.List(context.Background(), true, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListByCategory(t *testing.T) {
	svc, _, categories, _, _ := newTestService()

	cat := &models.Category{Name: "RRHH"}
	require.NoError(t, categories.Create(context.Background(), cat))

	inCat, err := svc.Create(context.Background(), EntryInput{Question: "de rrhh", Answer: "a", CategoryID: &cat.ID})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), EntryInput{Question: "sin categoria", Answer: "a"})
	require.NoError(t, err)

	entries, err := svc.List(context.Background(), false, &cat.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inCat.ID, entries[0].ID)
}

// --- regeneration ---

func TestRegenerateEmbeddings(t *testing.T) {
	svc, store, _, enc, inv := newTestService()

	enc.err = embedding.ErrModelUnavailable
	for _, q := range []string{"uno", "dos", "tres"} {
		_, err := svc.Create(context.Background(), EntryInput{Question: "pregunta " + q, Answer: "a"})
		require.NoError(t, err)
	}

	enc.err = nil
	enc.vec = []float32{1, 2, 3}
	processed, err := svc.RegenerateEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, 1, enc.batchCalls)
	assert.Equal(t, 4, inv.calls, "3 creates + 1 regeneration")

	entries, _ := store.ListAll(context.Background())
	for _, e := range entries {
		assert.True(t, e.HasEmbedding(), "entry %q left unindexed", e.Question)
	}
}

func TestRegenerateEmbeddingsEmptyBase(t *testing.T) {
	svc, _, _, enc, _ := newTestService()
	processed, err := svc.RegenerateEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, enc.batchCalls)
}

func TestRegenerateEmbeddingsModelDown(t *testing.T) {
	svc, _, _, enc, _ := newTestService()
	_, err := svc.Create(context.Background(), EntryInput{Question: "pregunta", Answer: "a"})
	require.NoError(t, err)

	enc.err = embedding.ErrModelUnavailable
	_, err = svc.RegenerateEmbeddings(context.Background())
	assert.ErrorIs(t, err, embedding.ErrModelUnavailable, "regeneration has no unindexed fallback")
}

// --- categories ---

func TestCategoryLifecycle(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	created, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "  RRHH  ", Description: "recursos humanos"})
	require.NoError(t, err)
	assert.Equal(t, "RRHH", created.Name)

	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidData)

	updated, err := svc.UpdateCategory(context.Background(), created.ID, CategoryInput{Name: "Recursos Humanos"})
	require.NoError(t, err)
	assert.Equal(t, "Recursos Humanos", updated.Name)

	listed, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.DeleteCategory(context.Background(), created.ID))
	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), created.ID), ErrCategoryNotFound)
}
