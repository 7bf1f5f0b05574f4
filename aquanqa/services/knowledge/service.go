// Package knowledge is the write path of the knowledge base. Embeddings
// are recomputed inline on every create/update — an explicit step at the
// call site, not a save hook — and every mutation invalidates the
// response cache.
package knowledge

import (
	"aquanqa/aquanqa/services/embedding"
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/logging"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("knowledge entry not found")
	ErrDuplicateQuestion = errors.New("question already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidData       = errors.New("invalid knowledge data")
)

// Store is the DAO surface the service mutates.
type Store interface {
	Create(ctx context.Context, entry *models.KnowledgeEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error)
	GetByQuestion(ctx context.Context, question string) (*models.KnowledgeEntry, error)
	Update(ctx context.Context, entry *models.KnowledgeEntry) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]models.KnowledgeEntry, error)
	ListActive(ctx context.Context) ([]models.KnowledgeEntry, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, includeInactive bool) ([]models.KnowledgeEntry, error)
	ReplaceRecommendations(ctx context.Context, entry *models.KnowledgeEntry, recommendedIDs []uuid.UUID) error
	SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error
}

// CategoryStore is the category DAO surface.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Encoder produces question embeddings; unavailability is tolerated on
// writes (the entry is stored unindexed) but fails regeneration.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Invalidator drops memoized resolutions after a mutation.
type Invalidator interface {
	InvalidateQueries(ctx context.Context) error
}

type Service struct {
	store      Store
	categories CategoryStore
	encoder    Encoder
	cache      Invalidator
}

func NewService(store Store, categories CategoryStore, encoder Encoder, cache Invalidator) *Service {
	return &Service{store: store, categories: categories, encoder: encoder, cache: cache}
}

// EntryInput carries the writable fields of a knowledge entry.
type EntryInput struct {
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	Keywords       string      `json:"keywords"`
	CategoryID     *uuid.UUID  `json:"category_id"`
	IsActive       *bool       `json:"is_active"`
	RecommendedIDs []uuid.UUID `json:"recommended_questions"`
}

func (in EntryInput) validate() error {
	if strings.TrimSpace(in.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidData)
	}
	if strings.TrimSpace(in.Answer) == "" {
		return fmt.Errorf("%w: answer is required", ErrInvalidData)
	}
	return nil
}

// Create stores a new entry and computes its embedding inline. When the
// model is down the entry is saved unindexed and picked up by the next
// regeneration run.
func (s *Service) Create(ctx context.Context, in EntryInput) (*models.KnowledgeEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	question := strings.TrimSpace(in.Question)

	existing, err := s.store.GetByQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateQuestion, question)
	}

	if in.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}

	entry := &models.KnowledgeEntry{
		Question:   question,
		Answer:     in.Answer,
		Keywords:   in.Keywords,
		CategoryID: in.CategoryID,
		IsActive:   true,
	}
	if in.IsActive != nil {
		entry.IsActive = *in.IsActive
	}
	entry.Embedding = s.tryEncode(ctx, question)

	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}
	if len(in.RecommendedIDs) > 0 {
		if err := s.store.ReplaceRecommendations(ctx, entry, in.RecommendedIDs); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx)
	return entry, nil
}

// Update rewrites an entry, re-encoding the question since any text
// change can move it in embedding space.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in EntryInput) (*models.KnowledgeEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}

	question := strings.TrimSpace(in.Question)
	if question != entry.Question {
		existing, err := s.store.GetByQuestion(ctx, question)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateQuestion, question)
		}
	}
	if in.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}

	entry.Question = question
	entry.Answer = in.Answer
	entry.Keywords = in.Keywords
	entry.CategoryID = in.CategoryID
	if in.IsActive != nil {
		entry.IsActive = *in.IsActive
	}
	entry.Embedding = s.tryEncode(ctx, question)

	if err := s.store.Update(ctx, entry); err != nil {
		return nil, err
	}
	if in.RecommendedIDs != nil {
		if err := s.store.ReplaceRecommendations(ctx, entry, in.RecommendedIDs); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx)
	return entry, nil
}

// Deactivate soft-deletes an entry so it stops matching without losing
// its history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool, categoryID *uuid.UUID) ([]models.KnowledgeEntry, error) {
	if categoryID != nil {
		return s.store.ListByCategory(ctx, *categoryID, includeInactive)
	}
	if includeInactive {
		return s.store.ListAll(ctx)
	}
	return s.store.ListActive(ctx)
}

// RegenerateEmbeddings re-encodes every entry in one batch. Safe to
// re-run; reports the number of entries processed.
func (s *Service) RegenerateEmbeddings(ctx context.Context) (int, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	questions := make([]string, len(entries))
	for i := range entries {
		questions[i] = entries[i].Question
	}
	vectors, err := s.encoder.EncodeBatch(ctx, questions)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range entries {
		if err := s.store.SetEmbedding(ctx, entries[i].ID, vectors[i]); err != nil {
			logging.ErrorLogger.Error("storing embedding failed",
				zap.String("id", entries[i].ID.String()), zap.Error(err))
			continue
		}
		processed++
	}
	s.invalidate(ctx)
	logging.AppLogger.Info("embeddings regenerated", zap.Int("processed", processed))
	return processed, nil
}

// tryEncode computes an embedding, tolerating model unavailability.
func (s *Service) tryEncode(ctx context.Context, question string) []float32 {
	vec, err := s.encoder.Encode(ctx, question)
	if err != nil {
		if errors.Is(err, embedding.ErrModelUnavailable) {
			logging.AppLogger.Warn("entry saved without embedding", zap.Error(err))
			return nil
		}
		logging.AppLogger.Warn("embedding encode failed", zap.Error(err))
		return nil
	}
	return vec
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateQueries(ctx); err != nil {
		logging.AppLogger.Warn("response cache invalidation failed", zap.Error(err))
	}
}

// Category management.

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidData)
	}
	category := &models.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListAll(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if strings.TrimSpace(in.Name) != "" {
		category.Name = strings.TrimSpace(in.Name)
	}
	category.Description = in.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category; entries keep existing and fall
// back to uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return s.categories.Delete(ctx, id)
}
