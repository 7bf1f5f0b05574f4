package dao

import (
	"aquanqa/aquanqa/sources/psql/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeDAO struct {
	DB *gorm.DB
}

func NewKnowledgeDAO(db *gorm.DB) *KnowledgeDAO {
	return &KnowledgeDAO{DB: db}
}

func (dao *KnowledgeDAO) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	return dao.DB.WithContext(ctx).Create(entry).Error
}

func (dao *KnowledgeDAO) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).Preload("Category").First(&entry, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (dao *KnowledgeDAO) GetByQuestion(ctx context.Context, question string) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).Where("question = ?", question).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (dao *KnowledgeDAO) Update(ctx context.Context, entry *models.KnowledgeEntry) error {
	return dao.DB.WithContext(ctx).Save(entry).Error
}

func (dao *KnowledgeDAO) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return dao.DB.WithContext(ctx).Model(&models.KnowledgeEntry{}).Where("id = ?", id).Updates(updates).Error
}

// Deactivate soft-deletes an entry. Hard deletes are not part of the
// normal flow.
func (dao *KnowledgeDAO) Deactivate(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Model(&models.KnowledgeEntry{}).Where("id = ?", id).Update("is_active", false).Error
}

func (dao *KnowledgeDAO) ListActive(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).Preload("Category").Where("is_active = ?", true).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (dao *KnowledgeDAO) ListByCategory(ctx context.Context, categoryID uuid.UUID, includeInactive bool) ([]models.KnowledgeEntry, error) {
	q := dao.DB.WithContext(ctx).Preload("Category").Where("category_id = ?", categoryID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var entries []models.KnowledgeEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (dao *KnowledgeDAO) ListAll(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).Preload("Category").Order("view_count desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// IncrementViews bumps the view counter in place. A read-modify-write
// here would lose updates under concurrent popular queries.
func (dao *KnowledgeDAO) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).
		Model(&models.KnowledgeEntry{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (dao *KnowledgeDAO) MostViewed(ctx context.Context, limit int) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("view_count desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Recommendations returns up to limit active entries recommended by the
// given one. The relation is directed; no symmetry is implied.
func (dao *KnowledgeDAO) Recommendations(ctx context.Context, id uuid.UUID, limit int) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := dao.DB.WithContext(ctx).
		Preload("Category").
		Joins("JOIN knowledge_recommendations kr ON kr.recommended_id = chatbot_knowledge_entries.id").
		Where("kr.entry_id = ? AND chatbot_knowledge_entries.is_active = ?", id, true).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (dao *KnowledgeDAO) ReplaceRecommendations(ctx context.Context, entry *models.KnowledgeEntry, recommendedIDs []uuid.UUID) error {
	recommended := make([]*models.KnowledgeEntry, 0, len(recommendedIDs))
	for _, rid := range recommendedIDs {
		recommended = append(recommended, &models.KnowledgeEntry{ID: rid})
	}
	return dao.DB.WithContext(ctx).Model(entry).Association("Recommended").Replace(recommended)
}

func (dao *KnowledgeDAO) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return dao.DB.WithContext(ctx).
		Model(&models.KnowledgeEntry{}).
		Where("id = ?", id).
		Update("embedding", embedding).Error
}

func (dao *KnowledgeDAO) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := dao.DB.WithContext(ctx).Model(&models.KnowledgeEntry{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (dao *KnowledgeDAO) SumViews(ctx context.Context) (int64, error) {
	var total *int64
	err := dao.DB.WithContext(ctx).
		Model(&models.KnowledgeEntry{}).
		Select("SUM(view_count)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

type CategoryCount struct {
	Name  string
	Count int64
}

// TopCategories returns the most populated active categories.
func (dao *KnowledgeDAO) TopCategories(ctx context.Context, limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := dao.DB.WithContext(ctx).
		Model(&models.KnowledgeEntry{}).
		Select("chatbot_categories.name AS name, COUNT(chatbot_knowledge_entries.id) AS count").
		Joins("JOIN chatbot_categories ON chatbot_categories.id = chatbot_knowledge_entries.category_id").
		Where("chatbot_knowledge_entries.is_active = ?", true).
		Group("chatbot_categories.name").
		Order("count desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
