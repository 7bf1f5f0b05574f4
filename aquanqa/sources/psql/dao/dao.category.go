package dao

import (
	"aquanqa/aquanqa/sources/psql/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryDAO struct {
	DB *gorm.DB
}

func NewCategoryDAO(db *gorm.DB) *CategoryDAO {
	return &CategoryDAO{DB: db}
}

func (dao *CategoryDAO) Create(ctx context.Context, category *models.Category) error {
	return dao.DB.WithContext(ctx).Create(category).Error
}

func (dao *CategoryDAO) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := dao.DB.WithContext(ctx).First(&category, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (dao *CategoryDAO) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := dao.DB.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (dao *CategoryDAO) ListAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := dao.DB.WithContext(ctx).Order("name asc").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (dao *CategoryDAO) Update(ctx context.Context, category *models.Category) error {
	return dao.DB.WithContext(ctx).Save(category).Error
}

// Delete removes a category. Entries referencing it fall back to
// uncategorized through the SET NULL constraint.
func (dao *CategoryDAO) Delete(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}
