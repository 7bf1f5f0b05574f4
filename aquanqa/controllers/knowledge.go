package controllers

import (
	"aquanqa/aquanqa/services/knowledge"
	"aquanqa/aquanqa/sources/psql/models"
	"context"

	"github.com/google/uuid"
)

type KnowledgeController struct {
	service *knowledge.Service
}

func NewKnowledgeController(service *knowledge.Service) *KnowledgeController {
	return &KnowledgeController{service: service}
}

func (c *KnowledgeController) Create(ctx context.Context, in knowledge.EntryInput) (*models.KnowledgeEntry, error) {
	return c.service.Create(ctx, in)
}

func (c *KnowledgeController) Get(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	return c.service.Get(ctx, id)
}

func (c *KnowledgeController) List(ctx context.Context, includeInactive bool, categoryID *uuid.UUID) ([]models.KnowledgeEntry, error) {
	return c.service.List(ctx, includeInactive, categoryID)
}

func (c *KnowledgeController) Update(ctx context.Context, id uuid.UUID, in knowledge.EntryInput) (*models.KnowledgeEntry, error) {
	return c.service.Update(ctx, id, in)
}

func (c *KnowledgeController) Deactivate(ctx context.Context, id uuid.UUID) error {
	return c.service.Deactivate(ctx, id)
}

func (c *KnowledgeController) RegenerateEmbeddings(ctx context.Context) (int, error) {
	return c.service.RegenerateEmbeddings(ctx)
}

func (c *KnowledgeController) CreateCategory(ctx context.Context, in knowledge.CategoryInput) (*models.Category, error) {
	return c.service.CreateCategory(ctx, in)
}

func (c *KnowledgeController) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.service.ListCategories(ctx)
}

func (c *KnowledgeController) UpdateCategory(ctx context.Context, id uuid.UUID, in knowledge.CategoryInput) (*models.Category, error) {
	return c.service.UpdateCategory(ctx, id, in)
}

func (c *KnowledgeController) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.service.DeleteCategory(ctx, id)
}
