package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups knowledge entries. Deleting a category leaves its
// entries uncategorized (SET NULL), never deletes them.
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Category) TableName() string {
	return "chatbot_categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	return tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
}

// KnowledgeEntry is one question/answer unit of the chatbot knowledge
// base. The embedding is precomputed on write; entries are deactivated,
// not deleted. Recommendations are a directed self-referential relation.
type KnowledgeEntry struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CategoryID *uuid.UUID `json:"category_id" gorm:"type:uuid"`
	Category   *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	Question   string     `json:"question" gorm:"type:varchar(255);uniqueIndex;not null"`
	Answer     string     `json:"answer" gorm:"type:text;not null"`
	Keywords   string     `json:"keywords" gorm:"type:varchar(255)"`
	IsActive   bool       `json:"is_active" gorm:"not null;default:true"`
	ViewCount  int64      `json:"view_count" gorm:"not null;default:0"`
	Embedding  []float32  `json:"-" gorm:"type:jsonb;serializer:json"`

	Recommended []*KnowledgeEntry `json:"-" gorm:"many2many:knowledge_recommendations;joinForeignKey:EntryID;joinReferences:RecommendedID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (KnowledgeEntry) TableName() string {
	return "chatbot_knowledge_entries"
}

func (e *KnowledgeEntry) BeforeCreate(tx *gorm.DB) (err error) {
	return tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
}

// HasEmbedding reports whether the entry carries a computed vector.
func (e *KnowledgeEntry) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// CategoryName returns the category name or nil when uncategorized.
func (e *KnowledgeEntry) CategoryName() *string {
	if e.Category == nil {
		return nil
	}
	return &e.Category.Name
}
