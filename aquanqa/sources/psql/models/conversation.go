package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is one append-only question/answer turn. Rows are never
// mutated or deleted by the pipeline.
type Conversation struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SessionID          string          `json:"session_id" gorm:"type:varchar(255);not null;index"`
	UserID             *int            `json:"user_id"`
	User               *User           `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:SET NULL"`
	QuestionText       string          `json:"question_text" gorm:"type:text;not null"`
	AnswerText         string          `json:"answer_text" gorm:"type:text;not null"`
	MatchedKnowledgeID *uuid.UUID      `json:"matched_knowledge_id" gorm:"type:uuid"`
	MatchedKnowledge   *KnowledgeEntry `json:"-" gorm:"foreignKey:MatchedKnowledgeID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Conversation) TableName() string {
	return "chat_conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	return tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
}
