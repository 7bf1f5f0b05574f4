package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatbotQuery is the inbound payload of the public query endpoint.
type ChatbotQuery struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	UseCache  *bool  `json:"use_cache,omitempty"`
}

// CacheEnabled defaults to true when use_cache is omitted.
func (q ChatbotQuery) CacheEnabled() bool {
	return q.UseCache == nil || *q.UseCache
}

// RecommendedQuestion is a follow-up suggestion attached to a result.
type RecommendedQuestion struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Category *string   `json:"category"`
}

// ChatbotResult is the structured outcome of one resolved query.
type ChatbotResult struct {
	Answer               string                `json:"answer"`
	MatchedQuestion      *string               `json:"matched_question"`
	KnowledgeID          *uuid.UUID            `json:"knowledge_id"`
	Category             *string               `json:"category"`
	Score                float64               `json:"score"`
	Method               string                `json:"search_method"`
	RecommendedQuestions []RecommendedQuestion `json:"recommended_questions"`
	Cached               bool                  `json:"cached"`
	Timestamp            time.Time             `json:"timestamp"`
}

// Resolution methods reported in ChatbotResult.Method.
const (
	MethodEmbeddings = "embeddings"
	MethodLexical    = "lexical"
	MethodFuzzy      = "fuzzy"
	MethodNone       = "none"
)

// FrequentQuestion is one row of the most-viewed listing.
type FrequentQuestion struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	ViewCount int64     `json:"view_count"`
	Category  *string   `json:"category"`
}

// Suggestion is one typeahead hit.
type Suggestion struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
}

// ChatbotStatistics summarizes knowledge-base usage.
type ChatbotStatistics struct {
	TotalConversations int64           `json:"total_conversations"`
	TotalKnowledgeBase int64           `json:"total_knowledge_base"`
	TotalViews         int64           `json:"total_views"`
	ConversationsToday int64           `json:"conversations_today"`
	TopCategories      []CategoryCount `json:"top_categories"`
}

// CategoryCount is one entry of the per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
