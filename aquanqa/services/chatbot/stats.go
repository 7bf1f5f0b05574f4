package chatbot

import (
	"aquanqa/aquanqa/services/cache"
	"aquanqa/aquanqa/sources/psql/dao"
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/logging"
	"aquanqa/aquanqa/utils/types"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	statsKey      = cache.Prefix + ":stats"
	statsTTL      = 15 * time.Minute
	frequentTTL   = 30 * time.Minute
	topCategories = 5
)

// StatsKnowledgeSource is the aggregate side of the knowledge DAO.
type StatsKnowledgeSource interface {
	CountActive(ctx context.Context) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	TopCategories(ctx context.Context, limit int) ([]dao.CategoryCount, error)
	MostViewed(ctx context.Context, limit int) ([]models.KnowledgeEntry, error)
}

// StatsConversationSource is the aggregate side of the conversation DAO.
type StatsConversationSource interface {
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// JSONCache is the generic cache surface the stats service uses.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, v interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
}

// StatsService serves the most-viewed listing and usage statistics,
// both short-lived cached reads.
type StatsService struct {
	knowledge     StatsKnowledgeSource
	conversations StatsConversationSource
	cache         JSONCache
}

func NewStatsService(knowledge StatsKnowledgeSource, conversations StatsConversationSource, jsonCache JSONCache) *StatsService {
	return &StatsService{knowledge: knowledge, conversations: conversations, cache: jsonCache}
}

// FrequentQuestions returns the most-viewed active entries.
func (s *StatsService) FrequentQuestions(ctx context.Context, limit int) ([]types.FrequentQuestion, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	key := fmt.Sprintf("%s%d", frequentNamespace, limit)

	var cached []types.FrequentQuestion
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	entries, err := s.knowledge.MostViewed(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.FrequentQuestion, 0, len(entries))
	for i := range entries {
		out = append(out, types.FrequentQuestion{
			ID:        entries[i].ID,
			Question:  entries[i].Question,
			ViewCount: entries[i].ViewCount,
			Category:  entries[i].CategoryName(),
		})
	}
	s.cache.SetJSON(ctx, key, out, frequentTTL)
	return out, nil
}

// Statistics aggregates knowledge-base and conversation counters.
func (s *StatsService) Statistics(ctx context.Context) (*types.ChatbotStatistics, error) {
	var cached types.ChatbotStatistics
	if s.cache.GetJSON(ctx, statsKey, &cached) {
		return &cached, nil
	}

	stats := &types.ChatbotStatistics{TopCategories: []types.CategoryCount{}}

	var err error
	if stats.TotalConversations, err = s.conversations.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalKnowledgeBase, err = s.knowledge.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = s.knowledge.SumViews(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.ConversationsToday, err = s.conversations.CountSince(ctx, midnight); err != nil {
		return nil, err
	}

	top, err := s.knowledge.TopCategories(ctx, topCategories)
	if err != nil {
		logging.AppLogger.Warn("top categories aggregation failed", zap.Error(err))
	} else {
		for _, c := range top {
			stats.TopCategories = append(stats.TopCategories, types.CategoryCount{Category: c.Name, Count: c.Count})
		}
	}

	s.cache.SetJSON(ctx, statsKey, stats, statsTTL)
	return stats, nil
}
