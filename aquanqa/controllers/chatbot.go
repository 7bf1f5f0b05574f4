package controllers

import (
	"aquanqa/aquanqa/services/chatbot"
	"aquanqa/aquanqa/sources/psql/models"
	"aquanqa/aquanqa/utils/types"
	"context"
)

type ChatbotController struct {
	service *chatbot.Service
	stats   *chatbot.StatsService
}

func NewChatbotController(service *chatbot.Service, stats *chatbot.StatsService) *ChatbotController {
	return &ChatbotController{service: service, stats: stats}
}

func (c *ChatbotController) Query(ctx context.Context, userID *int, req types.ChatbotQuery) (*types.ChatbotResult, error) {
	return c.service.Resolve(ctx, req, userID)
}

func (c *ChatbotController) Recommended(ctx context.Context, limit int) ([]types.FrequentQuestion, error) {
	return c.stats.FrequentQuestions(ctx, limit)
}

func (c *ChatbotController) Suggest(ctx context.Context, query string, limit int) ([]types.Suggestion, error) {
	return c.service.Suggest(ctx, query, limit)
}

func (c *ChatbotController) History(ctx context.Context, userID *int, limit int) ([]models.Conversation, error) {
	return c.service.History(ctx, userID, limit)
}

func (c *ChatbotController) Statistics(ctx context.Context) (*types.ChatbotStatistics, error) {
	return c.stats.Statistics(ctx)
}
