package main

import (
	"aquanqa/aquanqa/config"
	"aquanqa/aquanqa/controllers"
	"aquanqa/aquanqa/routes"
	"aquanqa/aquanqa/services/cache"
	"aquanqa/aquanqa/services/chatbot"
	"aquanqa/aquanqa/services/embedding"
	"aquanqa/aquanqa/services/knowledge"
	"aquanqa/aquanqa/sources/psql"
	"aquanqa/aquanqa/sources/psql/dao"
	"aquanqa/aquanqa/utils/logging"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Degraded mode: queries still resolve, nothing is memoized.
		logging.AppLogger.Warn("redis unavailable, responses will not be cached", zap.Error(err))
	}
	responseCache := cache.New(rdb, cfg.CacheTTL)

	encoder := embedding.NewClient(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	if !encoder.Available() {
		logging.AppLogger.Warn("embedding backend unconfigured, running on lexical/fuzzy matching only")
	}
	index := embedding.NewIndex(encoder)

	knowledgeDAO := dao.NewKnowledgeDAO(db.DB)
	categoryDAO := dao.NewCategoryDAO(db.DB)
	conversationDAO := dao.NewConversationDAO(db.Pool)
	userDAO := dao.NewUserDAO(db.DB)

	chatbotSvc := chatbot.NewService(knowledgeDAO, conversationDAO, userDAO, index, responseCache, chatbot.ThresholdsFromConfig(cfg))
	statsSvc := chatbot.NewStatsService(knowledgeDAO, conversationDAO, responseCache)
	knowledgeSvc := knowledge.NewService(knowledgeDAO, categoryDAO, encoder, responseCache)

	chatbotCtrl := controllers.NewChatbotController(chatbotSvc, statsSvc)
	knowledgeCtrl := controllers.NewKnowledgeController(knowledgeSvc)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/chatbot", routes.ChatbotRoutes(chatbotCtrl, cfg))
	r.Mount("/chatbot/knowledge", routes.KnowledgeRoutes(knowledgeCtrl, chatbotCtrl, cfg))

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
