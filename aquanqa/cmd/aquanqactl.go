// Command-line admin tool for the chatbot knowledge base.
package main

import (
	"aquanqa/aquanqa/config"
	"aquanqa/aquanqa/services/cache"
	"aquanqa/aquanqa/services/embedding"
	"aquanqa/aquanqa/services/knowledge"
	"aquanqa/aquanqa/sources/psql"
	"aquanqa/aquanqa/sources/psql/dao"
	"aquanqa/aquanqa/utils/logging"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	args := os.Args[1:]
	if len(args) < 1 || args[0] != "regenerate-embeddings" {
		fmt.Println("aquanqactl usage:")
		fmt.Println("  aquanqactl regenerate-embeddings   # Re-encode every knowledge entry")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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
	responseCache := cache.New(rdb, cfg.CacheTTL)

	encoder := embedding.NewClient(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	svc := knowledge.NewService(dao.NewKnowledgeDAO(db.DB), dao.NewCategoryDAO(db.DB), encoder, responseCache)

	fmt.Println("Regenerating embeddings for the knowledge base...")
	processed, err := svc.RegenerateEmbeddings(ctx)
	if err != nil {
		logging.ErrorLogger.Error("embedding regeneration failed", zap.Error(err))
		fmt.Println("Regeneration failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Done. %d entries processed.\n", processed)
}
