package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	EmbeddingEndpoint string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	EmbeddingThreshold float64
	LexicalThreshold   float64
	FuzzyThreshold     float64

	CacheTTL time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),

		EmbeddingEndpoint: getEnv("EMBEDDING_ENDPOINT", ""),
		EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "hiiamsid/sentence_similarity_spanish_es"),

		EmbeddingThreshold: getEnvFloat("CHATBOT_EMBEDDING_THRESHOLD", 0.5),
		LexicalThreshold:   getEnvFloat("CHATBOT_LEXICAL_THRESHOLD", 0.2),
		FuzzyThreshold:     getEnvFloat("CHATBOT_FUZZY_THRESHOLD", 0.6),

		CacheTTL: getEnvDuration("CHATBOT_CACHE_TTL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
