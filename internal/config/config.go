package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURI      string
	RabbitExchange string

	AllowOrigins []string

	// Mutating attempt routes per student per minute; 0 disables limiting.
	RateLimitPerMinute int
}

// Load reads the service configuration from the environment. godotenv is
// loaded by main before this runs, the same way the other services do it.
func Load() *Config {
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	rate := 120
	if v := os.Getenv("ATTEMPT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rate = n
		}
	}

	origins := []string{"http://localhost:3000"}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	return &Config{
		Port:               getEnv("QUIZ_ATTEMPT_PORT", "6660"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDatabase:      getEnv("QUIZ_ATTEMPT_MONGO_DB", "quiz_attempt_service"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PWD"),
		RedisDB:            redisDB,
		RabbitURI:          os.Getenv("RABBITMQ_URI"),
		RabbitExchange:     os.Getenv("RABBITMQ_EXCHANGE"),
		AllowOrigins:       origins,
		RateLimitPerMinute: rate,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
