package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/db"
	"quiz-attempt-service/internal/event"
	"quiz-attempt-service/internal/handlers"
	"quiz-attempt-service/internal/migration"
	"quiz-attempt-service/internal/repository"
	"quiz-attempt-service/internal/service"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}

	ctx := context.Background()
	mongoClient, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Disconnect(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %s", err)
		}
	}()
	database := mongoClient.Database(cfg.MongoDatabase)

	// Redis: quiz cache + rate limiting. Optional; the service runs without it.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis not reachable, running without cache: %s", err)
			redisClient = nil
		}
	} else {
		log.Println("Redis not configured, running without cache")
	}

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, attempt events will not be published")
	}

	// Repositories and services
	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	if err := attemptRepo.InitializeIndexes(ctx); err != nil {
		log.Fatalf("Failed to create attempt indexes: %v", err)
	}

	var quizStore service.QuizStore = quizRepo
	if redisClient != nil {
		quizStore = repository.NewCachedQuizRepository(quizRepo, redisClient)
	}

	attemptService := service.NewAttemptService(quizStore, attemptRepo)
	quizService := service.NewQuizService(quizStore, attemptRepo)

	attemptHandler := handlers.NewAttemptHandler(attemptService)
	quizHandler := handlers.NewQuizHandler(quizService)
	adminHandler := handlers.NewAdminHandler(migration.NewRunner(database))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes
	public := r.Group("/public/quiz")
	{
		public.GET("/health", quizHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes: the gateway authenticates and forwards identity in
	// headers; this service only checks they are present.
	protected := r.Group("/protected/quiz")
	protected.Use(requireIdentity())
	if redisClient != nil && cfg.RateLimitPerMinute > 0 {
		protected.Use(rateLimit(redisClient, cfg.RateLimitPerMinute))
	}

	setupAttemptRoutes(protected, attemptHandler, quizHandler, publisher)

	protected.POST("/admin/migrate-answers", adminHandler.MigrateAnswers)

	log.Printf("quiz-attempt-service listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func setupAttemptRoutes(g *gin.RouterGroup, attemptHandler *handlers.AttemptHandler, quizHandler *handlers.QuizHandler, publisher *event.EventPublisher) {
	attempts := g.Group("/attempts")
	{
		attempts.POST("/", func(c *gin.Context) {
			attemptHandler.StartAttempt(c)
			if publisher != nil && c.Writer.Status() == http.StatusCreated {
				publisher.Publish("quiz.attempt.started", gin.H{
					"attempt_id": c.GetString("attempt_id"),
					"quiz_id":    c.GetString("quiz_id"),
					"student_id": c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		attempts.GET("/:id", attemptHandler.GetAttempt)

		attempts.PUT("/:id/answer", func(c *gin.Context) {
			attemptHandler.SaveAnswer(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish("quiz.attempt.answer.saved", gin.H{
					"attempt_id":  c.Param("id"),
					"student_id":  c.GetHeader("X-User-ID"),
					"question_id": c.GetString("question_id"),
					"timestamp":   time.Now(),
				})
			}
		})
		attempts.POST("/:id/flag", attemptHandler.ToggleFlag)
		attempts.PUT("/:id/time", attemptHandler.UpdateRemainingTime)

		attempts.POST("/:id/submit", func(c *gin.Context) {
			attemptHandler.Submit(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish("quiz.attempt.submitted", gin.H{
					"attempt_id": c.Param("id"),
					"student_id": c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})
	}

	quizzes := g.Group("/quizzes")
	{
		quizzes.GET("/:quizId/resume", quizHandler.Resume)
		quizzes.GET("/:quizId/attempts", quizHandler.AttemptHistory)
	}
}

// requireIdentity rejects requests the gateway forwarded without a verified
// user. This service never validates credentials itself.
func requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// rateLimit caps mutating traffic per student with a fixed one-minute redis
// window. Autosave clients misbehave sometimes; this keeps one of them from
// hammering the attempt collection.
func rateLimit(client *redis.Client, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key := fmt.Sprintf("quiz-attempt:rl:%s:%s", c.GetHeader("X-User-ID"), time.Now().Format("200601021504"))
		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis trouble must not block students.
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, 2*time.Minute)
		}
		if count > int64(perMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
				"code":  "RATE_LIMITED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
