package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/mindmash/backend/internal/config"
	mongorepo "github.com/mindmash/backend/internal/repository/mongo"
	"github.com/mindmash/backend/internal/repository/postgres"
	redisrepo "github.com/mindmash/backend/internal/repository/redis"
	"github.com/mindmash/backend/internal/service/cleanup"
	"github.com/mindmash/backend/internal/service/judge"
	"github.com/mindmash/backend/internal/service/match"
	"github.com/mindmash/backend/internal/service/problems"
	transportHttp "github.com/mindmash/backend/internal/transport/http"
	"github.com/mindmash/backend/internal/transport/http/middleware"
	"github.com/mindmash/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()

	// 1. MongoDB (accounts)
	mongoClient, err := mongorepo.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer mongoClient.Disconnect(context.Background())
	userRepo := mongorepo.NewUserRepo(mongoClient.Database(cfg.MongoDatabase))

	// 2. Postgres (match history), optional
	var matchRepo *postgres.MatchRepo
	var coordinatorRepo match.MatchRepository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to open database: ", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable: ", err)
		}
		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		matchRepo = postgres.NewMatchRepo(db)
		coordinatorRepo = matchRepo
		log.Println("[POSTGRES] Match history enabled")
	} else {
		log.Println("[POSTGRES] DATABASE_URL not set, match history disabled")
	}

	// 3. Redis (leaderboard cache), optional
	if err := redisrepo.InitRedis(cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Printf("Failed to initialize Redis: %v", err)
	}
	defer redisrepo.CloseRedis()
	var cache transportHttp.CacheRepository
	if redisrepo.IsRedisEnabled() && redisrepo.RedisClient != nil {
		cache = redisrepo.NewCache(redisrepo.RedisClient)
	}

	// 4. Services
	problemPool := problems.NewPool()
	judgeClient := judge.NewClient(cfg.Judge0URL, cfg.RapidAPIKey, &http.Client{Timeout: cfg.JudgeTimeout})

	hub := websocket.NewHub()
	coordinator := match.NewCoordinator(hub, problemPool, coordinatorRepo)

	cleanupWorker := cleanup.NewWorker(coordinator)
	cleanupWorker.Start()

	// 5. Handlers
	authHandler := transportHttp.NewAuthHandler(userRepo)
	oauthHandler := transportHttp.NewOAuthHandler(userRepo, &cfg.OAuthConfig)
	userHandler := transportHttp.NewUserHandler(userRepo, cache, cfg.LeaderboardCacheTTL)
	runHandler := transportHttp.NewRunHandler(judgeClient, problemPool)
	historyHandler := transportHttp.NewHistoryHandler(matchRepo)
	wsHandler := websocket.NewHandler(hub, coordinator)

	// 6. Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"service": "Mindmash API",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/auth/google/login", oauthHandler.GoogleLogin)
	router.GET("/auth/google/callback", oauthHandler.GoogleCallback)

	router.GET("/leaderboard", userHandler.Leaderboard)
	router.POST("/run", runHandler.Run)
	router.POST("/runProblem", runHandler.RunProblem)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", userHandler.Profile)
		protected.POST("/match/win", userHandler.MatchWin)
		protected.GET("/history", historyHandler.GetHistory)
	}

	router.GET("/ws", wsHandler.HandleWebSocket)

	// Serve static frontend files (SPA fallback)
	if _, err := os.Stat("./static"); err == nil {
		router.Static("/assets", "./static/assets")

		router.NoRoute(func(c *gin.Context) {
			path := "./static" + c.Request.URL.Path

			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				c.File(path)
				return
			}

			if strings.HasPrefix(c.Request.URL.Path, "/assets/") ||
				strings.HasSuffix(c.Request.URL.Path, ".css") ||
				strings.HasSuffix(c.Request.URL.Path, ".js") {
				c.Status(http.StatusNotFound)
				return
			}

			c.File("./static/index.html")
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
