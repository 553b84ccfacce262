package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neuroplay/neuroplay-backend/internal/db"
	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
	"github.com/neuroplay/neuroplay-backend/internal/handlers"
	"github.com/neuroplay/neuroplay-backend/internal/llm"
	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/middleware"
	"github.com/neuroplay/neuroplay-backend/internal/ratelimit"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/server"
	"github.com/neuroplay/neuroplay-backend/internal/services"
	"github.com/redis/go-redis/v9"

	"github.com/neuroplay/neuroplay-backend/internal/observability"
	"github.com/neuroplay/neuroplay-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	sessionTTLMinutes := utils.GetEnvAsInt("SESSION_BUFFER_TTL_MINUTES", 120, log)
	sweepIntervalSeconds := utils.GetEnvAsInt("SWEEP_INTERVAL_SECONDS", 60, log)
	childRateLimit := utils.GetEnvAsInt("CHILD_RATE_LIMIT", 30, log)
	childRateWindow := utils.GetEnvAsInt("CHILD_RATE_WINDOW_SECONDS", 60, log)
	port := utils.GetEnv("PORT", "8080", log)

	// Tracing
	otelShutdown := observability.Init(ctx, log, observability.Config{
		ServiceName: "neuroplay-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	observerRepo := repos.NewObserverRepo(theDB, log)
	observerTokenRepo := repos.NewObserverTokenRepo(theDB, log)
	learnerRepo := repos.NewLearnerRepo(theDB, log)
	sessionRepo := repos.NewSessionRepo(theDB, log)
	patternRepo := repos.NewPatternSnapshotRepo(theDB, log)
	trendRepo := repos.NewTrendSummaryRepo(theDB, log)
	reportRepo := repos.NewReportRepo(theDB, log)

	// Ephemeral event buffer
	store := eventstore.NewStore(time.Duration(sessionTTLMinutes)*time.Minute, log)

	// Child-mode rate limiter. Redis when configured, in-process
	// otherwise.
	var limiter ratelimit.Limiter
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		})
		limiter = ratelimit.NewRedisLimiter(rdb, childRateLimit, time.Duration(childRateWindow)*time.Second, log)
	} else {
		limiter = ratelimit.NewMemoryLimiter(childRateLimit, time.Duration(childRateWindow)*time.Second)
	}

	// Generative model. A missing key is a supported configuration;
	// report generation falls back to templates.
	var modelClient llm.Client
	geminiKey := utils.GetEnv("GEMINI_API_KEY", "", log)
	if geminiKey != "" {
		client, cerr := llm.NewGeminiClient(ctx, geminiKey, utils.GetEnv("GEMINI_MODEL", "", log), log)
		if cerr != nil {
			log.Warn("Could not init Gemini client, continuing without model", "error", cerr)
		} else {
			modelClient = client
		}
	} else {
		log.Warn("GEMINI_API_KEY not set, report generation will use templates")
	}

	// Validator policy corpus
	corpus, err := services.LoadPolicyCorpus(utils.GetEnv("POLICY_CORPUS_PATH", "", log), log)
	if err != nil {
		log.Warn("Policy corpus load failed, using built-in defaults", "error", err)
		corpus = services.DefaultPolicyCorpus()
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(theDB, log, observerRepo, observerTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	learnerService := services.NewLearnerService(theDB, log, learnerRepo)
	sessionService := services.NewSessionService(theDB, log, store, learnerService, learnerRepo, sessionRepo, patternRepo, limiter)
	trendService := services.NewTrendService(theDB, log, patternRepo, trendRepo)
	validatorService := services.NewValidatorService(theDB, log, reportRepo, modelClient, corpus)
	generatorService := services.NewGeneratorService(theDB, log, learnerRepo, patternRepo, trendRepo, reportRepo, modelClient, validatorService)
	reportService := services.NewReportService(theDB, log, learnerRepo, sessionRepo, patternRepo, reportRepo)
	chatService := services.NewChatService(log, modelClient)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		AuthHandler:    handlers.NewAuthHandler(authService),
		LearnerHandler: handlers.NewLearnerHandler(learnerService),
		SessionHandler: handlers.NewSessionHandler(sessionService),
		ReportHandler:  handlers.NewReportHandler(reportService, generatorService),
		TrendHandler:   handlers.NewTrendHandler(learnerService, trendService),
		ChatHandler:    handlers.NewChatHandler(chatService),
		HealthHandler:  handlers.NewHealthHandler(dbService, modelClient != nil),
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		store.RunSweeper(groupCtx, time.Duration(sweepIntervalSeconds)*time.Second)
		return nil
	})
	group.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if otelShutdown != nil {
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("Otel shutdown failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
