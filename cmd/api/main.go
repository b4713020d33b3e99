package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"blupr/internal/app"
	"blupr/internal/config"
	"blupr/internal/db"
	apihttp "blupr/internal/http"
	"blupr/internal/render"
	"blupr/internal/repository"
	"blupr/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	eng, err := app.NewEngine(cfg.Engine)
	if err != nil {
		logger.Fatal("engine init", zap.Error(err))
	}
	eng.LogCatalog(logger)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	if err := db.EnsureSchema(ctx, pool, eng.Catalog.Len()); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	responseRepo := repository.NewPgResponseRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	loginWindow := time.Duration(cfg.LoginWindowMinutes) * time.Minute
	var (
		sessions    service.SessionStore
		tokenStore  service.RefreshTokenStore
		limiter     service.LoginLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			sessions = service.NewRedisSessionStore(redisClient, sessionTTL)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			limiter = service.NewRedisLoginLimiter(redisClient, loginWindow, cfg.LoginMaxAttempts)
		}
		cancel()
	}
	if sessions == nil {
		sessions = service.NewMemorySessionStore(sessionTTL)
	}
	if limiter == nil {
		limiter = service.NewMemoryLoginLimiter(loginWindow, cfg.LoginMaxAttempts)
	}

	jwtSvc := service.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	matchSvc := service.NewMatchService(logger, eng.Encoder, eng.Classifier, profileRepo, cfg.Engine.MatchPoolSize)
	surveySvc := service.NewSurveyService(logger, eng.Survey, eng.Encoder, responseRepo, profileRepo, sessions, matchSvc)
	userSvc := service.NewUserService(logger, userRepo, limiter)

	router := apihttp.NewRouter(logger, jwtSvc,
		apihttp.NewAuthHandler(logger, userSvc, jwtSvc),
		apihttp.NewSurveyHandler(logger, surveySvc, eng.Catalog.Questions()),
		apihttp.NewProfileHandler(logger, surveySvc, render.NewSVG()),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Int("catalog_size", eng.Catalog.Len()),
		zap.Int("onboarding_target", eng.Survey.Target()),
		zap.Bool("pulse", eng.Survey.Pulse().Enabled()),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
