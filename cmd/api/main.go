package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadosgov/cnpq-api/internal/handler"
	"github.com/dadosgov/cnpq-api/internal/middleware"
	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/repository"
	"github.com/dadosgov/cnpq-api/internal/service"
	"github.com/dadosgov/cnpq-api/pkg/cache"
	"github.com/dadosgov/cnpq-api/pkg/config"
	"github.com/dadosgov/cnpq-api/pkg/database"
	"github.com/dadosgov/cnpq-api/pkg/logger"
	corsmiddleware "github.com/dadosgov/cnpq-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dadosgov/cnpq-api/pkg/middleware/requestid"
	"github.com/dadosgov/cnpq-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		redisClient = nil
	}

	executor := query.NewExecutor(db, cfg.Pagination.DefaultPageSize)

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	beneficiaryRepo := repository.NewBeneficiaryRepository(db, executor)
	institutionRepo := repository.NewInstitutionRepository(db, executor)
	programRepo := repository.NewProgramRepository(db, executor)
	paymentRepo := repository.NewPaymentRepository(db, executor)

	tokens := service.NewTokenService(cfg.JWT)
	hasher := password.NewHasher(cfg.Security.BcryptCost)
	authService := service.NewAuthService(userRepo, auditRepo, tokens, hasher, logr)

	metricsService := service.NewMetricsService()

	statsTTL := cfg.Stats.CacheTTL
	beneficiaryService := service.NewBeneficiaryService(beneficiaryRepo, auditRepo, logr)
	institutionService := service.NewInstitutionService(institutionRepo, cacheRepo, statsTTL, auditRepo, metricsService, logr)
	programService := service.NewProgramService(programRepo, cacheRepo, statsTTL, auditRepo, metricsService, logr)
	paymentService := service.NewPaymentService(paymentRepo, cacheRepo, statsTTL, auditRepo, metricsService, logr)
	exportService := service.NewExportService(beneficiaryRepo, institutionRepo, programRepo, paymentRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Beneficiaries: handler.NewBeneficiaryHandler(beneficiaryService, exportService),
		Institutions:  handler.NewInstitutionHandler(institutionService, exportService),
		Programs:      handler.NewProgramHandler(programService, exportService),
		Payments:      handler.NewPaymentHandler(paymentService, exportService),
		Metrics:       metricsService,
		AuthService:   authService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
