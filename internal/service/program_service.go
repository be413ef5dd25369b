package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/repository"
)

const programStatsKey = "stats:programas"

// ProgramStore is the persistence the program service needs.
type ProgramStore interface {
	List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Program, query.Pagination, error)
	FindByID(ctx context.Context, id int64) (*models.Program, error)
	Create(ctx context.Context, p *models.Program) error
	Update(ctx context.Context, p *models.Program) error
	Delete(ctx context.Context, id int64) error
	AreaStats(ctx context.Context) (*models.ProgramAreaStats, error)
}

// ProgramService manages funding program records and their area stats.
type ProgramService struct {
	auditor
	repo     ProgramStore
	cache    *repository.CacheRepository
	cacheTTL time.Duration
	metrics  *MetricsService
}

// NewProgramService constructs a ProgramService.
func NewProgramService(repo ProgramStore, cache *repository.CacheRepository, cacheTTL time.Duration, audits AuditStore, metrics *MetricsService, logger *zap.Logger) *ProgramService {
	return &ProgramService{
		auditor:  auditor{audits: audits, logger: logger},
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// List returns programs matching the caller's filters.
func (s *ProgramService) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Program, query.Pagination, error) {
	return s.repo.List(ctx, filters, req)
}

// Get fetches one program.
func (s *ProgramService) Get(ctx context.Context, id int64) (*models.Program, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "program not found")
	}
	return p, nil
}

// Create validates and inserts a program.
func (s *ProgramService) Create(ctx context.Context, input models.ProgramInput, principal *models.Principal, ip string) (*models.Program, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	p := &models.Program{
		NomeChamada:  input.NomeChamada,
		ProgramaCNPq: input.ProgramaCNPq,
		GrandeArea:   input.GrandeArea,
		Area:         input.Area,
		Subarea:      input.Subarea,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, principal, models.AuditActionCreate, p.ID, ip)
	return p, nil
}

// Update validates and rewrites a program.
func (s *ProgramService) Update(ctx context.Context, id int64, input models.ProgramInput, principal *models.Principal, ip string) (*models.Program, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	p := &models.Program{
		ID:           id,
		NomeChamada:  input.NomeChamada,
		ProgramaCNPq: input.ProgramaCNPq,
		GrandeArea:   input.GrandeArea,
		Area:         input.Area,
		Subarea:      input.Subarea,
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, notFoundAs(err, "program not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionUpdate, id, ip)
	return p, nil
}

// Delete removes a program.
func (s *ProgramService) Delete(ctx context.Context, id int64, principal *models.Principal, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "program not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionDelete, id, ip)
	return nil
}

// AreaStats aggregates programs by knowledge area, serving from cache when
// fresh.
func (s *ProgramService) AreaStats(ctx context.Context) (*models.ProgramAreaStats, error) {
	if s.cache != nil {
		cached := &models.ProgramAreaStats{}
		if err := s.cache.Get(ctx, programStatsKey, cached); err == nil {
			s.observeCache(true)
			return cached, nil
		}
		s.observeCache(false)
	}

	stats, err := s.repo.AreaStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, programStatsKey, stats, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *ProgramService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheHit(hit)
	}
}

func (s *ProgramService) afterWrite(ctx context.Context, principal *models.Principal, action models.AuditAction, id int64, ip string) {
	s.record(ctx, principal, action, "programa", id, ip)
	if s.cache != nil {
		s.cache.Invalidate(ctx, programStatsKey)
	}
}
