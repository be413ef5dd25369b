package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/repository"
)

const institutionStatsKey = "stats:instituicoes"

// InstitutionStore is the persistence the institution service needs.
type InstitutionStore interface {
	List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Institution, query.Pagination, error)
	FindByID(ctx context.Context, id int64) (*models.Institution, error)
	Create(ctx context.Context, inst *models.Institution) error
	Update(ctx context.Context, inst *models.Institution) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.InstitutionStats, error)
}

// InstitutionService manages institution records and their location stats.
type InstitutionService struct {
	auditor
	repo     InstitutionStore
	cache    *repository.CacheRepository
	cacheTTL time.Duration
	metrics  *MetricsService
}

// NewInstitutionService constructs an InstitutionService.
func NewInstitutionService(repo InstitutionStore, cache *repository.CacheRepository, cacheTTL time.Duration, audits AuditStore, metrics *MetricsService, logger *zap.Logger) *InstitutionService {
	return &InstitutionService{
		auditor:  auditor{audits: audits, logger: logger},
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// List returns institutions matching the caller's filters.
func (s *InstitutionService) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Institution, query.Pagination, error) {
	return s.repo.List(ctx, filters, req)
}

// Get fetches one institution.
func (s *InstitutionService) Get(ctx context.Context, id int64) (*models.Institution, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "institution not found")
	}
	return inst, nil
}

// Create validates and inserts an institution.
func (s *InstitutionService) Create(ctx context.Context, input models.InstitutionInput, principal *models.Principal, ip string) (*models.Institution, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	inst := &models.Institution{
		Nome:   input.Nome,
		Sigla:  input.Sigla,
		Cidade: input.Cidade,
		UF:     input.UF,
		Pais:   input.Pais,
	}
	if err := s.repo.Create(ctx, inst); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, principal, models.AuditActionCreate, inst.ID, ip)
	return inst, nil
}

// Update validates and rewrites an institution.
func (s *InstitutionService) Update(ctx context.Context, id int64, input models.InstitutionInput, principal *models.Principal, ip string) (*models.Institution, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	inst := &models.Institution{
		ID:     id,
		Nome:   input.Nome,
		Sigla:  input.Sigla,
		Cidade: input.Cidade,
		UF:     input.UF,
		Pais:   input.Pais,
	}
	if err := s.repo.Update(ctx, inst); err != nil {
		return nil, notFoundAs(err, "institution not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionUpdate, id, ip)
	return inst, nil
}

// Delete removes an institution.
func (s *InstitutionService) Delete(ctx context.Context, id int64, principal *models.Principal, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "institution not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionDelete, id, ip)
	return nil
}

// Stats aggregates institutions by UF and country, serving from cache when
// fresh.
func (s *InstitutionService) Stats(ctx context.Context) (*models.InstitutionStats, error) {
	if s.cache != nil {
		cached := &models.InstitutionStats{}
		if err := s.cache.Get(ctx, institutionStatsKey, cached); err == nil {
			s.observeCache(true)
			return cached, nil
		}
		s.observeCache(false)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, institutionStatsKey, stats, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *InstitutionService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheHit(hit)
	}
}

func (s *InstitutionService) afterWrite(ctx context.Context, principal *models.Principal, action models.AuditAction, id int64, ip string) {
	s.record(ctx, principal, action, "instituicao", id, ip)
	if s.cache != nil {
		s.cache.Invalidate(ctx, institutionStatsKey)
	}
}
