package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/repository"
)

const paymentStatsKey = "stats:pagamentos"

// PaymentStore is the persistence the payment service needs.
type PaymentStore interface {
	List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error)
	ListByBeneficiary(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error)
	ListByInstitution(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error)
	ListByProgram(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error)
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.PaymentStats, error)
}

// PaymentService manages disbursement records and their aggregates.
type PaymentService struct {
	auditor
	repo     PaymentStore
	cache    *repository.CacheRepository
	cacheTTL time.Duration
	metrics  *MetricsService
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo PaymentStore, cache *repository.CacheRepository, cacheTTL time.Duration, audits AuditStore, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		auditor:  auditor{audits: audits, logger: logger},
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// List returns payments matching the caller's filters.
func (s *PaymentService) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return s.repo.List(ctx, filters, req)
}

// ListByBeneficiary returns payments of one beneficiary.
func (s *PaymentService) ListByBeneficiary(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return s.repo.ListByBeneficiary(ctx, id, filters, req)
}

// ListByInstitution returns payments directed to one institution.
func (s *PaymentService) ListByInstitution(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return s.repo.ListByInstitution(ctx, id, filters, req)
}

// ListByProgram returns payments issued under one program.
func (s *PaymentService) ListByProgram(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return s.repo.ListByProgram(ctx, id, filters, req)
}

// Get fetches one payment.
func (s *PaymentService) Get(ctx context.Context, id int64) (*models.Payment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "payment not found")
	}
	return p, nil
}

// Create validates and inserts a payment.
func (s *PaymentService) Create(ctx context.Context, input models.PaymentInput, principal *models.Principal, ip string) (*models.Payment, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	p := paymentFromInput(0, input)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, principal, models.AuditActionCreate, p.ID, ip)
	return p, nil
}

// Update validates and rewrites a payment.
func (s *PaymentService) Update(ctx context.Context, id int64, input models.PaymentInput, principal *models.Principal, ip string) (*models.Payment, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	p := paymentFromInput(id, input)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, notFoundAs(err, "payment not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionUpdate, id, ip)
	return p, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id int64, principal *models.Principal, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "payment not found")
	}
	s.afterWrite(ctx, principal, models.AuditActionDelete, id, ip)
	return nil
}

// Stats aggregates totals by modality and year, serving from cache when
// fresh.
func (s *PaymentService) Stats(ctx context.Context) (*models.PaymentStats, error) {
	if s.cache != nil {
		cached := &models.PaymentStats{}
		if err := s.cache.Get(ctx, paymentStatsKey, cached); err == nil {
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
		if err := s.cache.Set(ctx, paymentStatsKey, stats, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *PaymentService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheHit(hit)
	}
}

func (s *PaymentService) afterWrite(ctx context.Context, principal *models.Principal, action models.AuditAction, id int64, ip string) {
	s.record(ctx, principal, action, "pagamento", id, ip)
	if s.cache != nil {
		s.cache.Invalidate(ctx, paymentStatsKey)
	}
}

func paymentFromInput(id int64, input models.PaymentInput) *models.Payment {
	return &models.Payment{
		ID:             id,
		AnoReferencia:  input.AnoReferencia,
		Processo:       input.Processo,
		Modalidade:     input.Modalidade,
		LinhaFomento:   input.LinhaFomento,
		ValorPago:      input.ValorPago,
		DataInicio:     input.DataInicio,
		DataFim:        input.DataFim,
		TituloProjeto:  input.TituloProjeto,
		FKBeneficiario: input.FKBeneficiario,
		FKInstituicao:  input.FKInstituicao,
		FKPrograma:     input.FKPrograma,
	}
}
