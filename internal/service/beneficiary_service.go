package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
)

// BeneficiaryStore is the persistence the beneficiary service needs.
type BeneficiaryStore interface {
	List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Beneficiary, query.Pagination, error)
	FindByID(ctx context.Context, id int64) (*models.Beneficiary, error)
	Create(ctx context.Context, b *models.Beneficiary) error
	Update(ctx context.Context, b *models.Beneficiary) error
	Delete(ctx context.Context, id int64) error
}

// BeneficiaryService manages beneficiary records.
type BeneficiaryService struct {
	auditor
	repo BeneficiaryStore
}

// NewBeneficiaryService constructs a BeneficiaryService.
func NewBeneficiaryService(repo BeneficiaryStore, audits AuditStore, logger *zap.Logger) *BeneficiaryService {
	return &BeneficiaryService{auditor: auditor{audits: audits, logger: logger}, repo: repo}
}

// List returns beneficiaries matching the caller's filters.
func (s *BeneficiaryService) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Beneficiary, query.Pagination, error) {
	return s.repo.List(ctx, filters, req)
}

// Get fetches one beneficiary.
func (s *BeneficiaryService) Get(ctx context.Context, id int64) (*models.Beneficiary, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "beneficiary not found")
	}
	return b, nil
}

// Create validates and inserts a beneficiary.
func (s *BeneficiaryService) Create(ctx context.Context, input models.BeneficiaryInput, principal *models.Principal, ip string) (*models.Beneficiary, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	b := &models.Beneficiary{
		Nome:           input.Nome,
		CPFAnonimizado: input.CPFAnonimizado,
		CategoriaNivel: input.CategoriaNivel,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.record(ctx, principal, models.AuditActionCreate, "beneficiario", b.ID, ip)
	return b, nil
}

// Update validates and rewrites a beneficiary.
func (s *BeneficiaryService) Update(ctx context.Context, id int64, input models.BeneficiaryInput, principal *models.Principal, ip string) (*models.Beneficiary, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	b := &models.Beneficiary{
		ID:             id,
		Nome:           input.Nome,
		CPFAnonimizado: input.CPFAnonimizado,
		CategoriaNivel: input.CategoriaNivel,
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, notFoundAs(err, "beneficiary not found")
	}
	s.record(ctx, principal, models.AuditActionUpdate, "beneficiario", id, ip)
	return b, nil
}

// Delete removes a beneficiary.
func (s *BeneficiaryService) Delete(ctx context.Context, id int64, principal *models.Principal, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "beneficiary not found")
	}
	s.record(ctx, principal, models.AuditActionDelete, "beneficiario", id, ip)
	return nil
}
