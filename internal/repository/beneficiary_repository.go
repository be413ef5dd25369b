package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
)

// BeneficiaryRepository manages persistence for beneficiary records.
type BeneficiaryRepository struct {
	db       *sqlx.DB
	executor *query.Executor
}

// NewBeneficiaryRepository constructs a BeneficiaryRepository.
func NewBeneficiaryRepository(db *sqlx.DB, executor *query.Executor) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db, executor: executor}
}

// List returns beneficiaries matching filters, paged per req.
func (r *BeneficiaryRepository) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Beneficiary, query.Pagination, error) {
	items := []models.Beneficiary{}
	pagination, err := r.executor.List(ctx, models.BeneficiaryCatalog, filters, req, &items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return items, pagination, nil
}

// FindByID fetches a beneficiary by ID.
func (r *BeneficiaryRepository) FindByID(ctx context.Context, id int64) (*models.Beneficiary, error) {
	const q = `SELECT id, nome, cpf_anonimizado, categoria_nivel FROM beneficiario WHERE id = $1`
	var b models.Beneficiary
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find beneficiary: %w", err)
	}
	return &b, nil
}

// Create inserts a beneficiary and fills in the generated ID.
func (r *BeneficiaryRepository) Create(ctx context.Context, b *models.Beneficiary) error {
	const q = `INSERT INTO beneficiario (nome, cpf_anonimizado, categoria_nivel) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, q, b.Nome, b.CPFAnonimizado, b.CategoriaNivel).Scan(&b.ID); err != nil {
		return fmt.Errorf("create beneficiary: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a beneficiary.
func (r *BeneficiaryRepository) Update(ctx context.Context, b *models.Beneficiary) error {
	const q = `UPDATE beneficiario SET nome = :nome, cpf_anonimizado = :cpf_anonimizado, categoria_nivel = :categoria_nivel WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, b)
	if err != nil {
		return fmt.Errorf("update beneficiary: %w", err)
	}
	return requireRow(res)
}

// Delete removes a beneficiary.
func (r *BeneficiaryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM beneficiario WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete beneficiary: %w", err)
	}
	return requireRow(res)
}

// requireRow converts a zero-row write into sql.ErrNoRows so services map
// it to a 404.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
