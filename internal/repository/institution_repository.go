package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
)

// InstitutionRepository manages persistence for institution records.
type InstitutionRepository struct {
	db       *sqlx.DB
	executor *query.Executor
}

// NewInstitutionRepository constructs an InstitutionRepository.
func NewInstitutionRepository(db *sqlx.DB, executor *query.Executor) *InstitutionRepository {
	return &InstitutionRepository{db: db, executor: executor}
}

// List returns institutions matching filters, paged per req.
func (r *InstitutionRepository) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Institution, query.Pagination, error) {
	items := []models.Institution{}
	pagination, err := r.executor.List(ctx, models.InstitutionCatalog, filters, req, &items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return items, pagination, nil
}

// FindByID fetches an institution by ID.
func (r *InstitutionRepository) FindByID(ctx context.Context, id int64) (*models.Institution, error) {
	const q = `SELECT id, nome, sigla, cidade, uf, pais FROM instituicao WHERE id = $1`
	var inst models.Institution
	if err := r.db.GetContext(ctx, &inst, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find institution: %w", err)
	}
	return &inst, nil
}

// Create inserts an institution and fills in the generated ID.
func (r *InstitutionRepository) Create(ctx context.Context, inst *models.Institution) error {
	const q = `INSERT INTO instituicao (nome, sigla, cidade, uf, pais) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, q, inst.Nome, inst.Sigla, inst.Cidade, inst.UF, inst.Pais).Scan(&inst.ID); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an institution.
func (r *InstitutionRepository) Update(ctx context.Context, inst *models.Institution) error {
	const q = `UPDATE instituicao SET nome = :nome, sigla = :sigla, cidade = :cidade, uf = :uf, pais = :pais WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, inst)
	if err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	return requireRow(res)
}

// Delete removes an institution.
func (r *InstitutionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM instituicao WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete institution: %w", err)
	}
	return requireRow(res)
}

// Stats aggregates institutions by UF and country.
func (r *InstitutionRepository) Stats(ctx context.Context) (*models.InstitutionStats, error) {
	stats := &models.InstitutionStats{}

	if err := r.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM instituicao`); err != nil {
		return nil, fmt.Errorf("count institutions: %w", err)
	}

	const byUF = `SELECT COALESCE(uf, '') AS grupo, COUNT(*) AS total FROM instituicao GROUP BY uf ORDER BY total DESC`
	if err := r.db.SelectContext(ctx, &stats.ByUF, byUF); err != nil {
		return nil, fmt.Errorf("institutions by uf: %w", err)
	}

	const byPais = `SELECT COALESCE(pais, '') AS grupo, COUNT(*) AS total FROM instituicao GROUP BY pais ORDER BY total DESC`
	if err := r.db.SelectContext(ctx, &stats.ByPais, byPais); err != nil {
		return nil, fmt.Errorf("institutions by country: %w", err)
	}

	return stats, nil
}
