package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
)

// ProgramRepository manages persistence for program records.
type ProgramRepository struct {
	db       *sqlx.DB
	executor *query.Executor
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB, executor *query.Executor) *ProgramRepository {
	return &ProgramRepository{db: db, executor: executor}
}

// List returns programs matching filters, paged per req.
func (r *ProgramRepository) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Program, query.Pagination, error) {
	items := []models.Program{}
	pagination, err := r.executor.List(ctx, models.ProgramCatalog, filters, req, &items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return items, pagination, nil
}

// FindByID fetches a program by ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	const q = `SELECT id, nome_chamada, programa_cnpq, grande_area, area, subarea FROM programa WHERE id = $1`
	var p models.Program
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &p, nil
}

// Create inserts a program and fills in the generated ID.
func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	const q = `INSERT INTO programa (nome_chamada, programa_cnpq, grande_area, area, subarea) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, q, p.NomeChamada, p.ProgramaCNPq, p.GrandeArea, p.Area, p.Subarea).Scan(&p.ID); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a program.
func (r *ProgramRepository) Update(ctx context.Context, p *models.Program) error {
	const q = `UPDATE programa SET nome_chamada = :nome_chamada, programa_cnpq = :programa_cnpq, grande_area = :grande_area, area = :area, subarea = :subarea WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return requireRow(res)
}

// Delete removes a program.
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programa WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return requireRow(res)
}

// AreaStats aggregates programs by knowledge area.
func (r *ProgramRepository) AreaStats(ctx context.Context) (*models.ProgramAreaStats, error) {
	stats := &models.ProgramAreaStats{}

	if err := r.db.GetContext(ctx, &stats.TotalPrograms, `SELECT COUNT(*) FROM programa`); err != nil {
		return nil, fmt.Errorf("count programs: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalAreas, `SELECT COUNT(DISTINCT area) FROM programa`); err != nil {
		return nil, fmt.Errorf("count areas: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalSubareas, `SELECT COUNT(DISTINCT subarea) FROM programa`); err != nil {
		return nil, fmt.Errorf("count subareas: %w", err)
	}

	const byArea = `SELECT COALESCE(grande_area, '') AS grande_area, COUNT(*) AS total FROM programa GROUP BY grande_area ORDER BY total DESC`
	if err := r.db.SelectContext(ctx, &stats.ByGrandeArea, byArea); err != nil {
		return nil, fmt.Errorf("programs by grande_area: %w", err)
	}

	return stats, nil
}
