package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
)

// PaymentRepository manages persistence for payment records.
type PaymentRepository struct {
	db       *sqlx.DB
	executor *query.Executor
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB, executor *query.Executor) *PaymentRepository {
	return &PaymentRepository{db: db, executor: executor}
}

// List returns payments matching filters, paged per req.
func (r *PaymentRepository) List(ctx context.Context, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	items := []models.Payment{}
	pagination, err := r.executor.List(ctx, models.PaymentCatalog, filters, req, &items)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return items, pagination, nil
}

// ListByBeneficiary returns payments of one beneficiary via the
// generic filter path, keeping pagination and extra filters usable.
func (r *PaymentRepository) ListByBeneficiary(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return r.List(ctx, withFK(filters, "fk_beneficiario", id), req)
}

// ListByInstitution returns payments directed to one institution.
func (r *PaymentRepository) ListByInstitution(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return r.List(ctx, withFK(filters, "fk_instituicao", id), req)
}

// ListByProgram returns payments issued under one program.
func (r *PaymentRepository) ListByProgram(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error) {
	return r.List(ctx, withFK(filters, "fk_programa", id), req)
}

func withFK(filters query.Filters, field string, id int64) query.Filters {
	merged := query.Filters{}
	for k, v := range filters {
		merged[k] = v
	}
	merged[field] = strconv.FormatInt(id, 10)
	return merged
}

// FindByID fetches a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*models.Payment, error) {
	const q = `SELECT id, ano_referencia, processo, modalidade, linha_fomento, valor_pago, data_inicio, data_fim, titulo_projeto, fk_beneficiario, fk_instituicao, fk_programa FROM pagamento WHERE id = $1`
	var p models.Payment
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &p, nil
}

// Create inserts a payment and fills in the generated ID.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	const q = `INSERT INTO pagamento (ano_referencia, processo, modalidade, linha_fomento, valor_pago, data_inicio, data_fim, titulo_projeto, fk_beneficiario, fk_instituicao, fk_programa)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := r.db.QueryRowxContext(ctx, q,
		p.AnoReferencia, p.Processo, p.Modalidade, p.LinhaFomento, p.ValorPago,
		p.DataInicio, p.DataFim, p.TituloProjeto,
		p.FKBeneficiario, p.FKInstituicao, p.FKPrograma,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a payment.
func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	const q = `UPDATE pagamento SET ano_referencia = :ano_referencia, processo = :processo, modalidade = :modalidade,
		linha_fomento = :linha_fomento, valor_pago = :valor_pago, data_inicio = :data_inicio, data_fim = :data_fim,
		titulo_projeto = :titulo_projeto, fk_beneficiario = :fk_beneficiario, fk_instituicao = :fk_instituicao,
		fk_programa = :fk_programa WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return requireRow(res)
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pagamento WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return requireRow(res)
}

// Stats aggregates disbursement totals globally, by modality and by
// reference year.
func (r *PaymentRepository) Stats(ctx context.Context) (*models.PaymentStats, error) {
	stats := &models.PaymentStats{}

	const summary = `SELECT COUNT(*) AS total, COALESCE(SUM(valor_pago), 0) AS valor_total, COALESCE(AVG(valor_pago), 0) AS valor_medio FROM pagamento`
	if err := r.db.GetContext(ctx, &stats.Summary, summary); err != nil {
		return nil, fmt.Errorf("payment summary: %w", err)
	}

	const byModalidade = `SELECT COALESCE(modalidade, '') AS modalidade, COUNT(*) AS total, COALESCE(SUM(valor_pago), 0) AS valor_total FROM pagamento GROUP BY modalidade ORDER BY valor_total DESC`
	if err := r.db.SelectContext(ctx, &stats.ByModalidade, byModalidade); err != nil {
		return nil, fmt.Errorf("payments by modalidade: %w", err)
	}

	const byYear = `SELECT ano_referencia, COUNT(*) AS total, COALESCE(SUM(valor_pago), 0) AS valor_total FROM pagamento GROUP BY ano_referencia ORDER BY ano_referencia`
	if err := r.db.SelectContext(ctx, &stats.ByYear, byYear); err != nil {
		return nil, fmt.Errorf("payments by year: %w", err)
	}

	return stats, nil
}
