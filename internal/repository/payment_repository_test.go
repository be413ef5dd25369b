package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadosgov/cnpq-api/internal/query"
)

func paymentColumns() []string {
	return []string{"id", "ano_referencia", "processo", "modalidade", "linha_fomento", "valor_pago", "data_inicio", "data_fim", "titulo_projeto", "fk_beneficiario", "fk_instituicao", "fk_programa"}
}

func TestPaymentRepositoryListByBeneficiary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db, query.NewExecutor(db, 10))
	mock.ExpectQuery(regexp.QuoteMeta("FROM pagamento WHERE fk_beneficiario = $1 ORDER BY id ASC LIMIT 10 OFFSET 0")).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows(paymentColumns()).
			AddRow(1, 2024, "306039/2022-2", "PQ", "BOLSAS", 5240.0, nil, nil, "Projeto", 42, 1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pagamento WHERE fk_beneficiario = $1")).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, pagination, err := repo.ListByBeneficiary(context.Background(), 42, nil, query.PageRequest{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(42), items[0].FKBeneficiario)
	assert.Equal(t, 1, pagination.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByProgramMergesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db, query.NewExecutor(db, 10))
	// sorted filter keys put ano_referencia before fk_programa
	mock.ExpectQuery(regexp.QuoteMeta("FROM pagamento WHERE ano_referencia = $1 AND fk_programa = $2 ORDER BY id ASC LIMIT 10 OFFSET 0")).
		WithArgs("2024", "3").
		WillReturnRows(sqlmock.NewRows(paymentColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pagamento WHERE ano_referencia = $1 AND fk_programa = $2")).
		WithArgs("2024", "3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, pagination, err := repo.ListByProgram(context.Background(), 3, query.Filters{"ano_referencia": "2024"}, query.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, pagination.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db, query.NewExecutor(db, 10))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total, COALESCE(SUM(valor_pago), 0) AS valor_total, COALESCE(AVG(valor_pago), 0) AS valor_medio FROM pagamento")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "valor_total", "valor_medio"}).AddRow(2, 7340.0, 3670.0))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY modalidade")).
		WillReturnRows(sqlmock.NewRows([]string{"modalidade", "total", "valor_total"}).AddRow("PQ", 2, 7340.0))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY ano_referencia")).
		WillReturnRows(sqlmock.NewRows([]string{"ano_referencia", "total", "valor_total"}).AddRow(2024, 2, 7340.0))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Summary.TotalPayments)
	assert.Equal(t, 7340.0, stats.Summary.TotalValue)
	require.Len(t, stats.ByModalidade, 1)
	require.Len(t, stats.ByYear, 1)
	assert.Equal(t, 2024, stats.ByYear[0].Year)
	require.NoError(t, mock.ExpectationsWereMet())
}
