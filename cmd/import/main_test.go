package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagamentos.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func idRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

// A failed insert must not poison the rest of its batch: the row is rolled
// back to its savepoint, its dedupe entries are forgotten, and the next row
// re-inserts the same records.
func TestRunRecoversFromFailedRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	path := writeCSV(t,
		"CPF ANONIMIZADO;BENEFICIARIO;INSTITUICAO_DESTINO;PROGRAMA_CNPQ;ANO_REFERENCIA;VALOR_PAGO\n"+
			"CPF1;Alice;Univ A;PIBIC;2023;1.234,56\n"+
			"CPF1;Alice;Univ A;PIBIC;2023;100,00\n")

	benefInsert := regexp.QuoteMeta("INSERT INTO beneficiario")
	instInsert := regexp.QuoteMeta("INSERT INTO instituicao")
	progInsert := regexp.QuoteMeta("INSERT INTO programa")
	payInsert := regexp.QuoteMeta("INSERT INTO pagamento")

	mock.ExpectBegin()

	// first row: entities go in, the payment insert blows up
	mock.ExpectExec("SAVEPOINT import_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(benefInsert).WithArgs("Alice", "CPF1", "").WillReturnRows(idRows(1))
	mock.ExpectQuery(instInsert).WillReturnRows(idRows(1))
	mock.ExpectQuery(progInsert).WillReturnRows(idRows(1))
	mock.ExpectExec(payInsert).WillReturnError(assert.AnError)
	mock.ExpectExec("ROLLBACK TO SAVEPOINT import_row").WillReturnResult(sqlmock.NewResult(0, 0))

	// second row re-inserts everything the rollback discarded
	mock.ExpectExec("SAVEPOINT import_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(benefInsert).WithArgs("Alice", "CPF1", "").WillReturnRows(idRows(2))
	mock.ExpectQuery(instInsert).WillReturnRows(idRows(2))
	mock.ExpectQuery(progInsert).WillReturnRows(idRows(2))
	mock.ExpectExec(payInsert).WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	imp := &importer{db: sqlx.NewDb(db, "sqlmock"), logger: zap.NewNop()}
	stats, err := imp.Run(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Beneficiaries)
	assert.Equal(t, 1, stats.Institutions)
	assert.Equal(t, 1, stats.Programs)
	assert.Equal(t, 1, stats.Payments)
	assert.Equal(t, int64(2), imp.beneficiaries["CPF1"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDedupesRepeatedEntities(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	path := writeCSV(t,
		"CPF ANONIMIZADO;BENEFICIARIO;INSTITUICAO_DESTINO;PROGRAMA_CNPQ;ANO_REFERENCIA;VALOR_PAGO\n"+
			"CPF1;Alice;Univ A;PIBIC;2023;10,00\n"+
			"CPF1;Alice;Univ A;PIBIC;2024;20,00\n")

	mock.ExpectBegin()

	mock.ExpectExec("SAVEPOINT import_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO beneficiario")).WillReturnRows(idRows(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO instituicao")).WillReturnRows(idRows(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO programa")).WillReturnRows(idRows(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pagamento")).WillReturnResult(sqlmock.NewResult(0, 1))

	// second row hits all three dedupe caches, only the payment is new
	mock.ExpectExec("SAVEPOINT import_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pagamento")).WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	imp := &importer{db: sqlx.NewDb(db, "sqlmock"), logger: zap.NewNop()}
	stats, err := imp.Run(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Beneficiaries)
	assert.Equal(t, 1, stats.Institutions)
	assert.Equal(t, 1, stats.Programs)
	assert.Equal(t, 2, stats.Payments)
	assert.Equal(t, 0, stats.Errors)
	require.NoError(t, mock.ExpectationsWereMet())
}
