package query

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type beneficiaryRow struct {
	ID   int64  `db:"id"`
	Nome string `db:"nome"`
}

var executorCatalog = Catalog{
	Table:      "beneficiario",
	PrimaryKey: "id",
	Fields: []Field{
		{Name: "id", Type: FieldInteger},
		{Name: "nome", Type: FieldText, Searchable: true},
	},
}

func newExecutorMock(t *testing.T) (*Executor, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewExecutor(sqlx.NewDb(db, "sqlmock"), 10), mock, func() { db.Close() }
}

func TestExecutorListUnfiltered(t *testing.T) {
	executor, mock, cleanup := newExecutorMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nome FROM beneficiario ORDER BY id ASC LIMIT 10 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}).AddRow(1, "Ana").AddRow(2, "Bruno"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM beneficiario")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	var dest []beneficiaryRow
	pagination, err := executor.List(context.Background(), executorCatalog, nil, PageRequest{}, &dest)
	require.NoError(t, err)
	require.Len(t, dest, 2)
	assert.Equal(t, 2, pagination.Total)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 1, pagination.TotalPages)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorListFilteredAndPaged(t *testing.T) {
	executor, mock, cleanup := newExecutorMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nome FROM beneficiario WHERE LOWER(nome) LIKE $1 ORDER BY nome DESC LIMIT 5 OFFSET 5")).
		WithArgs("%silva%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}).AddRow(7, "Silva"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM beneficiario WHERE LOWER(nome) LIKE $1")).
		WithArgs("%silva%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	var dest []beneficiaryRow
	pagination, err := executor.List(context.Background(), executorCatalog,
		Filters{"nome_like": "Silva"},
		PageRequest{Page: 2, Size: 5, SortBy: "nome", SortOrder: "desc"},
		&dest)
	require.NoError(t, err)
	assert.Equal(t, 6, pagination.Total)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorOversizedPageSnapsToDefault(t *testing.T) {
	executor, mock, cleanup := newExecutorMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 10 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM beneficiario")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	var dest []beneficiaryRow
	pagination, err := executor.List(context.Background(), executorCatalog, nil, PageRequest{Size: 500}, &dest)
	require.NoError(t, err)
	assert.Equal(t, 10, pagination.Size)
	require.NoError(t, mock.ExpectationsWereMet())
}
