package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Executor is the generic list entry point every resource repository
// delegates to: it executes one bounded, sorted SELECT plus the matching
// COUNT over a catalog and returns the page metadata.
type Executor struct {
	db          *sqlx.DB
	defaultSize int
}

// NewExecutor builds an Executor. defaultSize<=0 falls back to
// DefaultPageSize.
func NewExecutor(db *sqlx.DB, defaultSize int) *Executor {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	return &Executor{db: db, defaultSize: defaultSize}
}

// List fills dest (a *[]T understood by sqlx) with the records matching
// filters, sliced per req, and returns the pagination metadata. Caller
// input never causes an error; only the storage round-trips can fail.
func (e *Executor) List(ctx context.Context, catalog Catalog, filters Filters, req PageRequest, dest interface{}) (Pagination, error) {
	preds := Build(catalog, filters)
	page, size := req.Normalize(e.defaultSize)
	offset := (page - 1) * size

	listQuery := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		catalog.Columns(), catalog.Table, preds.Where(), req.OrderClause(catalog), size, offset)

	if err := e.db.SelectContext(ctx, dest, listQuery, preds.Args()...); err != nil {
		return Pagination{}, fmt.Errorf("list %s: %w", catalog.Table, err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", catalog.Table, preds.Where())
	var total int
	if err := e.db.GetContext(ctx, &total, countQuery, preds.Args()...); err != nil {
		return Pagination{}, fmt.Errorf("count %s: %w", catalog.Table, err)
	}

	return NewPagination(total, page, size), nil
}
