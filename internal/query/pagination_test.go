package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	page, size := PageRequest{}.Normalize(0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestNormalizePageFloorsToOne(t *testing.T) {
	page, _ := PageRequest{Page: -3}.Normalize(10)
	assert.Equal(t, 1, page)

	page, _ = PageRequest{Page: 7}.Normalize(10)
	assert.Equal(t, 7, page)
}

func TestNormalizeSizeSnapsToDefault(t *testing.T) {
	// out-of-range sizes snap to the default, not to the nearest bound
	_, size := PageRequest{Size: 500}.Normalize(10)
	assert.Equal(t, 10, size)

	_, size = PageRequest{Size: 0}.Normalize(25)
	assert.Equal(t, 25, size)

	_, size = PageRequest{Size: 100}.Normalize(10)
	assert.Equal(t, 100, size)
}

func TestOrderClauseFallsBackToPrimaryKey(t *testing.T) {
	assert.Equal(t, "id ASC", PageRequest{}.OrderClause(testCatalog))
	assert.Equal(t, "id ASC", PageRequest{SortBy: "telefone"}.OrderClause(testCatalog))
	assert.Equal(t, "nome DESC", PageRequest{SortBy: "nome", SortOrder: "DESC"}.OrderClause(testCatalog))
	assert.Equal(t, "nome ASC", PageRequest{SortBy: "nome", SortOrder: "sideways"}.OrderClause(testCatalog))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(25, 3, 10)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(0, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
