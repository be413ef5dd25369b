package query

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize applies when the caller sends no size or one
	// outside [1, MaxPageSize]. Out-of-range sizes deliberately snap to
	// this default rather than the nearest bound: size=500 yields 10
	// items, not 100. Preserved source behavior, externally observable.
	DefaultPageSize = 10
	// MaxPageSize bounds how much a single page may fetch.
	MaxPageSize = 100
)

// PageRequest carries caller-supplied paging and sorting inputs. All
// values are normalised, never rejected.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
}

// Normalize returns the effective page and size. defaultSize<=0 falls back
// to DefaultPageSize.
func (r PageRequest) Normalize(defaultSize int) (page, size int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	page = r.Page
	if page < 1 {
		page = 1
	}
	size = r.Size
	if size < 1 || size > MaxPageSize {
		size = defaultSize
	}
	return page, size
}

// OrderClause resolves the ORDER BY column and direction. Unknown or empty
// sort fields fall back to the catalog's primary key so result order stays
// deterministic. Any sort_order other than desc (case-insensitive) means
// ascending.
func (r PageRequest) OrderClause(catalog Catalog) string {
	column := catalog.PrimaryKey
	if r.SortBy != "" {
		if field, ok := catalog.Lookup(r.SortBy); ok {
			column = field.SQLColumn()
		}
	}

	direction := "ASC"
	if strings.EqualFold(r.SortOrder, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// Pagination is the page metadata attached to every list response.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPagination computes page metadata for a normalised page/size pair.
// total=0 yields zero pages with neither neighbor.
func NewPagination(total, page, size int) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return Pagination{
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
