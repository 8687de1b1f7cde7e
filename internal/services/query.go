package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Pagination defaults and limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// QueryParams holds the list options shared by every collection.
type QueryParams struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDirection string
	Search         string
}

// Page is one page of a listing.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// listColumns describes how a collection maps API field names to columns.
type listColumns struct {
	orderColumns  map[string]string
	defaultOrder  string
	searchColumns []string
}

func (q QueryParams) normalize() QueryParams {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.OrderDirection != "asc" {
		q.OrderDirection = "desc"
	}
	return q
}

// applySearch ORs a case-insensitive substring match over the search columns.
func (s listColumns) applySearch(tx *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(s.searchColumns) == 0 {
		return tx
	}
	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(s.searchColumns))
	args := make([]any, len(s.searchColumns))
	for i, col := range s.searchColumns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// paginate counts the filtered rows, then orders and slices them.
// query must build a fresh filtered statement on every call.
// Unknown order fields fall back to the collection's default order.
func paginate[T any](query func() *gorm.DB, cols listColumns, q QueryParams) (*Page[T], error) {
	q = q.normalize()
	page := &Page[T]{Page: q.Page, PageSize: q.PageSize, Data: []T{}}

	if err := query().Count(&page.Total).Error; err != nil {
		return nil, err
	}
	col, ok := cols.orderColumns[q.OrderBy]
	if !ok {
		col = cols.orderColumns[cols.defaultOrder]
	}
	err := query().Order(col + " " + q.OrderDirection).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&page.Data).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s listColumns) fields() []string {
	out := make([]string, 0, len(s.orderColumns))
	for k := range s.orderColumns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
