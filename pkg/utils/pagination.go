package utils

import "math"

// MaxPageSize caps the limit a caller may ask for
const MaxPageSize = 100

// PaginationParams holds pagination request parameters
type PaginationParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
}

// GetPaginationParams normalizes query values. Pages start at 1, a limit of
// 0 asks for the whole collection and larger limits are clamped to MaxPageSize.
func GetPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 0:
		limit = 0
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return PaginationParams{Page: page, Limit: limit}
}

// CalculateOffset returns the index of the first item of the page. Offsets
// past math.MaxInt saturate there.
func (p PaginationParams) CalculateOffset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

func CalculateMeta(totalCount int64, page, limit int) PaginationMeta {
	if limit <= 0 {
		return PaginationMeta{Page: 1, Limit: int(totalCount), TotalCount: totalCount, TotalPages: 1}
	}
	if page < 1 {
		page = 1
	}
	var totalPages int
	if totalCount > 0 {
		totalPages = int((totalCount-1)/int64(limit) + 1)
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Paginate slices an in-memory collection; the ledger only hands out whole
// collections, so paging happens after the fetch. The page is never nil.
func Paginate[T any](items []T, p PaginationParams) ([]T, PaginationMeta) {
	meta := CalculateMeta(int64(len(items)), p.Page, p.Limit)
	if items == nil {
		items = []T{}
	}
	if p.Limit <= 0 {
		return items, meta
	}
	start := p.CalculateOffset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := len(items)
	if p.Limit < end-start {
		end = start + p.Limit
	}
	return items[start:end], meta
}
