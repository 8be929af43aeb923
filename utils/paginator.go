package utils

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationParams is a parsed page request.
type PaginationParams struct {
	PageNum  int
	PageSize int
	Offset   int
}

// PaginationResult is a struct that holds pagination result.
type PaginationResult struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	CurrentCount int   `json:"currentCount"`
	TotalCount   int64 `json:"totalCount"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// GetPaginationParams reads page and pageSize off a query string. Missing or
// malformed values fall back to the first page of DefaultPageSize items.
func GetPaginationParams(q url.Values) PaginationParams {
	pageNum, err := strconv.Atoi(q.Get("page"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PaginationParams{PageNum: pageNum, PageSize: pageSize, Offset: (pageNum - 1) * pageSize}
}

// GetPaginationResult describes the page that params selected out of totalCount items.
func GetPaginationResult(params PaginationParams, dataCount int, totalCount int64) PaginationResult {
	size := params.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	totalPages := int(math.Ceil(float64(totalCount) / float64(size)))
	return PaginationResult{
		CurrentPage:  params.PageNum,
		TotalPages:   totalPages,
		CurrentCount: dataCount,
		TotalCount:   totalCount,
		HasNext:      params.PageNum < totalPages,
		HasPrev:      params.PageNum > 1,
	}
}
