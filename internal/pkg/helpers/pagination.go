package helpers

import (
	"math"

	"github.com/atomclub/attendance/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// NormalizePageSize clamps user-supplied pagination parameters to sane values
func NormalizePageSize(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// CalculateOffsetLimit converts a 1-based page number into a SQL offset and limit
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	page, limit = NormalizePageSize(page, size)
	return uint64((page - 1) * limit), limit
}

// NewPaginationInfo builds the pagination block of a listing response.
// The current page is capped at the last populated page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePageSize(page, size)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == DefaultPage {
		totalPages = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
