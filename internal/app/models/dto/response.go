package dto

import "time"

// APIResponse is the standard success envelope for API endpoints
type APIResponse struct {
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-07-28T12:01:05.123Z"`
}

// NewAPIResponse wraps data in the standard envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a bare confirmation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes the page window of a listing response
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	PageSize    int   `json:"pageSize" example:"20"`
	TotalItems  int64 `json:"totalItems" example:"42"`
}

// PagedResponse pairs a page of items with its pagination block
type PagedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
