package dto

import "github.com/atomclub/attendance/internal/app/models"

// DateLayout is the wire format for request dates
const DateLayout = "2006-01-02"

// DayRequest is one calendar day's worth of a submission. JSON object keys
// force the period-faculty mapping to string keys on the wire; the service
// converts them to period numbers.
type DayRequest struct {
	Date                      string                `json:"date" example:"2024-07-28"`
	Periods                   []int                 `json:"periods" example:"3,4"`
	PeriodFacultyMapping      map[string]string     `json:"periodFacultyMapping"`
	EventCoordinator          string                `json:"eventCoordinator"`
	EventCoordinatorFacultyID string                `json:"eventCoordinatorFacultyId"`
	ProofFaculty              string                `json:"proofFaculty"`
	Purpose                   string                `json:"purpose"`
	BulkStudents              []models.BulkStudent  `json:"bulkStudents,omitempty"`
}

// CreateRequestPayload accepts either a single day (inline fields) or a
// multi-day batch (Requests). Supplying both is rejected.
type CreateRequestPayload struct {
	DayRequest
	Requests []DayRequest `json:"requests,omitempty"`
}

// IsBatch reports whether the payload is a multi-day submission
func (p *CreateRequestPayload) IsBatch() bool {
	return len(p.Requests) > 0
}

// StatusUpdateRequest moves a request through the approval workflow.
// Status is the desired target; Reason applies to declines only.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required" example:"PENDING_HOD"`
	Reason string `json:"reason,omitempty"`
}

// ListRequestsQuery mirrors the supported listing filters
type ListRequestsQuery struct {
	StudentID string `form:"studentId"`
	Status    string `form:"status"`
	DateFrom  string `form:"dateFrom"`
	DateTo    string `form:"dateTo"`
	History   bool   `form:"history"`
	Page      int    `form:"page"`
	Size      int    `form:"size"`
}

// ProofUploadResponse is returned after a proof document upload
type ProofUploadResponse struct {
	ProofURL string `json:"proofUrl"`
}
