package models

import (
	"sort"
	"strings"
	"time"

	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// RequestStatus is the approval lifecycle state of an attendance request
type RequestStatus string

const (
	StatusPendingMentor RequestStatus = "PENDING_MENTOR" // awaiting first-stage (mentor) decision
	StatusPendingHOD    RequestStatus = "PENDING_HOD"    // mentor-approved, awaiting department head
	StatusApproved      RequestStatus = "APPROVED"       // terminal
	StatusDeclined      RequestStatus = "DECLINED"       // terminal, may carry a reason
)

// ValidStatus reports whether s is one of the four lifecycle states
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPendingMentor, StatusPendingHOD, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// Period bounds. A period is a discrete teaching slot within a day.
const (
	MinPeriod = 1
	MaxPeriod = 8
)

// MinPurposeLength is the minimum trimmed length of the purpose text
const MinPurposeLength = 10

// BulkStudent is one roster entry of a group request
type BulkStudent struct {
	RegisterNumber string `json:"registerNumber" example:"URK21CS1101"`
	Name           string `json:"name" example:"Arun Kumar"`
}

// AttendanceRequest is one request for excused absence from one or more
// scheduled periods on one date. A bulk request carries a roster but remains
// a single workflow instance: the whole group is approved or declined
// together.
type AttendanceRequest struct {
	ID           string `json:"id" db:"id"`
	StudentID    string `json:"studentId" db:"student_id"`
	StudentName  string `json:"studentName" db:"student_name"`
	StudentEmail string `json:"studentEmail,omitempty" db:"student_email"`

	Date          time.Time      `json:"date" db:"date"`
	Periods       []int          `json:"periods" db:"periods"`                      // sorted ascending, each MinPeriod..MaxPeriod
	PeriodFaculty map[int]string `json:"periodFacultyMapping" db:"period_faculty"` // period number -> supervising faculty user id

	EventCoordinator          string `json:"eventCoordinator" db:"event_coordinator"`
	EventCoordinatorFacultyID string `json:"eventCoordinatorFacultyId,omitempty" db:"event_coordinator_faculty_id"`
	ProofFaculty              string `json:"proofFaculty" db:"proof_faculty"`

	Purpose string        `json:"purpose" db:"purpose"`
	Status  RequestStatus `json:"status" db:"status"`
	Reason  string        `json:"reason,omitempty" db:"reason"` // set only when declined
	ProofURL string       `json:"proofUrl,omitempty" db:"proof_url"`

	IsBulk       bool          `json:"isBulkRequest" db:"is_bulk"`
	BulkStudents []BulkStudent `json:"bulkStudents,omitempty" db:"bulk_students"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"` // assigned by the store
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // assigned by the store
}

// NewRequestParams are the construction inputs for an attendance request
// candidate. Identity, status and timestamps are never supplied here; the
// store assigns them.
type NewRequestParams struct {
	StudentID                 string
	StudentName               string
	StudentEmail              string
	Date                      time.Time
	Periods                   []int
	PeriodFaculty             map[int]string
	EventCoordinator          string
	EventCoordinatorFacultyID string
	ProofFaculty              string
	Purpose                   string
	BulkStudents              []BulkStudent
}

// NewAttendanceRequest validates and constructs a candidate request. On
// failure it returns an *apperrors.ValidationError listing every violated
// invariant, so callers can show all problems at once.
//
// Normalization applied: periods are de-duplicated and sorted ascending,
// purpose and names are trimmed, roster register numbers are upper-cased.
func NewAttendanceRequest(p NewRequestParams) (*AttendanceRequest, error) {
	verr := apperrors.NewValidationError()

	if p.StudentID == "" {
		verr.Add("studentId", "student identifier is required")
	}
	if p.Date.IsZero() {
		verr.Add("date", "date is required")
	}

	periods := normalizePeriods(p.Periods)
	if len(periods) == 0 {
		verr.Add("periods", "at least one period must be selected")
	}
	for _, period := range periods {
		if period < MinPeriod || period > MaxPeriod {
			verr.Addf("periods", "period %d is out of range %d-%d", period, MinPeriod, MaxPeriod)
		} else if strings.TrimSpace(p.PeriodFaculty[period]) == "" {
			verr.Addf("periodFacultyMapping", "period %d has no faculty assignment", period)
		}
	}

	purpose := strings.TrimSpace(p.Purpose)
	if len(purpose) < MinPurposeLength {
		verr.Addf("purpose", "purpose must be at least %d characters", MinPurposeLength)
	}

	coordinator := strings.TrimSpace(p.EventCoordinator)
	if coordinator == "" {
		verr.Add("eventCoordinator", "event coordinator is required")
	}

	roster, rosterViolations := normalizeRoster(p.BulkStudents)
	for _, v := range rosterViolations {
		verr.Add("bulkStudents", v)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	mapping := make(map[int]string, len(periods))
	for _, period := range periods {
		mapping[period] = strings.TrimSpace(p.PeriodFaculty[period])
	}

	return &AttendanceRequest{
		StudentID:                 p.StudentID,
		StudentName:               strings.TrimSpace(p.StudentName),
		StudentEmail:              strings.TrimSpace(p.StudentEmail),
		Date:                      p.Date,
		Periods:                   periods,
		PeriodFaculty:             mapping,
		EventCoordinator:          coordinator,
		EventCoordinatorFacultyID: strings.TrimSpace(p.EventCoordinatorFacultyID),
		ProofFaculty:              strings.TrimSpace(p.ProofFaculty),
		Purpose:                   purpose,
		Status:                    StatusPendingMentor,
		IsBulk:                    len(roster) > 0,
		BulkStudents:              roster,
	}, nil
}

// normalizePeriods de-duplicates and sorts the period set ascending
func normalizePeriods(periods []int) []int {
	seen := make(map[int]bool, len(periods))
	out := make([]int, 0, len(periods))
	for _, p := range periods {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// normalizeRoster upper-cases register numbers and rejects blank or
// duplicate entries
func normalizeRoster(roster []BulkStudent) ([]BulkStudent, []string) {
	if len(roster) == 0 {
		return nil, nil
	}

	var violations []string
	seen := make(map[string]bool, len(roster))
	out := make([]BulkStudent, 0, len(roster))
	for _, entry := range roster {
		reg := strings.ToUpper(strings.TrimSpace(entry.RegisterNumber))
		name := strings.TrimSpace(entry.Name)
		if reg == "" {
			violations = append(violations, "roster entry has an empty register number")
			continue
		}
		if seen[reg] {
			violations = append(violations, "duplicate register number "+reg)
			continue
		}
		seen[reg] = true
		out = append(out, BulkStudent{RegisterNumber: reg, Name: name})
	}
	return out, violations
}

// OnRoster reports whether the given student register number appears on a
// bulk request's roster. Matching is case-insensitive because register
// numbers are normalized to upper case.
func (r *AttendanceRequest) OnRoster(registerNumber string) bool {
	reg := strings.ToUpper(strings.TrimSpace(registerNumber))
	for _, s := range r.BulkStudents {
		if s.RegisterNumber == reg {
			return true
		}
	}
	return false
}

// RequestStatistics are per-status counters over a request set. The four
// status counters always sum to Total.
type RequestStatistics struct {
	Total         int `json:"total"`
	PendingMentor int `json:"pendingMentor"`
	PendingHOD    int `json:"pendingHOD"`
	Approved      int `json:"approved"`
	Declined      int `json:"declined"`
}
