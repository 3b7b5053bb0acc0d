// Package auth decides which approval queue a viewer may see and act on.
// Authentication happens elsewhere; this package only consumes the resolved
// identity.
package auth

import (
	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// Viewer is the resolved identity of the acting session
type Viewer struct {
	UserID         string
	Name           string
	Role           models.Role
	IsHOD          bool   // faculty only
	RegisterNumber string // student only, for bulk roster matching
}

// AccessGate computes the actionable and visible subsets of the request set
// for a viewer. It is stateless; all decisions derive from the viewer and
// the request at hand.
type AccessGate struct{}

// NewAccessGate creates an AccessGate
func NewAccessGate() *AccessGate {
	return &AccessGate{}
}

// CanAct reports whether the viewer may approve or decline the request in
// its current status. Role failures surface as ErrPermissionDenied before
// the state machine runs. One deliberate exception: a mentor acting on a
// request that already moved to the head-of-department stage gets
// ErrInvalidTransition, because that is the double-apply/stale-status case
// rather than a standing lack of rights.
func (g *AccessGate) CanAct(v Viewer, req *models.AttendanceRequest) error {
	if v.Role != models.RoleFaculty {
		return apperrors.NewForbiddenError("only faculty can approve or decline requests")
	}

	switch req.Status {
	case models.StatusPendingMentor:
		if v.IsHOD {
			return apperrors.NewForbiddenError("request is still awaiting its mentor stage")
		}
		if req.EventCoordinatorFacultyID != "" && req.EventCoordinatorFacultyID != v.UserID {
			return apperrors.NewForbiddenError("only the event coordinator may act on this request")
		}
	case models.StatusPendingHOD:
		if !v.IsHOD {
			return apperrors.NewInvalidTransitionError(string(req.Status), "approve or decline")
		}
	}
	// Terminal statuses pass through; the state machine reports the
	// invalid transition itself.
	return nil
}

// CanView reports whether the viewer may read the request at all. Students
// see their own requests, including bulk requests whose roster carries
// their register number. Faculty see everything that reaches their queues
// or history.
func (g *AccessGate) CanView(v Viewer, req *models.AttendanceRequest) bool {
	if v.Role == models.RoleFaculty {
		return true
	}
	if req.StudentID == v.UserID {
		return true
	}
	return req.IsBulk && v.RegisterNumber != "" && req.OnRoster(v.RegisterNumber)
}

// CanDelete reports whether the viewer may remove the request: only its
// owner, and only while no approver has acted on it.
func (g *AccessGate) CanDelete(v Viewer, req *models.AttendanceRequest) error {
	if req.StudentID != v.UserID {
		return apperrors.NewForbiddenError("you can only delete your own requests")
	}
	if req.Status != models.StatusPendingMentor {
		return apperrors.NewForbiddenError("only requests still awaiting mentor review can be deleted")
	}
	return nil
}

// ListScope computes the role-derived listing filter. history=true widens
// the scope to the viewer's read-only history view.
func (g *AccessGate) ListScope(v Viewer, history bool) models.RequestFilter {
	switch {
	case v.Role == models.RoleStudent:
		// Students always see exactly their own requests, all statuses.
		return models.RequestFilter{
			StudentID:      v.UserID,
			RegisterNumber: v.RegisterNumber,
		}
	case v.IsHOD:
		if history {
			return models.RequestFilter{}
		}
		return models.RequestFilter{Status: models.StatusPendingHOD}
	default: // mentor
		if history {
			return models.RequestFilter{
				CoordinatorID: v.UserID,
				ExcludeStatus: models.StatusPendingMentor,
			}
		}
		return models.RequestFilter{
			Status:        models.StatusPendingMentor,
			CoordinatorID: v.UserID,
		}
	}
}

// StatsScope computes the filter statistics are counted over. Unlike the
// listing scopes it never pins or excludes a status: the per-status counters
// cover the viewer's whole caseload, live queue included.
func (g *AccessGate) StatsScope(v Viewer) models.RequestFilter {
	switch {
	case v.Role == models.RoleStudent:
		return models.RequestFilter{
			StudentID:      v.UserID,
			RegisterNumber: v.RegisterNumber,
		}
	case v.IsHOD:
		return models.RequestFilter{}
	default: // mentor
		return models.RequestFilter{CoordinatorID: v.UserID}
	}
}
