// Package approval implements the two-stage attendance approval lifecycle:
//
//	PENDING_MENTOR -> PENDING_HOD -> APPROVED
//	PENDING_MENTOR -> DECLINED
//	PENDING_HOD    -> DECLINED
//
// APPROVED and DECLINED are terminal. The package only decides status-shape
// legality; who may trigger a transition on which queue is the access gate's
// concern.
package approval

import (
	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// Action is a workflow decision taken by a faculty member
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
)

// Approve returns the status that follows current when an approver signs
// off, or ErrInvalidTransition when current is not a pending state.
func Approve(current models.RequestStatus) (models.RequestStatus, error) {
	switch current {
	case models.StatusPendingMentor:
		return models.StatusPendingHOD, nil
	case models.StatusPendingHOD:
		return models.StatusApproved, nil
	}
	return "", apperrors.NewInvalidTransitionError(string(current), string(ActionApprove))
}

// Decline returns DECLINED when current is a pending state, or
// ErrInvalidTransition otherwise. Terminal states never transition.
func Decline(current models.RequestStatus) (models.RequestStatus, error) {
	switch current {
	case models.StatusPendingMentor, models.StatusPendingHOD:
		return models.StatusDeclined, nil
	}
	return "", apperrors.NewInvalidTransitionError(string(current), string(ActionDecline))
}

// Next resolves an action against the current status
func Next(current models.RequestStatus, action Action) (models.RequestStatus, error) {
	switch action {
	case ActionApprove:
		return Approve(current)
	case ActionDecline:
		return Decline(current)
	}
	return "", apperrors.NewInvalidTransitionError(string(current), string(action))
}

// IsTerminal reports whether no transition is legal out of status
func IsTerminal(status models.RequestStatus) bool {
	return status == models.StatusApproved || status == models.StatusDeclined
}

// ActionFor maps a requested target status to the workflow action that
// produces it, mirroring the transport contract where callers submit the
// desired status rather than an action verb. Returns false when no action
// yields the target.
func ActionFor(current, target models.RequestStatus) (Action, bool) {
	if target == models.StatusDeclined {
		return ActionDecline, true
	}
	if next, err := Approve(current); err == nil && next == target {
		return ActionApprove, true
	}
	return "", false
}
