package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/approval"
	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/repositories"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/email"
	"github.com/atomclub/attendance/internal/pkg/filestorage"
	"github.com/atomclub/attendance/internal/pkg/helpers"
)

// AttendanceService implements the approval workflow: submission, listing,
// status transitions, proof attachment and statistics.
type AttendanceService struct {
	attendanceRepo repositories.AttendanceRepo
	userRepo       repositories.UserRepo
	gate           *appauth.AccessGate
	notifier       email.NotificationService
	storage        filestorage.FileStorage
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepo,
	userRepo repositories.UserRepo,
	gate *appauth.AccessGate,
	notifier email.NotificationService,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		gate:           gate,
		notifier:       notifier,
		storage:        storage,
		logger:         logger,
	}
}

// Submit creates one request per day of the payload. The whole submission
// is validated before anything is stored: one invalid day rejects the
// batch, and the batch insert itself is transactional.
func (s *AttendanceService) Submit(ctx context.Context, viewer appauth.Viewer, payload dto.CreateRequestPayload) ([]*models.AttendanceRequest, error) {
	if viewer.Role != models.RoleStudent {
		return nil, apperrors.NewForbiddenError("only students can submit attendance requests")
	}

	if payload.IsBatch() && (payload.Date != "" || len(payload.Periods) > 0 || payload.Purpose != "") {
		verr := apperrors.NewValidationError()
		verr.Add("requests", "supply either a single day or a requests batch, not both")
		return nil, verr
	}

	days := payload.Requests
	if !payload.IsBatch() {
		days = []dto.DayRequest{payload.DayRequest}
	}

	user, err := s.userRepo.GetByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	requests := make([]*models.AttendanceRequest, 0, len(days))
	for i, day := range days {
		req, err := s.buildDay(user, day)
		if err != nil {
			var dayErr *apperrors.ValidationError
			if errors.As(err, &dayErr) {
				for _, v := range dayErr.Violations {
					field := v.Field
					if payload.IsBatch() {
						field = fmt.Sprintf("requests[%d].%s", i, v.Field)
					}
					verr.Add(field, v.Message)
				}
				continue
			}
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := s.attendanceRepo.CreateBatch(ctx, requests); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentId", viewer.UserID).
		Int("days", len(requests)).
		Msg("Attendance request submitted")
	return requests, nil
}

// buildDay converts one wire day into a validated request candidate
func (s *AttendanceService) buildDay(user *models.User, day dto.DayRequest) (*models.AttendanceRequest, error) {
	verr := apperrors.NewValidationError()

	var date time.Time
	if day.Date == "" {
		verr.Add("date", "date is required")
	} else {
		parsed, err := time.Parse(dto.DateLayout, day.Date)
		if err != nil {
			verr.Addf("date", "date must use the %s format", dto.DateLayout)
		} else {
			date = parsed
		}
	}

	mapping, mapErr := parsePeriodMapping(day.PeriodFacultyMapping)
	if mapErr != "" {
		verr.Add("periodFacultyMapping", mapErr)
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return models.NewAttendanceRequest(models.NewRequestParams{
		StudentID:                 user.ID,
		StudentName:               user.Name,
		StudentEmail:              user.Email,
		Date:                      date,
		Periods:                   day.Periods,
		PeriodFaculty:             mapping,
		EventCoordinator:          day.EventCoordinator,
		EventCoordinatorFacultyID: day.EventCoordinatorFacultyID,
		ProofFaculty:              day.ProofFaculty,
		Purpose:                   day.Purpose,
		BulkStudents:              day.BulkStudents,
	})
}

// parsePeriodMapping converts string wire keys to period numbers
func parsePeriodMapping(raw map[string]string) (map[int]string, string) {
	if len(raw) == 0 {
		return nil, ""
	}
	mapping := make(map[int]string, len(raw))
	for key, facultyID := range raw {
		period, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Sprintf("%q is not a period number", key)
		}
		mapping[period] = facultyID
	}
	return mapping, ""
}

// Get returns one request, enforcing visibility
func (s *AttendanceService) Get(ctx context.Context, viewer appauth.Viewer, id string) (*models.AttendanceRequest, error) {
	req, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanView(viewer, req) {
		// Hidden rather than forbidden: existence is not disclosed.
		return nil, apperrors.ErrRequestNotFound
	}
	return req, nil
}

// List returns one page of the viewer's scope intersected with the query
// filters, plus the total match count. Query filters can only narrow the
// scope, never widen it.
func (s *AttendanceService) List(ctx context.Context, viewer appauth.Viewer, query dto.ListRequestsQuery) ([]*models.AttendanceRequest, int64, error) {
	filter := s.gate.ListScope(viewer, query.History)

	if query.Status != "" {
		status := models.RequestStatus(query.Status)
		if !models.ValidStatus(status) {
			verr := apperrors.NewValidationError()
			verr.Addf("status", "%q is not a valid status", query.Status)
			return nil, 0, verr
		}
		if filter.Status != "" && filter.Status != status {
			// The role scope already pins the status; a conflicting
			// narrowing matches nothing.
			return []*models.AttendanceRequest{}, 0, nil
		}
		filter.Status = status
	}
	if query.StudentID != "" && viewer.Role == models.RoleFaculty {
		filter.StudentID = query.StudentID
		filter.RegisterNumber = ""
	}

	var err error
	if filter.DateFrom, filter.DateTo, err = parseDateRange(query.DateFrom, query.DateTo); err != nil {
		return nil, 0, err
	}

	total, err := s.attendanceRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(query.Page, query.Size)
	requests, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if requests == nil {
		requests = []*models.AttendanceRequest{}
	}
	return requests, total, nil
}

// parseDateRange validates the optional dateFrom/dateTo query bounds
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	verr := apperrors.NewValidationError()
	var dateFrom, dateTo time.Time

	if from != "" {
		parsed, err := time.Parse(dto.DateLayout, from)
		if err != nil {
			verr.Addf("dateFrom", "dateFrom must use the %s format", dto.DateLayout)
		} else {
			dateFrom = parsed
		}
	}
	if to != "" {
		parsed, err := time.Parse(dto.DateLayout, to)
		if err != nil {
			verr.Addf("dateTo", "dateTo must use the %s format", dto.DateLayout)
		} else {
			dateTo = parsed
		}
	}
	if !dateFrom.IsZero() && !dateTo.IsZero() && dateTo.Before(dateFrom) {
		verr.Add("dateTo", "dateTo must not be before dateFrom")
	}

	if err := verr.ErrOrNil(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return dateFrom, dateTo, nil
}

// UpdateStatus moves a request to the desired target status on behalf of
// the viewer. The stored status is re-read after a conditional update
// failure so a stale approver learns what actually happened.
func (s *AttendanceService) UpdateStatus(ctx context.Context, viewer appauth.Viewer, id string, update dto.StatusUpdateRequest) (*models.AttendanceRequest, error) {
	update.Reason = strings.TrimSpace(update.Reason)
	target := models.RequestStatus(update.Status)
	if !models.ValidStatus(target) {
		verr := apperrors.NewValidationError()
		verr.Addf("status", "%q is not a valid status", update.Status)
		return nil, verr
	}

	req, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAct(viewer, req); err != nil {
		return nil, err
	}

	action, ok := approval.ActionFor(req.Status, target)
	if !ok {
		return nil, apperrors.NewInvalidTransitionError(string(req.Status), update.Status)
	}
	next, err := approval.Next(req.Status, action)
	if err != nil {
		return nil, err
	}

	moved, err := s.attendanceRepo.UpdateStatusIf(ctx, id, req.Status, next, update.Reason)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost the race: another approver committed first. Report against
		// the status that actually won.
		current, err := s.attendanceRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransitionError(string(current.Status), update.Status)
	}

	req.Status = next
	req.UpdatedAt = time.Now()
	if next == models.StatusDeclined {
		req.Reason = update.Reason
	}

	s.logger.Info().
		Str("requestId", id).
		Str("actorId", viewer.UserID).
		Str("status", string(next)).
		Msg("Request status updated")

	s.notify(req, viewer)
	return req, nil
}

// notify sends workflow mail for transitions that reach an interested
// party. Mail failures are logged, never surfaced: the transition already
// committed.
func (s *AttendanceService) notify(req *models.AttendanceRequest, actor appauth.Viewer) {
	if s.notifier == nil {
		return
	}

	switch req.Status {
	case models.StatusApproved:
		s.notifyPeriodFaculty(req)
	case models.StatusDeclined:
		notice := email.DeclineNotice{
			Date:    req.Date,
			Periods: req.Periods,
			Reason:  req.Reason,
		}
		if req.StudentEmail == "" {
			return
		}
		if err := s.notifier.SendDeclineNotice(req.StudentEmail, req.StudentName, notice); err != nil {
			s.logger.Warn().Err(err).Str("requestId", req.ID).Msg("Failed to send decline notice")
		}
	}
}

// notifyPeriodFaculty mails every distinct faculty member supervising an
// affected period
func (s *AttendanceService) notifyPeriodFaculty(req *models.AttendanceRequest) {
	ids := make([]string, 0, len(req.PeriodFaculty))
	seen := make(map[string]bool, len(req.PeriodFaculty))
	for _, facultyID := range req.PeriodFaculty {
		if facultyID != "" && !seen[facultyID] {
			seen[facultyID] = true
			ids = append(ids, facultyID)
		}
	}

	users, err := s.userRepo.GetUsersByIDs(context.Background(), ids)
	if err != nil {
		s.logger.Warn().Err(err).Str("requestId", req.ID).Msg("Failed to resolve period faculty for notification")
		return
	}

	notice := email.ApprovalNotice{
		StudentName: req.StudentName,
		Date:        req.Date,
		Periods:     req.Periods,
		Purpose:     req.Purpose,
		IsBulk:      req.IsBulk,
		RosterSize:  len(req.BulkStudents),
	}
	for _, u := range users {
		if err := s.notifier.SendApprovalNotice(u.Email, u.Name, notice); err != nil {
			s.logger.Warn().Err(err).
				Str("requestId", req.ID).
				Str("facultyId", u.ID).
				Msg("Failed to send approval notice")
		}
	}
}

// Delete removes the viewer's own request while it is still unreviewed
func (s *AttendanceService) Delete(ctx context.Context, viewer appauth.Viewer, id string) error {
	req, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.gate.CanView(viewer, req) {
		return apperrors.ErrRequestNotFound
	}
	if err := s.gate.CanDelete(viewer, req); err != nil {
		return err
	}

	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return err
	}
	if req.ProofURL != "" && s.storage != nil {
		if err := s.storage.DeleteFile(req.ProofURL); err != nil {
			s.logger.Warn().Err(err).Str("requestId", id).Msg("Failed to remove proof document")
		}
	}

	s.logger.Info().Str("requestId", id).Str("studentId", viewer.UserID).Msg("Request deleted")
	return nil
}

// AttachProof stores an uploaded proof document for the viewer's request
func (s *AttendanceService) AttachProof(ctx context.Context, viewer appauth.Viewer, id string, file *multipart.FileHeader) (string, error) {
	req, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !s.gate.CanView(viewer, req) {
		return "", apperrors.ErrRequestNotFound
	}
	if req.StudentID != viewer.UserID {
		return "", apperrors.NewForbiddenError("only the requesting student can attach proof")
	}

	proofURL, err := s.storage.SaveFileWithPath(file, "proofs")
	if err != nil {
		return "", err
	}

	if err := s.attendanceRepo.SetProofURL(ctx, id, proofURL); err != nil {
		_ = s.storage.DeleteFile(proofURL)
		return "", err
	}

	// The replaced document, if any, is no longer referenced.
	if req.ProofURL != "" {
		if err := s.storage.DeleteFile(req.ProofURL); err != nil {
			s.logger.Warn().Err(err).Str("requestId", id).Msg("Failed to remove replaced proof document")
		}
	}
	return proofURL, nil
}

// Statistics counts the viewer's scoped requests per status
func (s *AttendanceService) Statistics(ctx context.Context, viewer appauth.Viewer) (*models.RequestStatistics, error) {
	return s.attendanceRepo.Statistics(ctx, s.gate.StatsScope(viewer))
}
