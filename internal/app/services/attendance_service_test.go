package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"

	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

type fixture struct {
	svc      *AttendanceService
	repo     *mockAttendanceRepo
	users    *mockUserRepo
	notifier *mockNotifier
	storage  *mockStorage
}

// mockStorage records saved and deleted proof files
type mockStorage struct {
	saved   []string
	deleted []string
}

func (m *mockStorage) SaveFile(fh *multipart.FileHeader) (string, error) {
	return m.SaveFileWithPath(fh, "")
}

func (m *mockStorage) SaveFileWithPath(fh *multipart.FileHeader, path string) (string, error) {
	url := "uploads/" + path + "/stored-" + fh.Filename
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *mockStorage) DeleteFile(filePath string) error {
	m.deleted = append(m.deleted, filePath)
	return nil
}

func (m *mockStorage) GetFullPath(filePath string) string { return filePath }

func newFixture() *fixture {
	repo := newMockAttendanceRepo()
	users := newMockUserRepo()
	notifier := &mockNotifier{}
	storage := &mockStorage{}

	users.users["student-1"] = &models.User{ID: "student-1", Email: "priya@karunya.edu", Name: "Priya Sharma", Role: models.RoleStudent}
	users.students["student-1"] = &models.StudentProfile{UserID: "student-1", StudentID: "URK21CS1001"}
	users.users["student-2"] = &models.User{ID: "student-2", Email: "arun@karunya.edu", Name: "Arun Kumar", Role: models.RoleStudent}
	users.students["student-2"] = &models.StudentProfile{UserID: "student-2", StudentID: "URK21CS1002"}
	users.users["mentor-1"] = &models.User{ID: "mentor-1", Email: "mentor@karunya.edu", Name: "Dr. Mentor", Role: models.RoleFaculty}
	users.users["faculty-p3"] = &models.User{ID: "faculty-p3", Email: "p3@karunya.edu", Name: "Prof. Third", Role: models.RoleFaculty}
	users.users["faculty-p4"] = &models.User{ID: "faculty-p4", Email: "p4@karunya.edu", Name: "Prof. Fourth", Role: models.RoleFaculty}

	svc := NewAttendanceService(repo, users, appauth.NewAccessGate(), notifier, storage, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, users: users, notifier: notifier, storage: storage}
}

func studentViewer() appauth.Viewer {
	return appauth.Viewer{UserID: "student-1", Name: "Priya Sharma", Role: models.RoleStudent, RegisterNumber: "URK21CS1001"}
}

func mentorViewer() appauth.Viewer {
	return appauth.Viewer{UserID: "mentor-1", Name: "Dr. Mentor", Role: models.RoleFaculty}
}

func hodViewer() appauth.Viewer {
	return appauth.Viewer{UserID: "hod-1", Name: "Dr. Head", Role: models.RoleFaculty, IsHOD: true}
}

func validDay(date string) dto.DayRequest {
	return dto.DayRequest{
		Date:                      date,
		Periods:                   []int{4, 3, 4},
		PeriodFacultyMapping:      map[string]string{"3": "faculty-p3", "4": "faculty-p4"},
		EventCoordinator:          "Dr. Mentor",
		EventCoordinatorFacultyID: "mentor-1",
		Purpose:                   "Representing the college at the inter-university hackathon",
	}
}

func TestSubmitSingleDay(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Submit(context.Background(), studentViewer(), dto.CreateRequestPayload{DayRequest: validDay("2026-08-10")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Submit() created %d requests, want 1", len(created))
	}

	req := created[0]
	if req.ID == "" {
		t.Error("created request has no id")
	}
	if req.Status != models.StatusPendingMentor {
		t.Errorf("new request status = %s, want %s", req.Status, models.StatusPendingMentor)
	}
	if len(req.Periods) != 2 || req.Periods[0] != 3 || req.Periods[1] != 4 {
		t.Errorf("periods = %v, want deduplicated sorted [3 4]", req.Periods)
	}
	if req.StudentName != "Priya Sharma" {
		t.Errorf("student name = %q, want resolved from user record", req.StudentName)
	}
	if req.IsBulk {
		t.Error("single request marked bulk")
	}
}

func TestSubmitMultiDayAllOrNothing(t *testing.T) {
	f := newFixture()

	bad := validDay("2026-08-11")
	bad.Purpose = "too short"

	payload := dto.CreateRequestPayload{Requests: []dto.DayRequest{validDay("2026-08-10"), bad}}
	_, err := f.svc.Submit(context.Background(), studentViewer(), payload)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("Submit() error = %v, want validation failure", err)
	}

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error type = %T, want *ValidationError", err)
	}
	if len(verr.Violations) == 0 || verr.Violations[0].Field != "requests[1].purpose" {
		t.Errorf("violations = %+v, want the failing day indexed", verr.Violations)
	}

	stored, _ := f.repo.List(context.Background(), models.RequestFilter{})
	if len(stored) != 0 {
		t.Errorf("%d requests stored despite a failing day, want 0", len(stored))
	}
}

func TestSubmitBatchRejectsDayWithoutPeriods(t *testing.T) {
	f := newFixture()

	empty := validDay("2026-08-11")
	empty.Periods = nil
	empty.PeriodFacultyMapping = nil

	payload := dto.CreateRequestPayload{Requests: []dto.DayRequest{validDay("2026-08-10"), empty}}
	_, err := f.svc.Submit(context.Background(), studentViewer(), payload)

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want *ValidationError", err)
	}
	found := false
	for _, v := range verr.Violations {
		if v.Field == "requests[1].periods" {
			found = true
		}
	}
	if !found {
		t.Errorf("violations %+v do not flag the empty-periods day", verr.Violations)
	}

	stored, _ := f.repo.List(context.Background(), models.RequestFilter{})
	if len(stored) != 0 {
		t.Errorf("%d requests stored despite the empty-periods day, want 0", len(stored))
	}
}

func TestSubmitRejectsInlineDayMixedWithBatch(t *testing.T) {
	f := newFixture()

	payload := dto.CreateRequestPayload{
		DayRequest: validDay("2026-08-10"),
		Requests:   []dto.DayRequest{validDay("2026-08-11")},
	}
	_, err := f.svc.Submit(context.Background(), studentViewer(), payload)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("mixed Submit() error = %v, want validation failure", err)
	}

	stored, _ := f.repo.List(context.Background(), models.RequestFilter{})
	if len(stored) != 0 {
		t.Errorf("%d requests stored from a mixed payload, want 0", len(stored))
	}
}

func TestSubmitMultiDayCreatesOnePerDay(t *testing.T) {
	f := newFixture()

	payload := dto.CreateRequestPayload{Requests: []dto.DayRequest{
		validDay("2026-08-10"), validDay("2026-08-11"), validDay("2026-08-12"),
	}}
	created, err := f.svc.Submit(context.Background(), studentViewer(), payload)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Submit() created %d requests, want 3", len(created))
	}
}

func TestSubmitBulkRosterIsOneRequest(t *testing.T) {
	f := newFixture()

	day := validDay("2026-08-10")
	day.BulkStudents = []models.BulkStudent{
		{RegisterNumber: "urk21cs1001", Name: "Priya Sharma"},
		{RegisterNumber: "URK21CS1002", Name: "Arun Kumar"},
		{RegisterNumber: "urk21cs1003", Name: "Deepa R"},
	}

	created, err := f.svc.Submit(context.Background(), studentViewer(), dto.CreateRequestPayload{DayRequest: day})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("bulk submission created %d requests, want a single workflow instance", len(created))
	}

	req := created[0]
	if !req.IsBulk || len(req.BulkStudents) != 3 {
		t.Fatalf("bulk flags = (%v, %d roster entries), want (true, 3)", req.IsBulk, len(req.BulkStudents))
	}
	if req.BulkStudents[0].RegisterNumber != "URK21CS1001" {
		t.Errorf("register number = %q, want upper-cased", req.BulkStudents[0].RegisterNumber)
	}
}

func TestSubmitRejectsInvalidDays(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(*dto.DayRequest)
		field  string
	}{
		{"short purpose", func(d *dto.DayRequest) { d.Purpose = "   short   " }, "purpose"},
		{"no periods", func(d *dto.DayRequest) { d.Periods = nil }, "periods"},
		{"period out of range", func(d *dto.DayRequest) { d.Periods = []int{9} }, "periods"},
		{"unmapped period", func(d *dto.DayRequest) { d.PeriodFacultyMapping = map[string]string{"3": "faculty-p3"} }, "periodFacultyMapping"},
		{"missing coordinator", func(d *dto.DayRequest) { d.EventCoordinator = " " }, "eventCoordinator"},
		{"bad date", func(d *dto.DayRequest) { d.Date = "10-08-2026" }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := validDay("2026-08-10")
			tt.mutate(&day)

			_, err := f.svc.Submit(context.Background(), studentViewer(), dto.CreateRequestPayload{DayRequest: day})
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want *ValidationError", err)
			}
			found := false
			for _, v := range verr.Violations {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("violations %+v do not mention field %q", verr.Violations, tt.field)
			}
		})
	}
}

func TestSubmitRequiresStudentRole(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(context.Background(), mentorViewer(), dto.CreateRequestPayload{DayRequest: validDay("2026-08-10")})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("Submit() by faculty error = %v, want permission denied", err)
	}
}

func submitOne(t *testing.T, f *fixture) *models.AttendanceRequest {
	t.Helper()
	created, err := f.svc.Submit(context.Background(), studentViewer(), dto.CreateRequestPayload{DayRequest: validDay("2026-08-10")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return created[0]
}

func TestTwoStageApproval(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)
	ctx := context.Background()

	// Mentor stage.
	updated, err := f.svc.UpdateStatus(ctx, mentorViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"})
	if err != nil {
		t.Fatalf("mentor approval error = %v", err)
	}
	if updated.Status != models.StatusPendingHOD {
		t.Fatalf("status after mentor approval = %s, want %s", updated.Status, models.StatusPendingHOD)
	}

	// Head-of-department stage.
	updated, err = f.svc.UpdateStatus(ctx, hodViewer(), req.ID, dto.StatusUpdateRequest{Status: "APPROVED"})
	if err != nil {
		t.Fatalf("department approval error = %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Fatalf("status after department approval = %s, want %s", updated.Status, models.StatusApproved)
	}

	// Full approval mails every distinct period faculty.
	if len(f.notifier.approvals) != 2 {
		t.Errorf("approval notices sent to %v, want the two period faculty", f.notifier.approvals)
	}

	// Terminal: nothing further may act on it.
	_, err = f.svc.UpdateStatus(ctx, hodViewer(), req.ID, dto.StatusUpdateRequest{Status: "DECLINED"})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("acting on approved request error = %v, want invalid transition", err)
	}
}

func TestMentorCannotSkipToApproved(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	_, err := f.svc.UpdateStatus(context.Background(), mentorViewer(), req.ID, dto.StatusUpdateRequest{Status: "APPROVED"})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("mentor jump to APPROVED error = %v, want invalid transition", err)
	}
}

func TestDeclineRecordsReason(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	updated, err := f.svc.UpdateStatus(context.Background(), mentorViewer(), req.ID,
		dto.StatusUpdateRequest{Status: "DECLINED", Reason: "Event not recognized by the department"})
	if err != nil {
		t.Fatalf("decline error = %v", err)
	}
	if updated.Status != models.StatusDeclined {
		t.Fatalf("status = %s, want %s", updated.Status, models.StatusDeclined)
	}
	if updated.Reason != "Event not recognized by the department" {
		t.Errorf("reason = %q, not recorded", updated.Reason)
	}
	if len(f.notifier.declines) != 1 || f.notifier.declines[0] != "priya@karunya.edu" {
		t.Errorf("decline notices = %v, want the requesting student", f.notifier.declines)
	}
}

func TestStaleApproverLosesRace(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)
	ctx := context.Background()

	// Another mentor's decline commits between this mentor's read and
	// write. The late write must change nothing and report the status
	// that actually won.
	f.repo.beforeUpdate = func() {
		f.repo.requests[req.ID].Status = models.StatusDeclined
		f.repo.requests[req.ID].Reason = "Duplicate of an earlier request"
	}

	_, err := f.svc.UpdateStatus(ctx, mentorViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("stale approval error = %v, want invalid transition", err)
	}

	current, _ := f.repo.GetByID(ctx, req.ID)
	if current.Status != models.StatusDeclined {
		t.Errorf("status = %s, the committed decline must stand", current.Status)
	}
}

func TestHODActingOnMentorQueue(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	_, err := f.svc.UpdateStatus(context.Background(), hodViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("department head on mentor queue error = %v, want permission denied", err)
	}
}

func TestStudentCannotAct(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	_, err := f.svc.UpdateStatus(context.Background(), studentViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("student acting error = %v, want permission denied", err)
	}
}

func TestDeleteOwnPendingOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := submitOne(t, f)
	if err := f.svc.Delete(ctx, studentViewer(), req.ID); err != nil {
		t.Fatalf("deleting own pending request error = %v", err)
	}
	if _, err := f.repo.GetByID(ctx, req.ID); !errors.Is(err, apperrors.ErrRequestNotFound) {
		t.Error("request still stored after delete")
	}

	// Once the mentor acted, the request is part of the audit trail.
	req = submitOne(t, f)
	if _, err := f.svc.UpdateStatus(ctx, mentorViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"}); err != nil {
		t.Fatalf("mentor approval error = %v", err)
	}
	if err := f.svc.Delete(ctx, studentViewer(), req.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("deleting reviewed request error = %v, want permission denied", err)
	}

	// Someone else's request is not even visible.
	other := appauth.Viewer{UserID: "student-2", Role: models.RoleStudent, RegisterNumber: "URK21CS1002"}
	if err := f.svc.Delete(ctx, other, req.ID); !errors.Is(err, apperrors.ErrRequestNotFound) {
		t.Fatalf("deleting another student's request error = %v, want not found", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mine := submitOne(t, f)

	// A bulk request submitted by another student carries this student on
	// its roster.
	day := validDay("2026-08-12")
	day.BulkStudents = []models.BulkStudent{
		{RegisterNumber: "URK21CS1002", Name: "Arun Kumar"},
		{RegisterNumber: "URK21CS1001", Name: "Priya Sharma"},
	}
	otherStudent := appauth.Viewer{UserID: "student-2", Role: models.RoleStudent, RegisterNumber: "URK21CS1002"}
	bulk, err := f.svc.Submit(ctx, otherStudent, dto.CreateRequestPayload{DayRequest: day})
	if err != nil {
		t.Fatalf("bulk Submit() error = %v", err)
	}

	got, total, err := f.svc.List(ctx, studentViewer(), dto.ListRequestsQuery{})
	if err != nil {
		t.Fatalf("student List() error = %v", err)
	}
	if len(got) != 2 || total != 2 {
		t.Fatalf("student sees %d requests (total %d), want own plus roster membership", len(got), total)
	}

	// Mentor queue holds both pending requests.
	got, _, err = f.svc.List(ctx, mentorViewer(), dto.ListRequestsQuery{})
	if err != nil {
		t.Fatalf("mentor List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("mentor queue has %d requests, want 2", len(got))
	}

	// Department head queue is empty until a mentor forwards something.
	got, _, err = f.svc.List(ctx, hodViewer(), dto.ListRequestsQuery{})
	if err != nil {
		t.Fatalf("department head List() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("department queue has %d requests before any mentor approval", len(got))
	}

	if _, err := f.svc.UpdateStatus(ctx, mentorViewer(), mine.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"}); err != nil {
		t.Fatalf("mentor approval error = %v", err)
	}

	got, _, _ = f.svc.List(ctx, hodViewer(), dto.ListRequestsQuery{})
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("department queue = %v, want the forwarded request only", got)
	}

	// Mentor's live queue shrinks; history keeps the forwarded one.
	got, _, _ = f.svc.List(ctx, mentorViewer(), dto.ListRequestsQuery{})
	if len(got) != 1 || got[0].ID != bulk[0].ID {
		t.Fatalf("mentor queue after forwarding = %d requests, want the remaining pending one", len(got))
	}
	got, _, _ = f.svc.List(ctx, mentorViewer(), dto.ListRequestsQuery{History: true})
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("mentor history = %d requests, want the forwarded one", len(got))
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.List(context.Background(), studentViewer(), dto.ListRequestsQuery{Status: "WAITING"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("List() with unknown status error = %v, want validation failure", err)
	}
}

func TestListPaginates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	submitOne(t, f)
	submitOne(t, f)
	third := submitOne(t, f)

	// Newest first: the last submission leads the first page.
	got, total, err := f.svc.List(ctx, studentViewer(), dto.ListRequestsQuery{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("List() total = %d, want 3", total)
	}
	if len(got) != 2 {
		t.Fatalf("first page = %d requests, want 2", len(got))
	}
	if got[0].ID != third.ID {
		t.Fatalf("first page starts at %q, want %q", got[0].ID, third.ID)
	}

	got, total, err = f.svc.List(ctx, studentViewer(), dto.ListRequestsQuery{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(got) != 1 || total != 3 {
		t.Fatalf("second page = %d requests (total %d), want the single remaining one", len(got), total)
	}
}

func TestStatisticsSumToTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := submitOne(t, f)
	b := submitOne(t, f)
	submitOne(t, f)

	if _, err := f.svc.UpdateStatus(ctx, mentorViewer(), a.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateStatus(ctx, hodViewer(), a.ID, dto.StatusUpdateRequest{Status: "APPROVED"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateStatus(ctx, mentorViewer(), b.ID, dto.StatusUpdateRequest{Status: "DECLINED", Reason: "No supporting proof"}); err != nil {
		t.Fatal(err)
	}

	stats, err := f.svc.Statistics(ctx, studentViewer())
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total = %d, want 3", stats.Total)
	}
	if sum := stats.PendingMentor + stats.PendingHOD + stats.Approved + stats.Declined; sum != stats.Total {
		t.Errorf("status counters sum to %d, want %d", sum, stats.Total)
	}
	if stats.Approved != 1 || stats.Declined != 1 || stats.PendingMentor != 1 {
		t.Errorf("stats = %+v, want one request in each touched state", stats)
	}
}

func TestStatisticsCoverMentorLiveQueue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	submitOne(t, f)
	submitOne(t, f)
	declined := submitOne(t, f)

	if _, err := f.svc.UpdateStatus(ctx, mentorViewer(), declined.ID, dto.StatusUpdateRequest{Status: "DECLINED", Reason: "Clashes with internals"}); err != nil {
		t.Fatal(err)
	}

	stats, err := f.svc.Statistics(ctx, mentorViewer())
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.PendingMentor != 2 {
		t.Errorf("pendingMentor = %d, want the mentor's live queue counted", stats.PendingMentor)
	}
	if stats.Declined != 1 || stats.Total != 3 {
		t.Errorf("stats = %+v, want 1 declined of 3 total", stats)
	}
}

func TestUpdateStatusRefreshesTimestamp(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	updated, err := f.svc.UpdateStatus(context.Background(), mentorViewer(), req.ID, dto.StatusUpdateRequest{Status: "PENDING_HOD"})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if !updated.UpdatedAt.After(req.UpdatedAt) {
		t.Errorf("updatedAt = %v, want later than the pre-transition %v", updated.UpdatedAt, req.UpdatedAt)
	}
}

func TestGetHidesForeignRequests(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)

	other := appauth.Viewer{UserID: "student-2", Role: models.RoleStudent, RegisterNumber: "URK21CS1002"}
	if _, err := f.svc.Get(context.Background(), other, req.ID); !errors.Is(err, apperrors.ErrRequestNotFound) {
		t.Fatalf("foreign Get() error = %v, want not found", err)
	}

	if _, err := f.svc.Get(context.Background(), mentorViewer(), req.ID); err != nil {
		t.Fatalf("faculty Get() error = %v", err)
	}
}

func TestAttachProofReplacesPrevious(t *testing.T) {
	f := newFixture()
	req := submitOne(t, f)
	ctx := context.Background()

	first := &multipart.FileHeader{Filename: "certificate.pdf"}
	url, err := f.svc.AttachProof(ctx, studentViewer(), req.ID, first)
	if err != nil {
		t.Fatalf("AttachProof() error = %v", err)
	}
	if url == "" {
		t.Fatal("AttachProof() returned empty url")
	}

	stored, _ := f.repo.GetByID(ctx, req.ID)
	if stored.ProofURL != url {
		t.Errorf("stored proof url = %q, want %q", stored.ProofURL, url)
	}

	second := &multipart.FileHeader{Filename: "updated.pdf"}
	if _, err := f.svc.AttachProof(ctx, studentViewer(), req.ID, second); err != nil {
		t.Fatalf("second AttachProof() error = %v", err)
	}
	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != url {
		t.Errorf("replaced proof %q not removed, deleted = %v", url, f.storage.deleted)
	}

	// Only the owner may attach proof.
	if _, err := f.svc.AttachProof(ctx, mentorViewer(), req.ID, first); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("faculty AttachProof() error = %v, want permission denied", err)
	}
}
