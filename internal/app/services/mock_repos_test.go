package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/email"
)

// mockAttendanceRepo is an in-memory AttendanceRepo with the same
// conditional-update semantics as the database implementation.
type mockAttendanceRepo struct {
	mu       sync.Mutex
	requests map[string]*models.AttendanceRequest
	seq      int
	order    map[string]int // id -> insertion sequence
	failNext error

	// beforeUpdate runs inside UpdateStatusIf before the status compare,
	// simulating a concurrent writer committing first.
	beforeUpdate func()
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{
		requests: make(map[string]*models.AttendanceRequest),
		order:    make(map[string]int),
	}
}

func (m *mockAttendanceRepo) CreateBatch(_ context.Context, requests []*models.AttendanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	now := time.Now()
	for _, req := range requests {
		m.seq++
		req.ID = fmt.Sprintf("req-%d", m.seq)
		req.Status = models.StatusPendingMentor
		req.CreatedAt = now
		req.UpdatedAt = now
		clone := *req
		m.requests[req.ID] = &clone
		m.order[req.ID] = m.seq
	}
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*models.AttendanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filter models.RequestFilter) ([]*models.AttendanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AttendanceRequest
	for _, req := range m.requests {
		if matches(req, filter) {
			clone := *req
			out = append(out, &clone)
		}
	}
	// Newest first, insertion order breaking ties.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if newer(m, out[j], out[i]) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if filter.Limit > 0 {
		if filter.Offset >= uint64(len(out)) {
			return nil, nil
		}
		out = out[filter.Offset:]
		if len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) Count(_ context.Context, filter models.RequestFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, req := range m.requests {
		if matches(req, filter) {
			count++
		}
	}
	return count, nil
}

func newer(m *mockAttendanceRepo, a, b *models.AttendanceRequest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return m.order[a.ID] > m.order[b.ID]
}

func matches(req *models.AttendanceRequest, f models.RequestFilter) bool {
	if f.StudentID != "" && req.StudentID != f.StudentID {
		if f.RegisterNumber == "" || !req.OnRoster(f.RegisterNumber) {
			return false
		}
	}
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && req.Status == f.ExcludeStatus {
		return false
	}
	if f.CoordinatorID != "" && req.EventCoordinatorFacultyID != f.CoordinatorID {
		return false
	}
	if !f.DateFrom.IsZero() && req.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && req.Date.After(f.DateTo) {
		return false
	}
	return true
}

func (m *mockAttendanceRepo) UpdateStatusIf(_ context.Context, id string, from, to models.RequestStatus, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeUpdate != nil {
		hook := m.beforeUpdate
		m.beforeUpdate = nil
		hook()
	}
	req, ok := m.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	if to == models.StatusDeclined {
		req.Reason = reason
	}
	req.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return apperrors.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *mockAttendanceRepo) SetProofURL(_ context.Context, id, proofURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return apperrors.ErrRequestNotFound
	}
	req.ProofURL = proofURL
	return nil
}

func (m *mockAttendanceRepo) Statistics(_ context.Context, filter models.RequestFilter) (*models.RequestStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.RequestStatistics{}
	for _, req := range m.requests {
		if !matches(req, filter) {
			continue
		}
		stats.Total++
		switch req.Status {
		case models.StatusPendingMentor:
			stats.PendingMentor++
		case models.StatusPendingHOD:
			stats.PendingHOD++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusDeclined:
			stats.Declined++
		}
	}
	return stats, nil
}

// mockUserRepo is an in-memory UserRepo
type mockUserRepo struct {
	users    map[string]*models.User
	faculty  map[string]*models.FacultyProfile
	students map[string]*models.StudentProfile
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[string]*models.User),
		faculty:  make(map[string]*models.FacultyProfile),
		students: make(map[string]*models.StudentProfile),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, emailAddr string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == emailAddr {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserRepo) GetUsersByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *mockUserRepo) CreateFacultyProfile(_ context.Context, profile *models.FacultyProfile) error {
	m.faculty[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) GetFacultyProfile(_ context.Context, userID string) (*models.FacultyProfile, error) {
	profile, ok := m.faculty[userID]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return profile, nil
}

func (m *mockUserRepo) CreateStudentProfile(_ context.Context, profile *models.StudentProfile) error {
	m.students[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) GetStudentProfile(_ context.Context, userID string) (*models.StudentProfile, error) {
	profile, ok := m.students[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return profile, nil
}

// mockFacultyRepo is an in-memory FacultyRepo
type mockFacultyRepo struct {
	profiles []*models.FacultyProfile
	calls    int
}

func (m *mockFacultyRepo) ListAll(_ context.Context) ([]*models.FacultyProfile, error) {
	m.calls++
	return m.profiles, nil
}

func (m *mockFacultyRepo) ListByDepartment(_ context.Context, department string) ([]*models.FacultyProfile, error) {
	m.calls++
	var out []*models.FacultyProfile
	for _, p := range m.profiles {
		if p.Department == department {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockTokenRepo is an in-memory TokenRepo
type mockTokenRepo struct {
	tokens map[string]mockToken
}

type mockToken struct {
	userID  string
	expiry  time.Time
	revoked bool
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]mockToken)}
}

func (m *mockTokenRepo) Create(_ context.Context, token, userID string, expiry time.Time) error {
	m.tokens[token] = mockToken{userID: userID, expiry: expiry}
	return nil
}

func (m *mockTokenRepo) Get(_ context.Context, token string) (string, time.Time, bool, error) {
	t, ok := m.tokens[token]
	if !ok {
		return "", time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return t.userID, t.expiry, t.revoked, nil
}

func (m *mockTokenRepo) Revoke(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	m.tokens[token] = t
	return nil
}

// mockNotifier records outbound notices instead of sending mail
type mockNotifier struct {
	approvals []string // recipient emails
	declines  []string
}

func (m *mockNotifier) SendApprovalNotice(toEmail, _ string, _ email.ApprovalNotice) error {
	m.approvals = append(m.approvals, toEmail)
	return nil
}

func (m *mockNotifier) SendDeclineNotice(toEmail, _ string, _ email.DeclineNotice) error {
	m.declines = append(m.declines, toEmail)
	return nil
}
