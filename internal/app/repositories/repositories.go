package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atomclub/attendance/internal/app/models"
)

// AttendanceRepo is the persistence contract of the request store
type AttendanceRepo interface {
	// CreateBatch stores every candidate or none of them. The store assigns
	// identity and audit timestamps here.
	CreateBatch(ctx context.Context, requests []*models.AttendanceRequest) error
	GetByID(ctx context.Context, id string) (*models.AttendanceRequest, error)
	// List returns requests matching the filter, newest first, windowed by
	// the filter's Limit and Offset.
	List(ctx context.Context, filter models.RequestFilter) ([]*models.AttendanceRequest, error)
	// Count tallies every match regardless of the page window.
	Count(ctx context.Context, filter models.RequestFilter) (int64, error)
	// UpdateStatusIf moves id from `from` to `to` only when the stored
	// status still equals `from`, reporting whether a row changed. This is
	// the race guard: a stale writer changes nothing.
	UpdateStatusIf(ctx context.Context, id string, from, to models.RequestStatus, reason string) (bool, error)
	Delete(ctx context.Context, id string) error
	SetProofURL(ctx context.Context, id, proofURL string) error
	// Statistics counts requests per status in one snapshot.
	Statistics(ctx context.Context, filter models.RequestFilter) (*models.RequestStatistics, error)
}

// UserRepo resolves identities and their role profiles
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	CreateFacultyProfile(ctx context.Context, profile *models.FacultyProfile) error
	GetFacultyProfile(ctx context.Context, userID string) (*models.FacultyProfile, error)
	CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
	GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
}

// FacultyRepo serves the faculty directory
type FacultyRepo interface {
	ListAll(ctx context.Context) ([]*models.FacultyProfile, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.FacultyProfile, error)
}

// TokenRepo stores refresh tokens
type TokenRepo interface {
	Create(ctx context.Context, token, userID string, expiry time.Time) error
	Get(ctx context.Context, token string) (userID string, expiry time.Time, revoked bool, err error)
	Revoke(ctx context.Context, token string) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Attendance AttendanceRepo
	User       UserRepo
	Faculty    FacultyRepo
	Token      TokenRepo
}

// NewRepositories initializes the pgx-backed repository set
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Attendance: NewAttendanceRepository(db),
		User:       NewUserRepository(db),
		Faculty:    NewFacultyRepository(db),
		Token:      NewTokenRepository(db),
	}
}
