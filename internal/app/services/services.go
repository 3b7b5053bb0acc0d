// Package services holds the business logic between the HTTP controllers
// and the repositories:
//   - AuthService: login, token refresh, logout, identity resolution
//   - AttendanceService: the approval workflow itself
//   - FacultyService: the cached faculty directory
package services

import (
	"github.com/rs/zerolog"

	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/repositories"
	"github.com/atomclub/attendance/internal/cache"
	"github.com/atomclub/attendance/internal/pkg/auth"
	"github.com/atomclub/attendance/internal/pkg/email"
	"github.com/atomclub/attendance/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	Auth       *AuthService
	Attendance *AttendanceService
	Faculty    *FacultyService
}

// NewServices wires the service layer over its dependencies
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	notifier email.NotificationService,
	storage filestorage.FileStorage,
	c *cache.Cache,
	logger zerolog.Logger,
) *Services {
	gate := appauth.NewAccessGate()
	return &Services{
		Auth:       NewAuthService(repos.User, repos.Token, jwtService, logger),
		Attendance: NewAttendanceService(repos.Attendance, repos.User, gate, notifier, storage, logger),
		Faculty:    NewFacultyService(repos.Faculty, c, logger),
	}
}
