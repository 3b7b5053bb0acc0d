package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo, *mockTokenRepo) {
	t.Helper()

	users := newMockUserRepo()
	tokens := newMockTokenRepo()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.users["student-1"] = &models.User{
		ID: "student-1", Email: "priya@karunya.edu", Password: hash,
		Name: "Priya Sharma", Role: models.RoleStudent,
	}
	users.students["student-1"] = &models.StudentProfile{UserID: "student-1", StudentID: "URK21CS1001"}
	users.users["hod-1"] = &models.User{
		ID: "hod-1", Email: "head@karunya.edu", Password: hash,
		Name: "Dr. Head", Role: models.RoleFaculty,
	}
	users.faculty["hod-1"] = &models.FacultyProfile{UserID: "hod-1", Department: "Computer Science", IsHOD: true}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "attendance-test",
	})
	return NewAuthService(users, tokens, jwtService, zerolog.Nop()), users, tokens
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "priya@karunya.edu", Password: "secret123", Role: "Student"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("login response missing tokens")
	}
	if resp.User.Role != "Student" || resp.User.IsHOD != nil {
		t.Errorf("student user info = %+v, isHOD must be absent", resp.User)
	}

	resp, err = svc.Login(ctx, dto.LoginRequest{Email: "head@karunya.edu", Password: "secret123", Role: "Faculty"})
	if err != nil {
		t.Fatalf("faculty Login() error = %v", err)
	}
	if resp.User.IsHOD == nil || !*resp.User.IsHOD {
		t.Errorf("faculty user info = %+v, want isHOD true", resp.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"wrong password", dto.LoginRequest{Email: "priya@karunya.edu", Password: "nope", Role: "Student"}},
		{"unknown email", dto.LoginRequest{Email: "ghost@karunya.edu", Password: "secret123", Role: "Student"}},
		{"wrong portal role", dto.LoginRequest{Email: "priya@karunya.edu", Password: "secret123", Role: "Faculty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Every failure mode looks identical to the caller.
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, apperrors.ErrInvalidCredentials) {
				t.Fatalf("Login() error = %v, want invalid credentials", err)
			}
		})
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "priya@karunya.edu", Password: "secret123", Role: "Student"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.Token == "" {
		t.Error("Refresh() returned empty access token")
	}

	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("Refresh() after logout error = %v, want token revoked", err)
	}

	// Logout is idempotent, even for tokens that never existed.
	if err := svc.Logout(ctx, "no-such-token"); err != nil {
		t.Fatalf("Logout() of unknown token error = %v", err)
	}

	if _, err := svc.Refresh(ctx, "no-such-token"); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("Refresh() of unknown token error = %v, want token not found", err)
	}

	// Expired tokens are rejected.
	tokens.tokens["stale"] = mockToken{userID: "student-1", expiry: time.Now().Add(-time.Hour)}
	if _, err := svc.Refresh(ctx, "stale"); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("Refresh() of expired token error = %v, want token expired", err)
	}
}

func TestResolveViewer(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	viewer, err := svc.ResolveViewer(ctx, &auth.Claims{UserID: "student-1", Role: "Student"})
	if err != nil {
		t.Fatalf("ResolveViewer() error = %v", err)
	}
	if viewer.RegisterNumber != "URK21CS1001" {
		t.Errorf("register number = %q, want resolved from the student profile", viewer.RegisterNumber)
	}
	if viewer.Name != "Priya Sharma" {
		t.Errorf("name = %q, want resolved from the user record", viewer.Name)
	}

	viewer, err = svc.ResolveViewer(ctx, &auth.Claims{UserID: "hod-1", Role: "Faculty", IsHOD: true})
	if err != nil {
		t.Fatalf("ResolveViewer() error = %v", err)
	}
	if !viewer.IsHOD || viewer.RegisterNumber != "" {
		t.Errorf("faculty viewer = %+v, want isHOD carried and no register number", viewer)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	info, err := svc.CurrentUser(context.Background(), "hod-1")
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if info.Email != "head@karunya.edu" || info.IsHOD == nil || !*info.IsHOD {
		t.Errorf("CurrentUser() = %+v, want the department head's profile", info)
	}

	if _, err := svc.CurrentUser(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Fatalf("CurrentUser() of unknown id error = %v, want user not found", err)
	}
}
