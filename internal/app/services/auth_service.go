package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/repositories"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.UserRepo
	tokenRepo  repositories.TokenRepo
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepo,
	tokenRepo repositories.TokenRepo,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user. The portal role is part of the credential: a
// role mismatch fails exactly like a wrong password, so the response never
// reveals which part was wrong.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Debug().Str("email", req.Email).Msg("Login attempt for unknown email")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if string(user.Role) != req.Role {
		return nil, apperrors.ErrInvalidCredentials
	}

	isHOD := false
	if user.Role == models.RoleFaculty {
		profile, err := s.userRepo.GetFacultyProfile(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load faculty profile: %w", err)
		}
		isHOD = profile.IsHOD
	}

	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user, isHOD)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, refreshToken, user.ID, s.jwtService.RefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info().
		Str("userId", user.ID).
		Str("role", string(user.Role)).
		Msg("User logged in")

	return &dto.LoginResponse{
		User:         s.userInfo(user, isHOD),
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	userID, expiry, revoked, err := s.tokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(expiry) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	isHOD := false
	if user.Role == models.RoleFaculty {
		profile, err := s.userRepo.GetFacultyProfile(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load faculty profile: %w", err)
		}
		isHOD = profile.IsHOD
	}

	accessToken, _, expiresIn, err := s.jwtService.GenerateTokenPair(user, isHOD)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{
		Token:     accessToken,
		ExpiresIn: expiresIn,
	}, nil
}

// Logout revokes the supplied refresh token. Revoking an unknown token is
// not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// CurrentUser resolves the authenticated user's profile
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	isHOD := false
	if user.Role == models.RoleFaculty {
		profile, err := s.userRepo.GetFacultyProfile(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load faculty profile: %w", err)
		}
		isHOD = profile.IsHOD
	}

	info := s.userInfo(user, isHOD)
	return &info, nil
}

// ResolveViewer builds the access-gate identity for the token claims.
// Students get their register number attached so bulk roster membership can
// be checked without another lookup downstream.
func (s *AuthService) ResolveViewer(ctx context.Context, claims *auth.Claims) (appauth.Viewer, error) {
	viewer := appauth.Viewer{
		UserID: claims.UserID,
		Role:   models.Role(claims.Role),
		IsHOD:  claims.IsHOD,
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return viewer, err
	}
	viewer.Name = user.Name

	if viewer.Role == models.RoleStudent {
		profile, err := s.userRepo.GetStudentProfile(ctx, claims.UserID)
		if err != nil {
			return viewer, err
		}
		viewer.RegisterNumber = profile.StudentID
	}
	return viewer, nil
}

func (s *AuthService) userInfo(user *models.User, isHOD bool) dto.UserInfo {
	info := dto.UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
	if user.Role == models.RoleFaculty {
		info.IsHOD = &isHOD
	}
	return info
}
