package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/repositories"
	"github.com/atomclub/attendance/internal/cache"
)

const (
	facultyCacheKey           = "faculty:all"
	facultyDepartmentCacheKey = "faculty:department:"
)

// FacultyService serves the faculty directory students pick approvers and
// period supervisors from. The directory changes rarely, so reads go
// through a short-lived cache.
type FacultyService struct {
	facultyRepo repositories.FacultyRepo
	cache       *cache.Cache
	logger      zerolog.Logger
}

// NewFacultyService creates a new FacultyService
func NewFacultyService(facultyRepo repositories.FacultyRepo, c *cache.Cache, logger zerolog.Logger) *FacultyService {
	return &FacultyService{
		facultyRepo: facultyRepo,
		cache:       c,
		logger:      logger,
	}
}

// List returns the full faculty directory
func (s *FacultyService) List(ctx context.Context) ([]dto.FacultyResponse, error) {
	var cached []dto.FacultyResponse
	if s.cache.Get(ctx, facultyCacheKey, &cached) {
		return cached, nil
	}

	profiles, err := s.facultyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	directory := toDirectory(profiles)
	s.cache.Set(ctx, facultyCacheKey, directory)
	return directory, nil
}

// ListByDepartment returns one department's faculty
func (s *FacultyService) ListByDepartment(ctx context.Context, department string) ([]dto.FacultyResponse, error) {
	key := facultyDepartmentCacheKey + department

	var cached []dto.FacultyResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	profiles, err := s.facultyRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	directory := toDirectory(profiles)
	s.cache.Set(ctx, key, directory)
	return directory, nil
}

// toDirectory flattens profiles and their user records into directory rows
func toDirectory(profiles []*models.FacultyProfile) []dto.FacultyResponse {
	directory := make([]dto.FacultyResponse, 0, len(profiles))
	for _, p := range profiles {
		entry := dto.FacultyResponse{
			ID:         p.UserID,
			Title:      p.Title,
			Department: p.Department,
			IsHOD:      p.IsHOD,
		}
		if p.User != nil {
			entry.Name = p.User.Name
			entry.Email = p.User.Email
		}
		directory = append(directory, entry)
	}
	return directory
}
