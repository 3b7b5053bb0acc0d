// Package seed creates the default accounts a fresh deployment needs: one
// department head, one mentor and one student, all with known credentials
// for first login.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/app/repositories"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/auth"
)

const defaultPassword = "changeme123"

type account struct {
	email   string
	name    string
	role    models.Role
	faculty *models.FacultyProfile
	student *models.StudentProfile
}

// CreateDefaultData creates the default accounts when they do not exist yet.
// Existing accounts are left untouched, so repeated startups are safe.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	repos := repositories.NewRepositories(dbPool)

	accounts := []account{
		{
			email: "hod@karunya.edu", name: "Dr. Grace Thomas", role: models.RoleFaculty,
			faculty: &models.FacultyProfile{Title: "Professor", Department: "Computer Science", IsHOD: true},
		},
		{
			email: "mentor@karunya.edu", name: "Dr. Samuel Raj", role: models.RoleFaculty,
			faculty: &models.FacultyProfile{Title: "Assistant Professor", Department: "Computer Science"},
		},
		{
			email: "student@karunya.edu", name: "Priya Sharma", role: models.RoleStudent,
			student: &models.StudentProfile{StudentID: "URK21CS1001", Department: "Computer Science", Year: 3, Section: "A"},
		},
	}

	var finalErr error
	for _, acct := range accounts {
		if err := createAccount(ctx, repos, acct, lgr); err != nil {
			lgr.Error().Err(err).Str("email", acct.email).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

func createAccount(ctx context.Context, repos *repositories.Repositories, acct account, lgr zerolog.Logger) error {
	if _, err := repos.User.GetByEmail(ctx, acct.email); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:    acct.email,
		Password: hash,
		Name:     acct.name,
		Role:     acct.role,
	}
	if err := repos.User.Create(ctx, user); err != nil {
		return err
	}

	switch {
	case acct.faculty != nil:
		acct.faculty.UserID = user.ID
		if err := repos.User.CreateFacultyProfile(ctx, acct.faculty); err != nil {
			return err
		}
	case acct.student != nil:
		acct.student.UserID = user.ID
		if err := repos.User.CreateStudentProfile(ctx, acct.student); err != nil {
			return err
		}
	}

	lgr.Info().Str("email", acct.email).Str("role", string(acct.role)).Msg("Default account created")
	return nil
}
