package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atomclub/attendance/internal/app/models"
)

// FacultyRepository serves the faculty directory
type FacultyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new faculty repository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListAll returns every faculty member with their user record, ordered by name
func (r *FacultyRepository) ListAll(ctx context.Context) ([]*models.FacultyProfile, error) {
	return r.list(ctx, nil)
}

// ListByDepartment returns the faculty of one department, ordered by name
func (r *FacultyRepository) ListByDepartment(ctx context.Context, department string) ([]*models.FacultyProfile, error) {
	return r.list(ctx, squirrel.Eq{"f.department": department})
}

func (r *FacultyRepository) list(ctx context.Context, pred squirrel.Eq) ([]*models.FacultyProfile, error) {
	builder := r.sb.Select("f.id", "f.user_id", "f.title", "f.department", "f.is_hod",
		"u.id", "u.email", "u.name", "u.role").
		From("faculty_profiles f").
		Join("users u ON u.id = f.user_id").
		OrderBy("u.name ASC")

	if pred != nil {
		builder = builder.Where(pred)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build faculty query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing faculty: %w", err)
	}
	defer rows.Close()

	var profiles []*models.FacultyProfile
	for rows.Next() {
		var profile models.FacultyProfile
		var user models.User
		if err := rows.Scan(&profile.ID, &profile.UserID, &profile.Title,
			&profile.Department, &profile.IsHOD,
			&user.ID, &user.Email, &user.Name, &user.Role); err != nil {
			return nil, err
		}
		profile.User = &user
		profiles = append(profiles, &profile)
	}
	return profiles, rows.Err()
}
