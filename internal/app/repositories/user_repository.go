package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// UserRepository handles database operations for users and their role profiles
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user, assigning identity and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "password", "name", "role", "created_at", "updated_at").
		Values(user.ID, user.Email, user.Password, user.Name, user.Role, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getUser(ctx context.Context, pred squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select("id", "email", "password", "name", "role", "created_at", "updated_at").
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Email, &user.Password, &user.Name, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &user, nil
}

// GetUsersByIDs retrieves users for a set of IDs. Missing IDs are absent
// from the result, not an error.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := r.sb.Select("id", "email", "password", "name", "role", "created_at", "updated_at").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Password, &user.Name,
			&user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// CreateFacultyProfile inserts the faculty profile of a user
func (r *UserRepository) CreateFacultyProfile(ctx context.Context, profile *models.FacultyProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	sql, args, err := r.sb.Insert("faculty_profiles").
		Columns("id", "user_id", "title", "department", "is_hod").
		Values(profile.ID, profile.UserID, profile.Title, profile.Department, profile.IsHOD).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating faculty profile: %w", err)
	}
	return nil
}

// GetFacultyProfile retrieves the faculty profile of a user
func (r *UserRepository) GetFacultyProfile(ctx context.Context, userID string) (*models.FacultyProfile, error) {
	sql, args, err := r.sb.Select("id", "user_id", "title", "department", "is_hod").
		From("faculty_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var profile models.FacultyProfile
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&profile.ID, &profile.UserID, &profile.Title, &profile.Department, &profile.IsHOD,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error retrieving faculty profile: %w", err)
	}
	return &profile, nil
}

// CreateStudentProfile inserts the student profile of a user
func (r *UserRepository) CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	sql, args, err := r.sb.Insert("student_profiles").
		Columns("id", "user_id", "student_id", "department", "year", "section", "mentor_id").
		Values(profile.ID, profile.UserID, profile.StudentID, profile.Department,
			profile.Year, profile.Section, nullable(profile.MentorID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating student profile: %w", err)
	}
	return nil
}

// GetStudentProfile retrieves the student profile of a user
func (r *UserRepository) GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	sql, args, err := r.sb.Select("id", "user_id", "student_id", "department", "year", "section", "mentor_id").
		From("student_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var profile models.StudentProfile
	var mentorID *string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&profile.ID, &profile.UserID, &profile.StudentID, &profile.Department,
		&profile.Year, &profile.Section, &mentorID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving student profile: %w", err)
	}
	if mentorID != nil {
		profile.MentorID = *mentorID
	}
	return &profile, nil
}

// nullable maps an empty string to SQL NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
